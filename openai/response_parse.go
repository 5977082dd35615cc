// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"fmt"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// chatCompletionResponse is the body of a successful /chat/completions call.
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// decodeChatResponse turns a response body into a [af.ChatResponse] built
// from the first choice. A body without choices, or a choice withheld by the
// content filter, is an error.
func decodeChatResponse(body []byte) (*af.ChatResponse, error) {
	var raw chatCompletionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", af.ErrInvalidResponse, err)
	}
	if len(raw.Choices) == 0 {
		return nil, fmt.Errorf("%w: response has no choices", af.ErrInvalidResponse)
	}

	first := raw.Choices[0]
	finish := af.FinishReason(first.FinishReason)
	if finish == af.FinishReasonContentFilter && first.Message.Content == nil && len(first.Message.ToolCalls) == 0 {
		return nil, &af.ServiceError{
			StatusCode: 200,
			Code:       "content_filter",
			Message:    "the response was withheld by the content filter",
			Err:        af.ErrContentFilter,
		}
	}

	resp := &af.ChatResponse{
		ResponseID:   raw.ID,
		ModelID:      raw.Model,
		CreatedAt:    raw.Created,
		FinishReason: finish,
		Raw:          &raw,
	}

	role := af.Role(first.Message.Role)
	if role == "" {
		role = af.RoleAssistant
	}
	msg := af.Message{Role: role, Raw: first.Message}
	if c := first.Message.Content; c != nil && *c != "" {
		msg.Contents = append(msg.Contents, &af.TextContent{Text: *c})
	}
	for _, tc := range first.Message.ToolCalls {
		msg.Contents = append(msg.Contents, &af.FunctionCallContent{
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	if u := raw.Usage; u != nil {
		resp.Usage = af.UsageDetails{
			InputTokens:  u.PromptTokens,
			OutputTokens: u.CompletionTokens,
			TotalTokens:  u.TotalTokens,
		}
		msg.Contents = append(msg.Contents, &af.UsageContent{Usage: resp.Usage})
	}
	resp.Messages = []af.Message{msg}

	return resp, nil
}
