// Copyright (c) Microsoft. All rights reserved.

package openai

import (
	"encoding/json"
	"strings"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// chatRequest is the Chat Completions API request body.
type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_completion_tokens,omitempty"`
	Seed        *int          `json:"seed,omitempty"`
	Tools       []toolSpec    `json:"tools,omitempty"`
	ToolChoice  any           `json:"tool_choice,omitempty"`
	User        string        `json:"user,omitempty"`
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    *string    `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function functionSpec `json:"function"`
}

type functionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// buildRequest converts framework types into a Chat Completions request.
func buildRequest(messages []af.Message, opts *af.ChatOptions, defaultModel string) *chatRequest {
	req := &chatRequest{
		Model: defaultModel,
	}
	if opts != nil {
		if opts.ModelID != "" {
			req.Model = opts.ModelID
		}
		req.Temperature = opts.Temperature
		req.MaxTokens = opts.MaxTokens
		req.Seed = opts.Seed
		req.User = opts.User

		for _, t := range opts.Tools {
			req.Tools = append(req.Tools, toolSpec{
				Type: "function",
				Function: functionSpec{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
		if len(req.Tools) > 0 {
			req.ToolChoice = convertToolChoice(opts.ToolChoice)
		}
	}

	req.Messages = convertMessages(messages)
	return req
}

// convertMessages translates framework Messages into chat messages.
// A tool message becomes one chat message per function result.
func convertMessages(messages []af.Message) []chatMessage {
	result := make([]chatMessage, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case af.RoleTool:
			for _, fr := range msg.FunctionResults() {
				content := marshalResult(fr.Result)
				result = append(result, chatMessage{
					Role:       string(af.RoleTool),
					Content:    &content,
					ToolCallID: fr.CallID,
				})
			}

		case af.RoleAssistant:
			cm := chatMessage{Role: string(msg.Role), Name: msg.AuthorName}
			for _, fc := range msg.FunctionCalls() {
				cm.ToolCalls = append(cm.ToolCalls, toolCall{
					ID:   fc.CallID,
					Type: "function",
					Function: functionCall{
						Name:      fc.Name,
						Arguments: fc.Arguments,
					},
				})
			}
			// Content may only be null when tool calls are present.
			if text := msg.Text(); text != "" || len(cm.ToolCalls) == 0 {
				cm.Content = &text
			}
			result = append(result, cm)

		default:
			text := msg.Text()
			result = append(result, chatMessage{Role: string(msg.Role), Name: msg.AuthorName, Content: &text})
		}
	}

	return result
}

func convertToolChoice(tc af.ToolChoice) any {
	switch tc {
	case "":
		return nil
	case af.ToolChoiceAuto, af.ToolChoiceRequired, af.ToolChoiceNone:
		return string(tc)
	}
	if name, ok := strings.CutPrefix(string(tc), "function:"); ok && name != "" {
		return map[string]any{
			"type":     "function",
			"function": map[string]string{"name": name},
		}
	}
	return string(tc)
}

func marshalResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "error: unserializable tool result"
	}
	return string(b)
}
