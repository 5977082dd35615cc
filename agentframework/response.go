// Copyright (c) Microsoft. All rights reserved.

package agentframework

import "strings"

// ChatResponse is the complete response from a [ChatClient].
type ChatResponse struct {
	Messages     []Message
	ResponseID   string
	ModelID      string
	CreatedAt    int64
	FinishReason FinishReason
	Usage        UsageDetails
	Raw          any
}

// Text returns the concatenated text of all messages in this response.
func (r *ChatResponse) Text() string {
	var b strings.Builder
	for i := range r.Messages {
		b.WriteString(r.Messages[i].Text())
	}
	return b.String()
}

// AgentResponse is the complete response from an [Agent] run.
type AgentResponse struct {
	// Messages holds every message the run produced, including the
	// intermediate tool requests and results. The final answer is last.
	Messages   []Message
	ResponseID string
	AgentID    string
	Usage      UsageDetails
	Raw        any
}

// Text returns the text of the final assistant message.
func (r *AgentResponse) Text() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleAssistant {
			return r.Messages[i].Text()
		}
	}
	return ""
}

// ToolCalls returns the names of the tools called during the run, in order.
func (r *AgentResponse) ToolCalls() []string {
	var names []string
	for i := range r.Messages {
		for _, fc := range r.Messages[i].FunctionCalls() {
			names = append(names, fc.Name)
		}
	}
	return names
}
