// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"slices"
	"strings"
)

// Role identifies the author of a [Message].
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// FinishReason tells why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonToolCalls     FinishReason = "tool_calls"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Message is a single role-tagged entry of a conversation turn.
type Message struct {
	Role       Role     `json:"role"`
	Contents   Contents `json:"contents,omitempty"`
	AuthorName string   `json:"authorName,omitempty"`

	// Raw holds the provider payload this message was parsed from, if any.
	Raw any `json:"-"`
}

// contentsOf returns the items of m that have concrete type T.
func contentsOf[T Content](m *Message) []T {
	var out []T
	for _, c := range m.Contents {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// Text concatenates the [TextContent] items of m.
func (m *Message) Text() string {
	var b strings.Builder
	for _, tc := range contentsOf[*TextContent](m) {
		b.WriteString(tc.Text)
	}
	return b.String()
}

// FunctionCalls returns the tool calls requested by m.
func (m *Message) FunctionCalls() []*FunctionCallContent {
	return contentsOf[*FunctionCallContent](m)
}

// FunctionResults returns the tool results carried by m.
func (m *Message) FunctionResults() []*FunctionResultContent {
	return contentsOf[*FunctionResultContent](m)
}

func textMessage(role Role, text string) Message {
	return Message{Role: role, Contents: Contents{&TextContent{Text: text}}}
}

// NewUserMessage returns a user message holding text.
func NewUserMessage(text string) Message { return textMessage(RoleUser, text) }

// NewAssistantMessage returns an assistant message holding text.
func NewAssistantMessage(text string) Message { return textMessage(RoleAssistant, text) }

// NewSystemMessage returns a system message holding text.
func NewSystemMessage(text string) Message { return textMessage(RoleSystem, text) }

// NewToolMessage returns the tool message answering call callID.
func NewToolMessage(callID string, result any) Message {
	return Message{
		Role:     RoleTool,
		Contents: Contents{&FunctionResultContent{CallID: callID, Result: result}},
	}
}

// PrependInstructions puts instructions in front of messages as a system
// message. Empty instructions, or a conversation that already has a system
// message, leave messages unchanged.
func PrependInstructions(messages []Message, instructions string) []Message {
	if instructions == "" || slices.ContainsFunc(messages, func(m Message) bool { return m.Role == RoleSystem }) {
		return messages
	}
	return append([]Message{NewSystemMessage(instructions)}, messages...)
}
