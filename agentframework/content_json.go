// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"encoding/json"
	"fmt"
)

// contentEnvelope is the wire form of every [Content] kind. The "$type"
// field selects which of the remaining fields are meaningful.
type contentEnvelope struct {
	Type      ContentType     `json:"$type"`
	Text      string          `json:"text,omitempty"`
	Message   string          `json:"message,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
	CallID    string          `json:"callId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    any             `json:"result,omitempty"`
	Usage     *UsageDetails   `json:"usage,omitempty"`
}

// MarshalContentJSON encodes c as a "$type"-tagged JSON object.
func MarshalContentJSON(c Content) ([]byte, error) {
	env := contentEnvelope{}
	switch v := c.(type) {
	case *TextContent:
		env.Text = v.Text
	case *ErrorContent:
		env.Message, env.ErrorCode = v.Message, v.ErrorCode
	case *FunctionCallContent:
		env.CallID, env.Name = v.CallID, v.Name
		env.Arguments = json.RawMessage(v.Arguments)
		if v.Arguments != "" && !json.Valid(env.Arguments) {
			// Broken model output is kept verbatim as a JSON string.
			env.Arguments, _ = json.Marshal(v.Arguments)
		}
	case *FunctionResultContent:
		env.CallID, env.Result = v.CallID, v.Result
	case *UsageContent:
		u := v.Usage
		env.Usage = &u
	default:
		return nil, fmt.Errorf("unknown content type: %T", c)
	}
	env.Type = c.Type()
	return json.Marshal(env)
}

// UnmarshalContentJSON decodes a "$type"-tagged JSON object.
func UnmarshalContentJSON(data []byte) (Content, error) {
	var env contentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}

	switch env.Type {
	case ContentTypeText:
		return &TextContent{Text: env.Text}, nil
	case ContentTypeError:
		return &ErrorContent{Message: env.Message, ErrorCode: env.ErrorCode}, nil
	case ContentTypeFunctionCall:
		return &FunctionCallContent{CallID: env.CallID, Name: env.Name, Arguments: string(env.Arguments)}, nil
	case ContentTypeFunctionResult:
		return &FunctionResultContent{CallID: env.CallID, Result: env.Result}, nil
	case ContentTypeUsage:
		uc := &UsageContent{}
		if env.Usage != nil {
			uc.Usage = *env.Usage
		}
		return uc, nil
	default:
		return nil, fmt.Errorf("unknown content $type: %q", env.Type)
	}
}

// Contents is a list of [Content] that round-trips through JSON.
type Contents []Content

func (cs Contents) MarshalJSON() ([]byte, error) {
	items := make([]json.RawMessage, 0, len(cs))
	for i, c := range cs {
		b, err := MarshalContentJSON(c)
		if err != nil {
			return nil, fmt.Errorf("content[%d]: %w", i, err)
		}
		items = append(items, b)
	}
	return json.Marshal(items)
}

func (cs *Contents) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(Contents, 0, len(items))
	for i, item := range items {
		c, err := UnmarshalContentJSON(item)
		if err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}
