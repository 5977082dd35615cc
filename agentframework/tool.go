// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
)

// Tool is a function the model may call.
type Tool interface {
	// Name is the function name exposed to the model. It is unique within
	// a [Registry].
	Name() string
	Description() string
	// Parameters is the JSON Schema of the arguments object.
	Parameters() json.RawMessage
	// Invoke runs the tool with arguments already validated against
	// Parameters.
	Invoke(ctx context.Context, args json.RawMessage) (any, error)
}

// FunctionTool is a [Tool] backed by a Go function.
type FunctionTool struct {
	name        string
	description string
	parameters  json.RawMessage
	fn          func(ctx context.Context, args json.RawMessage) (any, error)
}

// NewTool returns a tool with a hand-written schema.
func NewTool(name, description string, parameters json.RawMessage, fn func(ctx context.Context, args json.RawMessage) (any, error)) *FunctionTool {
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewTypedTool returns a tool whose schema is generated from Args and whose
// arguments are decoded into Args before fn runs. Field names come from json
// tags; the jsonschema tag adds description, required and enum:
//
//	type RepoArgs struct {
//	    RepoName string `json:"repo_name" jsonschema:"description=Repository name,required"`
//	    OrgName  string `json:"org_name"  jsonschema:"description=Owning organization,required"`
//	}
func NewTypedTool[Args any](name, description string, fn func(ctx context.Context, args Args) (any, error)) *FunctionTool {
	return NewTool(name, description, GenerateSchema[Args](), func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args Args
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ToolError{ToolName: name, Message: "invalid arguments: " + err.Error(), Err: ErrToolArguments}
			}
		}
		return fn(ctx, args)
	})
}

func (t *FunctionTool) Name() string                { return t.name }
func (t *FunctionTool) Description() string         { return t.description }
func (t *FunctionTool) Parameters() json.RawMessage { return t.parameters }

func (t *FunctionTool) Invoke(ctx context.Context, args json.RawMessage) (any, error) {
	if t.fn == nil {
		return nil, &ToolError{ToolName: t.name, Message: "tool has no handler", Err: ErrToolExecution}
	}
	return t.fn(ctx, args)
}

// GenerateSchema returns the JSON Schema of T, which should be a struct.
func GenerateSchema[T any]() json.RawMessage {
	var zero T
	return generateSchemaFromType(zero)
}
