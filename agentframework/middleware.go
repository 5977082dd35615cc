// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
)

// An agent run passes through three middleware layers:
//
//	AgentMiddleware     once per Run, around the whole tool loop
//	ChatMiddleware      once per LLM round-trip
//	FunctionMiddleware  once per tool invocation
//
// In every layer the first middleware in a list is the outermost.

// AgentHandler runs one agent request.
type AgentHandler func(ctx context.Context, req *AgentRequest) (*AgentResponse, error)

// AgentRequest is the input of an [AgentHandler].
type AgentRequest struct {
	Messages []Message
	Session  *Session
	Options  *ChatOptions
}

// AgentMiddleware decorates an [AgentHandler]. Returning without calling
// next short-circuits the run.
type AgentMiddleware func(next AgentHandler) AgentHandler

// ChatHandler performs one LLM round-trip.
type ChatHandler func(ctx context.Context, messages []Message, opts *ChatOptions) (*ChatResponse, error)

// ChatMiddleware decorates a [ChatHandler].
type ChatMiddleware func(next ChatHandler) ChatHandler

// FunctionHandler invokes one tool with validated arguments.
type FunctionHandler func(ctx context.Context, tool Tool, args json.RawMessage) (any, error)

// FunctionMiddleware decorates a [FunctionHandler].
type FunctionMiddleware func(next FunctionHandler) FunctionHandler

func chain[H any, M ~func(H) H](handler H, mws []M) H {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

func chainAgentMiddleware(handler AgentHandler, mws ...AgentMiddleware) AgentHandler {
	return chain(handler, mws)
}

// ChainChatMiddleware wraps handler with mws. Provider packages use it to
// decorate their own request path.
func ChainChatMiddleware(handler ChatHandler, mws ...ChatMiddleware) ChatHandler {
	return chain(handler, mws)
}

func chainFunctionMiddleware(handler FunctionHandler, mws ...FunctionMiddleware) FunctionHandler {
	return chain(handler, mws)
}
