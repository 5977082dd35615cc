// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/iter"
)

// DefaultMaxIterations bounds the tool rounds of one run.
const DefaultMaxIterations = 10

// InvocationConfig controls the function invocation loop behavior.
type InvocationConfig struct {
	// MaxIterations is the maximum number of tool rounds. The model gets one
	// more call after the last round to answer with the results, so a run
	// makes at most MaxIterations+1 model calls. Default: 10.
	MaxIterations int

	// MaxConsecutiveErrors is the maximum number of consecutive tool errors
	// before aborting. Default: 3.
	MaxConsecutiveErrors int

	// TerminateOnUnknown aborts if the model calls an unknown tool.
	TerminateOnUnknown bool

	// IncludeDetailedErrors includes full error text in tool results sent
	// back to the model. When false, a generic error message is used.
	// Argument validation failures are always reported in detail.
	IncludeDetailedErrors bool

	// MaxConcurrentTools caps the tool calls run in parallel within one
	// round. Zero means GOMAXPROCS.
	MaxConcurrentTools int
}

// DefaultInvocationConfig returns the default configuration.
func DefaultInvocationConfig() InvocationConfig {
	return InvocationConfig{
		MaxIterations:        DefaultMaxIterations,
		MaxConsecutiveErrors: 3,
	}
}

// loopResult is the outcome of a completed tool-calling loop.
type loopResult struct {
	// final is the last model response, the one without tool calls.
	final *ChatResponse
	// produced holds every message generated during the run in order:
	// assistant tool requests, tool results, and the final answer.
	produced []Message
	usage    UsageDetails
}

// toolOutcome is the result of dispatching a single function call.
type toolOutcome struct {
	message Message
	err     error // non-fatal; reported to the model
	fatal   error // aborts the run
}

// invokeFunctions runs the tool-calling loop. It alternates between asking
// the model for a response and dispatching the function calls it requests,
// until the model answers without tool calls or a limit is hit. Tools
// requested past the last allowed round are not run.
func invokeFunctions(
	ctx context.Context,
	chat ChatHandler,
	messages []Message,
	opts *ChatOptions,
	config InvocationConfig,
	fnMiddleware []FunctionMiddleware,
) (*loopResult, error) {
	if config.MaxIterations <= 0 {
		config.MaxIterations = DefaultMaxIterations
	}
	if config.MaxConsecutiveErrors <= 0 {
		config.MaxConsecutiveErrors = 3
	}

	registry, err := NewRegistry(opts.Tools...)
	if err != nil {
		return nil, err
	}
	invoke := chainFunctionMiddleware(func(ctx context.Context, t Tool, a json.RawMessage) (any, error) {
		return t.Invoke(ctx, a)
	}, fnMiddleware...)

	mapper := iter.Mapper[*FunctionCallContent, toolOutcome]{MaxGoroutines: config.MaxConcurrentTools}

	res := &loopResult{}
	consecutiveErrors := 0

	for round := 0; ; round++ {
		resp, err := chat(ctx, messages, opts)
		if err != nil {
			return nil, err
		}
		res.usage = res.usage.Add(resp.Usage)
		res.produced = append(res.produced, resp.Messages...)

		calls := extractFunctionCalls(resp)
		if len(calls) == 0 {
			res.final = resp
			return res, nil
		}
		if round == config.MaxIterations {
			return nil, fmt.Errorf("%w: max tool rounds reached (%d)", ErrNotConverged, config.MaxIterations)
		}

		slog.DebugContext(ctx, "dispatching tool calls",
			"round", round+1,
			"count", len(calls),
		)

		outcomes := mapper.Map(calls, func(call **FunctionCallContent) toolOutcome {
			return dispatchCall(ctx, registry, *call, config, invoke)
		})

		messages = append(messages, resp.Messages...)
		for _, o := range outcomes {
			if o.fatal != nil {
				return nil, o.fatal
			}
			if o.err != nil {
				consecutiveErrors++
				slog.WarnContext(ctx, "tool invocation error",
					"error", o.err,
					"consecutive_errors", consecutiveErrors,
				)
			} else {
				consecutiveErrors = 0
			}
			messages = append(messages, o.message)
			res.produced = append(res.produced, o.message)
		}
		if consecutiveErrors >= config.MaxConsecutiveErrors {
			return nil, fmt.Errorf("%w: max consecutive errors reached (%d)", ErrToolExecution, consecutiveErrors)
		}
	}
}

// dispatchCall resolves, validates and invokes one function call.
func dispatchCall(ctx context.Context, registry *Registry, call *FunctionCallContent, config InvocationConfig, invoke FunctionHandler) toolOutcome {
	tool, ok := registry.Lookup(call.Name)
	if !ok {
		if config.TerminateOnUnknown {
			return toolOutcome{fatal: fmt.Errorf("%w: unknown tool %q", ErrToolExecution, call.Name)}
		}
		slog.WarnContext(ctx, "unknown tool called", "tool", call.Name)
		err := &ToolError{ToolName: call.Name, Message: "unknown tool", Err: ErrToolExecution}
		return toolOutcome{message: toolErrorMessage(call.CallID, "error: unknown tool", err), err: err}
	}

	args := json.RawMessage(call.Arguments)
	if err := ValidateArguments(tool.Parameters(), args); err != nil {
		terr := &ToolError{ToolName: call.Name, Message: err.Error(), Err: err}
		return toolOutcome{message: toolErrorMessage(call.CallID, "error: "+err.Error(), terr), err: terr}
	}

	result, err := invoke(ctx, tool, args)
	if err != nil {
		if errors.Is(err, ErrToolTransport) || ctx.Err() != nil {
			return toolOutcome{fatal: err}
		}
		msg := "error invoking tool"
		if config.IncludeDetailedErrors || errors.Is(err, ErrToolArguments) {
			msg = "error: " + err.Error()
		}
		return toolOutcome{message: toolErrorMessage(call.CallID, msg, err), err: err}
	}
	return toolOutcome{message: NewToolMessage(call.CallID, result)}
}

// toolErrorMessage builds the tool message fed back to the model for a failed
// call. The ErrorContent is kept for history and is not sent to the provider.
func toolErrorMessage(callID, result string, err error) Message {
	m := NewToolMessage(callID, result)
	m.Contents = append(m.Contents, &ErrorContent{Message: err.Error(), ErrorCode: "tool_error"})
	return m
}

// extractFunctionCalls finds all FunctionCallContent in a response's messages.
func extractFunctionCalls(resp *ChatResponse) []*FunctionCallContent {
	var calls []*FunctionCallContent
	for i := range resp.Messages {
		calls = append(calls, resp.Messages[i].FunctionCalls()...)
	}
	return calls
}
