// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// LoggingMiddleware logs the start and the outcome of every run. A nil
// logger uses slog.Default().
func LoggingMiddleware(logger *slog.Logger) AgentMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			log := logger
			if req.Session != nil {
				log = log.With("session_id", req.Session.ID())
			}
			log.InfoContext(ctx, "agent run started", "message_count", len(req.Messages))

			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				log.ErrorContext(ctx, "agent run failed",
					"outcome", runOutcome(err),
					"duration", time.Since(start),
					"error", err,
				)
				return nil, err
			}

			tools := resp.ToolCalls()
			log.InfoContext(ctx, "agent run completed",
				"outcome", runOutcome(nil),
				"duration", time.Since(start),
				"tool_calls", len(tools),
				"tools", strings.Join(tools, ","),
				"input_tokens", resp.Usage.InputTokens,
				"output_tokens", resp.Usage.OutputTokens,
			)
			return resp, nil
		}
	}
}

// ToolLoggingMiddleware logs each tool invocation. Arguments are logged at
// debug level only.
func ToolLoggingMiddleware(logger *slog.Logger) FunctionMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			log := logger.With("tool", tool.Name())
			log.DebugContext(ctx, "tool call requested", "args", string(args))

			start := time.Now()
			result, err := next(ctx, tool, args)
			if err != nil {
				log.WarnContext(ctx, "tool call failed", "duration", time.Since(start), "error", err)
				return result, err
			}
			log.InfoContext(ctx, "tool call completed", "duration", time.Since(start))
			return result, nil
		}
	}
}
