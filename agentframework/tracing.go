// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used when no tracer is supplied.
const TracerName = "github.com/sriaradhyula/simple-ai-agent/agentframework"

// TracingMiddleware returns an [AgentMiddleware] that wraps each run in an
// "agent.run" span. A nil tracer uses the global provider.
func TracingMiddleware(tracer trace.Tracer) AgentMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			ctx, span := tracer.Start(ctx, "agent.run", trace.WithSpanKind(trace.SpanKindInternal))
			defer span.End()

			if req.Session != nil {
				span.SetAttributes(attribute.String("agent.session_id", req.Session.ID()))
			}

			resp, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			span.SetAttributes(
				attribute.String("agent.id", resp.AgentID),
				attribute.Int("agent.tool_calls", len(resp.ToolCalls())),
				attribute.Int("llm.usage.input_tokens", resp.Usage.InputTokens),
				attribute.Int("llm.usage.output_tokens", resp.Usage.OutputTokens),
			)
			return resp, nil
		}
	}
}

// ToolTracingMiddleware returns a [FunctionMiddleware] that records a
// "tool.call" span per invocation.
func ToolTracingMiddleware(tracer trace.Tracer) FunctionMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			ctx, span := tracer.Start(ctx, "tool.call",
				trace.WithAttributes(attribute.String("tool.name", tool.Name())),
			)
			defer span.End()

			result, err := next(ctx, tool, args)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return result, err
		}
	}
}
