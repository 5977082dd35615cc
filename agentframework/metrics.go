// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded for agent runs and tool calls.
type Metrics struct {
	runs         metric.Int64Counter
	runDuration  metric.Float64Histogram
	toolCalls    metric.Int64Counter
	toolDuration metric.Float64Histogram
	tokens       metric.Int64Counter
}

// NewMetrics creates the instruments on meter. A nil meter uses the global
// provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(TracerName)
	}

	var m Metrics
	var err, e error
	m.runs, e = meter.Int64Counter("agent.runs",
		metric.WithDescription("Agent runs by outcome"))
	err = errors.Join(err, e)
	m.runDuration, e = meter.Float64Histogram("agent.run.duration",
		metric.WithDescription("Agent run duration"), metric.WithUnit("s"))
	err = errors.Join(err, e)
	m.toolCalls, e = meter.Int64Counter("agent.tool.calls",
		metric.WithDescription("Tool invocations by tool and outcome"))
	err = errors.Join(err, e)
	m.toolDuration, e = meter.Float64Histogram("agent.tool.duration",
		metric.WithDescription("Tool invocation duration"), metric.WithUnit("s"))
	err = errors.Join(err, e)
	m.tokens, e = meter.Int64Counter("llm.tokens",
		metric.WithDescription("LLM tokens consumed by direction"))
	err = errors.Join(err, e)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AgentMiddleware records run counts, durations and token usage.
func (m *Metrics) AgentMiddleware() AgentMiddleware {
	return func(next AgentHandler) AgentHandler {
		return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			outcome := attribute.String("outcome", runOutcome(err))
			m.runs.Add(ctx, 1, metric.WithAttributes(outcome))
			m.runDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(outcome))
			if resp != nil {
				m.tokens.Add(ctx, int64(resp.Usage.InputTokens), metric.WithAttributes(attribute.String("direction", "input")))
				m.tokens.Add(ctx, int64(resp.Usage.OutputTokens), metric.WithAttributes(attribute.String("direction", "output")))
			}
			return resp, err
		}
	}
}

// FunctionMiddleware records tool call counts and durations.
func (m *Metrics) FunctionMiddleware() FunctionMiddleware {
	return func(next FunctionHandler) FunctionHandler {
		return func(ctx context.Context, tool Tool, args json.RawMessage) (any, error) {
			start := time.Now()
			result, err := next(ctx, tool, args)

			attrs := metric.WithAttributes(
				attribute.String("tool.name", tool.Name()),
				attribute.Bool("error", err != nil),
			)
			m.toolCalls.Add(ctx, 1, attrs)
			m.toolDuration.Record(ctx, time.Since(start).Seconds(), attrs)
			return result, err
		}
	}
}

func runOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotConverged):
		return "not_converged"
	case errors.Is(err, ErrToolTransport):
		return "tool_unavailable"
	case errors.Is(err, ErrService):
		return "llm_error"
	default:
		return "error"
	}
}
