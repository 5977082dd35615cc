// Copyright (c) Microsoft. All rights reserved.

package agentframework_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

func TestTracingMiddleware_RecordsRunAndToolSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tp.Tracer("test")

	client := scriptedClient(
		toolCallResponse(call("c1", "echo", `{}`)),
		textResponse("done"),
	)
	agent := mustAgent(t, client,
		af.WithTools(echoTool()),
		af.WithAgentMiddleware(af.TracingMiddleware(tracer)),
		af.WithFunctionMiddleware(af.ToolTracingMiddleware(tracer)),
	)

	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	toolSpan, runSpan := spans[0], spans[1]
	if toolSpan.Name() != "tool.call" || runSpan.Name() != "agent.run" {
		t.Fatalf("span names = %q, %q", toolSpan.Name(), runSpan.Name())
	}
	if toolSpan.Parent().SpanID() != runSpan.SpanContext().SpanID() {
		t.Error("tool span should be a child of the run span")
	}

	found := false
	for _, kv := range toolSpan.Attributes() {
		if kv.Key == "tool.name" && kv.Value.AsString() == "echo" {
			found = true
		}
	}
	if !found {
		t.Errorf("tool.name attribute missing: %v", toolSpan.Attributes())
	}
}

func TestTracingMiddleware_RecordsErrorStatus(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			return nil, errors.New("upstream down")
		},
	}
	agent := mustAgent(t, client, af.WithAgentMiddleware(af.TracingMiddleware(tp.Tracer("test"))))

	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}); err == nil {
		t.Fatal("expected error")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
}
