// Copyright (c) Microsoft. All rights reserved.

package agentframework_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

func TestAgent_BasicRun(t *testing.T) {
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			return &af.ChatResponse{
				Messages:   []af.Message{af.NewAssistantMessage("I'm here to help!")},
				ResponseID: "resp-1",
				Usage:      af.UsageDetails{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
			}, nil
		},
	}

	agent := mustAgent(t, client,
		af.WithName("test-agent"),
		af.WithInstructions("You are helpful."),
	)

	if agent.Name() != "test-agent" {
		t.Errorf("Name = %q", agent.Name())
	}
	if agent.ID() == "" {
		t.Error("ID should not be empty")
	}

	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if resp.Text() != "I'm here to help!" {
		t.Errorf("Text = %q", resp.Text())
	}
	if resp.AgentID != agent.ID() {
		t.Errorf("AgentID = %q, want %q", resp.AgentID, agent.ID())
	}
	if resp.ResponseID != "resp-1" {
		t.Errorf("ResponseID = %q", resp.ResponseID)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d", resp.Usage.TotalTokens)
	}
}

func TestAgent_RequiresClient(t *testing.T) {
	_, err := af.NewAgent(nil)
	if !errors.Is(err, af.ErrAgent) {
		t.Errorf("err = %v, want ErrAgent", err)
	}
}

func TestAgent_DuplicateToolNames(t *testing.T) {
	_, err := af.NewAgent(replyWith("ok"), af.WithTools(echoTool(), echoTool()))
	if !errors.Is(err, af.ErrTool) {
		t.Errorf("err = %v, want ErrTool", err)
	}
}

func TestAgent_PrependsInstructions(t *testing.T) {
	client := scriptedClient(textResponse("ok"))
	agent := mustAgent(t, client, af.WithInstructions("You can assist with github repo operations"))

	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sent := client.seen[0]
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0].Role != af.RoleSystem || sent[0].Text() != "You can assist with github repo operations" {
		t.Errorf("first message = %s %q", sent[0].Role, sent[0].Text())
	}
	if sent[1].Role != af.RoleUser {
		t.Errorf("second role = %s", sent[1].Role)
	}
}

func TestAgent_WithToolInvocation(t *testing.T) {
	tool := af.NewTypedTool("add", "Adds two numbers",
		func(ctx context.Context, args struct {
			A int `json:"a" jsonschema:"required"`
			B int `json:"b" jsonschema:"required"`
		}) (any, error) {
			return args.A + args.B, nil
		},
	)

	client := scriptedClient(
		toolCallResponse(call("call-1", "add", `{"a":3,"b":4}`)),
		textResponse("The answer is 7."),
	)

	agent := mustAgent(t, client, af.WithTools(tool))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("what is 3+4?")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.calls != 2 {
		t.Errorf("client called %d times, want 2", client.calls)
	}
	if resp.Text() != "The answer is 7." {
		t.Errorf("Text = %q", resp.Text())
	}

	// assistant tool request, tool result, final answer
	if len(resp.Messages) != 3 {
		t.Fatalf("Messages = %d, want 3", len(resp.Messages))
	}
	fr, ok := resp.Messages[1].Contents[0].(*af.FunctionResultContent)
	if !ok {
		t.Fatalf("Messages[1] content = %T", resp.Messages[1].Contents[0])
	}
	if fr.CallID != "call-1" || fr.Result != 7 {
		t.Errorf("result = %+v", fr)
	}
	if names := resp.ToolCalls(); len(names) != 1 || names[0] != "add" {
		t.Errorf("ToolCalls = %v", names)
	}
}

func TestAgent_UsageAccumulatesAcrossRounds(t *testing.T) {
	first := toolCallResponse(call("c1", "echo", `{}`))
	first.Usage = af.UsageDetails{InputTokens: 10, OutputTokens: 2, TotalTokens: 12}
	second := textResponse("done")
	second.Usage = af.UsageDetails{InputTokens: 20, OutputTokens: 3, TotalTokens: 23}

	agent := mustAgent(t, scriptedClient(first, second), af.WithTools(echoTool()))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Usage.TotalTokens != 35 {
		t.Errorf("TotalTokens = %d, want 35", resp.Usage.TotalTokens)
	}
}

func TestAgent_ClientErrorIsExecution(t *testing.T) {
	svcErr := &af.ServiceError{StatusCode: 503, Message: "unavailable", Err: af.ErrService}
	client := &mockClient{
		responseFn: func(ctx context.Context, msgs []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
			return nil, svcErr
		},
	}

	agent := mustAgent(t, client)
	_, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")})
	if !errors.Is(err, af.ErrExecution) {
		t.Errorf("err = %v, want ErrExecution", err)
	}
	var extracted *af.ServiceError
	if !errors.As(err, &extracted) || extracted.StatusCode != 503 {
		t.Errorf("ServiceError not preserved in chain: %v", err)
	}
}

func TestAgent_WithSession(t *testing.T) {
	client := scriptedClient(
		toolCallResponse(call("c1", "echo", `{}`)),
		textResponse("first"),
		textResponse("second"),
	)

	agent := mustAgent(t, client, af.WithInstructions("Be helpful"), af.WithTools(echoTool()))
	session := agent.NewSession()

	if _, err := agent.Run(context.Background(),
		[]af.Message{af.NewUserMessage("hello")},
		af.WithSession(session),
	); err != nil {
		t.Fatalf("Run 1: %v", err)
	}

	if _, err := agent.Run(context.Background(),
		[]af.Message{af.NewUserMessage("what did I say?")},
		af.WithSession(session),
	); err != nil {
		t.Fatalf("Run 2: %v", err)
	}

	// The third model call carries the system prompt, the whole first
	// exchange, and the new question.
	third := client.seen[2]
	if len(third) != 6 {
		t.Fatalf("third call sent %d messages, want 6", len(third))
	}
	if third[0].Role != af.RoleSystem || third[1].Text() != "hello" || third[5].Text() != "what did I say?" {
		t.Errorf("unexpected history: %+v", third)
	}

	msgs, err := session.Messages(context.Background())
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	// user, tool request, tool result, answer, user, answer
	if len(msgs) != 6 {
		t.Errorf("session has %d messages, want 6", len(msgs))
	}
}

func TestAgent_NewSessionUsesStoreFactory(t *testing.T) {
	store := af.NewInMemoryStore()
	agent := mustAgent(t, replyWith("ok"),
		af.WithMessageStoreFactory(func() af.MessageStore { return store }),
	)

	s1 := agent.NewSession()
	s2 := agent.NewSession()
	if s1.ID() == s2.ID() {
		t.Error("sessions should have distinct IDs")
	}

	if _, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}, af.WithSession(s1)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("store has %d messages, want 2", store.Len())
	}
}

func TestAgent_RunToolsOverrideRegisteredTool(t *testing.T) {
	override := af.NewTool("echo", "Echoes louder", nil,
		func(ctx context.Context, _ json.RawMessage) (any, error) { return "ECHOED", nil },
	)
	client := scriptedClient(
		toolCallResponse(call("c1", "echo", `{}`)),
		textResponse("done"),
	)

	agent := mustAgent(t, client, af.WithTools(echoTool()))
	resp, err := agent.Run(context.Background(), []af.Message{af.NewUserMessage("hi")}, af.WithRunTools(override))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	fr := resp.Messages[1].Contents[0].(*af.FunctionResultContent)
	if fr.Result != "ECHOED" {
		t.Errorf("Result = %v, want ECHOED", fr.Result)
	}
}
