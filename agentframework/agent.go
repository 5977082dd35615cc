// Copyright (c) Microsoft. All rights reserved.

package agentframework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Agent is the conversational dispatcher. It composes a [ChatClient] with a
// tool registry, middleware and session history.
//
// Create one with [NewAgent] and functional options:
//
//	agent, err := agentframework.NewAgent(client,
//	    agentframework.WithName("assistant"),
//	    agentframework.WithInstructions("You are helpful."),
//	    agentframework.WithTools(github.Tools(gh)...),
//	)
type Agent struct {
	id                  string
	name                string
	client              ChatClient
	instructions        string
	tools               []Tool
	registry            *Registry
	defaultOptions      *ChatOptions
	messageStoreFactory func() MessageStore
	agentMiddleware     []AgentMiddleware
	chatMiddleware      []ChatMiddleware
	functionMiddleware  []FunctionMiddleware
	invocationConfig    InvocationConfig
}

// AgentOption configures an [Agent] via [NewAgent].
type AgentOption func(*Agent)

// WithName sets the agent's display name.
func WithName(name string) AgentOption {
	return func(a *Agent) { a.name = name }
}

// WithInstructions sets the system instructions for the agent.
func WithInstructions(instructions string) AgentOption {
	return func(a *Agent) { a.instructions = instructions }
}

// WithTools adds tools to the agent's registry.
func WithTools(tools ...Tool) AgentOption {
	return func(a *Agent) { a.tools = append(a.tools, tools...) }
}

// WithDefaultOptions sets default [ChatOptions] for all requests.
func WithDefaultOptions(opts *ChatOptions) AgentOption {
	return func(a *Agent) { a.defaultOptions = opts }
}

// WithMessageStoreFactory sets a factory for the stores of sessions created
// by [Agent.NewSession].
func WithMessageStoreFactory(f func() MessageStore) AgentOption {
	return func(a *Agent) { a.messageStoreFactory = f }
}

// WithAgentMiddleware adds [AgentMiddleware] to the agent pipeline.
func WithAgentMiddleware(mws ...AgentMiddleware) AgentOption {
	return func(a *Agent) { a.agentMiddleware = append(a.agentMiddleware, mws...) }
}

// WithChatMiddleware adds [ChatMiddleware] around every model call.
func WithChatMiddleware(mws ...ChatMiddleware) AgentOption {
	return func(a *Agent) { a.chatMiddleware = append(a.chatMiddleware, mws...) }
}

// WithFunctionMiddleware adds [FunctionMiddleware] to the tool invocation pipeline.
func WithFunctionMiddleware(mws ...FunctionMiddleware) AgentOption {
	return func(a *Agent) { a.functionMiddleware = append(a.functionMiddleware, mws...) }
}

// WithInvocationConfig overrides the default [InvocationConfig] for the
// function calling loop.
func WithInvocationConfig(cfg InvocationConfig) AgentOption {
	return func(a *Agent) { a.invocationConfig = cfg }
}

// NewAgent creates an Agent with the given [ChatClient] and options.
// It fails if two tools share a name.
func NewAgent(client ChatClient, opts ...AgentOption) (*Agent, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: chat client is required", ErrAgent)
	}
	a := &Agent{
		id:               uuid.NewString(),
		client:           client,
		invocationConfig: DefaultInvocationConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}

	registry, err := NewRegistry(a.tools...)
	if err != nil {
		return nil, err
	}
	a.registry = registry
	return a, nil
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Tools returns the registered tools.
func (a *Agent) Tools() []Tool { return a.registry.Tools() }

// RunOption configures a single [Agent.Run] call.
type RunOption func(*runConfig)

type runConfig struct {
	session *Session
	tools   []Tool
	options *ChatOptions
}

// WithSession attaches a [Session] for multi-turn conversation.
func WithSession(s *Session) RunOption {
	return func(c *runConfig) { c.session = s }
}

// WithRunTools provides per-call tools. A tool with the same name as a
// registered one replaces it for this call.
func WithRunTools(tools ...Tool) RunOption {
	return func(c *runConfig) { c.tools = tools }
}

// WithRunOptions provides per-call [ChatOptions] overrides.
func WithRunOptions(opts *ChatOptions) RunOption {
	return func(c *runConfig) { c.options = opts }
}

// Run sends messages to the agent and returns the completed exchange.
//
// With a session, the stored history precedes messages and the whole
// exchange is appended to the session on success. Runs sharing a session
// wait for each other.
func (a *Agent) Run(ctx context.Context, messages []Message, opts ...RunOption) (*AgentResponse, error) {
	cfg := &runConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.session != nil {
		if err := cfg.session.lock(ctx); err != nil {
			return nil, err
		}
		defer cfg.session.unlock()
	}

	handler := chainAgentMiddleware(a.buildHandler(cfg), a.agentMiddleware...)
	return handler(ctx, &AgentRequest{
		Messages: messages,
		Session:  cfg.session,
		Options:  cfg.options,
	})
}

// NewSession creates a new [Session] using the agent's store factory.
func (a *Agent) NewSession(opts ...SessionOption) *Session {
	if a.messageStoreFactory != nil {
		opts = append([]SessionOption{WithSessionStore(a.messageStoreFactory())}, opts...)
	}
	return NewSession(opts...)
}

func (a *Agent) prepareChatOptions(override *ChatOptions, runTools []Tool) *ChatOptions {
	opts := MergeChatOptions(a.defaultOptions, override)

	tools := a.registry.Tools()
	if len(runTools) > 0 {
		tools = mergeTools(tools, runTools)
	}
	if len(tools) > 0 {
		opts.Tools = mergeTools(tools, opts.Tools)
	}

	if a.instructions != "" {
		if opts.Instructions != "" {
			opts.Instructions = a.instructions + "\n" + opts.Instructions
		} else {
			opts.Instructions = a.instructions
		}
	}
	return opts
}

func (a *Agent) prepareMessages(ctx context.Context, messages []Message, session *Session, opts *ChatOptions) ([]Message, error) {
	var all []Message
	if session != nil {
		history, err := session.Messages(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session history: %w", err)
		}
		all = append(all, history...)
	}
	all = append(all, messages...)
	return PrependInstructions(all, opts.Instructions), nil
}

func (a *Agent) buildHandler(cfg *runConfig) AgentHandler {
	chat := ChainChatMiddleware(a.client.Response, a.chatMiddleware...)

	return func(ctx context.Context, req *AgentRequest) (*AgentResponse, error) {
		chatOpts := a.prepareChatOptions(req.Options, cfg.tools)
		allMessages, err := a.prepareMessages(ctx, req.Messages, req.Session, chatOpts)
		if err != nil {
			return nil, err
		}

		slog.DebugContext(ctx, "agent run",
			"agent_id", a.id,
			"agent_name", a.name,
			"message_count", len(allMessages),
			"tool_count", len(chatOpts.Tools),
		)

		var result *loopResult
		if len(chatOpts.Tools) > 0 {
			result, err = invokeFunctions(ctx, chat, allMessages, chatOpts, a.invocationConfig, a.functionMiddleware)
		} else {
			var resp *ChatResponse
			if resp, err = chat(ctx, allMessages, chatOpts); err == nil {
				result = &loopResult{final: resp, produced: resp.Messages, usage: resp.Usage}
			}
		}
		if err != nil {
			if errors.Is(err, ErrExecution) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrExecution, err)
		}

		if req.Session != nil {
			if err := a.updateSession(ctx, req.Session, req.Messages, result.produced); err != nil {
				slog.WarnContext(ctx, "failed to update session", "session_id", req.Session.ID(), "error", err)
			}
		}

		return &AgentResponse{
			Messages:   result.produced,
			ResponseID: result.final.ResponseID,
			AgentID:    a.id,
			Usage:      result.usage,
			Raw:        result.final.Raw,
		}, nil
	}
}

func (a *Agent) updateSession(ctx context.Context, session *Session, request, produced []Message) error {
	msgs := make([]Message, 0, len(request)+len(produced))
	msgs = append(msgs, request...)
	msgs = append(msgs, produced...)
	if err := session.Store().AddMessages(ctx, msgs); err != nil {
		return fmt.Errorf("%w: persist messages: %w", ErrSession, err)
	}
	return nil
}
