// Copyright (c) Microsoft. All rights reserved.

// Package agentframework is the agent runtime behind simple-ai-agent. It
// provides messages and content, a tool registry with JSON Schema argument
// validation, a bounded tool-calling loop, sessions, and middleware.
//
// # Quick Start
//
// Create a ChatClient (e.g., from the openai package) and build an Agent:
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//
//	agent, err := agentframework.NewAgent(client,
//	    agentframework.WithInstructions("You are helpful."),
//	    agentframework.WithTools(github.Tools(gh)...),
//	)
//
//	resp, err := agent.Run(ctx, []agentframework.Message{
//	    agentframework.NewUserMessage("What is the description of simple-ai-agent?"),
//	})
//
// # The tool loop
//
// A run alternates between asking the model for a response and dispatching
// the tools it requests. Calls requested in the same response run
// concurrently and their results are appended in call order. The loop stops
// when the model answers without tool calls. If the model still asks for
// tools after [InvocationConfig.MaxIterations] tool rounds, the run fails
// with [ErrNotConverged] without running them.
//
// Tool failures come in two kinds. Ordinary failures, including arguments
// that do not match the tool's schema, are reported back to the model as
// tool messages. Failures wrapping [ErrToolTransport] abort the run.
//
// # Sessions
//
// A [Session] carries history across runs. Runs sharing a session are
// serialized:
//
//	session := agent.NewSession()
//	resp1, _ := agent.Run(ctx, msgs1, agentframework.WithSession(session))
//	resp2, _ := agent.Run(ctx, msgs2, agentframework.WithSession(session))
package agentframework
