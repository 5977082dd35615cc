package server

import (
	"fmt"
	"log/slog"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
	"github.com/sriaradhyula/simple-ai-agent/config"
)

// AgentName is the name the service agent runs under.
const AgentName = "simple-ai-agent"

// NewAgent assembles the service agent: instructions, tools, the bounded
// tool loop and the logging, tracing and metrics middleware.
func NewAgent(cfg config.AgentConfig, client af.ChatClient, defaults *af.ChatOptions, tools []af.Tool, logger *slog.Logger) (*af.Agent, error) {
	metrics, err := af.NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("create agent metrics: %w", err)
	}

	return af.NewAgent(client,
		af.WithName(AgentName),
		af.WithInstructions(cfg.Instructions),
		af.WithTools(tools...),
		af.WithDefaultOptions(defaults),
		af.WithInvocationConfig(af.InvocationConfig{
			MaxIterations:        cfg.MaxToolRounds,
			MaxConsecutiveErrors: cfg.MaxConsecutiveErrors,
		}),
		af.WithAgentMiddleware(
			af.LoggingMiddleware(logger),
			af.TracingMiddleware(nil),
			metrics.AgentMiddleware(),
		),
		af.WithFunctionMiddleware(
			af.ToolLoggingMiddleware(logger),
			af.ToolTracingMiddleware(nil),
			metrics.FunctionMiddleware(),
		),
	)
}

// ConfigFrom derives the server settings from the service configuration.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		ListenAddr:        cfg.Server.Listen,
		RequestTimeout:    cfg.Server.RequestTimeout,
		MaxQuestionLength: cfg.Server.MaxQuestionLength,
		SessionTTL:        cfg.Agent.SessionTTL,
		SharedSession:     cfg.Agent.SharedSession,
	}
}
