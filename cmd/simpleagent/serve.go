package simpleagentcmder

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sriaradhyula/simple-ai-agent/config"
	"github.com/sriaradhyula/simple-ai-agent/server"
)

const serveLongDesc string = `Run the HTTP service.

Endpoints:
  POST /question                 {"question": "...", "session_id": "..."}
  GET  /sessions/{id}/messages   Stored history of a session
  GET  /health                   Liveness check

The server shuts down gracefully on SIGINT or SIGTERM.`

const serveShortDesc string = "Run the HTTP service"

func newServeCmd(root *simpleAgentCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.serve(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, false)

	return cmd
}

func (c *simpleAgentCommander) serve(ctx context.Context) error {
	agent, err := c.newAgent()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.ConfigFrom(c.cfg), agent, c.logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	c.logger.Info("server stopped")
	return nil
}
