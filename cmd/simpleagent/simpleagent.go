// Package simpleagentcmder provides the simple-ai-agent cobra commands.
package simpleagentcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
	"github.com/sriaradhyula/simple-ai-agent/config"
	"github.com/sriaradhyula/simple-ai-agent/github"
	"github.com/sriaradhyula/simple-ai-agent/logger"
	"github.com/sriaradhyula/simple-ai-agent/provider"
	"github.com/sriaradhyula/simple-ai-agent/server"
	"github.com/sriaradhyula/simple-ai-agent/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

const simpleAgentLongDesc string = `simple-ai-agent answers natural-language questions about GitHub
repositories with an LLM that can look up repository descriptions and topics.

Run the HTTP service or ask a single question:
  simple-ai-agent serve              Serve POST /question
  simple-ai-agent ask <question>     Answer one question and exit

Configuration is read from config.yaml, SIMPLE_AGENT_* environment
variables, a .env file and the flags below.`

const simpleAgentShortDesc string = "Question-answering agent for GitHub repositories"

// boundFlags are the registry flags resolved through viper.
var boundFlags = []string{
	config.FlagListen,
	config.FlagDebug,
	config.FlagJSONLog,
	config.FlagProvider,
	config.FlagModel,
}

type simpleAgentCommander struct {
	configFile string

	cfg       *config.Config
	logger    *slog.Logger
	logFile   *os.File
	telemetry *telemetry.Providers
	traceFile *os.File
}

// NewSimpleAgentCmd returns the root command.
func NewSimpleAgentCmd() *cobra.Command {
	cmder := &simpleAgentCommander{}

	cmd := &cobra.Command{
		Use:           "simple-ai-agent",
		Short:         simpleAgentShortDesc,
		Long:          simpleAgentLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.load(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return cmder.close()
		},
	}

	cmd.PersistentFlags().StringVarP(&cmder.configFile, "config", "c", "", "Path to a config file (default: ./config.yaml)")
	config.AddBoolFlag(cmd, config.Flags, config.FlagDebug, true)
	config.AddBoolFlag(cmd, config.Flags, config.FlagJSONLog, true)
	config.AddStringFlag(cmd, config.Flags, config.FlagProvider, true)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, true)

	cmd.AddCommand(newServeCmd(cmder))
	cmd.AddCommand(newAskCmd(cmder))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load resolves the configuration and builds the logger.
func (c *simpleAgentCommander) load(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	v, err := config.InitViper(c.configFile)
	if err != nil {
		return err
	}
	if err := config.BindRegisteredFlags(v, cmd, config.Flags, boundFlags...); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logger.New(
		logger.WithDebug(cfg.Log.Debug),
		logger.WithJSON(cfg.Log.JSON),
		logger.WithPretty(cfg.Log.Pretty),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		c.logFile = f
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(cfg.Log.Debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}
	slog.SetDefault(c.logger)

	if cfg.Telemetry.Enabled {
		if err := c.startTelemetry(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	return nil
}

// startTelemetry installs the otel providers. Output goes to telemetry.file
// when set, otherwise to w.
func (c *simpleAgentCommander) startTelemetry(w io.Writer) error {
	if path := c.cfg.Telemetry.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening telemetry file: %w", err)
		}
		c.traceFile = f
		w = f
	}

	p, err := telemetry.Setup(c.cfg.Telemetry, w)
	if err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	c.telemetry = p
	return nil
}

// close flushes telemetry and releases the output files.
func (c *simpleAgentCommander) close() error {
	var errs []error
	if c.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		errs = append(errs, c.telemetry.Shutdown(ctx))
		cancel()
		c.telemetry = nil
	}
	if c.traceFile != nil {
		errs = append(errs, c.traceFile.Close())
		c.traceFile = nil
	}
	if c.logFile != nil {
		errs = append(errs, c.logFile.Close())
		c.logFile = nil
	}
	return errors.Join(errs...)
}

// newAgent wires the chat client and the GitHub tools into the service agent.
func (c *simpleAgentCommander) newAgent() (*af.Agent, error) {
	client, err := provider.NewChatClient(c.cfg.LLM, provider.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("creating chat client: %w", err)
	}

	ghOpts := []github.Option{
		github.WithToken(c.cfg.GitHub.Token),
		github.WithTimeout(c.cfg.GitHub.Timeout),
		github.WithTopicsPreviewAccept(c.cfg.GitHub.TopicsPreviewAccept),
		github.WithLogger(c.logger),
	}
	if c.cfg.GitHub.BaseURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(c.cfg.GitHub.BaseURL))
	}
	gh := github.NewClient(ghOpts...)

	return server.NewAgent(c.cfg.Agent, client, provider.ChatOptions(c.cfg.LLM), github.Tools(gh), c.logger)
}
