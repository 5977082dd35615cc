package simpleagentcmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

const askLongDesc string = `Answer a single question and exit.

The words after "ask" form the question:
  simple-ai-agent ask get repo description for simple-ai-agent repo in sriaradhyula org

Use --json to print the answer with the tools called, the tokens used and
every message of the exchange.`

const askShortDesc string = "Answer one question"

// askResult is the --json output of the ask command.
type askResult struct {
	Answer       string       `json:"answer"`
	ToolCalls    []string     `json:"tool_calls"`
	InputTokens  int          `json:"input_tokens"`
	OutputTokens int          `json:"output_tokens"`
	Messages     []af.Message `json:"messages"`
}

type askCommander struct {
	root    *simpleAgentCommander
	jsonOut bool
}

func newAskCmd(root *simpleAgentCommander) *cobra.Command {
	cmder := &askCommander{root: root}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print the result as JSON")

	return cmd
}

func (c *askCommander) run(ctx context.Context, out io.Writer, question string) error {
	cfg := c.root.cfg

	question = strings.TrimSpace(question)
	if question == "" {
		return errors.New("question is required")
	}
	if n := len([]rune(question)); cfg.Server.MaxQuestionLength > 0 && n > cfg.Server.MaxQuestionLength {
		return fmt.Errorf("question is %d characters long; the limit is %d", n, cfg.Server.MaxQuestionLength)
	}

	agent, err := c.root.newAgent()
	if err != nil {
		return err
	}

	if cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RequestTimeout)
		defer cancel()
	}

	resp, err := agent.Run(ctx, []af.Message{af.NewUserMessage(question)}, af.WithSession(agent.NewSession()))
	if err != nil {
		return err
	}

	if !c.jsonOut {
		_, err = fmt.Fprintln(out, resp.Text())
		return err
	}

	result := askResult{
		Answer:       resp.Text(),
		ToolCalls:    resp.ToolCalls(),
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Messages:     resp.Messages,
	}
	if result.ToolCalls == nil {
		result.ToolCalls = []string{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
