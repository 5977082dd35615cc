package main

import (
	"fmt"
	"os"

	simpleagentcmder "github.com/sriaradhyula/simple-ai-agent/cmd/simpleagent"
)

func main() {
	cmd := simpleagentcmder.NewSimpleAgentCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
