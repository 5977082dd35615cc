package github

import (
	"context"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

const (
	DescriptionToolName = "get_github_repo_description"
	TopicsToolName      = "get_github_repo_topics"
)

// RepoArgs are the arguments shared by both repository tools.
type RepoArgs struct {
	RepoName string `json:"repo_name" jsonschema:"description=Name of the GitHub repository,required"`
	OrgName  string `json:"org_name" jsonschema:"description=GitHub organization or user that owns the repository,required"`
}

// Tools returns the agent tools backed by c.
func Tools(c *Client) []af.Tool {
	return []af.Tool{
		af.NewTypedTool(DescriptionToolName,
			"Fetches the description of a GitHub repository given the repo name and the org name.",
			func(ctx context.Context, args RepoArgs) (any, error) {
				return c.RepoDescription(ctx, args.RepoName, args.OrgName)
			},
		),
		af.NewTypedTool(TopicsToolName,
			"Fetches the topics of a GitHub repository given the repo name and the org name.",
			func(ctx context.Context, args RepoArgs) (any, error) {
				return c.RepoTopics(ctx, args.RepoName, args.OrgName)
			},
		),
	}
}
