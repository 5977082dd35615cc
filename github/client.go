// Package github fetches repository metadata from the GitHub REST API and
// exposes it to agents as tools.
//
// Upstream failures with an HTTP status are returned as readable strings so
// the model can react to them. Only transport failures are returned as errors.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTimeout = 10 * time.Second

	apiVersion    = "2022-11-28"
	acceptJSON    = "application/vnd.github+json"
	acceptPreview = "application/vnd.github.mercy-preview+json"
	userAgent     = "simple-ai-agent"
)

// Client queries the GitHub repositories API.
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	topicsPreview bool
	logger        *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at a different API root, such as a
// GitHub Enterprise server or a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken sets the token sent as a Bearer Authorization header.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithTopicsPreviewAccept sends the legacy mercy-preview media type on
// topics requests.
func WithTopicsPreviewAccept(enabled bool) Option {
	return func(c *Client) { c.topicsPreview = enabled }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a GitHub client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type repoResponse struct {
	Description *string `json:"description"`
}

type topicsResponse struct {
	Names []string `json:"names"`
}

// RepoDescription returns the description of org/repo.
func (c *Client) RepoDescription(ctx context.Context, repoName, orgName string) (string, error) {
	status, body, err := c.get(ctx, "get_github_repo_description", repoPath(orgName, repoName), acceptJSON)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return fmt.Sprintf("Failed to fetch description for %s in %s. Status code: %d", repoName, orgName, status), nil
	}

	var repo repoResponse
	if err := json.Unmarshal(body, &repo); err != nil {
		return "", decodeError("get_github_repo_description", err)
	}
	if repo.Description == nil || *repo.Description == "" {
		return fmt.Sprintf("No description available for %s in %s", repoName, orgName), nil
	}
	return *repo.Description, nil
}

// RepoTopics returns the topics of org/repo joined with ", ".
func (c *Client) RepoTopics(ctx context.Context, repoName, orgName string) (string, error) {
	accept := acceptJSON
	if c.topicsPreview {
		accept = acceptPreview
	}
	status, body, err := c.get(ctx, "get_github_repo_topics", repoPath(orgName, repoName)+"/topics", accept)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return fmt.Sprintf("Failed to fetch topics for %s in %s. Status code: %d", repoName, orgName, status), nil
	}

	var topics topicsResponse
	if err := json.Unmarshal(body, &topics); err != nil {
		return "", decodeError("get_github_repo_topics", err)
	}
	if len(topics.Names) == 0 {
		return fmt.Sprintf("No topics available for %s in %s", repoName, orgName), nil
	}
	return strings.Join(topics.Names, ", "), nil
}

// get sends one GET request and returns the status and body.
func (c *Client) get(ctx context.Context, toolName, path, accept string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, &af.ToolError{ToolName: toolName, Message: "create request: " + err.Error(), Err: af.ErrToolTransport}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &af.ToolError{ToolName: toolName, Message: "request failed: " + err.Error(), Err: fmt.Errorf("%w: %w", af.ErrToolTransport, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &af.ToolError{ToolName: toolName, Message: "read response: " + err.Error(), Err: fmt.Errorf("%w: %w", af.ErrToolTransport, err)}
	}

	c.logger.DebugContext(ctx, "github request", "path", path, "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

func repoPath(org, repo string) string {
	return "/repos/" + url.PathEscape(org) + "/" + url.PathEscape(repo)
}

func decodeError(toolName string, err error) error {
	return &af.ToolError{ToolName: toolName, Message: "decode response: " + err.Error(), Err: fmt.Errorf("%w: %w", af.ErrToolTransport, err)}
}
