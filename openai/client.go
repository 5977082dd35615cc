// Copyright (c) Microsoft. All rights reserved.

// Package openai provides a [agentframework.ChatClient] backed by the
// Chat Completions API of OpenAI or Azure OpenAI.
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//
//	azure := openai.NewAzure(endpoint, deployment, "2024-06-01",
//	    openai.WithHeaders(map[string]string{"api-key": key}),
//	)
//
// Requests that fail with a transport error, a 429 or a 5xx are retried
// with exponential backoff. For testing, provide a mock http.Client via
// [WithHTTPClient] with a custom RoundTripper.
package openai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
)

// Client implements [agentframework.ChatClient] using the Chat Completions
// API. Use [New] or [NewAzure] to create one.
type Client struct {
	tp      transport
	model   string
	handler af.ChatHandler
}

// Verify interface compliance at compile time.
var _ af.ChatClient = (*Client)(nil)

// New creates an OpenAI [Client] with the given API key and options.
//
//	client := openai.New(os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
func New(apiKey string, opts ...Option) *Client {
	cfg := &clientConfig{maxRetries: -1}
	for _, o := range opts {
		o(cfg)
	}
	c := &Client{
		tp:    newHTTPTransport(apiKey, cfg),
		model: cfg.model,
	}
	c.handler = af.ChainChatMiddleware(c.coreResponse, cfg.chatMiddleware...)
	return c
}

// NewAzure creates a [Client] for an Azure OpenAI deployment. Requests go to
// {endpoint}/openai/deployments/{deployment}/chat/completions?api-version={apiVersion}.
//
// Authenticate with WithHeaders(map[string]string{"api-key": key}) or
// [WithAzureCredential]. The deployment name doubles as the model name.
func NewAzure(endpoint, deployment, apiVersion string, opts ...Option) *Client {
	base := strings.TrimRight(endpoint, "/") + "/openai/deployments/" + url.PathEscape(deployment)
	opts = append([]Option{
		WithBaseURL(base),
		WithAPIVersion(apiVersion),
		WithModel(deployment),
	}, opts...)
	return New("", opts...)
}

// Response sends a chat completion request and returns the complete response.
func (c *Client) Response(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	return c.handler(ctx, messages, opts)
}

// coreResponse is the base implementation called by the middleware chain.
func (c *Client) coreResponse(ctx context.Context, messages []af.Message, opts *af.ChatOptions) (*af.ChatResponse, error) {
	req := buildRequest(messages, opts, c.model)

	resp, err := c.tp.do(ctx, http.MethodPost, "/chat/completions", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", af.ErrService, err)
	}

	return decodeChatResponse(body)
}
