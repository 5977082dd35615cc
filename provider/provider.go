// Package provider builds the chat client selected by configuration.
package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
	"github.com/sriaradhyula/simple-ai-agent/config"
	"github.com/sriaradhyula/simple-ai-agent/openai"
)

// ErrMissingCredentials is returned when the OpenAI provider has neither an
// API key nor a custom base URL.
var ErrMissingCredentials = errors.New("missing LLM credentials")

type options struct {
	httpClient *http.Client
	credential azcore.TokenCredential
	logger     *slog.Logger
	middleware []af.ChatMiddleware
}

// Option customizes the client built by [NewChatClient].
type Option func(*options)

// WithHTTPClient replaces the http.Client built from the configured timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCredential sets the Azure credential used when no Azure API key is
// configured. Defaults to azidentity.DefaultAzureCredential.
func WithCredential(cred azcore.TokenCredential) Option {
	return func(o *options) { o.credential = cred }
}

// WithLogger sets the logger used to report the selected provider.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithChatMiddleware adds middleware to the client's chat pipeline.
func WithChatMiddleware(mw ...af.ChatMiddleware) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// NewChatClient returns the chat client for cfg.Provider.
func NewChatClient(cfg config.LLMConfig, opts ...Option) (*openai.Client, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	common := []openai.Option{
		openai.WithHTTPClient(o.httpClient),
		openai.WithMaxRetries(cfg.MaxRetries),
		openai.WithChatMiddleware(o.middleware...),
	}

	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY or OPENAI_BASE_URL", ErrMissingCredentials)
		}
		if cfg.BaseURL != "" {
			common = append(common, openai.WithBaseURL(cfg.BaseURL))
		}
		o.logger.Info("using OpenAI chat completions", "model", cfg.Model)
		return openai.New(cfg.APIKey, append(common, openai.WithModel(cfg.Model))...), nil

	case config.ProviderAzureOpenAI:
		az := cfg.Azure
		if az.APIKey != "" {
			o.logger.Info("using Azure OpenAI with API key authentication",
				"endpoint", az.Endpoint, "deployment", az.Deployment)
			common = append(common, openai.WithHeaders(map[string]string{"api-key": az.APIKey}))
			return openai.NewAzure(az.Endpoint, az.Deployment, az.APIVersion, common...), nil
		}

		cred := o.credential
		if cred == nil {
			c, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("create Azure credential: %w", err)
			}
			cred = c
		}
		o.logger.Info("using Azure OpenAI with Azure AD authentication",
			"endpoint", az.Endpoint, "deployment", az.Deployment)
		common = append(common, openai.WithAzureCredential(cred))
		return openai.NewAzure(az.Endpoint, az.Deployment, az.APIVersion, common...), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

// ChatOptions returns the per-request defaults derived from cfg.
func ChatOptions(cfg config.LLMConfig) *af.ChatOptions {
	temp := cfg.Temperature
	return &af.ChatOptions{Temperature: &temp}
}
