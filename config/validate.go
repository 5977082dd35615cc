package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that the provider settings are complete and the limits
// are positive.
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.Model == "" {
			errs = append(errs, errors.New("llm.model (OPENAI_MODEL) is required for the openai provider"))
		}
	case ProviderAzureOpenAI:
		if c.LLM.Azure.Endpoint == "" {
			errs = append(errs, errors.New("llm.azure.endpoint (AZURE_OPENAI_ENDPOINT) is required for the azure_openai provider"))
		}
		if c.LLM.Azure.Deployment == "" {
			errs = append(errs, errors.New("llm.azure.deployment (AZURE_OPENAI_DEPLOYMENT) is required for the azure_openai provider"))
		}
		if c.LLM.Azure.APIVersion == "" {
			errs = append(errs, errors.New("llm.azure.api_version (AZURE_OPENAI_API_VERSION) is required for the azure_openai provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.provider (LLM_MODEL_NAME) must be %q or %q, got %q",
			ProviderOpenAI, ProviderAzureOpenAI, c.LLM.Provider))
	}

	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries must not be negative"))
	}
	if c.Agent.MaxToolRounds <= 0 {
		errs = append(errs, errors.New("agent.max_tool_rounds must be positive"))
	}
	if c.Agent.SessionTTL <= 0 {
		errs = append(errs, errors.New("agent.session_ttl must be positive"))
	}
	if c.Server.MaxQuestionLength <= 0 {
		errs = append(errs, errors.New("server.max_question_length must be positive"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if c.Telemetry.Enabled && c.Telemetry.MetricInterval <= 0 {
		errs = append(errs, errors.New("telemetry.metric_interval must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
