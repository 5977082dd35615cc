package config

import "time"

const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"

	// DefaultInstructions is the system prompt given to the agent.
	DefaultInstructions = "You are a helpful Assistant tasked with performing tasks.\nYou can assist with github repo operations"

	defaultListen            = "localhost:8000"
	defaultRequestTimeout    = 180 * time.Second
	defaultMaxQuestionLength = 4000

	// Tool rounds per run; the model gets one more call to answer.
	defaultMaxToolRounds        = 10
	defaultMaxConsecutiveErrors = 3
	defaultSessionTTL           = 30 * time.Minute

	defaultModel           = "gpt-4o"
	defaultLLMTimeout      = 120 * time.Second
	defaultLLMMaxRetries   = 2
	defaultAzureAPIVersion = "2024-06-01"

	defaultGitHubBaseURL = "https://api.github.com"
	defaultGitHubTimeout = 10 * time.Second

	defaultMetricInterval = time.Minute
)

// NewDefaultConfig returns a Config with defaults for every field.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:            defaultListen,
			RequestTimeout:    defaultRequestTimeout,
			MaxQuestionLength: defaultMaxQuestionLength,
		},
		Agent: AgentConfig{
			Instructions:         DefaultInstructions,
			MaxToolRounds:        defaultMaxToolRounds,
			MaxConsecutiveErrors: defaultMaxConsecutiveErrors,
			SessionTTL:           defaultSessionTTL,
		},
		LLM: LLMConfig{
			Provider:   ProviderOpenAI,
			Model:      defaultModel,
			Timeout:    defaultLLMTimeout,
			MaxRetries: defaultLLMMaxRetries,
			Azure: AzureConfig{
				APIVersion: defaultAzureAPIVersion,
			},
		},
		GitHub: GitHubConfig{
			BaseURL: defaultGitHubBaseURL,
			Timeout: defaultGitHubTimeout,
		},
		Telemetry: TelemetryConfig{
			MetricInterval: defaultMetricInterval,
		},
	}
}
