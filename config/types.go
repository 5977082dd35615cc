package config

import "time"

// Config is the resolved configuration of the agent service.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Agent     AgentConfig     `mapstructure:"agent"`
	LLM       LLMConfig       `mapstructure:"llm"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen            string        `mapstructure:"listen"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	MaxQuestionLength int           `mapstructure:"max_question_length"`
}

// AgentConfig holds the tool loop and session settings.
type AgentConfig struct {
	Instructions         string        `mapstructure:"instructions"`
	MaxToolRounds        int           `mapstructure:"max_tool_rounds"`
	MaxConsecutiveErrors int           `mapstructure:"max_consecutive_errors"`
	SessionTTL           time.Duration `mapstructure:"session_ttl"`
	SharedSession        bool          `mapstructure:"shared_session"`
}

// LLMConfig selects and configures the chat completion provider.
type LLMConfig struct {
	// Provider is "openai" or "azure_openai".
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Azure       AzureConfig   `mapstructure:"azure"`
}

// AzureConfig holds Azure OpenAI deployment settings. Without an APIKey the
// client authenticates with the default Azure credential chain.
type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Deployment string `mapstructure:"deployment"`
	APIVersion string `mapstructure:"api_version"`
	APIKey     string `mapstructure:"api_key"`
}

// GitHubConfig configures the GitHub API client.
type GitHubConfig struct {
	Token               string        `mapstructure:"token"`
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	TopicsPreviewAccept bool          `mapstructure:"topics_preview_accept"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Debug  bool `mapstructure:"debug"`
	JSON   bool `mapstructure:"json"`
	Pretty bool `mapstructure:"pretty"`
	// File, when set, also appends JSON logs to this path.
	File string `mapstructure:"file"`
}

// TelemetryConfig controls the OpenTelemetry trace and metric export.
// Spans and metrics are written as JSON lines to File, or to stderr when
// File is empty.
type TelemetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	File           string        `mapstructure:"file"`
	MetricInterval time.Duration `mapstructure:"metric_interval"`
}
