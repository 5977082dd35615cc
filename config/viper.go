package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every config key in the environment, e.g.
// SIMPLE_AGENT_SERVER_LISTEN for server.listen.
const EnvPrefix = "SIMPLE_AGENT"

// legacyEnv maps config keys to the unprefixed variable names the service
// has always read.
var legacyEnv = map[string]string{
	"github.token":          "GITHUB_TOKEN",
	"llm.provider":          "LLM_MODEL_NAME",
	"llm.model":             "OPENAI_MODEL",
	"llm.api_key":           "OPENAI_API_KEY",
	"llm.base_url":          "OPENAI_BASE_URL",
	"llm.azure.endpoint":    "AZURE_OPENAI_ENDPOINT",
	"llm.azure.deployment":  "AZURE_OPENAI_DEPLOYMENT",
	"llm.azure.api_version": "AZURE_OPENAI_API_VERSION",
	"llm.azure.api_key":     "AZURE_OPENAI_API_KEY",
}

// InitViper creates a configured *viper.Viper.
//
// Precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. SIMPLE_AGENT_* environment variables
//  3. Legacy environment variables (GITHUB_TOKEN, OPENAI_API_KEY, ...)
//  4. The config file
//  5. Defaults from NewDefaultConfig()
//
// An empty configFile searches for config.yaml in the working directory and
// in $HOME/.simple-ai-agent; a missing file is not an error in that case.
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.simple-ai-agent")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", legacy, err)
		}
	}

	return v, nil
}

// FromViper decodes the settings held by v into a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	return &cfg, nil
}

// Load reads the configuration from defaults, configFile and the
// environment, and validates it.
func Load(configFile string) (*Config, error) {
	v, err := InitViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setViperDefaults registers NewDefaultConfig() under dotted keys.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("server.max_question_length", d.Server.MaxQuestionLength)

	v.SetDefault("agent.instructions", d.Agent.Instructions)
	v.SetDefault("agent.max_tool_rounds", d.Agent.MaxToolRounds)
	v.SetDefault("agent.max_consecutive_errors", d.Agent.MaxConsecutiveErrors)
	v.SetDefault("agent.session_ttl", d.Agent.SessionTTL)
	v.SetDefault("agent.shared_session", d.Agent.SharedSession)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("llm.azure.endpoint", d.LLM.Azure.Endpoint)
	v.SetDefault("llm.azure.deployment", d.LLM.Azure.Deployment)
	v.SetDefault("llm.azure.api_version", d.LLM.Azure.APIVersion)
	v.SetDefault("llm.azure.api_key", d.LLM.Azure.APIKey)

	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.base_url", d.GitHub.BaseURL)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("github.topics_preview_accept", d.GitHub.TopicsPreviewAccept)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.pretty", d.Log.Pretty)
	v.SetDefault("log.file", d.Log.File)

	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.file", d.Telemetry.File)
	v.SetDefault("telemetry.metric_interval", d.Telemetry.MetricInterval)
}
