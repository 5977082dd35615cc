package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/sriaradhyula/simple-ai-agent/config"
)

// setEnv sets an environment variable for the current spec only.
func setEnv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

// clearEnv unsets an environment variable for the current spec only.
func clearEnv(key string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Unsetenv(key)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}

var _ = Describe("Config", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		for _, k := range []string{
			"GITHUB_TOKEN", "LLM_MODEL_NAME", "OPENAI_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
			"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION", "AZURE_OPENAI_API_KEY",
			"SIMPLE_AGENT_SERVER_LISTEN", "SIMPLE_AGENT_LLM_MODEL", "SIMPLE_AGENT_AGENT_MAX_TOOL_ROUNDS",
		} {
			clearEnv(k)
		}
	})

	writeConfig := func(body string) string {
		path := filepath.Join(tmpDir, "config.yaml")
		Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
		return path
	}

	Describe("defaults", func() {
		It("applies defaults when no file is present", func() {
			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())
			cfg, err := config.FromViper(v)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Server.Listen).To(Equal("localhost:8000"))
			Expect(cfg.Server.RequestTimeout).To(Equal(180 * time.Second))
			Expect(cfg.Server.MaxQuestionLength).To(Equal(4000))
			Expect(cfg.Agent.MaxToolRounds).To(Equal(10))
			Expect(cfg.Agent.SessionTTL).To(Equal(30 * time.Minute))
			Expect(cfg.Agent.SharedSession).To(BeFalse())
			Expect(cfg.Agent.Instructions).To(Equal(config.DefaultInstructions))
			Expect(cfg.LLM.Provider).To(Equal(config.ProviderOpenAI))
			Expect(cfg.LLM.Temperature).To(BeZero())
			Expect(cfg.LLM.MaxRetries).To(Equal(2))
			Expect(cfg.LLM.Timeout).To(Equal(120 * time.Second))
			Expect(cfg.GitHub.Timeout).To(Equal(10 * time.Second))
			Expect(cfg.Telemetry.Enabled).To(BeFalse())
			Expect(cfg.Telemetry.MetricInterval).To(Equal(time.Minute))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("config file", func() {
		It("overrides defaults", func() {
			path := writeConfig(`
server:
  listen: ":9000"
agent:
  max_tool_rounds: 4
  session_ttl: 5m
  shared_session: true
github:
  topics_preview_accept: true
telemetry:
  enabled: true
  metric_interval: 15s
`)
			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":9000"))
			Expect(cfg.Agent.MaxToolRounds).To(Equal(4))
			Expect(cfg.Agent.SessionTTL).To(Equal(5 * time.Minute))
			Expect(cfg.Agent.SharedSession).To(BeTrue())
			Expect(cfg.GitHub.TopicsPreviewAccept).To(BeTrue())
			Expect(cfg.Telemetry.Enabled).To(BeTrue())
			Expect(cfg.Telemetry.MetricInterval).To(Equal(15 * time.Second))
		})

		It("fails when an explicit file is missing", func() {
			_, err := config.Load(filepath.Join(tmpDir, "missing.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("environment", func() {
		It("binds the legacy variable names", func() {
			setEnv("GITHUB_TOKEN", "ghp_legacy")
			setEnv("LLM_MODEL_NAME", "azure_openai")
			setEnv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
			setEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o-mini")
			setEnv("AZURE_OPENAI_API_VERSION", "2024-10-21")
			setEnv("AZURE_OPENAI_API_KEY", "azure-key")
			setEnv("OPENAI_API_KEY", "sk-legacy")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.GitHub.Token).To(Equal("ghp_legacy"))
			Expect(cfg.LLM.Provider).To(Equal(config.ProviderAzureOpenAI))
			Expect(cfg.LLM.Azure.Endpoint).To(Equal("https://example.openai.azure.com"))
			Expect(cfg.LLM.Azure.Deployment).To(Equal("gpt-4o-mini"))
			Expect(cfg.LLM.Azure.APIVersion).To(Equal("2024-10-21"))
			Expect(cfg.LLM.Azure.APIKey).To(Equal("azure-key"))
			Expect(cfg.LLM.APIKey).To(Equal("sk-legacy"))
		})

		It("reads prefixed variables over the file", func() {
			path := writeConfig("server:\n  listen: \":9000\"\n")
			setEnv("SIMPLE_AGENT_SERVER_LISTEN", ":7000")
			setEnv("SIMPLE_AGENT_AGENT_MAX_TOOL_ROUNDS", "3")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":7000"))
			Expect(cfg.Agent.MaxToolRounds).To(Equal(3))
		})

		It("prefers the prefixed name over the legacy one", func() {
			setEnv("OPENAI_MODEL", "legacy-model")
			setEnv("SIMPLE_AGENT_LLM_MODEL", "prefixed-model")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.LLM.Model).To(Equal("prefixed-model"))
		})
	})

	Describe("flags", func() {
		It("override every other layer", func() {
			setEnv("SIMPLE_AGENT_SERVER_LISTEN", ":7000")

			cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
			config.AddStringFlag(cmd, config.Flags, config.FlagListen, false)
			config.AddBoolFlag(cmd, config.Flags, config.FlagDebug, false)
			Expect(cmd.ParseFlags([]string{"--listen", ":6000", "--debug"})).To(Succeed())

			v, err := config.InitViper("")
			Expect(err).NotTo(HaveOccurred())
			Expect(config.BindRegisteredFlags(v, cmd, config.Flags, config.FlagListen, config.FlagDebug)).To(Succeed())

			cfg, err := config.FromViper(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Listen).To(Equal(":6000"))
			Expect(cfg.Log.Debug).To(BeTrue())
		})

		It("defaults to the config default", func() {
			cmd := &cobra.Command{Use: "test"}
			config.AddStringFlag(cmd, config.Flags, config.FlagListen, false)
			Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal("localhost:8000"))
		})
	})

	Describe("Validate", func() {
		It("rejects an unknown provider", func() {
			cfg := config.NewDefaultConfig()
			cfg.LLM.Provider = "anthropic"
			err := cfg.Validate()
			Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("anthropic"))
		})

		It("requires the Azure deployment settings", func() {
			cfg := config.NewDefaultConfig()
			cfg.LLM.Provider = config.ProviderAzureOpenAI
			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("AZURE_OPENAI_ENDPOINT")))
			Expect(err).To(MatchError(ContainSubstring("AZURE_OPENAI_DEPLOYMENT")))
		})

		It("rejects non-positive limits", func() {
			cfg := config.NewDefaultConfig()
			cfg.Agent.MaxToolRounds = 0
			cfg.Server.MaxQuestionLength = -1
			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("agent.max_tool_rounds")))
			Expect(err).To(MatchError(ContainSubstring("server.max_question_length")))
		})

		It("requires a metric interval when telemetry is enabled", func() {
			cfg := config.NewDefaultConfig()
			cfg.Telemetry.MetricInterval = 0
			Expect(cfg.Validate()).To(Succeed())

			cfg.Telemetry.Enabled = true
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("telemetry.metric_interval")))
		})
	})
})
