package simpleagentcmder_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	af "github.com/sriaradhyula/simple-ai-agent/agentframework"
	simpleagentcmder "github.com/sriaradhyula/simple-ai-agent/cmd/simpleagent"
	"github.com/sriaradhyula/simple-ai-agent/config"
)

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

// chdirTemp runs the test in an empty directory so no config.yaml or .env
// is picked up.
func chdirTemp() {
	orig, err := os.Getwd()
	Expect(err).NotTo(HaveOccurred())
	Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
	DeferCleanup(func() { Expect(os.Chdir(orig)).To(Succeed()) })
}

func execute(args ...string) (string, error) {
	cmd := simpleagentcmder.NewSimpleAgentCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewSimpleAgentCmd", func() {
	It("registers the subcommands", func() {
		cmd := simpleagentcmder.NewSimpleAgentCmd()
		names := []string{}
		for _, c := range cmd.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ContainElements("serve", "ask", "version"))
	})

	It("has persistent config and logging flags", func() {
		cmd := simpleagentcmder.NewSimpleAgentCmd()
		for _, name := range []string{"config", "debug", "log-json", "provider", "model"} {
			Expect(cmd.PersistentFlags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("defaults --listen on serve to the configured address", func() {
		cmd := simpleagentcmder.NewSimpleAgentCmd()
		serve, _, err := cmd.Find([]string{"serve"})
		Expect(err).NotTo(HaveOccurred())
		f := serve.Flags().Lookup("listen")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(config.NewDefaultConfig().Server.Listen))
	})
})

var _ = Describe("version", func() {
	It("prints the version without loading config", func() {
		chdirTemp()
		setEnv("SIMPLE_AGENT_LLM_PROVIDER", "bogus")

		out, err := execute("version")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("simple-ai-agent " + simpleagentcmder.Version))
	})
})

var _ = Describe("ask", func() {
	var (
		mu       sync.Mutex
		received []string
	)

	BeforeEach(func() {
		chdirTemp()
		received = nil

		llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			mu.Lock()
			received = append(received, req.Messages[len(req.Messages)-1].Content)
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o","created":1700000000,
				"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello from the agent"}}],
				"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`))
		}))
		DeferCleanup(llm.Close)

		setEnv("SIMPLE_AGENT_LLM_PROVIDER", "openai")
		setEnv("SIMPLE_AGENT_LLM_MODEL", "gpt-4o")
		setEnv("SIMPLE_AGENT_LLM_API_KEY", "test-key")
		setEnv("SIMPLE_AGENT_LLM_BASE_URL", llm.URL)
		setEnv("SIMPLE_AGENT_LLM_MAX_RETRIES", "0")
	})

	It("prints the answer to a question built from the arguments", func() {
		out, err := execute("ask", "hello", "there")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello from the agent\n"))
		Expect(received).To(Equal([]string{"hello there"}))
	})

	It("prints JSON with --json", func() {
		out, err := execute("ask", "--json", "hello")
		Expect(err).NotTo(HaveOccurred())

		var result struct {
			Answer       string       `json:"answer"`
			ToolCalls    []string     `json:"tool_calls"`
			InputTokens  int          `json:"input_tokens"`
			OutputTokens int          `json:"output_tokens"`
			Messages     []af.Message `json:"messages"`
		}
		Expect(json.Unmarshal([]byte(out), &result)).To(Succeed())
		Expect(result.Answer).To(Equal("Hello from the agent"))
		Expect(result.ToolCalls).To(BeEmpty())
		Expect(result.InputTokens).To(Equal(12))
		Expect(result.OutputTokens).To(Equal(5))
		Expect(result.Messages).To(HaveLen(1))
		Expect(result.Messages[0].Role).To(Equal(af.RoleAssistant))
		Expect(result.Messages[0].Text()).To(Equal("Hello from the agent"))
	})

	It("also writes JSON logs to log.file", func() {
		path := GinkgoT().TempDir() + "/agent.log"
		setEnv("SIMPLE_AGENT_LOG_FILE", path)

		_, err := execute("ask", "hello")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"msg":"agent run completed"`))
		Expect(string(data)).To(ContainSubstring(`"outcome":"ok"`))
	})

	It("exports spans and metrics to telemetry.file", func() {
		path := GinkgoT().TempDir() + "/telemetry.jsonl"
		setEnv("SIMPLE_AGENT_TELEMETRY_ENABLED", "true")
		setEnv("SIMPLE_AGENT_TELEMETRY_FILE", path)
		DeferCleanup(func() {
			otel.SetTracerProvider(tracenoop.NewTracerProvider())
			otel.SetMeterProvider(metricnoop.NewMeterProvider())
		})

		_, err := execute("ask", "hello")
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"Name":"agent.run"`))
		Expect(string(data)).To(ContainSubstring(`"Name":"agent.runs"`))
		Expect(string(data)).To(ContainSubstring(`"Name":"llm.tokens"`))
	})

	It("requires a question", func() {
		_, err := execute("ask")
		Expect(err).To(HaveOccurred())
		Expect(received).To(BeEmpty())
	})

	It("rejects an invalid configuration", func() {
		_, err := execute("ask", "--provider", "bogus", "hello")
		Expect(err).To(MatchError(config.ErrInvalidConfig))
		Expect(received).To(BeEmpty())
	})
})
