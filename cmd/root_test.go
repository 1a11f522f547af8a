package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/ats"
	"github.com/spigell/hh-interviewer/internal/storage"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func TestGetConfigOverlaysDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	err := viper.ReadConfig(strings.NewReader(`
interview:
  strike-limit: 3
  judge-timeout: 10s
ai:
  provider: openai
  openai:
    model: local-model
storage:
  driver: file
  dir: /tmp/interviews
`))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("getConfig: %v", err)
	}

	if config.Interview.StrikeLimit != 3 {
		t.Fatalf("expected strike limit 3, got %d", config.Interview.StrikeLimit)
	}
	if config.Interview.JudgeTimeout != 10*time.Second {
		t.Fatalf("expected judge timeout 10s, got %v", config.Interview.JudgeTimeout)
	}
	if config.Interview.SimilarityThreshold != 0.85 {
		t.Fatalf("default similarity threshold lost: %v", config.Interview.SimilarityThreshold)
	}
	if config.AI.OpenAI.Model != "local-model" || config.AI.OpenAI.MaxRetries != 3 {
		t.Fatalf("unexpected openai config %+v", config.AI.OpenAI)
	}
	if config.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("default gemini model lost: %q", config.AI.Gemini.Model)
	}
	if config.Storage.Driver != storage.DriverFile || config.Storage.Dir != "/tmp/interviews" {
		t.Fatalf("unexpected storage config %+v", config.Storage)
	}
	if config.AI.Guard.CacheSize != 512 {
		t.Fatalf("default guard config lost: %+v", config.AI.Guard)
	}
}

func TestGetConfigRejectsInvalidThresholds(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(strings.NewReader("interview:\n  similarity-threshold: 2\n")); err != nil {
		t.Fatalf("read config: %v", err)
	}

	if _, err := getConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewGeneratorUnsupportedProvider(t *testing.T) {
	t.Parallel()

	_, _, _, err := newGenerator(t.Context(), &AIConfig{Provider: "claude"}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestNewGeneratorOpenAIFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	g, provider, model, err := newGenerator(t.Context(), &AIConfig{
		Provider: "OpenAI",
		OpenAI:   &OpenAIConfig{Model: "gpt-4o-mini", BaseURL: "http://127.0.0.1:1/v1"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("newGenerator: %v", err)
	}
	if g == nil || provider != providerOpenAI || model != "gpt-4o-mini" {
		t.Fatalf("unexpected generator %v %q %q", g, provider, model)
	}
}

func TestNewATS(t *testing.T) {
	t.Parallel()

	client, err := newATS(nil, zap.NewNop())
	if err != nil || client != nil {
		t.Fatalf("expected disabled ats, got %v %v", client, err)
	}

	client, err = newATS(&ats.Config{URL: "https://ats.example.com/hooks", Token: " secret "}, zap.NewNop())
	if err != nil {
		t.Fatalf("newATS: %v", err)
	}
	if client.URL != "https://ats.example.com/hooks" {
		t.Fatalf("unexpected url %q", client.URL)
	}
}

func TestRedacted(t *testing.T) {
	t.Parallel()

	config := defaultConfig()
	config.AI.Gemini.APIKey = "key"
	config.ATS = &ats.Config{Token: "token"}

	r := redacted(config)
	if r.AI.Gemini.APIKey != "***" || r.ATS.Token != "***" {
		t.Fatalf("secrets not masked: %+v %+v", r.AI.Gemini, r.ATS)
	}
	if config.AI.Gemini.APIKey != "key" || config.ATS.Token != "token" {
		t.Fatal("original config was modified")
	}
}
