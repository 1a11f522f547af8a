package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/ai/guard"
	"github.com/spigell/hh-interviewer/internal/ai/llm"
	"github.com/spigell/hh-interviewer/internal/ai/openai"
	"github.com/spigell/hh-interviewer/internal/ai/tokens"
	"github.com/spigell/hh-interviewer/internal/ats"
	"github.com/spigell/hh-interviewer/internal/evaluator"
	"github.com/spigell/hh-interviewer/internal/jobs"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/metrics"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/session"
	"github.com/spigell/hh-interviewer/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

type stack struct {
	service *session.Service
	store   storage.Store
	jobs    *jobs.Catalog
}

func (a *stack) Close() error {
	return a.store.Close()
}

// newStack wires the AI capabilities, storage, job catalog and ATS into a session service.
func newStack(ctx context.Context, config *Config, reg prometheus.Registerer, log *zap.Logger) (*stack, error) {
	if config.AI == nil {
		return nil, errors.New("ai section is required")
	}
	m := metrics.New(reg)

	var (
		store   storage.Store
		catalog *jobs.Catalog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := storage.Open(gctx, config.Storage, log)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		store = s
		return nil
	})
	if config.JobFile != "" {
		g.Go(func() error {
			c, err := jobs.Load(config.JobFile)
			if err != nil {
				return err
			}
			catalog = c
			log.Info("job profiles loaded", zap.Strings("jobs", c.IDs()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	generator, provider, model, err := newGenerator(ctx, config.AI, log)
	if err != nil {
		store.Close()
		return nil, err
	}
	aiLogger := logger.WithProvider(log, provider, model)

	judge, err := guard.NewJudge(
		llm.NewJudge(generator, tokens.NewBudget(config.AI.AnswerTokenBudget), config.AI.MaxLogLength, aiLogger),
		config.AI.Guard, m, aiLogger,
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("building judge: %w", err)
	}
	questioner := guard.NewQuestioner(
		llm.NewQuestioner(generator, config.AI.MaxLogLength, aiLogger),
		config.AI.Guard, m, aiLogger,
	)

	syncer, err := newATS(config.ATS, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	deps := session.Deps{
		Questioner: questioner,
		Evaluator:  evaluator.New(judge, config.Interview, log),
		Store:      store,
		Jobs:       catalog,
		Metrics:    m,
		Logger:     log,
	}
	// A typed nil would pass the interface check in the service.
	if syncer != nil {
		deps.ATS = syncer
	}

	svc, err := session.New(config.Interview, deps)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &stack{service: svc, store: store, jobs: catalog}, nil
}

func newGenerator(ctx context.Context, cfg *AIConfig, log *zap.Logger) (llm.ContentGenerator, string, string, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerGemini:
		if cfg.Gemini == nil {
			return nil, "", "", errors.New("gemini configuration is required for the gemini provider")
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, "", "", fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		genLogger := logger.WithProvider(log, providerGemini, cfg.Gemini.Model).
			With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))
		g, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, "", "", err
		}
		return g, providerGemini, g.Model(), nil
	case providerOpenAI:
		if cfg.OpenAI == nil {
			return nil, "", "", errors.New("openai configuration is required for the openai provider")
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: cfg.OpenAI.APIKey,
			File:  cfg.OpenAI.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, "", "", fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}
		genLogger := logger.WithProvider(log, providerOpenAI, cfg.OpenAI.Model).
			With(zap.Int("ai_retry_attempts", cfg.OpenAI.MaxRetries))
		g, err := openai.NewGenerator(apiKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.MaxRetries, genLogger)
		if err != nil {
			return nil, "", "", err
		}
		return g, providerOpenAI, g.Model(), nil
	default:
		return nil, "", "", fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

// newATS returns nil when no webhook is configured.
func newATS(cfg *ats.Config, log *zap.Logger) (*ats.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		log.Debug("ats sync disabled")
		return nil, nil
	}

	token := ""
	if cfg.Token != "" || cfg.TokenFile != "" {
		t, err := secrets.Load(secrets.Source{
			Name:  "ats token",
			Value: cfg.Token,
			File:  cfg.TokenFile,
		})
		if err != nil {
			return nil, err
		}
		token = t
	}

	log.Info("ats sync enabled", zap.String("url", cfg.URL))
	return ats.New(log.With(zap.String("component", "ats")), cfg.URL, token, cfg.Timeout), nil
}
