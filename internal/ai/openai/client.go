package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/hh-interviewer/internal/logger"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	providerName = "openai"
	baseBackoff  = 2 * time.Second
)

var sleep = time.Sleep

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Generator sends prompts to an OpenAI-compatible chat completion endpoint.
type Generator struct {
	client      chatCompleter
	model       string
	temperature float32
	maxRetries  int
	logger      *zap.Logger
}

// NewGenerator builds a generator. An empty baseURL keeps the public OpenAI endpoint.
func NewGenerator(apiKey, baseURL, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openai model is required")
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &Generator{
		client:      goopenai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.2,
		maxRetries:  maxRetries,
		logger:      logger.WithProvider(log, providerName, model),
	}, nil
}

func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("message is required")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: message})

	req := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := g.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", errors.New("openai returned no choices")
			}
			g.logger.Debug("chat completion finished",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
				zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
			)
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		delay, retry := retryDelay(err, attempt+1)
		if !retry || attempt == g.maxRetries {
			break
		}

		g.logger.Warn("retrying chat completion",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		sleep(delay)
	}

	return "", fmt.Errorf("openai chat completion failed: %w", lastErr)
}

func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return baseBackoff * time.Duration(attempt), true
		case apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return baseBackoff * time.Duration(attempt), true
		}
		return 0, false
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode >= http.StatusInternalServerError {
		return baseBackoff * time.Duration(attempt), true
	}
	return 0, false
}
