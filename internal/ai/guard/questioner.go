package guard

import (
	"context"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/metrics"

	"go.uber.org/zap"
)

// Questioner rate limits question generation and trips on repeated failures.
type Questioner struct {
	*guard
	next ai.QuestionGenerator
}

func NewQuestioner(next ai.QuestionGenerator, cfg Config, m *metrics.Metrics, log *zap.Logger) *Questioner {
	return &Questioner{
		guard: newGuard("questioner", cfg, m, log),
		next:  next,
	}
}

func (q *Questioner) Generate(ctx context.Context, req ai.QuestionRequest) (string, error) {
	result, err := q.call(ctx, func() (any, error) {
		return q.next.Generate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
