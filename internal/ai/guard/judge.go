package guard

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Judge caches verdicts by rubric, question and answer, and collapses identical
// concurrent calls into one model request.
type Judge struct {
	*guard
	next  ai.Judge
	cache *lru.Cache[string, *ai.Judgment]
	group singleflight.Group
}

func NewJudge(next ai.Judge, cfg Config, m *metrics.Metrics, log *zap.Logger) (*Judge, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New[string, *ai.Judgment](size)
	if err != nil {
		return nil, fmt.Errorf("create judge cache: %w", err)
	}

	return &Judge{
		guard: newGuard("judge", cfg, m, log),
		next:  next,
		cache: cache,
	}, nil
}

func (j *Judge) Judge(ctx context.Context, rubric ai.Rubric, question, answer string, timeout time.Duration) (*ai.Judgment, error) {
	key := judgeKey(rubric, question, answer)

	if cached, ok := j.cache.Get(key); ok {
		j.metrics.ObserveJudgeCache(true)
		return cloneJudgment(cached), nil
	}
	j.metrics.ObserveJudgeCache(false)

	result, err, shared := j.group.Do(key, func() (any, error) {
		return j.call(ctx, func() (any, error) {
			judgment, err := j.next.Judge(ctx, rubric, question, answer, timeout)
			if err == nil && judgment == nil {
				return nil, fmt.Errorf("%w: empty judgment", ai.ErrMalformedOutput)
			}
			return judgment, err
		})
	})
	if err != nil {
		return nil, err
	}
	if shared {
		j.logger.Debug("judge call shared with concurrent request")
	}

	judgment, ok := result.(*ai.Judgment)
	if !ok || judgment == nil {
		return nil, fmt.Errorf("%w: empty judgment", ai.ErrMalformedOutput)
	}
	j.cache.Add(key, judgment)
	return cloneJudgment(judgment), nil
}

func judgeKey(rubric ai.Rubric, question, answer string) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(rubric)
	h.Write([]byte(question))
	h.Write([]byte{0})
	h.Write([]byte(answer))
	return hex.EncodeToString(h.Sum(nil))
}

func cloneJudgment(j *ai.Judgment) *ai.Judgment {
	out := *j
	out.Strengths = slices.Clone(j.Strengths)
	out.Improvements = slices.Clone(j.Improvements)
	return &out
}
