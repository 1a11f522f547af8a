// Package guard wraps AI capabilities with rate limiting, a circuit breaker and
// verdict caching so a struggling provider degrades into fast errors.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/hh-interviewer/internal/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned while the breaker is open or the limiter rejects a call.
var ErrUnavailable = errors.New("ai capability unavailable")

type Config struct {
	RatePerSecond    float64       `mapstructure:"rate-per-second"`
	Burst            int           `mapstructure:"burst"`
	FailureThreshold uint32        `mapstructure:"failure-threshold"`
	HalfOpenRequests uint32        `mapstructure:"half-open-requests"`
	Interval         time.Duration `mapstructure:"interval"`
	OpenTimeout      time.Duration `mapstructure:"open-timeout"`
	CacheSize        int           `mapstructure:"cache-size"`
}

func DefaultConfig() Config {
	return Config{
		RatePerSecond:    2,
		Burst:            4,
		FailureThreshold: 5,
		HalfOpenRequests: 1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		CacheSize:        512,
	}
}

type guard struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func newGuard(name string, cfg Config, m *metrics.Metrics, log *zap.Logger) *guard {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("capability", name))

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultConfig().FailureThreshold
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Callers giving up is not a provider failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.ObserveBreaker(name, to.String())
		},
	})

	return &guard{
		name:    name,
		breaker: breaker,
		limiter: rate.NewLimiter(limit, burst),
		metrics: m,
		logger:  log,
	}
}

func (g *guard) call(ctx context.Context, fn func() (any, error)) (any, error) {
	started := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		g.metrics.ObserveCapability(g.name, started, err)
		return nil, fmt.Errorf("%w: %s rate limit: %v", ErrUnavailable, g.name, err)
	}

	result, err := g.breaker.Execute(fn)
	g.metrics.ObserveCapability(g.name, started, err)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, g.name, err)
	}
	return result, err
}

// State reports the breaker state, mainly for health output.
func (g *guard) State() string {
	return g.breaker.State().String()
}
