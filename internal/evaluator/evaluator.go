// Package evaluator grades one answer. Local heuristics run first and never fail; the
// remote judge is consulted only for substantive turns.
package evaluator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"

	"go.uber.org/zap"
)

// Input is everything needed to grade one answer.
type Input struct {
	Topic      interview.TopicKind
	Question   string
	Answer     string
	Skill      string
	Difficulty interview.Difficulty
	Seniority  interview.Seniority
	History    []interview.Turn
	Overrides  map[string]RubricOverride
}

// Result is the verdict on one answer. Scores are on a 0-100 scale.
type Result struct {
	Technical     float64          `json:"technical"`
	Communication float64          `json:"communication"`
	Culture       float64          `json:"culture"`
	Score         float64          `json:"score"`
	Flags         []interview.Flag `json:"flags,omitempty"`
	Rationale     string           `json:"rationale"`
	Strengths     []string         `json:"strengths,omitempty"`
	Concerns      []string         `json:"concerns,omitempty"`
	Judged        bool             `json:"judged"`
}

// Turn converts the result into a history entry. Number and topic are set when the turn is
// recorded.
func (r *Result) Turn(in Input, at time.Time) interview.Turn {
	return interview.Turn{
		Topic:         in.Topic,
		Skill:         in.Skill,
		Difficulty:    in.Difficulty,
		Question:      in.Question,
		Answer:        in.Answer,
		Score:         r.Score,
		Technical:     r.Technical,
		Communication: r.Communication,
		Culture:       r.Culture,
		Flags:         append([]interview.Flag(nil), r.Flags...),
		Rationale:     r.Rationale,
		Strengths:     append([]string(nil), r.Strengths...),
		Concerns:      append([]string(nil), r.Concerns...),
		Timestamp:     at,
	}
}

func (r *Result) addFlag(f interview.Flag) {
	for _, existing := range r.Flags {
		if existing == f {
			return
		}
	}
	r.Flags = append(r.Flags, f)
}

func (r *Result) HasFlag(f interview.Flag) bool {
	for _, existing := range r.Flags {
		if existing == f {
			return true
		}
	}
	return false
}

type Evaluator struct {
	judge  ai.Judge
	cfg    interview.Config
	steps  []Step
	logger *zap.Logger
}

// New returns an evaluator with the stock step order.
func New(judge ai.Judge, cfg interview.Config, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		judge:  judge,
		cfg:    cfg,
		steps:  DefaultSteps(),
		logger: logger,
	}
}

// Evaluate grades the answer. The only failure is an unavailable judge, reported as
// interview.ErrEvaluationUnavailable.
func (e *Evaluator) Evaluate(ctx context.Context, in Input) (*Result, error) {
	ev := &evaluation{in: in, result: &Result{}}

	for _, step := range e.steps {
		if ev.stop {
			break
		}
		if err := step.Apply(ctx, e, ev); err != nil {
			e.logger.Warn("evaluation step failed",
				zap.String("step", step.Name()),
				zap.String("topic", in.Topic.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	ev.finish(e.cfg)

	e.logger.Debug("answer evaluated",
		zap.String("topic", in.Topic.String()),
		zap.Float64("score", ev.result.Score),
		zap.Any("flags", ev.result.Flags),
		zap.Bool("judged", ev.result.Judged),
	)

	return ev.result, nil
}

func (e *Evaluator) callJudge(ctx context.Context, in Input) (*ai.Judgment, error) {
	if e.judge == nil {
		return nil, fmt.Errorf("%w: no judge configured", interview.ErrEvaluationUnavailable)
	}

	timeout := e.cfg.JudgeTimeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rubric := SelectRubric(in.Topic, in.Difficulty, in.Seniority, in.Skill, in.Overrides)
	judgment, err := e.judge.Judge(ctx, rubric, in.Question, in.Answer, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interview.ErrEvaluationUnavailable, err)
	}
	if judgment == nil {
		return nil, fmt.Errorf("%w: empty judgment", interview.ErrEvaluationUnavailable)
	}
	return judgment, nil
}

// Composite folds category scores into one turn score with the configured weights. Topics
// that are not technical drop the technical weight and renormalise the rest.
func Composite(topic interview.TopicKind, technical, communication, culture float64, w interview.Weights) float64 {
	sum, weights := communication*w.Communication+culture*w.Culture, w.Communication+w.Culture
	if topic.IsTechnical() {
		sum += technical * w.Technical
		weights += w.Technical
	}
	if weights == 0 {
		return 0
	}
	return round(sum / weights)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func joinNotes(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
