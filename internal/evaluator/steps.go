package evaluator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/hh-interviewer/internal/analyzer"
	"github.com/spigell/hh-interviewer/internal/interview"
)

// Step is one stage of answer grading. Steps run in order until one stops the pipeline.
// Only administrative turns and bypass attempts stop it.
type Step interface {
	Name() string
	Apply(ctx context.Context, e *Evaluator, ev *evaluation) error
}

type evaluation struct {
	in     Input
	result *Result
	notes  []string

	irrelevant  bool
	repetitive  bool
	starMissing int
	// gibberish answers still go through relevance and similarity but are never judged.
	gibberish bool
	stop      bool
}

func (ev *evaluation) note(format string, args ...any) {
	ev.notes = append(ev.notes, fmt.Sprintf(format, args...))
}

// DefaultSteps returns the grading pipeline in order.
func DefaultSteps() []Step {
	return []Step{
		administrativeStep{},
		bypassStep{},
		gibberishStep{},
		relevanceStep{},
		similarityStep{},
		starStep{},
		judgeStep{},
	}
}

type administrativeStep struct{}

func (administrativeStep) Name() string { return "administrative" }

func (administrativeStep) Apply(_ context.Context, e *Evaluator, ev *evaluation) error {
	if !ev.in.Topic.IsAdministrative() {
		return nil
	}
	band := e.cfg.AdministrativeScore
	ev.result.Technical, ev.result.Communication, ev.result.Culture = band, band, band
	ev.result.Score = band
	ev.note("Administrative turn scored at the fixed band.")
	ev.stop = true
	return nil
}

type bypassStep struct{}

func (bypassStep) Name() string { return "bypass" }

func (bypassStep) Apply(_ context.Context, _ *Evaluator, ev *evaluation) error {
	phrase, found := analyzer.DetectBypass(ev.in.Answer)
	if !found {
		return nil
	}
	ev.result.addFlag(interview.FlagCritical)
	ev.result.Concerns = append(ev.result.Concerns, fmt.Sprintf("Attempted to bypass evaluation (%q).", phrase))
	ev.note("Answer tried to manipulate the evaluation.")
	ev.stop = true
	return nil
}

type gibberishStep struct{}

func (gibberishStep) Name() string { return "gibberish" }

func (gibberishStep) Apply(_ context.Context, _ *Evaluator, ev *evaluation) error {
	if !analyzer.IsGibberish(ev.in.Answer) {
		return nil
	}
	ev.result.addFlag(interview.FlagGibberish)
	ev.result.Concerns = append(ev.result.Concerns, "Answer carried no usable content.")
	ev.note("Answer was too short or unreadable to grade.")
	ev.gibberish = true
	return nil
}

type relevanceStep struct{}

func (relevanceStep) Name() string { return "relevance" }

func (relevanceStep) Apply(_ context.Context, _ *Evaluator, ev *evaluation) error {
	if analyzer.RelevanceCheck(ev.in.Topic, ev.in.Answer) != analyzer.Irrelevant {
		return nil
	}
	ev.irrelevant = true
	ev.result.addFlag(interview.FlagIrrelevant)
	ev.note("Answer did not address the %s question.", ev.in.Topic)
	return nil
}

type similarityStep struct{}

func (similarityStep) Name() string { return "similarity" }

func (similarityStep) Apply(_ context.Context, e *Evaluator, ev *evaluation) error {
	priors := make([]string, len(ev.in.History))
	for i, t := range ev.in.History {
		priors[i] = t.Answer
	}
	idx, ratio := analyzer.MostSimilar(ev.in.Answer, priors)
	if idx < 0 || ratio <= e.cfg.SimilarityThreshold {
		return nil
	}
	ev.repetitive = true
	ev.result.addFlag(interview.FlagRepetitive)
	ev.note("Answer repeats turn %d (%.0f%% overlap).", ev.in.History[idx].Number, ratio*100)
	return nil
}

type starStep struct{}

func (starStep) Name() string { return "star" }

func (starStep) Apply(_ context.Context, _ *Evaluator, ev *evaluation) error {
	if ev.gibberish || !ev.in.Topic.IsSTAR() {
		return nil
	}
	missing := analyzer.CheckSTAR(ev.in.Answer).Missing()
	if len(missing) == 0 {
		return nil
	}
	ev.starMissing = len(missing)
	ev.result.addFlag(interview.FlagSTARIncomplete)
	ev.result.Concerns = append(ev.result.Concerns, "Story is missing: "+strings.Join(missing, ", ")+".")
	return nil
}

type judgeStep struct{}

func (judgeStep) Name() string { return "judge" }

func (judgeStep) Apply(ctx context.Context, e *Evaluator, ev *evaluation) error {
	if ev.gibberish {
		return nil
	}
	judgment, err := e.callJudge(ctx, ev.in)
	if err != nil {
		return err
	}
	ev.result.Judged = true
	ev.result.Technical = judgment.Technical * 10
	ev.result.Communication = (judgment.Communication + judgment.Structure) / 2 * 10
	ev.result.Culture = judgment.Confidence * 10
	ev.result.Rationale = judgment.Rationale
	ev.result.Strengths = append(ev.result.Strengths, judgment.Strengths...)
	ev.result.Concerns = append(ev.result.Concerns, judgment.Improvements...)
	return nil
}

// finish applies the deterministic overrides on top of whatever the steps produced.
func (ev *evaluation) finish(cfg interview.Config) {
	r := ev.result
	defer func() {
		r.Rationale = joinNotes(append(ev.notes, r.Rationale)...)
	}()

	switch {
	case ev.in.Topic.IsAdministrative():
		return
	case r.HasFlag(interview.FlagCritical), r.HasFlag(interview.FlagGibberish):
		r.Technical, r.Communication, r.Culture, r.Score = 0, 0, 0, 0
		return
	}

	if ev.starMissing > 0 {
		r.Communication -= float64(ev.starMissing) * cfg.STARPenalty
	}
	// Relevance gate: an off-topic technical answer earns no technical credit.
	if ev.irrelevant && ev.in.Topic.IsTechnical() {
		r.Technical = 0
	}

	r.Technical = round(clamp(r.Technical))
	r.Communication = round(clamp(r.Communication))
	r.Culture = round(clamp(r.Culture))
	r.Score = Composite(ev.in.Topic, r.Technical, r.Communication, r.Culture, cfg.Weights)

	if ev.repetitive {
		r.Score = math.Min(r.Score, cfg.RepetitiveCap)
	}
}
