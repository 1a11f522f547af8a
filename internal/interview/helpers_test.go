package interview

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func mustTransition(t *testing.T, s *State, ev Event, cfg Config) (*State, []Effect) {
	t.Helper()
	if ev.At.IsZero() {
		ev.At = testNow
	}
	next, effects, err := Transition(s, ev, cfg)
	if err != nil {
		t.Fatalf("transition %s: unexpected error: %v", ev.Kind, err)
	}
	return next, effects
}

func startedState(t *testing.T, cfg Config) *State {
	t.Helper()
	s := NewState("INT-test", "Ada", JobContext{ID: "JOB-GO", Title: "Go Developer", Level: "senior"}, cfg, testNow)
	s, _ = mustTransition(t, s, Event{Kind: EventDisclose}, cfg)
	s, _ = mustTransition(t, s, Event{Kind: EventConsent, ConsentReply: "Yes"}, cfg)
	return s
}

// answerNext issues the next question and records an answer with the given score and flags.
func answerNext(t *testing.T, s *State, cfg Config, score float64, flags ...Flag) (*State, []Effect) {
	t.Helper()
	ref, ok := SelectNextTopic(s)
	if !ok {
		t.Fatalf("expected a pending slot, plan exhausted")
	}
	s, _ = mustTransition(t, s, Event{Kind: EventQuestionIssued, Ref: ref, Question: "q?"}, cfg)
	return mustTransition(t, s, Event{
		Kind: EventAnswerEvaluated,
		Turn: Turn{Answer: "a", Score: score, Flags: flags},
	}, cfg)
}

func hasEffect(effects []Effect, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func expectInvalid(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
