package interview

import (
	"fmt"
	"slices"
	"time"
)

// EventKind identifies an input of the state machine.
type EventKind string

const (
	EventDisclose        EventKind = "disclose"
	EventConsent         EventKind = "consent"
	EventQuestionIssued  EventKind = "question_issued"
	EventAnswerEvaluated EventKind = "answer_evaluated"
	EventSkipTurn        EventKind = "skip_turn"
	EventFinish          EventKind = "finish"
	EventWithdraw        EventKind = "withdraw"
)

// Event is an input of Transition. Only the fields relevant to Kind are read.
type Event struct {
	Kind EventKind
	At   time.Time

	// EventConsent
	ConsentReply string

	// EventQuestionIssued
	Ref        SlotRef
	Question   string
	Skill      string
	Difficulty Difficulty

	// EventAnswerEvaluated
	Turn Turn

	// EventSkipTurn, EventWithdraw
	Reason string
}

// EffectKind identifies a side effect the caller must perform after a transition.
type EffectKind string

const (
	EffectSaveSnapshot EffectKind = "save_snapshot"
	EffectSaveReport   EffectKind = "save_report"
	EffectSyncATS      EffectKind = "sync_ats"
)

// Effect is a request for a collaborator call.
type Effect struct {
	Kind EffectKind
}

// Transition applies the event to a copy of the state and returns the new state together
// with the side effects to perform. The input state is never modified. On error the
// returned state is nil.
func Transition(s *State, ev Event, cfg Config) (*State, []Effect, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("%w: nil state", ErrInvalidTransition)
	}
	if s.Phase.IsTerminal() {
		return nil, nil, fmt.Errorf("%w: %s on %s session", ErrInvalidTransition, ev.Kind, s.Phase)
	}

	next := s.Clone()
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var err error
	switch ev.Kind {
	case EventDisclose:
		err = next.disclose()
	case EventConsent:
		err = next.consent(ev.ConsentReply, at)
	case EventQuestionIssued:
		err = next.issue(ev, at)
	case EventAnswerEvaluated:
		err = next.answer(ev.Turn, cfg, at)
	case EventSkipTurn:
		err = next.skip(ev.Reason, cfg, at)
	case EventFinish:
		err = next.finish(at)
	case EventWithdraw:
		next.terminate(PhaseWithdrawn, ReasonWithdrawn)
		next.log(at, DecisionWithdraw, "terminated session", withDefault(ev.Reason, "candidate withdrew"))
	default:
		err = fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev.Kind)
	}
	if err != nil {
		return nil, nil, err
	}

	next.Version++
	next.UpdatedAt = at

	effects := []Effect{{Kind: EffectSaveSnapshot}}
	if next.Terminated {
		effects = append(effects, Effect{Kind: EffectSaveReport}, Effect{Kind: EffectSyncATS})
	}
	return next, effects, nil
}

func (s *State) disclose() error {
	if s.Phase != PhaseCreated {
		return fmt.Errorf("%w: disclosure requires %s, session is %s", ErrInvalidTransition, PhaseCreated, s.Phase)
	}
	s.Phase = PhaseDisclosureDone
	return nil
}

func (s *State) consent(reply string, at time.Time) error {
	if s.Phase != PhaseDisclosureDone {
		return fmt.Errorf("%w: consent requires %s, session is %s", ErrInvalidTransition, PhaseDisclosureDone, s.Phase)
	}
	if !IsConsent(reply) {
		s.terminate(PhaseWithdrawn, ReasonConsentDeclined)
		s.log(at, DecisionWithdraw, "terminated session", "consent not granted")
		return nil
	}
	s.Phase = PhaseConsentGranted
	return nil
}

func (s *State) issue(ev Event, at time.Time) error {
	if s.Phase != PhaseConsentGranted && s.Phase != PhaseInProgress {
		return fmt.Errorf("%w: questions require consent, session is %s", ErrInvalidTransition, s.Phase)
	}
	if s.Pending != nil {
		return fmt.Errorf("%w: question %d is still awaiting an answer", ErrInvalidTransition, len(s.History)+1)
	}
	want, ok := SelectNextTopic(s)
	if !ok {
		return fmt.Errorf("%w: plan is exhausted", ErrInvalidTransition)
	}
	if want.Index != ev.Ref.Index || want.Closing != ev.Ref.Closing {
		return fmt.Errorf("%w: expected slot %d, got %d", ErrInvalidTransition, want.Index, ev.Ref.Index)
	}

	s.slot(want).Status = SlotAsked
	s.Phase = PhaseInProgress
	s.Pending = &PendingQuestion{
		Ref:        want,
		Question:   ev.Question,
		Skill:      ev.Skill,
		Difficulty: withDefault(ev.Difficulty, s.Difficulty),
		IssuedAt:   at,
	}
	return nil
}

func (s *State) answer(turn Turn, cfg Config, at time.Time) error {
	if s.Phase != PhaseInProgress || s.Pending == nil {
		return fmt.Errorf("%w: no question is awaiting an answer", ErrInvalidTransition)
	}

	pending := *s.Pending
	s.Pending = nil
	if turn.Question == "" {
		turn.Question = pending.Question
	}
	if turn.Skill == "" {
		turn.Skill = pending.Skill
	}
	if turn.Difficulty == "" {
		turn.Difficulty = pending.Difficulty
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = at
	}
	turn.Flags = uniqueFlags(turn.Flags)

	rejected, err := RecordTurn(s, pending.Ref, turn, cfg)
	if err != nil {
		return err
	}
	// Auto-reject wins over the extension on the same turn.
	if rejected {
		return nil
	}

	if !pending.Ref.Closing {
		ConsiderExtension(s, cfg, at)
	}
	updateDifficulty(s, cfg, at)
	s.completeIfDone(at)
	return nil
}

func (s *State) skip(reason string, cfg Config, at time.Time) error {
	if s.Phase != PhaseInProgress || s.Pending == nil {
		return fmt.Errorf("%w: no question to skip", ErrInvalidTransition)
	}
	ref := s.Pending.Ref
	s.Pending = nil
	s.slot(ref).Status = SlotSkipped
	if !ref.Closing {
		s.CurrentIndex = ref.Index + 1
	}
	s.log(at, DecisionSkip, fmt.Sprintf("skipped %s", ref.Slot.Kind), withDefault(reason, "evaluation unavailable"))
	s.completeIfDone(at)
	return nil
}

func (s *State) finish(at time.Time) error {
	if s.Phase != PhaseInProgress && s.Phase != PhaseConsentGranted {
		return fmt.Errorf("%w: finish requires an active interview, session is %s", ErrInvalidTransition, s.Phase)
	}
	reasoning := "all planned topics covered"
	if !IsComplete(s) {
		reasoning = fmt.Sprintf("finished early after %d turns", len(s.History))
	}
	s.terminate(PhaseCompleted, ReasonCompleted)
	s.log(at, DecisionCompletion, "completed interview", reasoning)
	return nil
}

func (s *State) completeIfDone(at time.Time) {
	if s.Terminated || !IsComplete(s) {
		return
	}
	s.terminate(PhaseCompleted, ReasonCompleted)
	s.log(at, DecisionCompletion, "completed interview", "all planned topics covered")
}

func withDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

func uniqueFlags(flags []Flag) []Flag {
	var out []Flag
	for _, f := range flags {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
