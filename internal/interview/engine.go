package interview

import (
	"fmt"
	"slices"
	"time"
)

// SelectNextTopic returns the next pending slot in plan order, then the closing topics.
func SelectNextTopic(s *State) (SlotRef, bool) {
	for i := s.CurrentIndex; i < len(s.Plan); i++ {
		if s.Plan[i].Status == SlotPending {
			return SlotRef{Index: i, Slot: s.Plan[i]}, true
		}
	}
	if s.CurrentIndex < len(s.Plan) {
		return SlotRef{}, false
	}
	for i, slot := range s.Closing {
		if slot.Status == SlotPending {
			return SlotRef{Index: i, Closing: true, Slot: slot}, true
		}
	}
	return SlotRef{}, false
}

// ComputeDifficulty averages the last window scores. No scores means medium.
func ComputeDifficulty(cfg Config, scores []float64) Difficulty {
	window := cfg.DifficultyWindow
	if window <= 0 {
		window = 3
	}
	if len(scores) > window {
		scores = scores[len(scores)-window:]
	}
	if len(scores) == 0 {
		return DifficultyMedium
	}

	avg := mean(scores)
	switch {
	case avg >= cfg.HardThreshold:
		return DifficultyHard
	case avg >= cfg.MediumThreshold:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}

// ConsiderExtension inserts one more technical slot right after the current position when
// exactly one technical answer fell below the gap threshold while the candidate is otherwise
// strong. It fires at most once per session.
func ConsiderExtension(s *State, cfg Config, at time.Time) bool {
	if s.ExtensionUsed || s.Terminated {
		return false
	}

	gaps := 0
	var weakSkill string
	for _, t := range s.History {
		if t.Topic.IsTechnical() && t.Score < cfg.GapThreshold {
			gaps++
			weakSkill = t.Skill
		}
	}
	if gaps != 1 {
		return false
	}

	avg := mean(s.Scores())
	if avg <= cfg.StrongThreshold {
		return false
	}

	pos := min(s.CurrentIndex, len(s.Plan))
	s.Plan = slices.Insert(s.Plan, pos, Slot{
		Kind:        TopicTechnical,
		Status:      SlotPending,
		Description: "second chance on a technical gap",
		Extension:   true,
	})
	s.ExtensionUsed = true

	reason := fmt.Sprintf("one technical answer below %.0f with running average %.1f", cfg.GapThreshold, avg)
	if weakSkill != "" {
		reason += ", weak skill " + weakSkill
	}
	s.log(at, DecisionExtension, "inserted technical slot", reason)
	return true
}

// RecordTurn appends an evaluated turn, counts strikes, advances the plan and checks for
// auto-reject. It returns true when the turn auto-rejected the session.
func RecordTurn(s *State, ref SlotRef, turn Turn, cfg Config) (bool, error) {
	if s.Terminated {
		return false, fmt.Errorf("%w: session %s is terminated", ErrInvalidTransition, s.ID)
	}
	slot := s.slot(ref)
	if slot == nil {
		return false, fmt.Errorf("%w: slot %d is out of range", ErrInvalidTransition, ref.Index)
	}

	turn.Number = len(s.History) + 1
	turn.Topic = slot.Kind
	s.History = append(s.History, turn)
	if turn.IsStrike() {
		s.GamingStrikes++
	}

	slot.Status = SlotAnswered
	if !ref.Closing {
		s.CurrentIndex = ref.Index + 1
	}

	return CheckAutoReject(s, cfg, turn.Timestamp), nil
}

// CheckAutoReject terminates the session when strikes exceed the limit or a critical red
// flag was raised on any turn.
func CheckAutoReject(s *State, cfg Config, at time.Time) bool {
	if s.Phase == PhaseAutoRejected {
		return true
	}
	if s.Terminated {
		return false
	}

	var reason string
	switch {
	case s.HasCriticalFlag():
		reason = "critical red flag raised"
	case s.GamingStrikes > cfg.StrikeLimit:
		reason = fmt.Sprintf("%d gaming strikes exceed limit %d", s.GamingStrikes, cfg.StrikeLimit)
	default:
		return false
	}

	s.terminate(PhaseAutoRejected, ReasonAutoReject)
	s.log(at, DecisionAutoReject, "terminated session", reason)
	return true
}

// IsComplete reports whether every slot was consumed and the session was not rejected.
func IsComplete(s *State) bool {
	if s.Terminated && s.TerminationReason != ReasonCompleted {
		return false
	}
	if s.Pending != nil {
		return false
	}
	_, next := SelectNextTopic(s)
	return !next
}

// updateDifficulty recomputes difficulty from recent scores and logs changes.
func updateDifficulty(s *State, cfg Config, at time.Time) {
	next := ComputeDifficulty(cfg, s.Scores())
	if next == s.Difficulty {
		return
	}
	s.log(at, DecisionDifficulty, fmt.Sprintf("%s -> %s", s.Difficulty, next), "rolling average of recent scores")
	s.Difficulty = next
}

func (s *State) terminate(phase Phase, reason TerminationReason) {
	s.Phase = phase
	s.Terminated = true
	s.TerminationReason = reason
	s.Pending = nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
