// Package summary turns a finished interview into a report and a hiring recommendation.
package summary

import (
	"fmt"
	"math"
	"slices"

	"github.com/spigell/hh-interviewer/internal/interview"
)

const terminatedEarly = "Interview terminated early"

type Report struct {
	InterviewID       string                      `json:"interview_id"`
	Candidate         string                      `json:"candidate,omitempty"`
	JobID             string                      `json:"job_id,omitempty"`
	JobTitle          string                      `json:"job_title,omitempty"`
	Phase             interview.Phase             `json:"phase"`
	TerminationReason interview.TerminationReason `json:"termination_reason,omitempty"`

	Scores         Scores         `json:"scores"`
	Overall        float64        `json:"overall"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      string         `json:"reasoning"`

	Flags         []interview.Flag       `json:"flags,omitempty"`
	FlagCounts    map[interview.Flag]int `json:"flag_counts,omitempty"`
	GamingStrikes int                    `json:"gaming_strikes"`
	ExtensionUsed bool                   `json:"extension_used"`
	Turns         int                    `json:"turns"`

	Highlights   []string             `json:"highlights,omitempty"`
	Concerns     []string             `json:"concerns,omitempty"`
	AreasToProbe []string             `json:"areas_to_probe,omitempty"`
	Decisions    []interview.Decision `json:"decisions,omitempty"`
}

// Aggregate builds the report. It reads the state only, so running it twice on the same
// history gives the same report.
func Aggregate(s *interview.State, cfg interview.Config) *Report {
	scores := CategoryScores(s.History)
	overall := Overall(scores, cfg.Weights)
	critical := s.HasCriticalFlag()
	rec, reasoning := Recommend(scores, overall, critical, s.GamingStrikes, cfg)

	r := &Report{
		InterviewID:       s.ID,
		Candidate:         s.Candidate,
		JobID:             s.Job.ID,
		JobTitle:          s.Job.Title,
		Phase:             s.Phase,
		TerminationReason: s.TerminationReason,
		Scores:            scores,
		Overall:           overall,
		Recommendation:    rec,
		Reasoning:         reasoning,
		GamingStrikes:     s.GamingStrikes,
		ExtensionUsed:     s.ExtensionUsed,
		Turns:             len(s.History),
		Decisions:         slices.Clone(s.Decisions),
	}

	r.Flags, r.FlagCounts = collectFlags(s.History)

	var strengths, concerns []string
	if endedEarly(s) {
		concerns = append(concerns, terminatedEarly)
	}
	for _, t := range s.History {
		strengths = append(strengths, t.Strengths...)
		concerns = append(concerns, t.Concerns...)
	}
	r.Highlights = FilterInsights(strengths)
	r.Concerns = FilterInsights(concerns)
	r.AreasToProbe = areasToProbe(s.History, cfg.GapThreshold)

	return r
}

// CategoryScores averages each category over the turns that carry signal for it.
// Administrative turns feed no category.
func CategoryScores(history []interview.Turn) Scores {
	var tech, comm, culture []float64
	for _, t := range history {
		if t.Topic.IsAdministrative() {
			continue
		}
		comm = append(comm, t.Communication)
		if t.Topic.IsTechnical() {
			tech = append(tech, t.Technical)
		}
		switch t.Topic {
		case interview.TopicBehavioral, interview.TopicMotivation, interview.TopicCulture:
			culture = append(culture, t.Culture)
		}
	}
	return Scores{
		Technical:     category(tech),
		Communication: category(comm),
		Culture:       category(culture),
	}
}

func category(values []float64) Category {
	if len(values) == 0 {
		return Category{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Category{Score: round(sum / float64(len(values))), Turns: len(values)}
}

func collectFlags(history []interview.Turn) ([]interview.Flag, map[interview.Flag]int) {
	counts := map[interview.Flag]int{}
	for _, t := range history {
		for _, f := range t.Flags {
			counts[f]++
		}
	}
	if len(counts) == 0 {
		return nil, nil
	}
	var flags []interview.Flag
	for _, f := range interview.AllFlags() {
		if counts[f] > 0 {
			flags = append(flags, f)
		}
	}
	return flags, counts
}

func areasToProbe(history []interview.Turn, gap float64) []string {
	var out []string
	for _, t := range history {
		if !t.Topic.IsTechnical() || t.Score >= gap {
			continue
		}
		subject := t.Skill
		if subject == "" {
			subject = t.Topic.String()
		}
		area := fmt.Sprintf("Deep dive on: %s", subject)
		if !slices.Contains(out, area) {
			out = append(out, area)
		}
	}
	return out
}

// endedEarly reports whether the interview stopped with slots never answered or skipped.
func endedEarly(s *interview.State) bool {
	open := func(slot interview.Slot) bool {
		return slot.Status == interview.SlotPending || slot.Status == interview.SlotAsked
	}
	return slices.ContainsFunc(s.Plan, open) || slices.ContainsFunc(s.Closing, open)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
