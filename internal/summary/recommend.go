package summary

import (
	"fmt"

	"github.com/spigell/hh-interviewer/internal/interview"
)

type Recommendation string

const (
	Proceed Recommendation = "PROCEED"
	Hold    Recommendation = "HOLD"
	Reject  Recommendation = "REJECT"
)

// Category is a mean score over the turns that feed it. Zero turns means no signal.
type Category struct {
	Score float64 `json:"score"`
	Turns int     `json:"turns"`
}

func (c Category) Covered() bool { return c.Turns > 0 }

// Scores are the category results a recommendation is derived from.
type Scores struct {
	Technical     Category `json:"technical"`
	Communication Category `json:"communication"`
	Culture       Category `json:"culture"`
}

func (s Scores) covered() []Category {
	out := make([]Category, 0, 3)
	for _, c := range []Category{s.Technical, s.Communication, s.Culture} {
		if c.Covered() {
			out = append(out, c)
		}
	}
	return out
}

// Overall weights the covered categories and renormalises over their weights.
func Overall(s Scores, w interview.Weights) float64 {
	var sum, weights float64
	add := func(c Category, weight float64) {
		if c.Covered() {
			sum += c.Score * weight
			weights += weight
		}
	}
	add(s.Technical, w.Technical)
	add(s.Communication, w.Communication)
	add(s.Culture, w.Culture)
	if weights == 0 {
		return 0
	}
	return round(sum / weights)
}

// Recommend applies the waterfall; the first matching rule wins.
func Recommend(s Scores, overall float64, critical bool, strikes int, cfg interview.Config) (Recommendation, string) {
	switch {
	case critical:
		return Reject, "critical red flag raised during the interview"
	case strikes > cfg.StrikeLimit:
		return Reject, fmt.Sprintf("%d gaming strikes exceed the limit of %d", strikes, cfg.StrikeLimit)
	case overall < cfg.HoldThreshold:
		return Reject, fmt.Sprintf("overall %.1f is below %.0f", overall, cfg.HoldThreshold)
	case mixedSignal(s, cfg):
		return Hold, fmt.Sprintf("mixed signal: one category at or above %.0f while another is below %.0f", cfg.MixedHigh, cfg.MixedLow)
	case overall < cfg.ProceedThreshold:
		return Hold, fmt.Sprintf("overall %.1f is in the hold band", overall)
	default:
		return Proceed, fmt.Sprintf("overall %.1f with no red flags", overall)
	}
}

func mixedSignal(s Scores, cfg interview.Config) bool {
	var high, low bool
	for _, c := range s.covered() {
		if c.Score >= cfg.MixedHigh {
			high = true
		}
		if c.Score < cfg.MixedLow {
			low = true
		}
	}
	return high && low
}
