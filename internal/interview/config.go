package interview

import (
	"errors"
	"fmt"
	"time"
)

// Weights for the report categories.
type Weights struct {
	Technical     float64 `mapstructure:"technical" json:"technical"`
	Communication float64 `mapstructure:"communication" json:"communication"`
	Culture       float64 `mapstructure:"culture" json:"culture"`
}

// Config holds the policy thresholds of the engine. It is passed by value and never mutated
// after construction.
type Config struct {
	// SimilarityThreshold marks a turn repetitive when the overlap ratio with any prior
	// answer is strictly above it.
	SimilarityThreshold float64 `mapstructure:"similarity-threshold"`
	// StrikeLimit is the number of strikes tolerated; one more auto-rejects.
	StrikeLimit int `mapstructure:"strike-limit"`

	ProceedThreshold float64 `mapstructure:"proceed-threshold"`
	HoldThreshold    float64 `mapstructure:"hold-threshold"`
	MixedHigh        float64 `mapstructure:"mixed-high"`
	MixedLow         float64 `mapstructure:"mixed-low"`

	HardThreshold    float64 `mapstructure:"hard-threshold"`
	MediumThreshold  float64 `mapstructure:"medium-threshold"`
	DifficultyWindow int     `mapstructure:"difficulty-window"`

	GapThreshold    float64 `mapstructure:"gap-threshold"`
	StrongThreshold float64 `mapstructure:"strong-threshold"`

	RepetitiveCap       float64 `mapstructure:"repetitive-cap"`
	AdministrativeScore float64 `mapstructure:"administrative-score"`
	STARPenalty         float64 `mapstructure:"star-penalty"`

	Weights Weights `mapstructure:"weights"`

	// ClosingTopics appends candidate questions and wrap-up after the core plan.
	ClosingTopics bool          `mapstructure:"closing-topics"`
	JudgeTimeout  time.Duration `mapstructure:"judge-timeout"`
}

// DefaultConfig returns the stock policy.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.85,
		StrikeLimit:         2,
		ProceedThreshold:    75,
		HoldThreshold:       60,
		MixedHigh:           80,
		MixedLow:            50,
		HardThreshold:       75,
		MediumThreshold:     50,
		DifficultyWindow:    3,
		GapThreshold:        40,
		StrongThreshold:     65,
		RepetitiveCap:       20,
		AdministrativeScore: 50,
		STARPenalty:         15,
		Weights: Weights{
			Technical:     0.5,
			Communication: 0.3,
			Culture:       0.2,
		},
		ClosingTopics: true,
		JudgeTimeout:  30 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0,1], got %v", c.SimilarityThreshold)
	}
	if c.StrikeLimit < 0 {
		return fmt.Errorf("strike limit must not be negative, got %d", c.StrikeLimit)
	}
	if c.HoldThreshold > c.ProceedThreshold {
		return fmt.Errorf("hold threshold %v is above proceed threshold %v", c.HoldThreshold, c.ProceedThreshold)
	}
	if c.MediumThreshold > c.HardThreshold {
		return fmt.Errorf("medium threshold %v is above hard threshold %v", c.MediumThreshold, c.HardThreshold)
	}
	if c.DifficultyWindow <= 0 {
		return errors.New("difficulty window must be positive")
	}
	w := c.Weights
	if w.Technical < 0 || w.Communication < 0 || w.Culture < 0 {
		return errors.New("weights must not be negative")
	}
	if w.Technical+w.Communication+w.Culture == 0 {
		return errors.New("at least one weight must be positive")
	}
	if c.JudgeTimeout <= 0 {
		return errors.New("judge timeout must be positive")
	}
	return nil
}
