package ai

import (
	"context"
	"errors"
	"time"
)

// ErrMalformedOutput is returned when a model response cannot be parsed.
var ErrMalformedOutput = errors.New("malformed model output")

// Rubric constrains how the judge grades one answer.
type Rubric struct {
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	Seniority  string   `json:"seniority"`
	Skill      string   `json:"skill,omitempty"`
	Focus      string   `json:"focus"`
	Criteria   []string `json:"criteria,omitempty"`
	RedFlags   []string `json:"red_flags,omitempty"`
}

// Judgment is the judge verdict on a 0-10 scale per dimension.
type Judgment struct {
	Technical     float64
	Communication float64
	Structure     float64
	Confidence    float64
	Rationale     string
	Strengths     []string
	Improvements  []string
	Raw           string
}

// Judge grades a single answer against a rubric. Implementations must give up after
// timeout and report it as an error.
type Judge interface {
	Judge(ctx context.Context, rubric Rubric, question, answer string, timeout time.Duration) (*Judgment, error)
}

// Exchange is a prior question and answer passed to the question generator for bridging.
type Exchange struct {
	Topic    string
	Question string
	Answer   string
}

// QuestionRequest describes the next question to produce.
type QuestionRequest struct {
	Topic       string
	Description string
	Difficulty  string
	Skill       string
	JobTitle    string
	JobLevel    string
	JobSummary  string
	History     []Exchange
}

// QuestionGenerator produces plain question text.
type QuestionGenerator interface {
	Generate(ctx context.Context, req QuestionRequest) (string, error)
}
