package interview

import "errors"

var (
	// ErrEvaluationUnavailable is returned when the judgment capability failed, timed out or
	// produced output that could not be parsed. The turn is not recorded.
	ErrEvaluationUnavailable = errors.New("evaluation unavailable")
	// ErrQuestionUnavailable is returned when no question text could be produced.
	ErrQuestionUnavailable = errors.New("question unavailable")
	// ErrInvalidTransition is returned when the session phase forbids the operation.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotFound is returned for unknown sessions.
	ErrNotFound = errors.New("session not found")
)
