package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/jobs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes an optional body. An empty body leaves v untouched.
func readJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusOf maps engine errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, interview.ErrNotFound), errors.Is(err, jobs.ErrUnknownJob):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, interview.ErrEvaluationUnavailable), errors.Is(err, interview.ErrQuestionUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
