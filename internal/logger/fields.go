package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Field keys shared by every component that logs about a model call or an interview.
const (
	FieldProvider  = "ai_provider"
	FieldModel     = "ai_model"
	FieldInterview = "interview_id"
	FieldCandidate = "candidate"
	FieldJob       = "job_id"
)

type StringField struct {
	Key   string
	Value string
}

// StringFields builds zap string fields. Keys and values are trimmed, and a pair with
// either side blank is left out, so an unassigned job never shows up as job_id="".
func StringFields(fields ...StringField) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		key, value := strings.TrimSpace(f.Key), strings.TrimSpace(f.Value)
		if key == "" || value == "" {
			continue
		}
		out = append(out, zap.String(key, value))
	}
	return out
}

// WithFields returns log with fields attached. A nil log becomes a no-op logger.
func WithFields(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// ProviderFields names the model backend behind a judge or questioner.
func ProviderFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithProvider(log *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(log, ProviderFields(provider, model)...)
}

// SessionFields ties a log entry to one interview.
func SessionFields(interviewID, candidate, jobID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldInterview, Value: interviewID},
		StringField{Key: FieldCandidate, Value: candidate},
		StringField{Key: FieldJob, Value: jobID},
	)
}

func WithSession(log *zap.Logger, interviewID, candidate, jobID string) *zap.Logger {
	return WithFields(log, SessionFields(interviewID, candidate, jobID)...)
}
