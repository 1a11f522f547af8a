package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsDropsBlankPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []StringField
		expect map[string]string
	}{
		{
			name:   "nothing supplied",
			expect: map[string]string{},
		},
		{
			name: "trims keys and values",
			fields: []StringField{
				{Key: " interview_id ", Value: " INT-7 "},
			},
			expect: map[string]string{"interview_id": "INT-7"},
		},
		{
			name: "skips blank value and blank key",
			fields: []StringField{
				{Key: FieldCandidate, Value: "Ada"},
				{Key: FieldJob, Value: "   "},
				{Key: " ", Value: "orphan"},
			},
			expect: map[string]string{FieldCandidate: "Ada"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := StringFields(tt.fields...)
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %d fields, got %d: %+v", len(tt.expect), len(got), got)
			}
			for _, f := range got {
				if want, ok := tt.expect[f.Key]; !ok || f.String != want {
					t.Fatalf("unexpected field %s=%q", f.Key, f.String)
				}
			}
		})
	}
}

func TestWithFieldsFallsBackToNop(t *testing.T) {
	log := WithFields(nil, zap.String("component", "judge"))
	if log == nil {
		t.Fatalf("expected a no-op logger for nil input")
	}
	log.Info("dropped")

	core, _ := observer.New(zapcore.InfoLevel)
	base := zap.New(core)
	if WithFields(base) != base {
		t.Fatalf("expected the same logger when no fields are given")
	}
}

func TestProviderAndSessionFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	log := WithProvider(zap.New(core), " gemini ", "gemini-2.5-flash")
	WithSession(log, "INT-1", "  Ada  ", "").Info("turn recorded")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	want := map[string]string{
		FieldProvider:  "gemini",
		FieldModel:     "gemini-2.5-flash",
		FieldInterview: "INT-1",
		FieldCandidate: "Ada",
	}
	for key, value := range want {
		if ctx[key] != value {
			t.Fatalf("expected %s=%q, got %v", key, value, ctx[key])
		}
	}
	if _, ok := ctx[FieldJob]; ok {
		t.Fatalf("expected empty job id to be omitted")
	}
}
