package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatalf("write empty: %v", err)
	}

	t.Setenv("HH_INTERVIEWER_TEST_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{Name: "key", Value: "inline", File: keyFile}, want: "from-file"},
		{name: "inline value", src: Source{Value: " inline "}, want: "inline"},
		{name: "env fallback", src: Source{Env: "HH_INTERVIEWER_TEST_KEY"}, want: "from-env"},
		{name: "value beats env", src: Source{Value: "inline", Env: "HH_INTERVIEWER_TEST_KEY"}, want: "inline"},
		{name: "empty file", src: Source{Name: "key", File: emptyFile, Env: "HH_INTERVIEWER_TEST_KEY"}, wantErr: "is empty"},
		{name: "missing file", src: Source{Name: "key", File: filepath.Join(dir, "nope")}, wantErr: "reading key"},
		{name: "nothing configured", src: Source{Name: "api key"}, wantErr: "api key is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
