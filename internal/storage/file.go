package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"
)

// File stores one JSON document per record under a directory.
type File struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) SaveSnapshot(_ context.Context, s *interview.State) error {
	return f.write(s.ID, "snapshot", s)
}

func (f *File) LoadSnapshot(_ context.Context, id string) (*interview.State, error) {
	var s interview.State
	if err := f.read(id, "snapshot", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (f *File) SaveReport(_ context.Context, id string, r *summary.Report) error {
	return f.write(id, "report", r)
}

func (f *File) LoadReport(_ context.Context, id string) (*summary.Report, error) {
	var r summary.Report
	if err := f.read(id, "report", &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (f *File) Delete(_ context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, kind := range []string{"snapshot", "report"} {
		if err := os.Remove(f.path(id, kind)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) path(id, kind string) string {
	return filepath.Join(f.dir, id+"."+kind+".json")
}

// write replaces the record atomically through a temp file and rename.
func (f *File) write(id, kind string, v any) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, id+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(id, kind))
}

func (f *File) read(id, kind string, v any) error {
	if err := validID(id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path(id, kind))
	if errors.Is(err, fs.ErrNotExist) {
		return notFound(kind, id)
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	return nil
}
