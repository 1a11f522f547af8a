package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"
)

// Memory keeps records in process. Values are copied on the way in and out.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string]*interview.State
	reports   map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		snapshots: map[string]*interview.State{},
		reports:   map[string][]byte{},
	}
}

func (m *Memory) SaveSnapshot(_ context.Context, s *interview.State) error {
	if err := validID(s.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.ID] = s.Clone()
	return nil
}

func (m *Memory) LoadSnapshot(_ context.Context, id string) (*interview.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return nil, notFound("snapshot", id)
	}
	return s.Clone(), nil
}

func (m *Memory) SaveReport(_ context.Context, id string, r *summary.Report) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[id] = data
	return nil
}

func (m *Memory) LoadReport(_ context.Context, id string) (*summary.Report, error) {
	m.mu.RLock()
	data, ok := m.reports[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound("report", id)
	}
	var r summary.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	delete(m.reports, id)
	return nil
}

func (m *Memory) Close() error { return nil }
