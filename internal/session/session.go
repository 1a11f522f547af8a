// Package session runs interviews on top of the pure state machine. It owns the
// collaborator calls, per-session serialisation and persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/evaluator"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/jobs"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/metrics"
	"github.com/spigell/hh-interviewer/internal/storage"
	"github.com/spigell/hh-interviewer/internal/summary"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	idPrefix           = "INT-"
	defaultRetryDelay  = time.Second
	defaultSyncTimeout = 10 * time.Second
)

// Evaluator grades one answer.
type Evaluator interface {
	Evaluate(ctx context.Context, in evaluator.Input) (*evaluator.Result, error)
}

// Syncer receives finished interviews.
type Syncer interface {
	Sync(ctx context.Context, s *interview.State, r *summary.Report) error
}

// Deps are the collaborators of the service. Questioner, Evaluator and Store are required.
type Deps struct {
	Questioner ai.QuestionGenerator
	Evaluator  Evaluator
	Store      storage.Store
	ATS        Syncer
	Jobs       *jobs.Catalog
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	// RetryDelay is the pause before the single question retry.
	RetryDelay time.Duration
	Now        func() time.Time
	NewID      func() string
}

type Service struct {
	cfg  interview.Config
	deps Deps

	mu       sync.Mutex
	sessions map[string]*entry
	active   int
}

// entry serialises operations on one session. The lock is never held across a capability
// call; busy marks that one is running.
type entry struct {
	mu     sync.Mutex
	state  *interview.State
	busy   bool
	cancel context.CancelFunc
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	version int
}

func New(cfg interview.Config, deps Deps) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid interview config: %w", err)
	}
	switch {
	case deps.Questioner == nil:
		return nil, errors.New("question generator is required")
	case deps.Evaluator == nil:
		return nil, errors.New("evaluator is required")
	case deps.Store == nil:
		return nil, errors.New("store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = defaultRetryDelay
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.NewID == nil {
		deps.NewID = func() string { return idPrefix + uuid.NewString() }
	}

	return &Service{
		cfg:      cfg,
		deps:     deps,
		sessions: map[string]*entry{},
	}, nil
}

// Question is an issued question awaiting an answer.
type Question struct {
	InterviewID string               `json:"interview_id"`
	Number      int                  `json:"number"`
	Topic       interview.TopicKind  `json:"topic"`
	Skill       string               `json:"skill,omitempty"`
	Difficulty  interview.Difficulty `json:"difficulty"`
	Text        string               `json:"text"`
	Closing     bool                 `json:"closing,omitempty"`
	Extension   bool                 `json:"extension,omitempty"`
}

// Create starts a session in the CREATED phase. An empty job id is allowed only when the
// catalog holds a single profile, or when no catalog is configured.
func (svc *Service) Create(ctx context.Context, candidate, jobID string) (*interview.State, error) {
	job, err := svc.jobContext(jobID)
	if err != nil {
		return nil, err
	}

	s := interview.NewState(svc.deps.NewID(), strings.TrimSpace(candidate), job, svc.cfg, svc.deps.Now())
	if err := svc.deps.Store.SaveSnapshot(ctx, s); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	svc.mu.Lock()
	svc.sessions[s.ID] = &entry{state: s}
	svc.mu.Unlock()
	svc.adjustActive(1)

	svc.log(s).Info("interview created")
	return s.Clone(), nil
}

// Disclose shows the disclosure and moves the session on to consent.
func (svc *Service) Disclose(ctx context.Context, id string) (*interview.State, string, error) {
	s, err := svc.apply(ctx, id, interview.Event{Kind: interview.EventDisclose})
	if err != nil {
		return nil, "", err
	}
	return s, interview.DisclosureText, nil
}

// Consent records the candidate's reply. Anything but a clear yes ends the session.
func (svc *Service) Consent(ctx context.Context, id, reply string) (*interview.State, error) {
	return svc.apply(ctx, id, interview.Event{Kind: interview.EventConsent, ConsentReply: reply})
}

// Skip drops the pending question, for example after repeated evaluation failures.
func (svc *Service) Skip(ctx context.Context, id, reason string) (*interview.State, error) {
	return svc.apply(ctx, id, interview.Event{Kind: interview.EventSkipTurn, Reason: reason})
}

// Finish ends the interview and stores the report.
func (svc *Service) Finish(ctx context.Context, id string) (*interview.State, error) {
	return svc.apply(ctx, id, interview.Event{Kind: interview.EventFinish})
}

// Withdraw terminates the session at once. A running evaluation is cancelled and its
// result is discarded.
func (svc *Service) Withdraw(ctx context.Context, id, reason string) (*interview.State, error) {
	e, err := svc.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	return svc.commit(ctx, e, interview.Event{Kind: interview.EventWithdraw, Reason: reason})
}

// Get returns a copy of the current state.
func (svc *Service) Get(ctx context.Context, id string) (*interview.State, error) {
	e, err := svc.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), nil
}

// Report returns the final report of a terminated session.
func (svc *Service) Report(ctx context.Context, id string) (*summary.Report, error) {
	s, err := svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Terminated {
		return nil, fmt.Errorf("%w: report is available once the interview ends, session is %s", interview.ErrInvalidTransition, s.Phase)
	}

	r, err := svc.deps.Store.LoadReport(ctx, id)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, interview.ErrNotFound) {
		return nil, fmt.Errorf("load report: %w", err)
	}
	// Aggregation is deterministic, so a missing report can be rebuilt.
	return summary.Aggregate(s, svc.cfg), nil
}

// apply runs a local transition under the session lock.
func (svc *Service) apply(ctx context.Context, id string, ev interview.Event) (*interview.State, error) {
	e, err := svc.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy {
		return nil, fmt.Errorf("%w: another request for %s is in flight", interview.ErrInvalidTransition, id)
	}
	return svc.commit(ctx, e, ev)
}

// commit runs the transition and its effects. The new state replaces the old one only after
// it was persisted. Callers hold e.mu.
func (svc *Service) commit(ctx context.Context, e *entry, ev interview.Event) (*interview.State, error) {
	if ev.At.IsZero() {
		ev.At = svc.deps.Now()
	}

	next, effects, err := interview.Transition(e.state, ev, svc.cfg)
	if err != nil {
		return nil, err
	}
	if err := svc.execute(ctx, next, effects); err != nil {
		return nil, err
	}

	prev := e.state
	e.state = next
	svc.observe(prev, next)
	return next.Clone(), nil
}

func (svc *Service) execute(ctx context.Context, s *interview.State, effects []interview.Effect) error {
	var report *summary.Report
	for _, effect := range effects {
		switch effect.Kind {
		case interview.EffectSaveSnapshot:
			if err := svc.deps.Store.SaveSnapshot(ctx, s); err != nil {
				return fmt.Errorf("save snapshot: %w", err)
			}
		case interview.EffectSaveReport:
			report = summary.Aggregate(s, svc.cfg)
			if err := svc.deps.Store.SaveReport(ctx, s.ID, report); err != nil {
				return fmt.Errorf("save report: %w", err)
			}
			svc.deps.Metrics.ObserveRecommendation(string(report.Recommendation))
			svc.log(s).Info("interview report stored",
				zap.String("recommendation", string(report.Recommendation)),
				zap.Float64("overall", report.Overall),
			)
		case interview.EffectSyncATS:
			svc.syncATS(ctx, s, report)
		}
	}
	return nil
}

// syncATS never fails the interview; errors are logged.
func (svc *Service) syncATS(ctx context.Context, s *interview.State, r *summary.Report) {
	if svc.deps.ATS == nil {
		return
	}
	if r == nil {
		r = summary.Aggregate(s, svc.cfg)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultSyncTimeout)
	defer cancel()
	if err := svc.deps.ATS.Sync(ctx, s, r); err != nil {
		svc.log(s).Warn("ats sync failed", zap.Error(err))
	}
}

// lookup returns the live entry, resuming it from the latest snapshot when needed.
// Terminated sessions are served from the store and never cached.
func (svc *Service) lookup(ctx context.Context, id string) (*entry, error) {
	svc.mu.Lock()
	e, ok := svc.sessions[id]
	svc.mu.Unlock()
	if ok {
		return e, nil
	}

	s, err := svc.deps.Store.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s is corrupt: %w", id, err)
	}
	if s.Terminated {
		return &entry{state: s}, nil
	}

	svc.mu.Lock()
	if existing, ok := svc.sessions[id]; ok {
		svc.mu.Unlock()
		return existing, nil
	}
	e = &entry{state: s}
	svc.sessions[id] = e
	svc.active++
	svc.deps.Metrics.SetActiveSessions(svc.active)
	svc.mu.Unlock()

	svc.log(s).Info("interview resumed from snapshot",
		zap.String("phase", string(s.Phase)),
		zap.Int("turns", len(s.History)),
	)
	return e, nil
}

// start marks the session busy and hands out a copy of the state for work done outside
// the lock.
func (e *entry) start(ctx context.Context) (*interview.State, *flight, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.busy {
		return nil, nil, fmt.Errorf("%w: another request for %s is in flight", interview.ErrInvalidTransition, e.state.ID)
	}
	if e.state.Terminated {
		return nil, nil, fmt.Errorf("%w: session is %s", interview.ErrInvalidTransition, e.state.Phase)
	}

	fctx, cancel := context.WithCancel(ctx)
	e.busy = true
	e.cancel = cancel
	return e.state.Clone(), &flight{ctx: fctx, cancel: cancel, version: e.state.Version}, nil
}

// end clears the busy mark. It fails when the session moved on in the meantime, so a late
// result is discarded. Callers hold e.mu.
func (e *entry) end(f *flight) error {
	f.cancel()
	e.busy = false
	e.cancel = nil
	if e.state.Version != f.version {
		return fmt.Errorf("%w: session %s changed to %s while the request was running", interview.ErrInvalidTransition, e.state.ID, e.state.Phase)
	}
	return nil
}

func (svc *Service) jobContext(jobID string) (interview.JobContext, error) {
	if svc.deps.Jobs == nil {
		if jobID == "" {
			return interview.JobContext{}, nil
		}
		return interview.JobContext{ID: jobID, Title: jobID, Seniority: interview.SeniorityMid}, nil
	}
	p, err := svc.deps.Jobs.Get(jobID)
	if err != nil {
		return interview.JobContext{}, err
	}
	return p.Context(), nil
}

func (svc *Service) overrides(s *interview.State) map[string]evaluator.RubricOverride {
	if svc.deps.Jobs == nil || s.Job.ID == "" {
		return nil
	}
	p, err := svc.deps.Jobs.Get(s.Job.ID)
	if err != nil {
		return nil
	}
	return p.Rubrics
}

func (svc *Service) observe(prev, next *interview.State) {
	if len(next.History) > len(prev.History) {
		t := next.History[len(next.History)-1]
		flags := make([]string, len(t.Flags))
		for i, f := range t.Flags {
			flags[i] = string(f)
		}
		svc.deps.Metrics.ObserveTurn(t.Topic.String(), flags)
	}
	if next.Terminated && !prev.Terminated {
		svc.deps.Metrics.ObserveTermination(string(next.TerminationReason))
		svc.log(next).Info("interview terminated",
			zap.String("phase", string(next.Phase)),
			zap.String("reason", string(next.TerminationReason)),
			zap.Int("turns", len(next.History)),
			zap.Int("gaming_strikes", next.GamingStrikes),
		)
		svc.retire(next.ID)
	}
}

// retire drops a terminated session from memory. Its snapshot and report are already
// persisted, so later reads resume it from the store.
func (svc *Service) retire(id string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.sessions, id)
	svc.active--
	svc.deps.Metrics.SetActiveSessions(svc.active)
}

func (svc *Service) adjustActive(delta int) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.active += delta
	svc.deps.Metrics.SetActiveSessions(svc.active)
}

func (svc *Service) log(s *interview.State) *zap.Logger {
	return logger.WithSession(svc.deps.Logger, s.ID, s.Candidate, s.Job.ID)
}
