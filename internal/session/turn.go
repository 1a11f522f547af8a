package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/evaluator"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/jobs"
	"github.com/spigell/hh-interviewer/internal/utils"

	"go.uber.org/zap"
)

// NextQuestion issues the question for the next slot. While a question is unanswered the
// same question is returned again.
func (svc *Service) NextQuestion(ctx context.Context, id string) (*Question, error) {
	e, err := svc.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if p := e.state.Pending; p != nil && !e.busy {
		q := pendingQuestion(e.state)
		e.mu.Unlock()
		return q, nil
	}
	e.mu.Unlock()

	s, f, err := e.start(ctx)
	if err != nil {
		return nil, err
	}

	ref, ok := interview.SelectNextTopic(s)
	if !ok || (s.Phase != interview.PhaseConsentGranted && s.Phase != interview.PhaseInProgress) {
		e.mu.Lock()
		_ = e.end(f)
		e.mu.Unlock()
		if !ok {
			return nil, fmt.Errorf("%w: no topics left", interview.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("%w: questions require consent, session is %s", interview.ErrInvalidTransition, s.Phase)
	}

	skill := ""
	if ref.Slot.Kind.IsTechnical() {
		skill = jobs.NextSkill(s.Job.Skills, s.CoveredSkills())
	}
	req := questionRequest(s, ref, skill)

	text, genErr := svc.generate(f.ctx, s, req)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.end(f); err != nil {
		return nil, err
	}
	if genErr != nil {
		return nil, genErr
	}

	if _, err := svc.commit(ctx, e, interview.Event{
		Kind:       interview.EventQuestionIssued,
		Ref:        ref,
		Question:   text,
		Skill:      skill,
		Difficulty: s.Difficulty,
	}); err != nil {
		return nil, err
	}
	return pendingQuestion(e.state), nil
}

// generate asks for a question and retries once after a short pause.
func (svc *Service) generate(ctx context.Context, s *interview.State, req ai.QuestionRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		text, err := svc.deps.Questioner.Generate(ctx, req)
		text = strings.TrimSpace(text)
		if err == nil && text != "" {
			return text, nil
		}
		if err == nil {
			err = errors.New("empty question")
		}
		lastErr = err

		svc.log(s).Warn("question generation failed",
			zap.String("topic", req.Topic),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == 1 {
			if err := utils.WaitFor(ctx, svc.deps.RetryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}
	return "", fmt.Errorf("%w: %w", interview.ErrQuestionUnavailable, lastErr)
}

// Answer evaluates the answer to the pending question and records the turn. On any error
// the session is left exactly as it was.
func (svc *Service) Answer(ctx context.Context, id, answer string) (*interview.State, *interview.Turn, error) {
	e, err := svc.lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	s, f, err := e.start(ctx)
	if err != nil {
		return nil, nil, err
	}
	if s.Pending == nil {
		e.mu.Lock()
		_ = e.end(f)
		e.mu.Unlock()
		return nil, nil, fmt.Errorf("%w: no question is awaiting an answer", interview.ErrInvalidTransition)
	}

	in := evaluator.Input{
		Topic:      s.Pending.Ref.Slot.Kind,
		Question:   s.Pending.Question,
		Answer:     answer,
		Skill:      s.Pending.Skill,
		Difficulty: s.Pending.Difficulty,
		Seniority:  s.Job.Seniority,
		History:    s.History,
		Overrides:  svc.overrides(s),
	}
	result, evalErr := svc.deps.Evaluator.Evaluate(f.ctx, in)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.end(f); err != nil {
		svc.log(s).Info("evaluation discarded", zap.Error(err))
		return nil, nil, err
	}
	if evalErr != nil {
		svc.log(s).Warn("evaluation failed; turn not recorded", zap.Error(evalErr))
		return nil, nil, evalErr
	}

	at := svc.deps.Now()
	next, err := svc.commit(ctx, e, interview.Event{
		Kind: interview.EventAnswerEvaluated,
		At:   at,
		Turn: result.Turn(in, at),
	})
	if err != nil {
		return nil, nil, err
	}

	turn := next.History[len(next.History)-1]
	svc.log(next).Info("turn recorded",
		zap.Int("turn", turn.Number),
		zap.String("topic", turn.Topic.String()),
		zap.Float64("score", turn.Score),
		zap.Any("flags", turn.Flags),
		zap.String("difficulty", string(next.Difficulty)),
	)
	return next, &turn, nil
}

func questionRequest(s *interview.State, ref interview.SlotRef, skill string) ai.QuestionRequest {
	history := make([]ai.Exchange, 0, len(s.History))
	for _, t := range s.History {
		history = append(history, ai.Exchange{Topic: t.Topic.String(), Question: t.Question, Answer: t.Answer})
	}
	return ai.QuestionRequest{
		Topic:       ref.Slot.Kind.String(),
		Description: ref.Slot.Description,
		Difficulty:  string(s.Difficulty),
		Skill:       skill,
		JobTitle:    s.Job.Title,
		JobLevel:    s.Job.Level,
		JobSummary:  s.Job.Description,
		History:     history,
	}
}

func pendingQuestion(s *interview.State) *Question {
	p := s.Pending
	return &Question{
		InterviewID: s.ID,
		Number:      len(s.History) + 1,
		Topic:       p.Ref.Slot.Kind,
		Skill:       p.Skill,
		Difficulty:  p.Difficulty,
		Text:        p.Question,
		Closing:     p.Ref.Closing,
		Extension:   p.Ref.Slot.Extension,
	}
}
