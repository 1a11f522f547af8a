package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/tokens"
	"github.com/spigell/hh-interviewer/internal/utils"

	"go.uber.org/zap"
)

// ContentGenerator is a model backend taking a system instruction and one user message.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed judge_prompt.md
var judgePromptTemplate string

const (
	judgeSystemPrompt   = "You are a strict, fair technical interviewer. You only output JSON."
	defaultMaxLogLength = 200
)

// Judge grades answers through a language model.
type Judge struct {
	generator ContentGenerator
	budget    *tokens.Budget
	logger    *zap.Logger
	maxLogLen int
}

func NewJudge(generator ContentGenerator, budget *tokens.Budget, maxLogLength int, logger *zap.Logger) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		budget:    budget,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (j *Judge) Judge(ctx context.Context, rubric ai.Rubric, question, answer string, timeout time.Duration) (*ai.Judgment, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("question is required")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if trimmed, cut := j.budget.Truncate(answer); cut {
		j.logger.Debug("answer trimmed to token budget",
			zap.Int("original_length", utf8.RuneCountInString(answer)),
			zap.Int("trimmed_length", utf8.RuneCountInString(trimmed)),
		)
		answer = trimmed
	}

	prompt := buildJudgePrompt(rubric, question, answer)

	j.logger.Debug("judge request",
		zap.String("topic", rubric.Topic),
		zap.String("difficulty", rubric.Difficulty),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, judgeSystemPrompt, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("judge timed out after %s: %w", timeout, context.DeadlineExceeded)
		}
		return nil, fmt.Errorf("judge request: %w", err)
	}

	j.logger.Debug("judge response",
		zap.String("topic", rubric.Topic),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return parseJudgment(raw)
}

func buildJudgePrompt(rubric ai.Rubric, question, answer string) string {
	template := judgePromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Rubric: {{FOCUS}}\n\nQuestion:\n{{QUESTION}}\n\nAnswer:\n{{ANSWER}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{TOPIC}}", orNone(rubric.Topic),
		"{{DIFFICULTY}}", orNone(rubric.Difficulty),
		"{{SENIORITY}}", orNone(rubric.Seniority),
		"{{SKILL}}", orNone(rubric.Skill),
		"{{FOCUS}}", orNone(rubric.Focus),
		"{{CRITERIA}}", bulletList(rubric.Criteria),
		"{{RED_FLAGS}}", bulletList(rubric.RedFlags),
		"{{QUESTION}}", sanitizeInput(question),
		"{{ANSWER}}", sanitizeInput(answer),
	)
	return replacer.Replace(template)
}

// sanitizeInput neutralizes markers a candidate could use to fake prompt sections.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(
		"[", "(",
		"]", ")",
		"<<<", "<",
		">>>", ">",
		"```", "'",
		"{{", "{",
		"}}", "}",
	).Replace(s)
	if s == "" {
		return "(empty)"
	}
	return s
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		item = strings.Join(strings.Fields(item), " ")
		if item == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(item)
	}
	if b.Len() == 0 {
		return "  - none"
	}
	return b.String()
}

func orNone(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "none"
	}
	return s
}
