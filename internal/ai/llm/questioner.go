package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/utils"

	"go.uber.org/zap"
)

//go:embed question_prompt.md
var questionPromptTemplate string

const (
	questionSystemPrompt = "You are a warm but rigorous interviewer. You only output JSON."
	// Only the most recent exchanges are bridged into the next question.
	historyWindow  = 4
	historyExcerpt = 300
)

// Questioner writes interview questions through a language model.
type Questioner struct {
	generator ContentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewQuestioner(generator ContentGenerator, maxLogLength int, logger *zap.Logger) *Questioner {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Questioner{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

func (q *Questioner) Generate(ctx context.Context, req ai.QuestionRequest) (string, error) {
	prompt := buildQuestionPrompt(req)

	q.logger.Debug("question request",
		zap.String("topic", req.Topic),
		zap.String("difficulty", req.Difficulty),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	raw, err := q.generator.GenerateContent(ctx, questionSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("question request: %w", err)
	}

	question, err := parseQuestion(raw)
	if err != nil {
		q.logger.Debug("unparseable question response",
			zap.String("response_preview", utils.TruncateForLog(raw, q.maxLogLen)),
		)
		return "", err
	}
	return question, nil
}

func buildQuestionPrompt(req ai.QuestionRequest) string {
	template := questionPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Ask one {{DIFFICULTY}} {{TOPIC}} interview question for a {{JOB_TITLE}}."
	}

	replacer := strings.NewReplacer(
		"{{JOB_TITLE}}", orNone(req.JobTitle),
		"{{JOB_LEVEL}}", orNone(req.JobLevel),
		"{{JOB_SUMMARY}}", orNone(req.JobSummary),
		"{{TOPIC}}", orNone(req.Topic),
		"{{DESCRIPTION}}", orNone(req.Description),
		"{{DIFFICULTY}}", orNone(req.Difficulty),
		"{{SKILL}}", orNone(req.Skill),
		"{{HISTORY}}", formatHistory(req.History),
	)
	return replacer.Replace(template)
}

func formatHistory(history []ai.Exchange) string {
	if len(history) == 0 {
		return "(interview just started)"
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	var b strings.Builder
	for i, ex := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- [%s] Q: %s\n  A: %s",
			ex.Topic,
			utils.TruncateForLog(sanitizeInput(ex.Question), historyExcerpt),
			utils.TruncateForLog(sanitizeInput(ex.Answer), historyExcerpt),
		)
	}
	return b.String()
}
