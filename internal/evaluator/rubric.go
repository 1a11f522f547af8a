package evaluator

import (
	"strings"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/interview"
)

// RubricOverride replaces parts of the stock rubric for one topic kind. Job profiles carry
// these to tune grading per role.
type RubricOverride struct {
	Focus    string   `yaml:"focus" mapstructure:"focus" json:"focus,omitempty"`
	Criteria []string `yaml:"criteria" mapstructure:"criteria" json:"criteria,omitempty"`
	RedFlags []string `yaml:"red_flags" mapstructure:"red-flags" json:"red_flags,omitempty"`
}

type baseRubric struct {
	focus    string
	criteria []string
	redFlags []string
}

var baseRubrics = map[interview.TopicKind]baseRubric{
	interview.TopicTechnical: {
		focus:    "correctness and depth of domain knowledge",
		criteria: []string{"states facts that are correct", "explains the mechanism, not only the name", "gives a concrete example"},
		redFlags: []string{"confidently wrong statements", "buzzwords with no substance"},
	},
	interview.TopicScenario: {
		focus:    "applying knowledge to a realistic situation",
		criteria: []string{"clarifies constraints before solving", "walks through a workable plan", "considers failure modes"},
		redFlags: []string{"jumps to a tool without reasoning", "ignores the stated constraints"},
	},
	interview.TopicBehavioral: {
		focus:    "ownership and clarity of a real past situation",
		criteria: []string{"describes a specific situation", "explains personal actions", "reports a measurable outcome"},
		redFlags: []string{"blames others", "hypothetical instead of real experience"},
	},
	interview.TopicMotivation: {
		focus:    "genuine interest in the role and the company",
		criteria: []string{"connects past experience to the role", "names specific reasons"},
		redFlags: []string{"only talks about compensation", "knows nothing about the role"},
	},
	interview.TopicCulture: {
		focus:    "working style and values",
		criteria: []string{"gives examples of collaboration", "shows self-awareness"},
		redFlags: []string{"dismissive of teammates", "inflexible about feedback"},
	},
}

var seniorityFocus = map[interview.Seniority]string{
	interview.SeniorityJunior: "grade conceptual correctness and clear structure; do not expect production trade-offs",
	interview.SeniorityMid:    "grade correctness and structure, and reward awareness of trade-offs",
	interview.SenioritySenior: "grade architectural trade-off depth, scale concerns and risk handling",
}

var difficultyCriteria = map[interview.Difficulty]string{
	interview.DifficultyEasy:   "a correct basic explanation is enough for a good score",
	interview.DifficultyMedium: "expects reasoning beyond definitions",
	interview.DifficultyHard:   "expects edge cases and alternatives to be discussed",
}

// SelectRubric builds the grading rubric for a topic, difficulty and seniority band.
// Overrides keyed by topic kind replace the matching parts of the stock rubric.
func SelectRubric(topic interview.TopicKind, difficulty interview.Difficulty, seniority interview.Seniority, skill string, overrides map[string]RubricOverride) ai.Rubric {
	base, ok := baseRubrics[topic]
	if !ok {
		base = baseRubric{focus: "clarity and relevance of the answer"}
	}
	if seniority == "" {
		seniority = interview.SeniorityMid
	}

	focus := base.focus
	criteria := append([]string(nil), base.criteria...)
	redFlags := append([]string(nil), base.redFlags...)

	if o, ok := overrides[string(topic)]; ok {
		if f := strings.TrimSpace(o.Focus); f != "" {
			focus = f
		}
		if len(o.Criteria) > 0 {
			criteria = append([]string(nil), o.Criteria...)
		}
		if len(o.RedFlags) > 0 {
			redFlags = append([]string(nil), o.RedFlags...)
		}
	}

	if band, ok := seniorityFocus[seniority]; ok {
		focus += "; " + band
	}
	if d, ok := difficultyCriteria[difficulty]; ok {
		criteria = append(criteria, d)
	}

	return ai.Rubric{
		Topic:      string(topic),
		Difficulty: string(difficulty),
		Seniority:  string(seniority),
		Skill:      skill,
		Focus:      focus,
		Criteria:   criteria,
		RedFlags:   redFlags,
	}
}
