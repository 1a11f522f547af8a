package interview

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CorePlanLength is the size of the plan before any extension.
const CorePlanLength = 8

// Slot is one entry of the interview plan.
type Slot struct {
	Kind        TopicKind  `json:"kind"`
	Status      SlotStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	Extension   bool       `json:"extension,omitempty"`
}

// SlotRef points at a slot either in the core plan or in the closing topics.
type SlotRef struct {
	Index   int  `json:"index"`
	Closing bool `json:"closing,omitempty"`
	Slot    Slot `json:"slot"`
}

// Turn is one answered question.
type Turn struct {
	Number        int        `json:"number"`
	Topic         TopicKind  `json:"topic"`
	Skill         string     `json:"skill,omitempty"`
	Difficulty    Difficulty `json:"difficulty"`
	Question      string     `json:"question_text"`
	Answer        string     `json:"answer_text"`
	Score         float64    `json:"score"`
	Technical     float64    `json:"technical"`
	Communication float64    `json:"communication"`
	Culture       float64    `json:"culture"`
	Flags         []Flag     `json:"flags,omitempty"`
	Rationale     string     `json:"rationale,omitempty"`
	Strengths     []string   `json:"strengths,omitempty"`
	Concerns      []string   `json:"concerns,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

func (t Turn) HasFlag(flag Flag) bool {
	return slices.Contains(t.Flags, flag)
}

// IsStrike reports whether the turn adds a gaming strike. A turn adds at most one.
func (t Turn) IsStrike() bool {
	return slices.ContainsFunc(t.Flags, Flag.IsStrike)
}

// PendingQuestion is a question that was issued and awaits an answer.
type PendingQuestion struct {
	Ref        SlotRef    `json:"ref"`
	Question   string     `json:"question"`
	Skill      string     `json:"skill,omitempty"`
	Difficulty Difficulty `json:"difficulty"`
	IssuedAt   time.Time  `json:"issued_at"`
}

// Decision is an entry of the decision log.
type Decision struct {
	Timestamp time.Time    `json:"timestamp"`
	Turn      int          `json:"turn"`
	Type      DecisionType `json:"type"`
	Action    string       `json:"action"`
	Reasoning string       `json:"reasoning"`
}

// JobContext is the part of a job profile the engine needs.
type JobContext struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Level       string    `json:"level,omitempty"`
	Seniority   Seniority `json:"seniority"`
	Skills      []string  `json:"skills,omitempty"`
	Description string    `json:"description,omitempty"`
}

// State is the record of one interview.
type State struct {
	ID        string     `json:"id"`
	Candidate string     `json:"candidate,omitempty"`
	Job       JobContext `json:"job"`
	Phase     Phase      `json:"phase"`

	Plan         []Slot `json:"plan"`
	Closing      []Slot `json:"closing,omitempty"`
	CurrentIndex int    `json:"current_index"`

	Difficulty    Difficulty       `json:"difficulty"`
	History       []Turn           `json:"turn_history"`
	GamingStrikes int              `json:"gaming_strikes"`
	ExtensionUsed bool             `json:"extension_used"`
	Pending       *PendingQuestion `json:"pending,omitempty"`

	Terminated        bool              `json:"terminated"`
	TerminationReason TerminationReason `json:"termination_reason,omitempty"`

	Decisions []Decision `json:"decisions,omitempty"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BasePlan returns the core evaluation plan.
func BasePlan() []Slot {
	return []Slot{
		{Kind: TopicWarmup, Status: SlotPending, Description: "background and interest in the role"},
		{Kind: TopicBehavioral, Status: SlotPending, Description: "teamwork or conflict story"},
		{Kind: TopicBehavioral, Status: SlotPending, Description: "handling failure or pressure"},
		{Kind: TopicMotivation, Status: SlotPending, Description: "why this role and company"},
		{Kind: TopicTechnical, Status: SlotPending, Description: "core skill fundamentals"},
		{Kind: TopicTechnical, Status: SlotPending, Description: "applied problem solving"},
		{Kind: TopicScenario, Status: SlotPending, Description: "realistic situation on the job"},
		{Kind: TopicCulture, Status: SlotPending, Description: "values and working style"},
	}
}

// ClosingPlan returns the administrative topics offered after the core plan.
func ClosingPlan() []Slot {
	return []Slot{
		{Kind: TopicCandidateQuestions, Status: SlotPending, Description: "questions from the candidate"},
		{Kind: TopicWrapup, Status: SlotPending, Description: "closing remarks"},
	}
}

// NewState creates a session record in the CREATED phase.
func NewState(id, candidate string, job JobContext, cfg Config, now time.Time) *State {
	s := &State{
		ID:         id,
		Candidate:  candidate,
		Job:        job,
		Phase:      PhaseCreated,
		Plan:       BasePlan(),
		Difficulty: DifficultyMedium,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if s.Job.Seniority == "" {
		s.Job.Seniority = ParseSeniority(job.Level)
	}
	if cfg.ClosingTopics {
		s.Closing = ClosingPlan()
	}
	return s
}

// Clone returns a deep copy so a failed operation never leaks partial changes.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Job.Skills = slices.Clone(s.Job.Skills)
	c.Plan = slices.Clone(s.Plan)
	c.Closing = slices.Clone(s.Closing)
	c.Decisions = slices.Clone(s.Decisions)
	c.History = make([]Turn, len(s.History))
	for i, t := range s.History {
		t.Flags = slices.Clone(t.Flags)
		t.Strengths = slices.Clone(t.Strengths)
		t.Concerns = slices.Clone(t.Concerns)
		c.History[i] = t
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	return &c
}

// Scores returns the composite score of every recorded turn in order.
func (s *State) Scores() []float64 {
	scores := make([]float64, 0, len(s.History))
	for _, t := range s.History {
		scores = append(scores, t.Score)
	}
	return scores
}

// Answers returns the answer text of every recorded turn in order.
func (s *State) Answers() []string {
	answers := make([]string, 0, len(s.History))
	for _, t := range s.History {
		answers = append(answers, t.Answer)
	}
	return answers
}

// CoveredSkills returns skills already probed by technical turns.
func (s *State) CoveredSkills() []string {
	var skills []string
	for _, t := range s.History {
		if t.Skill != "" && !slices.Contains(skills, t.Skill) {
			skills = append(skills, t.Skill)
		}
	}
	if s.Pending != nil && s.Pending.Skill != "" && !slices.Contains(skills, s.Pending.Skill) {
		skills = append(skills, s.Pending.Skill)
	}
	return skills
}

// HasCriticalFlag reports whether any turn carries a critical red flag.
func (s *State) HasCriticalFlag() bool {
	for _, t := range s.History {
		if t.HasFlag(FlagCritical) {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of the record.
func (s *State) Validate() error {
	switch {
	case s.ExtensionUsed && len(s.Plan) != CorePlanLength+1:
		return fmt.Errorf("plan has %d slots with extension used", len(s.Plan))
	case !s.ExtensionUsed && len(s.Plan) != CorePlanLength:
		return fmt.Errorf("plan has %d slots without extension", len(s.Plan))
	case s.CurrentIndex < 0 || s.CurrentIndex > len(s.Plan):
		return fmt.Errorf("current index %d out of plan bounds %d", s.CurrentIndex, len(s.Plan))
	case s.GamingStrikes < 0:
		return fmt.Errorf("negative gaming strikes %d", s.GamingStrikes)
	case s.Terminated != s.Phase.IsTerminal():
		return fmt.Errorf("terminated=%t does not match phase %s", s.Terminated, s.Phase)
	}
	return nil
}

func (s *State) log(at time.Time, kind DecisionType, action, reasoning string) {
	s.Decisions = append(s.Decisions, Decision{
		Timestamp: at,
		Turn:      len(s.History),
		Type:      kind,
		Action:    action,
		Reasoning: reasoning,
	})
}

func (s *State) slot(ref SlotRef) *Slot {
	if ref.Closing {
		if ref.Index < 0 || ref.Index >= len(s.Closing) {
			return nil
		}
		return &s.Closing[ref.Index]
	}
	if ref.Index < 0 || ref.Index >= len(s.Plan) {
		return nil
	}
	return &s.Plan[ref.Index]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
