package interview

// TopicKind is the kind of a plan slot.
type TopicKind string

const (
	TopicWarmup             TopicKind = "warmup"
	TopicBehavioral         TopicKind = "behavioral"
	TopicMotivation         TopicKind = "motivation"
	TopicTechnical          TopicKind = "technical"
	TopicScenario           TopicKind = "scenario"
	TopicCulture            TopicKind = "culture"
	TopicCandidateQuestions TopicKind = "candidate_questions"
	TopicWrapup             TopicKind = "wrapup"
	TopicConsent            TopicKind = "consent"
	TopicClarification      TopicKind = "clarification"
)

// AllTopicKinds returns every known topic kind.
func AllTopicKinds() []TopicKind {
	return []TopicKind{
		TopicWarmup,
		TopicBehavioral,
		TopicMotivation,
		TopicTechnical,
		TopicScenario,
		TopicCulture,
		TopicCandidateQuestions,
		TopicWrapup,
		TopicConsent,
		TopicClarification,
	}
}

func (k TopicKind) IsValid() bool {
	switch k {
	case TopicWarmup, TopicBehavioral, TopicMotivation, TopicTechnical, TopicScenario,
		TopicCulture, TopicCandidateQuestions, TopicWrapup, TopicConsent, TopicClarification:
		return true
	default:
		return false
	}
}

// IsTechnical reports whether answers on this topic are graded for domain knowledge.
func (k TopicKind) IsTechnical() bool {
	return k == TopicTechnical || k == TopicScenario
}

// IsAdministrative reports whether the topic gets a fixed score band instead of judgment.
func (k TopicKind) IsAdministrative() bool {
	switch k {
	case TopicWarmup, TopicCandidateQuestions, TopicWrapup, TopicConsent, TopicClarification:
		return true
	default:
		return false
	}
}

// IsSTAR reports whether answers are expected to follow situation/task/action/result.
func (k TopicKind) IsSTAR() bool {
	return k == TopicBehavioral
}

func (k TopicKind) String() string { return string(k) }

// SlotStatus tracks a plan slot through the interview.
type SlotStatus string

const (
	SlotPending  SlotStatus = "pending"
	SlotAsked    SlotStatus = "asked"
	SlotAnswered SlotStatus = "answered"
	SlotSkipped  SlotStatus = "skipped"
)

// Difficulty of the next question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// Flag is a verdict attached to a turn by the evaluator.
type Flag string

const (
	FlagIrrelevant     Flag = "IRRELEVANT"
	FlagRepetitive     Flag = "REPETITIVE"
	FlagSTARIncomplete Flag = "STAR_INCOMPLETE"
	FlagCritical       Flag = "CRITICAL_RED_FLAG"
	FlagGibberish      Flag = "GIBBERISH"
)

// AllFlags returns every known flag.
func AllFlags() []Flag {
	return []Flag{FlagIrrelevant, FlagRepetitive, FlagSTARIncomplete, FlagCritical, FlagGibberish}
}

func (f Flag) IsValid() bool {
	switch f {
	case FlagIrrelevant, FlagRepetitive, FlagSTARIncomplete, FlagCritical, FlagGibberish:
		return true
	default:
		return false
	}
}

// IsStrike reports whether the flag counts as a gaming strike.
func (f Flag) IsStrike() bool {
	return f == FlagIrrelevant || f == FlagRepetitive
}

// Phase is the protocol state of a session.
type Phase string

const (
	PhaseCreated        Phase = "CREATED"
	PhaseDisclosureDone Phase = "DISCLOSURE_DONE"
	PhaseConsentGranted Phase = "CONSENT_GRANTED"
	PhaseInProgress     Phase = "IN_PROGRESS"
	PhaseCompleted      Phase = "COMPLETED"
	PhaseAutoRejected   Phase = "AUTO_REJECTED"
	PhaseWithdrawn      Phase = "WITHDRAWN"
)

func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseAutoRejected || p == PhaseWithdrawn
}

// TerminationReason explains why a session stopped.
type TerminationReason string

const (
	ReasonNone            TerminationReason = ""
	ReasonCompleted       TerminationReason = "completed"
	ReasonAutoReject      TerminationReason = "auto_reject"
	ReasonWithdrawn       TerminationReason = "withdrawn"
	ReasonConsentDeclined TerminationReason = "consent_declined"
)

// Seniority band used to pick a grading rubric.
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
)

// ParseSeniority maps free-form job levels onto a band. Unknown levels fall back to mid.
func ParseSeniority(level string) Seniority {
	switch normalize(level) {
	case "junior", "entry", "fresher", "intern", "graduate":
		return SeniorityJunior
	case "senior", "lead", "staff", "principal", "architect":
		return SenioritySenior
	default:
		return SeniorityMid
	}
}

// DecisionType classifies decision log entries.
type DecisionType string

const (
	DecisionDifficulty DecisionType = "difficulty"
	DecisionExtension  DecisionType = "extension"
	DecisionAutoReject DecisionType = "auto_reject"
	DecisionCompletion DecisionType = "completion"
	DecisionSkip       DecisionType = "skip"
	DecisionWithdraw   DecisionType = "withdraw"
)
