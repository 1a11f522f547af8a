package interview

import (
	"testing"
)

func TestComputeDifficulty(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		name   string
		scores []float64
		expect Difficulty
	}{
		{name: "no scores defaults to medium", scores: nil, expect: DifficultyMedium},
		{name: "single strong score", scores: []float64{80}, expect: DifficultyHard},
		{name: "hard boundary is inclusive", scores: []float64{75}, expect: DifficultyHard},
		{name: "just below hard", scores: []float64{74.9}, expect: DifficultyMedium},
		{name: "medium boundary is inclusive", scores: []float64{50}, expect: DifficultyMedium},
		{name: "below medium", scores: []float64{49}, expect: DifficultyEasy},
		{name: "uses only last three", scores: []float64{100, 100, 90, 10, 10}, expect: DifficultyEasy},
		{name: "two scores use available subset", scores: []float64{70, 90}, expect: DifficultyHard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComputeDifficulty(cfg, tt.scores); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestSelectNextTopicFollowsPlanOrder(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	var kinds []TopicKind
	for {
		ref, ok := SelectNextTopic(s)
		if !ok {
			break
		}
		kinds = append(kinds, ref.Slot.Kind)
		s, _ = answerNext(t, s, cfg, 70)
	}

	expected := []TopicKind{
		TopicWarmup, TopicBehavioral, TopicBehavioral, TopicMotivation,
		TopicTechnical, TopicTechnical, TopicScenario, TopicCulture,
		TopicCandidateQuestions, TopicWrapup,
	}
	if len(kinds) != len(expected) {
		t.Fatalf("expected %d topics, got %d: %v", len(expected), len(kinds), kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Fatalf("topic %d: expected %s, got %s", i, expected[i], kinds[i])
		}
	}

	if !IsComplete(s) {
		t.Fatalf("expected session to be complete")
	}
	if s.Phase != PhaseCompleted || s.TerminationReason != ReasonCompleted {
		t.Fatalf("expected completed phase, got %s/%s", s.Phase, s.TerminationReason)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestSelectNextTopicWithoutClosingTopics(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClosingTopics = false
	s := startedState(t, cfg)

	for i := 0; i < CorePlanLength; i++ {
		s, _ = answerNext(t, s, cfg, 70)
	}

	if _, ok := SelectNextTopic(s); ok {
		t.Fatalf("expected no topic after the core plan")
	}
	if s.Phase != PhaseCompleted {
		t.Fatalf("expected completed, got %s", s.Phase)
	}
}

func TestExtensionInsertedAfterSingleTechnicalGap(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	// warmup, behavioral x2, motivation, technical x2 score well.
	for i := 0; i < 6; i++ {
		s, _ = answerNext(t, s, cfg, 80)
	}
	if s.ExtensionUsed {
		t.Fatalf("extension must not fire without a gap")
	}

	// Third technical-kind answer (scenario) falls below the gap.
	s, _ = answerNext(t, s, cfg, 30)

	if !s.ExtensionUsed {
		t.Fatalf("expected extension to be used")
	}
	if len(s.Plan) != CorePlanLength+1 {
		t.Fatalf("expected plan length 9, got %d", len(s.Plan))
	}

	ref, ok := SelectNextTopic(s)
	if !ok {
		t.Fatalf("expected next topic")
	}
	if ref.Index != 7 || ref.Slot.Kind != TopicTechnical || !ref.Slot.Extension {
		t.Fatalf("expected extension technical slot at 7, got %+v", ref)
	}
	if s.Plan[8].Kind != TopicCulture {
		t.Fatalf("expected culture to follow the extension, got %s", s.Plan[8].Kind)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}

	found := false
	for _, d := range s.Decisions {
		if d.Type == DecisionExtension {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected extension decision to be logged")
	}
}

func TestExtensionFiresOnlyOnce(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState("INT-1", "", JobContext{}, cfg, testNow)
	s.History = []Turn{
		{Topic: TopicWarmup, Score: 90},
		{Topic: TopicBehavioral, Score: 90},
		{Topic: TopicTechnical, Score: 30},
	}
	s.CurrentIndex = 3

	if !ConsiderExtension(s, cfg, testNow) {
		t.Fatalf("expected first extension to fire")
	}
	if ConsiderExtension(s, cfg, testNow) {
		t.Fatalf("expected second extension to be refused")
	}
	if len(s.Plan) != CorePlanLength+1 || !s.ExtensionUsed {
		t.Fatalf("unexpected plan state: len=%d used=%t", len(s.Plan), s.ExtensionUsed)
	}
}

func TestExtensionRequiresExactlyOneGapAndStrongAverage(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		name    string
		history []Turn
	}{
		{
			name: "two gaps",
			history: []Turn{
				{Topic: TopicTechnical, Score: 30},
				{Topic: TopicTechnical, Score: 20},
				{Topic: TopicBehavioral, Score: 100},
				{Topic: TopicBehavioral, Score: 100},
				{Topic: TopicBehavioral, Score: 100},
				{Topic: TopicBehavioral, Score: 100},
			},
		},
		{
			name: "weak average",
			history: []Turn{
				{Topic: TopicTechnical, Score: 30},
				{Topic: TopicBehavioral, Score: 60},
			},
		},
		{
			name: "gap on a non technical topic",
			history: []Turn{
				{Topic: TopicBehavioral, Score: 30},
				{Topic: TopicTechnical, Score: 100},
				{Topic: TopicTechnical, Score: 100},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewState("INT-1", "", JobContext{}, cfg, testNow)
			s.History = tt.history
			if ConsiderExtension(s, cfg, testNow) {
				t.Fatalf("extension must not fire")
			}
			if len(s.Plan) != CorePlanLength {
				t.Fatalf("plan must stay at %d slots, got %d", CorePlanLength, len(s.Plan))
			}
		})
	}
}

func TestGamingStrikesCountTurns(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	s, _ = answerNext(t, s, cfg, 10, FlagIrrelevant, FlagRepetitive)
	if s.GamingStrikes != 1 {
		t.Fatalf("a turn adds at most one strike, got %d", s.GamingStrikes)
	}

	s, _ = answerNext(t, s, cfg, 70, FlagSTARIncomplete)
	if s.GamingStrikes != 1 {
		t.Fatalf("non gaming flags must not add strikes, got %d", s.GamingStrikes)
	}

	s, _ = answerNext(t, s, cfg, 15, FlagRepetitive)
	if s.GamingStrikes != 2 {
		t.Fatalf("expected 2 strikes, got %d", s.GamingStrikes)
	}
	if s.Terminated {
		t.Fatalf("two strikes must not terminate the session")
	}
}

func TestAutoRejectAfterThreeStrikes(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	var effects []Effect
	for i := 0; i < 3; i++ {
		s, effects = answerNext(t, s, cfg, 10, FlagIrrelevant)
	}

	if s.Phase != PhaseAutoRejected || !s.Terminated || s.TerminationReason != ReasonAutoReject {
		t.Fatalf("expected auto reject, got phase=%s reason=%s", s.Phase, s.TerminationReason)
	}
	if s.CurrentIndex >= len(s.Plan) {
		t.Fatalf("expected termination before plan exhausted")
	}
	if !hasEffect(effects, EffectSaveReport) {
		t.Fatalf("expected report effect on auto reject")
	}
	if IsComplete(s) {
		t.Fatalf("auto rejected session is never complete")
	}

	for _, ev := range []Event{
		{Kind: EventDisclose},
		{Kind: EventConsent, ConsentReply: "yes"},
		{Kind: EventQuestionIssued},
		{Kind: EventAnswerEvaluated},
		{Kind: EventSkipTurn},
		{Kind: EventFinish},
		{Kind: EventWithdraw},
	} {
		_, _, err := Transition(s, ev, cfg)
		expectInvalid(t, err)
	}
}

func TestAutoRejectOnCriticalFlag(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	s, _ = answerNext(t, s, cfg, 0, FlagCritical)

	if s.Phase != PhaseAutoRejected {
		t.Fatalf("expected auto reject on critical flag, got %s", s.Phase)
	}
	if s.GamingStrikes != 0 {
		t.Fatalf("critical flag is not a strike, got %d", s.GamingStrikes)
	}
}

func TestAutoRejectWinsOverExtension(t *testing.T) {
	cfg := DefaultConfig()
	s := startedState(t, cfg)

	s, _ = answerNext(t, s, cfg, 90, FlagRepetitive)
	s, _ = answerNext(t, s, cfg, 90, FlagIrrelevant)
	for i := 0; i < 4; i++ {
		s, _ = answerNext(t, s, cfg, 90)
	}
	// Eligible for extension (one gap, average above strong) and for auto reject.
	s, _ = answerNext(t, s, cfg, 30, FlagIrrelevant)

	if s.Phase != PhaseAutoRejected {
		t.Fatalf("expected auto reject, got %s", s.Phase)
	}
	if s.ExtensionUsed || len(s.Plan) != CorePlanLength {
		t.Fatalf("extension must not be granted to a rejected candidate")
	}
}

func TestRecordTurnRejectsTerminatedState(t *testing.T) {
	cfg := DefaultConfig()
	s := NewState("INT-1", "", JobContext{}, cfg, testNow)
	s.terminate(PhaseWithdrawn, ReasonWithdrawn)

	_, err := RecordTurn(s, SlotRef{Index: 0}, Turn{Score: 50}, cfg)
	expectInvalid(t, err)
	if len(s.History) != 0 {
		t.Fatalf("no turn may be appended after termination")
	}
}
