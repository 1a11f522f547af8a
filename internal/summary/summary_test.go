package summary

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
)

func scoresOf(technical, communication, culture float64) Scores {
	return Scores{
		Technical:     Category{Score: technical, Turns: 1},
		Communication: Category{Score: communication, Turns: 1},
		Culture:       Category{Score: culture, Turns: 1},
	}
}

func TestRecommendWaterfall(t *testing.T) {
	t.Parallel()

	cfg := interview.DefaultConfig()

	tests := []struct {
		name     string
		scores   Scores
		overall  float64
		critical bool
		strikes  int
		expect   Recommendation
		reason   string
	}{
		{name: "overall 78 proceeds", scores: scoresOf(78, 78, 78), overall: 78, expect: Proceed},
		{name: "overall 58 rejects", scores: scoresOf(58, 58, 58), overall: 58, expect: Reject},
		{name: "overall 68 mixed holds", scores: scoresOf(85, 40, 70), overall: 68, expect: Hold, reason: "mixed signal"},
		{name: "hold band", scores: scoresOf(65, 65, 65), overall: 65, expect: Hold, reason: "hold band"},
		{name: "hold lower bound", scores: scoresOf(60, 60, 60), overall: 60, expect: Hold},
		{name: "proceed lower bound", scores: scoresOf(75, 75, 75), overall: 75, expect: Proceed},
		{name: "mixed above proceed band", scores: scoresOf(95, 45, 90), overall: 76, expect: Hold, reason: "mixed signal"},
		{name: "critical beats a strong score", scores: scoresOf(95, 95, 95), overall: 95, critical: true, expect: Reject, reason: "critical"},
		{name: "three strikes reject", scores: scoresOf(90, 90, 90), overall: 90, strikes: 3, expect: Reject, reason: "strikes"},
		{name: "two strikes tolerated", scores: scoresOf(90, 90, 90), overall: 90, strikes: 2, expect: Proceed},
		{
			name:    "uncovered category is not a mixed signal",
			scores:  Scores{Technical: Category{Score: 85, Turns: 2}, Communication: Category{Score: 80, Turns: 4}},
			overall: 83,
			expect:  Proceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, reason := Recommend(tt.scores, tt.overall, tt.critical, tt.strikes, cfg)
			if got != tt.expect {
				t.Fatalf("expected %s, got %s (%s)", tt.expect, got, reason)
			}
			if tt.reason != "" && !strings.Contains(reason, tt.reason) {
				t.Fatalf("expected reasoning to mention %q, got %q", tt.reason, reason)
			}
		})
	}
}

func TestOverallRenormalisesMissingCategories(t *testing.T) {
	t.Parallel()

	w := interview.DefaultConfig().Weights

	if got := Overall(scoresOf(80, 70, 60), w); got != 73 {
		t.Fatalf("expected 73, got %v", got)
	}
	// No culture turns: (80*.5 + 70*.3) / .8
	onlyTwo := Scores{Technical: Category{Score: 80, Turns: 1}, Communication: Category{Score: 70, Turns: 1}}
	if got := Overall(onlyTwo, w); got != 76.25 {
		t.Fatalf("expected 76.25, got %v", got)
	}
	if got := Overall(Scores{}, w); got != 0 {
		t.Fatalf("expected 0 without categories, got %v", got)
	}
}

func TestFilterInsights(t *testing.T) {
	t.Parallel()

	got := FilterInsights([]string{
		"Needs to expand more on the topic.",
		"Provided a response.",
		"short",
		"Explained the cache invalidation trade-off clearly",
		"explained the cache   invalidation trade-off clearly",
		"Good answer.",
		"Measured the impact with a before/after benchmark",
	})
	want := []string{
		"Explained the cache invalidation trade-off clearly",
		"Measured the impact with a before/after benchmark",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if got := FilterInsights([]string{"Provided an answer.", "ok"}); got != nil {
		t.Fatalf("expected nil when everything is filtered, got %v", got)
	}

	many := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		many = append(many, strings.Repeat("x", 11+i))
	}
	if got := FilterInsights(many); len(got) != 5 {
		t.Fatalf("expected at most 5 insights, got %d", len(got))
	}
}

func completedState(t *testing.T) *interview.State {
	t.Helper()

	cfg := interview.DefaultConfig()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := interview.NewState("INT-1", "Ada", interview.JobContext{ID: "go-backend", Title: "Go Engineer"}, cfg, at)
	s.Phase = interview.PhaseCompleted
	s.Terminated = true
	s.TerminationReason = interview.ReasonCompleted
	for i := range s.Plan {
		s.Plan[i].Status = interview.SlotAnswered
	}
	for i := range s.Closing {
		s.Closing[i].Status = interview.SlotAnswered
	}

	s.History = []interview.Turn{
		{Number: 1, Topic: interview.TopicWarmup, Score: 50, Technical: 50, Communication: 50, Culture: 50},
		{Number: 2, Topic: interview.TopicBehavioral, Score: 80, Communication: 80, Culture: 80, Strengths: []string{"Took ownership of the release conflict"}},
		{Number: 3, Topic: interview.TopicTechnical, Skill: "sql", Score: 30, Technical: 20, Communication: 50, Culture: 40, Concerns: []string{"Could not explain how an index is used", "Needs to expand more."}},
		{Number: 4, Topic: interview.TopicTechnical, Skill: "go", Score: 90, Technical: 90, Communication: 90, Culture: 80, Flags: []interview.Flag{interview.FlagRepetitive}},
		{Number: 5, Topic: interview.TopicMotivation, Score: 70, Communication: 70, Culture: 70},
		{Number: 6, Topic: interview.TopicWrapup, Score: 50, Technical: 50, Communication: 50, Culture: 50},
	}
	s.GamingStrikes = 1
	return s
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	s := completedState(t)
	r := Aggregate(s, interview.DefaultConfig())

	if r.Scores.Technical != (Category{Score: 55, Turns: 2}) {
		t.Fatalf("unexpected technical category: %+v", r.Scores.Technical)
	}
	if r.Scores.Communication != (Category{Score: 72.5, Turns: 4}) {
		t.Fatalf("unexpected communication category: %+v", r.Scores.Communication)
	}
	if r.Scores.Culture != (Category{Score: 75, Turns: 2}) {
		t.Fatalf("unexpected culture category: %+v", r.Scores.Culture)
	}
	// 55*.5 + 72.5*.3 + 75*.2 = 64.25
	if r.Overall != 64.25 || r.Recommendation != Hold {
		t.Fatalf("unexpected outcome: overall %v, %s", r.Overall, r.Recommendation)
	}
	if !reflect.DeepEqual(r.Flags, []interview.Flag{interview.FlagRepetitive}) || r.FlagCounts[interview.FlagRepetitive] != 1 {
		t.Fatalf("unexpected flags: %v %v", r.Flags, r.FlagCounts)
	}
	if !reflect.DeepEqual(r.AreasToProbe, []string{"Deep dive on: sql"}) {
		t.Fatalf("unexpected areas to probe: %v", r.AreasToProbe)
	}
	if !reflect.DeepEqual(r.Concerns, []string{"Could not explain how an index is used"}) {
		t.Fatalf("unexpected concerns: %v", r.Concerns)
	}
	if len(r.Highlights) != 1 {
		t.Fatalf("unexpected highlights: %v", r.Highlights)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	t.Parallel()

	s := completedState(t)
	cfg := interview.DefaultConfig()

	first := Aggregate(s, cfg)
	second := Aggregate(s, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical reports:\n%+v\n%+v", first, second)
	}
}

func TestAggregateEarlyTermination(t *testing.T) {
	t.Parallel()

	cfg := interview.DefaultConfig()
	s := interview.NewState("INT-2", "", interview.JobContext{}, cfg, time.Unix(0, 0).UTC())
	s.Phase = interview.PhaseAutoRejected
	s.Terminated = true
	s.TerminationReason = interview.ReasonAutoReject
	s.GamingStrikes = 3
	s.History = []interview.Turn{
		{Number: 1, Topic: interview.TopicTechnical, Score: 95, Technical: 95, Communication: 95},
	}

	r := Aggregate(s, cfg)
	if r.Recommendation != Reject {
		t.Fatalf("expected REJECT, got %s", r.Recommendation)
	}
	if len(r.Concerns) == 0 || r.Concerns[0] != "Interview terminated early" {
		t.Fatalf("expected early termination concern, got %v", r.Concerns)
	}
	if r.Scores.Culture.Covered() {
		t.Fatalf("expected culture to be uncovered")
	}
}
