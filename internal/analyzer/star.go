package analyzer

import "strings"

// STAR reports which situation/task/action/result elements an answer contains.
type STAR struct {
	Situation bool
	Task      bool
	Action    bool
	Result    bool
}

var (
	situationMarkers = []string{
		"when i", "when we", "at my", "in my previous", "in my last", "while working", "there was",
		"we were", "i was working", "the situation", "the project", "one time", "last year",
		"years ago", "during", "back when",
	}
	taskMarkers = []string{
		"i needed to", "i had to", "we needed to", "we had to", "my task", "my role", "my job was",
		"responsible for", "the goal", "our goal", "the challenge", "the problem was", "asked to",
		"deadline", "objective",
	}
	actionMarkers = []string{
		"i decided", "i started", "i created", "i built", "i implemented", "i organized",
		"i talked", "i spoke", "i proposed", "i led", "i set up", "i wrote", "i reached out",
		"i scheduled", "i analyzed", "i designed", "i worked with", "i took", "so i", "i then",
		"first i", "i made",
	}
	resultMarkers = []string{
		"as a result", "the result", "resulted in", "in the end", "eventually", "outcome",
		"we delivered", "we shipped", "we launched", "it worked", "reduced", "increased",
		"improved", "saved", "learned", "percent", "%", "on time", "successfully",
	}
)

// CheckSTAR scans the answer for STAR markers.
func CheckSTAR(answer string) STAR {
	lower := strings.ToLower(answer)
	return STAR{
		Situation: containsAny(lower, situationMarkers) > 0,
		Task:      containsAny(lower, taskMarkers) > 0,
		Action:    containsAny(lower, actionMarkers) > 0,
		Result:    containsAny(lower, resultMarkers) > 0,
	}
}

// Missing returns the names of absent elements.
func (s STAR) Missing() []string {
	var missing []string
	if !s.Situation {
		missing = append(missing, "situation")
	}
	if !s.Task {
		missing = append(missing, "task")
	}
	if !s.Action {
		missing = append(missing, "action")
	}
	if !s.Result {
		missing = append(missing, "result")
	}
	return missing
}

func (s STAR) Complete() bool {
	return len(s.Missing()) == 0
}
