package analyzer

import (
	"strings"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Relevance is the verdict of RelevanceCheck.
type Relevance string

const (
	Relevant   Relevance = "relevant"
	Irrelevant Relevance = "irrelevant"
)

// AnswerKind is the shape an answer takes regardless of the question asked.
type AnswerKind string

const (
	AnswerEmpty     AnswerKind = "empty"
	AnswerTechnical AnswerKind = "technical"
	AnswerNarrative AnswerKind = "narrative"
	AnswerGeneral   AnswerKind = "general"
)

var technicalVocabulary = toSet(
	"algorithm", "algorithms", "api", "apis", "architecture", "async", "backend", "benchmark",
	"binary", "bug", "cache", "caching", "class", "cloud", "cluster", "code", "compile",
	"complexity", "concurrency", "container", "containers", "cpu", "csv", "dashboard", "data",
	"database", "databases", "dataset", "debug", "debugging", "deploy", "deployment", "design",
	"docker", "endpoint", "error", "etl", "excel", "framework", "frontend", "function",
	"functions", "goroutine", "graph", "hash", "http", "index", "indexes", "infrastructure",
	"interface", "java", "javascript", "join", "json", "kafka", "kubernetes", "latency", "library",
	"linux", "load", "lock", "log", "logging", "loop", "map", "memory", "metric", "metrics",
	"microservice", "microservices", "model", "module", "monitoring", "mutex", "network", "node",
	"null", "object", "optimize", "optimization", "partition", "performance", "pipeline",
	"pointer", "protocol", "python", "query", "queries", "queue", "react", "recursion", "redis",
	"refactor", "regression", "replication", "request", "rest", "schema", "script", "server",
	"service", "services", "sharding", "sql", "stack", "statistics", "storage", "system",
	"table", "tables", "test", "testing", "tests", "thread", "threads", "throughput", "timeout",
	"transaction", "tree", "type", "variable", "version", "visualization", "go", "golang",
	"rust", "c++", "c#", "typescript", "postgres", "mysql", "mongodb", "aws", "gcp", "azure",
	"tableau", "pandas", "numpy", "regex", "tcp", "udp", "dns", "grpc", "oauth", "encryption",
	"scalability", "scale", "scaling", "throttling", "retry", "idempotent", "consistency",
)

var narrativeMarkers = []string{
	"when i", "i was", "we were", "we had", "i had", "my team", "my manager", "my previous",
	"at my last", "at my previous", "back then", "one time", "once i", "i remember",
	"i felt", "i learned", "i realized", "i decided", "the situation", "the result was",
	"in the end", "eventually", "my colleague", "a teammate", "years ago", "last year",
}

var firstPersonMarkers = []string{"i ", "i'", "my ", "me ", "we ", "our "}

// ClassifyAnswer reports what kind of answer the text is.
func ClassifyAnswer(answer string) AnswerKind {
	lower := " " + strings.ToLower(answer) + " "
	tokens := Tokens(answer)
	if len(tokens) == 0 {
		return AnswerEmpty
	}

	tech := technicalHits(tokens)
	narrative := containsAny(lower, narrativeMarkers)

	switch {
	case tech >= 2 && tech >= narrative:
		return AnswerTechnical
	case narrative >= 2:
		return AnswerNarrative
	case tech >= 1 && narrative == 0:
		return AnswerTechnical
	default:
		return AnswerGeneral
	}
}

// RelevanceCheck decides whether the answer fits the kind of topic that was asked.
func RelevanceCheck(kind interview.TopicKind, answer string) Relevance {
	if kind.IsAdministrative() {
		return Relevant
	}

	shape := ClassifyAnswer(answer)
	if shape == AnswerEmpty {
		return Irrelevant
	}

	tokens := Tokens(answer)
	switch {
	case kind.IsTechnical():
		// A story without any domain vocabulary answers a different question.
		if technicalHits(tokens) == 0 && (shape == AnswerNarrative || len(tokens) < 3) {
			return Irrelevant
		}
	case kind == interview.TopicBehavioral:
		if shape == AnswerTechnical && !hasFirstPerson(answer) {
			return Irrelevant
		}
	case kind == interview.TopicMotivation, kind == interview.TopicCulture:
		if technicalHits(tokens) >= 4 && !hasFirstPerson(answer) {
			return Irrelevant
		}
	}
	return Relevant
}

func technicalHits(tokens []string) int {
	hits := 0
	for _, t := range tokens {
		if _, ok := technicalVocabulary[t]; ok {
			hits++
		}
	}
	return hits
}

func hasFirstPerson(answer string) bool {
	lower := " " + strings.ToLower(answer) + " "
	for _, m := range firstPersonMarkers {
		if strings.Contains(lower, " "+m) {
			return true
		}
	}
	return false
}
