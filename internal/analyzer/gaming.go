package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var keyboardMash = []string{"asdf", "qwer", "zxcv", "hjkl", "rtyu", "uiop", "jkl;"}

// IsGibberish flags answers that carry no signal: too short, shouting, vowel-less or
// keyboard mashing.
func IsGibberish(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}

	if len(strings.Fields(trimmed)) <= 2 || utf8.RuneCountInString(trimmed) < 10 {
		return true
	}

	var letters, upper, vowels int
	for _, r := range trimmed {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
		if strings.ContainsRune("aeiouyAEIOUY", r) {
			vowels++
		}
	}

	chars := utf8.RuneCountInString(trimmed)
	if float64(upper)/float64(chars) > 0.7 {
		return true
	}
	// Vowel ratio only makes sense for latin script.
	if letters > 0 && isLatin(trimmed) && float64(vowels)/float64(letters) < 0.2 {
		return true
	}

	lower := strings.ToLower(trimmed)
	return containsAny(lower, keyboardMash) > 0
}

// clause matches the start of an imperative: the beginning of the answer, a sentence break or
// a softener such as "please".
const clause = `(?:^|[.!?;:,]\s*|\b(?:please|now|just|so)\s+)`

// bypassPatterns only match commands aimed at whoever grades the answer. Technical vocabulary
// such as "system prompt" alone never matches.
var bypassPatterns = []*regexp.Regexp{
	regexp.MustCompile(clause + `(?:ignore|disregard|forget|override)\s+(?:(?:all|any|the|your|previous|prior|above|earlier|these|those)\s+)*(?:instructions|rubric|rules|guidelines|criteria|evaluation|grading)\b`),
	regexp.MustCompile(`\b(?:give|grade|score|rate|mark)\s+(?:me|this|this answer|my answer)\s+(?:a\s+|an\s+)?(?:full marks|perfect|10\b|10/10|100\b|maximum|top marks)`),
	regexp.MustCompile(`\b(?:mark|grade)\s+(?:this|my answer|this answer)\s+as\s+(?:correct|passed|excellent|perfect)\b`),
	regexp.MustCompile(`\b(?:you are now|pretend (?:that )?you are|pretend to be|act as)\s+(?:the\s+|an?\s+|my\s+)?(?:evaluator|grader|interviewer|judge|recruiter|hiring manager)\b`),
	regexp.MustCompile(clause + `(?:set|change|make|switch)\s+(?:the\s+|your\s+|my\s+)?(?:recommendation|verdict|decision|score)\s+(?:to\s+)?(?:proceed|hire|pass|10|100)\b`),
	regexp.MustCompile(clause + `(?:skip|bypass|override)\s+(?:the\s+|this\s+|your\s+)?(?:evaluation|grading|scoring)\b`),
	regexp.MustCompile(`\bjust\s+(?:pass|hire)\s+me\b`),
}

// DetectBypass returns the first instruction in the answer that tries to steer the grader.
func DetectBypass(answer string) (string, bool) {
	lower := strings.Join(strings.Fields(strings.ToLower(answer)), " ")
	for _, re := range bypassPatterns {
		if m := re.FindString(lower); m != "" {
			return strings.Trim(m, " .!?;:,"), true
		}
	}
	return "", false
}

func isLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return false
		}
	}
	return true
}
