package summary

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minInsightLength = 10
	maxInsights      = 5
)

// nitpicks are generic statements that tell a hiring manager nothing.
var nitpicks = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bneeds? to (expand|elaborate|explain) (more|further)\b`),
	regexp.MustCompile(`(?i)\bprovided an? (response|answer)\b`),
	regexp.MustCompile(`(?i)\b(answered|responded to) the question\b`),
	regexp.MustCompile(`(?i)\bcould (be|have been) more (detailed|specific)\b`),
	regexp.MustCompile(`(?i)\b(more|additional) details? (would|could) (help|be helpful)\b`),
	regexp.MustCompile(`(?i)^(good|nice|ok|okay|fine|great) (answer|response|job)\.?$`),
	regexp.MustCompile(`(?i)\bno (major|significant) (issues|concerns)\b`),
}

// IsNitpick reports whether a statement is low-information boilerplate.
func IsNitpick(statement string) bool {
	for _, re := range nitpicks {
		if re.MatchString(statement) {
			return true
		}
	}
	return false
}

// FilterInsights drops boilerplate, short and duplicate statements and keeps at most five.
// It returns nil rather than an empty list.
func FilterInsights(items []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range items {
		item = strings.Join(strings.Fields(item), " ")
		if utf8.RuneCountInString(item) <= minInsightLength || IsNitpick(item) {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == maxInsights {
			break
		}
	}
	return out
}
