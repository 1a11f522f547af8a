// Package analyzer holds the deterministic text heuristics used to grade answers.
// Every function here is pure: no I/O, no hidden state.
package analyzer

import (
	"strings"
	"unicode"
)

var stopWords = toSet(
	"a", "about", "above", "after", "again", "against", "all", "also", "am", "an", "and", "any",
	"are", "as", "at", "be", "because", "been", "before", "being", "below", "between", "both",
	"but", "by", "can", "could", "did", "do", "does", "doing", "down", "during", "each", "few",
	"for", "from", "further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"itself", "just", "let", "like", "me", "more", "most", "my", "myself", "no", "nor", "not",
	"now", "of", "off", "on", "once", "only", "or", "other", "our", "ours", "ourselves", "out",
	"over", "own", "really", "same", "she", "should", "so", "some", "such", "than", "that",
	"the", "their", "theirs", "them", "themselves", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "us", "very", "was", "we", "were",
	"what", "when", "where", "which", "while", "who", "whom", "why", "will", "with", "would",
	"you", "your", "yours", "yourself", "yourselves", "um", "uh", "yeah", "well", "basically",
	"actually", "think", "know", "thing", "things", "lot", "kind", "sort",
)

// Tokens returns the significant tokens of text: lower-cased words of two or more characters
// that are not stop-words, in order of appearance.
func Tokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.Trim(f, "+#") == "" || len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenSet returns the distinct significant tokens of text.
func TokenSet(text string) map[string]struct{} {
	return toSet(Tokens(text)...)
}

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func containsAny(text string, phrases []string) int {
	hits := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			hits++
		}
	}
	return hits
}
