package analyzer

import "strings"

// WordOverlapRatio is the Jaccard ratio of the significant tokens of a and b.
// Texts without significant tokens are equal only when their normalized form matches.
func WordOverlapRatio(a, b string) float64 {
	setA, setB := TokenSet(a), TokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		if normalizeSpace(a) == normalizeSpace(b) && strings.TrimSpace(a) != "" {
			return 1
		}
		return 0
	}

	shared := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

// MostSimilar returns the index of the prior answer with the highest overlap and the ratio.
// The index is -1 when there are no priors.
func MostSimilar(answer string, priors []string) (int, float64) {
	best, bestRatio := -1, 0.0
	for i, prior := range priors {
		if r := WordOverlapRatio(answer, prior); best == -1 || r > bestRatio {
			best, bestRatio = i, r
		}
	}
	return best, bestRatio
}

// SimilarToPrior reports whether the answer overlaps any prior answer by more than threshold.
func SimilarToPrior(answer string, priors []string, threshold float64) bool {
	_, ratio := MostSimilar(answer, priors)
	return ratio > threshold
}

func normalizeSpace(s string) string {
	return strings.Join(words(s), " ")
}
