package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Budget trims text to a token limit before it is embedded into a prompt. Without a
// loadable encoding it falls back to roughly four characters per token.
type Budget struct {
	encoding *tiktoken.Tiktoken
	limit    int
}

// NewBudget returns a budget of limit tokens. A non-positive limit disables trimming.
func NewBudget(limit int) *Budget {
	b := &Budget{limit: limit}
	if enc, err := tiktoken.GetEncoding(defaultEncoding); err == nil {
		b.encoding = enc
	}
	return b
}

// Count returns the number of tokens in text.
func (b *Budget) Count(text string) int {
	if b != nil && b.encoding != nil {
		return len(b.encoding.Encode(text, nil, nil))
	}
	return estimate(text)
}

// Truncate returns text cut to the budget and whether it was cut.
func (b *Budget) Truncate(text string) (string, bool) {
	if b == nil || b.limit <= 0 {
		return text, false
	}

	if b.encoding != nil {
		ids := b.encoding.Encode(text, nil, nil)
		if len(ids) <= b.limit {
			return text, false
		}
		return strings.TrimSpace(b.encoding.Decode(ids[:b.limit])), true
	}

	runes := []rune(text)
	maxRunes := b.limit * 4
	if len(runes) <= maxRunes {
		return text, false
	}
	return strings.TrimSpace(string(runes[:maxRunes])), true
}

func estimate(text string) int {
	n := len([]rune(text)) / 4
	if n == 0 && strings.TrimSpace(text) != "" {
		n = 1
	}
	return n
}
