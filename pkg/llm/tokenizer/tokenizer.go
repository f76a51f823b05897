// Package tokenizer counts tokens in prompts and replies.
package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE used by current chat models.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts tokens with a tiktoken encoding.
type Tokenizer struct {
	encode func(text string) []int
}

// New loads the default encoding. Loading may need network access the
// first time; callers that can live with estimates should use Estimate
// when New fails.
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{encode: func(text string) []int { return enc.Encode(text, nil, nil) }}, nil
}

// ForModel loads the encoding a model uses, falling back to the default.
func ForModel(model string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return New()
	}
	return &Tokenizer{encode: func(text string) []int { return enc.Encode(text, nil, nil) }}, nil
}

// CountTokens returns the token count of text. A nil Tokenizer estimates.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.encode == nil {
		return Estimate(text)
	}
	return len(t.encode(text))
}

// Estimate approximates a token count as one token per four characters.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
