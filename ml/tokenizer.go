package ml

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Character n-gram tokenizer with word-boundary padding ("char_wb"). Each
// whitespace-separated word is padded with one space on each side and
// decomposed into every contiguous rune n-gram of length minN..maxN.
// N-grams never cross word boundaries; the padding space is the only
// inter-word context a token carries.

// SanitizeText applies the fixed decoding policy shared with the training
// pipeline: invalid UTF-8 sequences are replaced with U+FFFD
// (maximal-subpart substitution). Training and inference must decode
// identically or feature indices silently diverge. A fresh decoder per
// call keeps this safe under concurrent classification.
func SanitizeText(text string) string {
	sanitized, err := unicode.UTF8.NewDecoder().String(text)
	if err != nil {
		// The UTF-8 decoder substitutes rather than fails; keep the
		// input if it errors anyway.
		return text
	}
	return sanitized
}

// TokenizeCharWB emits the char_wb n-grams of text for the given range.
// Words whose padded rune length is shorter than n contribute nothing for
// that n. Empty input yields no tokens.
func TokenizeCharWB(text string, minN, maxN int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	tokens := make([]string, 0, estimateTokenCount(words, minN, maxN))
	for _, word := range words {
		padded := []rune(" " + word + " ")
		for n := minN; n <= maxN; n++ {
			for i := 0; i+n <= len(padded); i++ {
				tokens = append(tokens, string(padded[i:i+n]))
			}
		}
	}
	return tokens
}

func estimateTokenCount(words []string, minN, maxN int) int {
	total := 0
	for _, word := range words {
		padded := len([]rune(word)) + 2
		for n := minN; n <= maxN; n++ {
			if padded >= n {
				total += padded - n + 1
			}
		}
	}
	return total
}
