package chunker

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens approximates the token count of text for a BPE-style
// tokenizer: each whitespace-delimited word contributes one token per
// started group of four runes. The estimate is deterministic, so the same
// function must be used for both indexing and querying to keep chunk
// boundaries and overlap budgets consistent.
func EstimateTokens(text string) int {
	tokens := 0
	for _, word := range strings.Fields(text) {
		tokens += (utf8.RuneCountInString(word) + 3) / 4
	}
	return tokens
}
