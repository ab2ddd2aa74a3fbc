package chunker

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	pageMarkerRe  = regexp.MustCompile(`\[Page \d+\]\s*`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	quoteReplacer = strings.NewReplacer("“", `"`, "”", `"`, "‘", "'", "’", "'")
)

// Chunk is a bounded, overlapping segment of a document's text. Sentence
// indexes refer to the sentence sequence of the cleaned source text and are
// kept for provenance.
type Chunk struct {
	Index         int
	Text          string
	TokenCount    int
	CharCount     int
	StartSentence int
	EndSentence   int
}

// Chunker splits raw text into overlapping, token-bounded chunks at
// sentence boundaries.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// New creates a chunker with the given token budget per chunk and overlap
// budget carried across chunk boundaries.
func New(maxTokens, overlapTokens int) *Chunker {
	return &Chunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}
}

// Chunk splits text into token-bounded chunks. Sentences are accumulated
// greedily until the budget is reached; each new chunk is seeded with the
// trailing words of the previous one so local context survives the
// boundary. Empty or whitespace-only input yields no chunks.
//
// The token budget is a soft cap: a single sentence longer than maxTokens
// is emitted whole rather than split mid-sentence.
func (c *Chunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := SplitSentences(CleanText(text))
	if len(sentences) == 0 {
		return nil
	}

	var chunks []Chunk
	var current string
	currentTokens := 0
	startSentence := 0

	for i, sentence := range sentences {
		sentenceTokens := EstimateTokens(sentence)

		if currentTokens+sentenceTokens > c.maxTokens && current != "" {
			chunks = append(chunks, c.newChunk(current, len(chunks), startSentence, i-1, currentTokens))

			// Seed the next chunk with the tail of the one just closed.
			overlap := overlapTail(current, c.overlapTokens)
			if overlap != "" {
				current = overlap + " " + sentence
			} else {
				current = sentence
			}
			currentTokens = EstimateTokens(current)
			startSentence = i - overlapSentenceSpan(overlap, sentences[:i])
			if startSentence < 0 {
				startSentence = 0
			}
		} else {
			if current != "" {
				current += " " + sentence
			} else {
				current = sentence
			}
			currentTokens += sentenceTokens
		}
	}

	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, c.newChunk(current, len(chunks), startSentence, len(sentences)-1, currentTokens))
	}

	return chunks
}

func (c *Chunker) newChunk(text string, index, startSentence, endSentence, tokenCount int) Chunk {
	text = strings.TrimSpace(text)
	return Chunk{
		Index:         index,
		Text:          text,
		TokenCount:    tokenCount,
		CharCount:     len(text),
		StartSentence: startSentence,
		EndSentence:   endSentence,
	}
}

// CleanText normalizes whitespace, strips page-break markers left behind by
// PDF extraction, and straightens typographic quotes.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = quoteReplacer.Replace(text)
	return strings.TrimSpace(text)
}

// SplitSentences splits text on terminal punctuation followed by whitespace
// or end of string. Empty fragments are discarded.
func SplitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// overlapTail returns the longest suffix of whole words whose token count
// stays within maxTokens.
func overlapTail(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}

	words := strings.Fields(text)
	overlap := ""
	for i := len(words) - 1; i >= 0; i-- {
		candidate := strings.Join(words[i:], " ")
		if EstimateTokens(candidate) <= maxTokens {
			overlap = candidate
		} else {
			break
		}
	}
	return overlap
}

// overlapSentenceSpan back-maps overlap text to the number of trailing
// sentences it covers: the first previous sentence, scanning backward,
// whose word set intersects the overlap word set. The heuristic can over-
// or under-count when an overlap word recurs in earlier sentences; callers
// depend on this exact behavior for sentence ranges, so it is kept as is.
func overlapSentenceSpan(overlap string, previous []string) int {
	if overlap == "" || len(previous) == 0 {
		return 0
	}

	overlapWords := wordSet(overlap)
	for i := len(previous) - 1; i >= 0; i-- {
		for word := range wordSet(previous[i]) {
			if _, ok := overlapWords[word]; ok {
				return len(previous) - i
			}
		}
	}
	return 0
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
