package answer

import (
	"regexp"
	"sort"
	"strconv"
)

var citationMarkerRe = regexp.MustCompile(`\[Source (\d+)\]`)

// Citation ties a claim in a generated answer back to the source chunk it
// came from. IDs are 1-based and match the [Source N] markers injected
// into the prompt context.
type Citation struct {
	ID                int     `json:"id"`
	DocID             string  `json:"doc_id"`
	ChunkID           int     `json:"chunk_id"`
	Filename          string  `json:"filename"`
	FileType          string  `json:"file_type"`
	Text              string  `json:"text"`
	Score             float64 `json:"score"`
	MentionedInAnswer bool    `json:"mentioned_in_answer"`
}

// ExtractCitations resolves the [Source N] markers in an answer against
// the citation candidates that were offered in the prompt. Duplicate
// markers collapse to one citation, markers outside the candidate range
// are dropped, and the result is ordered by citation ID.
//
// An answer with no markers at all returns every candidate unmarked: the
// model gave us nothing usable to narrow the list down with.
func ExtractCitations(answerText string, candidates []Citation) []Citation {
	matches := citationMarkerRe.FindAllStringSubmatch(answerText, -1)
	if len(matches) == 0 {
		out := make([]Citation, len(candidates))
		copy(out, candidates)
		return out
	}

	seen := make(map[int]bool)
	var cited []Citation
	for _, match := range matches {
		id, err := strconv.Atoi(match[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		if id < 1 || id > len(candidates) {
			continue
		}
		citation := candidates[id-1]
		citation.MentionedInAnswer = true
		cited = append(cited, citation)
	}

	sort.Slice(cited, func(i, j int) bool { return cited[i].ID < cited[j].ID })
	return cited
}

// CountCitationMarkers counts [Source N] occurrences in an answer,
// including repeats.
func CountCitationMarkers(answerText string) int {
	return len(citationMarkerRe.FindAllString(answerText, -1))
}
