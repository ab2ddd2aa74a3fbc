package keyword

import (
	"fmt"
	"math"
	"testing"
)

func chunksFromTexts(docID string, texts ...string) []Chunk {
	chunks := make([]Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = Chunk{
			DocID:   docID,
			ChunkID: i,
			Text:    text,
		}
	}
	return chunks
}

func TestScoreZeroWhenNoQueryTerms(t *testing.T) {
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"the cat sat on the mat",
		"dogs chase cats around the yard",
	))

	if score := idx.Score("zebra quagga", 0); score != 0 {
		t.Errorf("score for document with no query terms = %f, want exactly 0", score)
	}
	if score := idx.Score("cat", 0); score <= 0 {
		t.Errorf("score for matching document = %f, want > 0", score)
	}
}

func TestScoreOutOfRange(t *testing.T) {
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1", "some text"))

	if score := idx.Score("text", 5); score != 0 {
		t.Errorf("out-of-range position scored %f, want 0", score)
	}
	if score := idx.Score("text", -1); score != 0 {
		t.Errorf("negative position scored %f, want 0", score)
	}
}

func TestScoreMonotonicInTermFrequency(t *testing.T) {
	// Same document length, increasing frequency of the query term.
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"policy filler filler filler",
		"policy policy filler filler",
		"policy policy policy filler",
	))

	prev := 0.0
	for i := 0; i < 3; i++ {
		score := idx.Score("policy", i)
		if score < prev {
			t.Errorf("score decreased with term frequency: position %d scored %f, previous %f", i, score, prev)
		}
		prev = score
	}
}

func TestScoreEmptyCorpus(t *testing.T) {
	idx := NewDefaultIndex()
	if score := idx.Score("anything", 0); score != 0 {
		t.Errorf("empty corpus scored %f, want 0", score)
	}
	if results := idx.Search("anything", 5); len(results) != 0 {
		t.Errorf("empty corpus returned %d results, want 0", len(results))
	}
}

func TestSearchOrderingAndBound(t *testing.T) {
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"refund policy for returns",
		"shipping information and rates",
		"the refund refund refund process",
		"general company overview",
	))

	results := idx.Search("refund", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted descending: %f then %f", results[0].Score, results[1].Score)
	}
	// Higher term frequency in a short document wins.
	if results[0].Chunk.ChunkID != 2 {
		t.Errorf("top result chunk = %d, want 2", results[0].Chunk.ChunkID)
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	// Two identical documents tie exactly; the earlier one must come first.
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"identical text here",
		"identical text here",
	))

	results := idx.Search("identical", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ChunkID != 0 || results[1].Chunk.ChunkID != 1 {
		t.Errorf("tie order = [%d, %d], want [0, 1]",
			results[0].Chunk.ChunkID, results[1].Chunk.ChunkID)
	}
}

func TestSearchIncludesZeroScores(t *testing.T) {
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"matching term",
		"nothing relevant whatsoever",
	))

	results := idx.Search("matching", 10)
	if len(results) != 2 {
		t.Fatalf("expected all indexed chunks in results, got %d", len(results))
	}
	if results[1].Score != 0 {
		t.Errorf("non-matching chunk score = %f, want 0", results[1].Score)
	}
}

func TestIDFFormula(t *testing.T) {
	// Three documents, term appears in exactly one: idf = ln((3-1+0.5)/(1+0.5)+1).
	idx := NewDefaultIndex()
	idx.Fit(chunksFromTexts("doc1",
		"unique",
		"filler",
		"filler",
	))

	wantIDF := math.Log((3-1+0.5)/(1+0.5) + 1.0)
	// Document length 1, avgdl 1, freq 1:
	// score = idf * (1 * (k1+1)) / (1 + k1 * (1 - b + b*1/1)) = idf.
	got := idx.Score("unique", 0)
	if math.Abs(got-wantIDF) > 1e-9 {
		t.Errorf("score = %f, want idf %f", got, wantIDF)
	}
}

func TestAddRemoveUpdatesStatistics(t *testing.T) {
	idx := NewDefaultIndex()
	idx.Add(chunksFromTexts("keep", "alpha bravo", "alpha charlie"))
	idx.Add(chunksFromTexts("drop", "alpha delta echo foxtrot golf"))

	if idx.Len() != 3 {
		t.Fatalf("Len = %d, want 3", idx.Len())
	}
	if idx.DocCount() != 2 {
		t.Fatalf("DocCount = %d, want 2", idx.DocCount())
	}

	scoreBefore := idx.Score("alpha", 0)

	if removed := idx.Remove("drop"); removed != 1 {
		t.Fatalf("Remove returned %d, want 1", removed)
	}
	if idx.Len() != 2 {
		t.Errorf("Len after remove = %d, want 2", idx.Len())
	}

	// After removal the index must score identically to a freshly fitted
	// index over the remaining corpus.
	fresh := NewDefaultIndex()
	fresh.Fit(chunksFromTexts("keep", "alpha bravo", "alpha charlie"))

	for pos := 0; pos < 2; pos++ {
		got := idx.Score("alpha", pos)
		want := fresh.Score("alpha", pos)
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("position %d: incremental score %f != refit score %f", pos, got, want)
		}
	}

	// Removing shrank the corpus, so idf and avgdl shifted.
	if idx.Score("alpha", 0) == scoreBefore {
		t.Error("score unchanged after removal; aggregate statistics not updated")
	}

	// Removing an unknown document is a no-op.
	if removed := idx.Remove("never-added"); removed != 0 {
		t.Errorf("Remove of unknown doc returned %d, want 0", removed)
	}
}

func TestSearchTopKNeverExceeded(t *testing.T) {
	idx := NewDefaultIndex()
	var texts []string
	for i := 0; i < 20; i++ {
		texts = append(texts, fmt.Sprintf("document number %d about policy", i))
	}
	idx.Fit(chunksFromTexts("doc1", texts...))

	for _, topK := range []int{1, 5, 19, 50} {
		results := idx.Search("policy", topK)
		if len(results) > topK {
			t.Errorf("topK=%d returned %d results", topK, len(results))
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases", "Refund POLICY", []string{"refund", "policy"}},
		{"splits on any whitespace", "a\tb\nc", []string{"a", "b", "c"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
