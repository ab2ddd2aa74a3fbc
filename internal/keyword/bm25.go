package keyword

import (
	"math"
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultK1 and DefaultB are the standard BM25 parameters.
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Chunk is the keyword index's own copy of an indexed chunk. The index never
// shares chunk records with the vector store; each side owns its copies.
type Chunk struct {
	DocID         string
	ChunkID       int
	Text          string
	Filename      string
	FileType      string
	TokenCount    int
	CharCount     int
	StartSentence int
	EndSentence   int
}

// Result pairs an indexed chunk with its BM25 score for a query.
type Result struct {
	Chunk Chunk
	Score float64
}

type entry struct {
	chunk  Chunk
	length int
	freqs  map[string]int
}

// Index is a BM25 inverted index over chunk texts. Documents are added and
// removed incrementally: posting lists, document frequencies, and the
// aggregate length statistics are updated in place rather than refit from
// scratch. All mutation goes through a single writer lock; readers see a
// consistent snapshot.
type Index struct {
	mu sync.RWMutex

	k1 float64
	b  float64

	nextOrd  int
	order    []int
	entries  map[int]*entry
	postings map[string]map[int]int
	totalLen int
}

// NewIndex creates an empty BM25 index with the given parameters.
func NewIndex(k1, b float64) *Index {
	return &Index{
		k1:       k1,
		b:        b,
		entries:  make(map[int]*entry),
		postings: make(map[string]map[int]int),
	}
}

// NewDefaultIndex creates an empty BM25 index with the standard parameters
// k1=1.5, b=0.75.
func NewDefaultIndex() *Index {
	return NewIndex(DefaultK1, DefaultB)
}

// Tokenize lowercases and splits text on whitespace. The same rule is used
// for indexing and querying; mixing tokenizers would invalidate the index.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Add indexes the given chunks, appending them after all previously added
// chunks. Insertion order is the tie-break order for equal scores.
func (idx *Index) Add(chunks []Chunk) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		freqs := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freqs[token]++
		}

		ord := idx.nextOrd
		idx.nextOrd++
		idx.entries[ord] = &entry{
			chunk:  chunk,
			length: len(tokens),
			freqs:  freqs,
		}
		idx.order = append(idx.order, ord)
		idx.totalLen += len(tokens)

		for token, freq := range freqs {
			posting := idx.postings[token]
			if posting == nil {
				posting = make(map[int]int)
				idx.postings[token] = posting
			}
			posting[ord] = freq
		}
	}
}

// Remove deletes every chunk belonging to docID and returns the number of
// chunks removed. Removing an unknown docID is a no-op. The caller is
// responsible for mirroring the removal in the vector store.
func (idx *Index) Remove(docID string) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.order[:0]
	removed := 0
	for _, ord := range idx.order {
		e := idx.entries[ord]
		if e.chunk.DocID != docID {
			kept = append(kept, ord)
			continue
		}

		removed++
		idx.totalLen -= e.length
		for token := range e.freqs {
			posting := idx.postings[token]
			delete(posting, ord)
			if len(posting) == 0 {
				delete(idx.postings, token)
			}
		}
		delete(idx.entries, ord)
	}
	idx.order = kept
	return removed
}

// Fit rebuilds the index over the given corpus, discarding any previous
// contents.
func (idx *Index) Fit(chunks []Chunk) {
	idx.mu.Lock()
	idx.nextOrd = 0
	idx.order = nil
	idx.entries = make(map[int]*entry)
	idx.postings = make(map[string]map[int]int)
	idx.totalLen = 0
	idx.mu.Unlock()

	idx.Add(chunks)
}

// Score computes the BM25 score of query against the chunk at position in
// insertion order. Out-of-range positions score 0.
func (idx *Index) Score(query string, position int) float64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if position < 0 || position >= len(idx.order) {
		return 0
	}
	return idx.scoreLocked(Tokenize(query), idx.order[position], idx.avgdlLocked())
}

// Search scores every indexed chunk against query and returns up to topK
// results ordered by score descending. Ties keep insertion order. An
// unfitted or empty index returns no results.
func (idx *Index) Search(query string, topK int) []Result {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 || len(idx.order) == 0 {
		return nil
	}

	queryTokens := Tokenize(query)
	avgdl := idx.avgdlLocked()

	results := make([]Result, 0, len(idx.order))
	for _, ord := range idx.order {
		results = append(results, Result{
			Chunk: idx.entries[ord].chunk,
			Score: idx.scoreLocked(queryTokens, ord, avgdl),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.order)
}

// DocCount returns the number of distinct documents in the index.
func (idx *Index) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	docs := make(map[string]struct{})
	for _, ord := range idx.order {
		docs[idx.entries[ord].chunk.DocID] = struct{}{}
	}
	return len(docs)
}

func (idx *Index) avgdlLocked() float64 {
	if len(idx.order) == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(len(idx.order))
}

// scoreLocked sums the BM25 contribution of each query term present in the
// document. Terms absent from the document contribute zero. Callers must
// hold at least a read lock.
func (idx *Index) scoreLocked(queryTokens []string, ord int, avgdl float64) float64 {
	if avgdl == 0 {
		// Empty corpus; guard the length normalization against dividing by zero.
		return 0
	}

	e := idx.entries[ord]
	n := float64(len(idx.order))

	score := 0.0
	for _, token := range queryTokens {
		freq, ok := e.freqs[token]
		if !ok {
			continue
		}

		df := float64(len(idx.postings[token]))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1.0)

		f := float64(freq)
		score += idf * (f * (idx.k1 + 1)) /
			(f + idx.k1*(1-idx.b+idx.b*float64(e.length)/avgdl))
	}
	return score
}
