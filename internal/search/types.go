package search

// Source identifies which ranker produced a search result.
type Source string

const (
	// SourceSemantic marks results from vector similarity search.
	SourceSemantic Source = "semantic"
	// SourceKeyword marks results from BM25 keyword search.
	SourceKeyword Source = "keyword"
	// SourceFused marks results produced by rank fusion.
	SourceFused Source = "fused"
)

// Result is a single ranked chunk from one ranker. Produced fresh per
// query, never persisted.
type Result struct {
	DocID         string  `json:"doc_id"`
	ChunkID       int     `json:"chunk_id"`
	Text          string  `json:"text"`
	Filename      string  `json:"filename"`
	FileType      string  `json:"file_type"`
	TokenCount    int     `json:"token_count,omitempty"`
	CharCount     int     `json:"char_count,omitempty"`
	Score         float64 `json:"score"`
	Source        Source  `json:"source"`
}

// FusedResult is a Result with the combined score assigned by reciprocal
// rank fusion. Fused result lists are ordered by CombinedScore descending.
type FusedResult struct {
	Result
	CombinedScore float64 `json:"combined_score"`
}

// Stats describes the current state of the search index.
type Stats struct {
	TotalChunks    int     `json:"total_chunks"`
	TotalDocuments int     `json:"total_documents"`
	Alpha          float64 `json:"alpha"`
}
