package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/keyword"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/vectorstore"
)

const (
	// rrfK is the reciprocal rank fusion constant: each result contributes
	// weight / (rrfK + rank).
	rrfK = 60

	// MinSemanticScore is the similarity floor applied to vector search
	// results.
	MinSemanticScore = 0.1

	// DefaultAlpha weights the two rankers equally.
	DefaultAlpha = 0.5
)

// Engine combines semantic search (vector similarity) with keyword search
// (BM25) and fuses the two rankings into a single ordered list.
//
// The engine does not enforce cross-store consistency: the caller must
// mirror every add or remove between the keyword index and the vector
// store.
type Engine struct {
	embedder     llm.Embedder
	vectorStore  vectorstore.VectorStore
	collection   string
	keywordIndex *keyword.Index
	alpha        float64
}

// NewEngine creates a hybrid search engine. alpha weights the semantic
// ranker; the keyword ranker gets 1-alpha.
func NewEngine(
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	keywordIndex *keyword.Index,
	alpha float64,
) *Engine {
	return &Engine{
		embedder:     embedder,
		vectorStore:  vectorStore,
		collection:   collection,
		keywordIndex: keywordIndex,
		alpha:        alpha,
	}
}

// Search runs both rankers and returns up to topK fused results ordered by
// combined score descending. An empty query or an empty index is not an
// error: the result list is simply empty. A failing ranker degrades to an
// empty contribution rather than aborting the search.
func (e *Engine) Search(ctx context.Context, query string, topK int) []FusedResult {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" || topK <= 0 {
		return nil
	}

	// Over-fetch 2x from each ranker: the two result sets only partially
	// overlap before fusion narrows back down to topK.
	semanticResults := e.semanticSearch(ctx, query, topK*2)
	keywordResults := e.keywordSearch(ctx, query, topK*2)

	if len(semanticResults) == 0 && len(keywordResults) == 0 {
		logger.WarnContext(ctx, "no results from either search method", "query_length", len(query))
		return []FusedResult{}
	}

	fused := fuse(semanticResults, keywordResults, e.alpha)
	if len(fused) > topK {
		fused = fused[:topK]
	}

	logger.InfoContext(ctx, "hybrid search completed",
		"semantic_results", len(semanticResults),
		"keyword_results", len(keywordResults),
		"fused_results", len(fused),
	)
	return fused
}

// Alpha returns the semantic ranker weight.
func (e *Engine) Alpha() float64 {
	return e.alpha
}

// Stats reports the size of the keyword index and the fusion weight.
func (e *Engine) Stats() Stats {
	return Stats{
		TotalChunks:    e.keywordIndex.Len(),
		TotalDocuments: e.keywordIndex.DocCount(),
		Alpha:          e.alpha,
	}
}

// semanticSearch embeds the query and delegates to the vector store.
// Failures degrade to an empty result set for this ranker only.
func (e *Engine) semanticSearch(ctx context.Context, query string, topK int) []Result {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil
	}
	if len(embeddings) == 0 {
		return nil
	}

	hits, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], topK, MinSemanticScore)
	if err != nil {
		logger.ErrorContext(ctx, "semantic search failed", "error", err)
		return nil
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			DocID:      metaString(hit.Meta, "doc_id"),
			ChunkID:    metaInt(hit.Meta, "chunk_id"),
			Text:       metaString(hit.Meta, "text"),
			Filename:   metaString(hit.Meta, "filename"),
			FileType:   metaString(hit.Meta, "file_type"),
			TokenCount: metaInt(hit.Meta, "token_count"),
			CharCount:  metaInt(hit.Meta, "char_count"),
			Score:      float64(hit.Score),
			Source:     SourceSemantic,
		})
	}
	return results
}

// keywordSearch delegates to the BM25 index. An unfitted index yields no
// results, leaving the semantic ranker to carry the query alone.
func (e *Engine) keywordSearch(ctx context.Context, query string, topK int) []Result {
	hits := e.keywordIndex.Search(query, topK)
	if len(hits) == 0 {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "no documents in keyword index")
		return nil
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			DocID:      hit.Chunk.DocID,
			ChunkID:    hit.Chunk.ChunkID,
			Text:       hit.Chunk.Text,
			Filename:   hit.Chunk.Filename,
			FileType:   hit.Chunk.FileType,
			TokenCount: hit.Chunk.TokenCount,
			CharCount:  hit.Chunk.CharCount,
			Score:      hit.Score,
			Source:     SourceKeyword,
		})
	}
	return results
}

// fuse combines two rankings with reciprocal rank fusion. Rank positions
// start at 1; each result contributes weight/(rrfK+rank) where the
// semantic ranker is weighted alpha and the keyword ranker 1-alpha.
// Contributions for the same (doc_id, chunk_id) key sum into one combined
// score; the payload is taken from the semantic result when the key
// appears in both rankings, since the semantic payload carries the full
// stored metadata. The sort is stable, so equal scores keep first-sight
// order.
func fuse(semanticResults, keywordResults []Result, alpha float64) []FusedResult {
	var order []string
	combined := make(map[string]float64)
	payload := make(map[string]Result)

	for rank, result := range semanticResults {
		key := fuseKey(result)
		if _, seen := combined[key]; !seen {
			order = append(order, key)
			payload[key] = result
		}
		combined[key] += alpha * (1.0 / float64(rrfK+rank+1))
	}

	for rank, result := range keywordResults {
		key := fuseKey(result)
		if _, seen := combined[key]; !seen {
			order = append(order, key)
			payload[key] = result
		}
		combined[key] += (1.0 - alpha) * (1.0 / float64(rrfK+rank+1))
	}

	fused := make([]FusedResult, 0, len(order))
	for _, key := range order {
		result := payload[key]
		result.Source = SourceFused
		fused = append(fused, FusedResult{
			Result:        result,
			CombinedScore: combined[key],
		})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].CombinedScore > fused[j].CombinedScore
	})
	return fused
}

func fuseKey(r Result) string {
	return fmt.Sprintf("%s_%d", r.DocID, r.ChunkID)
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
