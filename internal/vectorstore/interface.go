package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docqa-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search, returning results ordered by
	// score descending. Results scoring below minScore are excluded.
	Search(ctx context.Context, collection string, query []float32, k int, minScore float32) ([]SearchResult, error)

	// DeleteByDoc removes every point belonging to the given document.
	// Deleting a document with no stored points is not an error.
	DeleteByDoc(ctx context.Context, collection string, docID string) error
}
