package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docqa-ai/internal/answer"
	"docqa-ai/internal/chunker"
	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/ingest"
	"docqa-ai/internal/keyword"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/search"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

// UploadResult summarizes a successful document ingestion.
type UploadResult struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
}

// AskResult is the full response to a question.
type AskResult struct {
	Question    string               `json:"question"`
	Answer      string               `json:"answer"`
	Confidence  float64              `json:"confidence"`
	Citations   []answer.Citation    `json:"citations"`
	ContextUsed int                  `json:"context_used"`
	FollowUps   []string             `json:"follow_up_questions,omitempty"`
	Sources     []search.FusedResult `json:"sources"`
}

// IndexStats reports the state of both indexes.
type IndexStats struct {
	TotalDocuments int     `json:"total_documents"`
	TotalChunks    int     `json:"total_chunks"`
	Alpha          float64 `json:"alpha"`
}

// QAService is the document question answering domain service.
type QAService struct {
	processor    *ingest.Processor
	documents    storage.DocumentStore
	chunker      *chunker.Chunker
	embedder     llm.Embedder
	vectors      vectorstore.VectorStore
	collection   string
	keywordIndex *keyword.Index
	engine       *search.Engine
	generator    *answer.Generator
	topK         int
}

// Options collects the dependencies for NewQAService.
type Options struct {
	Processor    *ingest.Processor
	Documents    storage.DocumentStore
	Chunker      *chunker.Chunker
	Embedder     llm.Embedder
	Vectors      vectorstore.VectorStore
	Collection   string
	KeywordIndex *keyword.Index
	Engine       *search.Engine
	Generator    *answer.Generator
	TopK         int
}

// NewQAService creates the QA service.
func NewQAService(opts Options) *QAService {
	return &QAService{
		processor:    opts.Processor,
		documents:    opts.Documents,
		chunker:      opts.Chunker,
		embedder:     opts.Embedder,
		vectors:      opts.Vectors,
		collection:   opts.Collection,
		keywordIndex: opts.KeywordIndex,
		engine:       opts.Engine,
		generator:    opts.Generator,
		topK:         opts.TopK,
	}
}

// UploadDocument ingests one upload end to end: validate, extract, check
// for duplicates, chunk, embed, and index into both the vector store and
// the keyword index. The document record is written last so a failed
// external call never leaves a stored document without index entries.
func (s *QAService) UploadDocument(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	processed, err := s.processor.Process(ctx, filename, data)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrUnsupportedType),
			errors.Is(err, ingest.ErrFileTooLarge),
			errors.Is(err, ingest.ErrEmptyFile):
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		default:
			return nil, WrapError(err, "failed to process upload")
		}
	}

	existing, err := s.documents.GetByHash(ctx, processed.Hash)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, WrapError(err, "failed to check for duplicate")
	}
	if existing != nil {
		logger.InfoContext(ctx, "duplicate upload detected", "doc_id", existing.ID, "filename", filename)
		return nil, fmt.Errorf("%w: already stored as %s", ErrDuplicateDocument, existing.ID)
	}

	chunks := s.chunker.Chunk(processed.Text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document produced no chunks", ErrInvalidInput)
	}

	if err := s.indexChunks(ctx, processed, chunks); err != nil {
		return nil, err
	}

	doc := &storage.Document{
		ID:         processed.ID,
		Filename:   processed.Filename,
		FileType:   processed.FileType,
		FileSize:   processed.FileSize,
		Hash:       processed.Hash,
		Text:       processed.Text,
		WordCount:  processed.WordCount,
		CharCount:  processed.CharCount,
		ChunkCount: len(chunks),
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		// Roll back the indexes so a retry of the same upload is clean.
		s.removeFromIndexes(ctx, processed.ID)
		return nil, WrapError(err, "failed to store document")
	}

	logger.InfoContext(ctx, "document ingested",
		"doc_id", processed.ID,
		"filename", processed.Filename,
		"chunks", len(chunks),
	)
	return &UploadResult{
		DocID:      processed.ID,
		Filename:   processed.Filename,
		FileType:   processed.FileType,
		FileSize:   processed.FileSize,
		WordCount:  processed.WordCount,
		CharCount:  processed.CharCount,
		ChunkCount: len(chunks),
	}, nil
}

// indexChunks embeds the chunks and writes them to the vector store and
// the keyword index.
func (s *QAService) indexChunks(ctx context.Context, doc *ingest.ProcessedDocument, chunks []chunker.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: failed to embed chunks: %s", ErrExternalService, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedded %d vectors for %d chunks", ErrExternalService, len(vectors), len(chunks))
	}

	points := make([]vectorstore.Point, len(chunks))
	keywordChunks := make([]keyword.Chunk, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[i],
			Meta: map[string]any{
				"doc_id":      doc.ID,
				"chunk_id":    chunk.Index,
				"text":        chunk.Text,
				"filename":    doc.Filename,
				"file_type":   doc.FileType,
				"token_count": chunk.TokenCount,
				"char_count":  chunk.CharCount,
			},
		}
		keywordChunks[i] = keyword.Chunk{
			DocID:         doc.ID,
			ChunkID:       chunk.Index,
			Text:          chunk.Text,
			Filename:      doc.Filename,
			FileType:      doc.FileType,
			TokenCount:    chunk.TokenCount,
			CharCount:     chunk.CharCount,
			StartSentence: chunk.StartSentence,
			EndSentence:   chunk.EndSentence,
		}
	}

	if err := s.vectors.Upsert(ctx, s.collection, points); err != nil {
		return fmt.Errorf("%w: failed to upsert vectors: %s", ErrExternalService, err)
	}
	s.keywordIndex.Add(keywordChunks)
	return nil
}

// removeFromIndexes best-effort removes a document from both indexes.
func (s *QAService) removeFromIndexes(ctx context.Context, docID string) {
	logger := contextutil.LoggerFromContext(ctx)
	if err := s.vectors.DeleteByDoc(ctx, s.collection, docID); err != nil {
		logger.ErrorContext(ctx, "failed to remove vectors during rollback", "doc_id", docID, "error", err)
	}
	s.keywordIndex.Remove(docID)
}

// Ask answers a question against the indexed documents.
func (s *QAService) Ask(ctx context.Context, question string, topK int) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	if topK <= 0 {
		topK = s.topK
	}

	results := s.engine.Search(ctx, question, topK)
	record := s.generator.Generate(ctx, question, results)

	return &AskResult{
		Question:    question,
		Answer:      record.Answer,
		Confidence:  record.Confidence,
		Citations:   record.Citations,
		ContextUsed: record.ContextUsed,
		FollowUps:   record.FollowUps,
		Sources:     results,
	}, nil
}

// Search runs hybrid retrieval without answer generation.
func (s *QAService) Search(ctx context.Context, query string, topK int) ([]search.FusedResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if topK <= 0 {
		topK = s.topK
	}
	results := s.engine.Search(ctx, query, topK)
	if results == nil {
		results = []search.FusedResult{}
	}
	return results, nil
}

// ListDocuments returns all stored documents, newest first.
func (s *QAService) ListDocuments(ctx context.Context) ([]*storage.Document, error) {
	docs, err := s.documents.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return docs, nil
}

// GetDocument returns one stored document.
func (s *QAService) GetDocument(ctx context.Context, docID string) (*storage.Document, error) {
	doc, err := s.documents.GetByID(ctx, docID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, docID)
	}
	if err != nil {
		return nil, WrapError(err, "failed to get document")
	}
	return doc, nil
}

// DeleteDocument removes a document from the store and both indexes.
func (s *QAService) DeleteDocument(ctx context.Context, docID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := s.documents.GetByID(ctx, docID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, docID)
		}
		return WrapError(err, "failed to get document")
	}

	if err := s.vectors.DeleteByDoc(ctx, s.collection, docID); err != nil {
		return fmt.Errorf("%w: failed to delete vectors: %s", ErrExternalService, err)
	}
	removed := s.keywordIndex.Remove(docID)

	if err := s.documents.Delete(ctx, docID); err != nil {
		return WrapError(err, "failed to delete document record")
	}

	logger.InfoContext(ctx, "document deleted", "doc_id", docID, "chunks_removed", removed)
	return nil
}

// Stats reports the state of the search indexes.
func (s *QAService) Stats(ctx context.Context) (*IndexStats, error) {
	docs, err := s.documents.ListAll(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to count documents")
	}
	engineStats := s.engine.Stats()
	return &IndexStats{
		TotalDocuments: len(docs),
		TotalChunks:    engineStats.TotalChunks,
		Alpha:          engineStats.Alpha,
	}, nil
}

// RebuildKeywordIndex refits the BM25 index from stored document text.
// Called on startup, since the keyword index lives in memory while the
// vector store persists externally.
func (s *QAService) RebuildKeywordIndex(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := s.documents.ListAll(ctx)
	if err != nil {
		return WrapError(err, "failed to load documents for index rebuild")
	}

	var all []keyword.Chunk
	for _, doc := range docs {
		for _, chunk := range s.chunker.Chunk(doc.Text) {
			all = append(all, keyword.Chunk{
				DocID:         doc.ID,
				ChunkID:       chunk.Index,
				Text:          chunk.Text,
				Filename:      doc.Filename,
				FileType:      doc.FileType,
				TokenCount:    chunk.TokenCount,
				CharCount:     chunk.CharCount,
				StartSentence: chunk.StartSentence,
				EndSentence:   chunk.EndSentence,
			})
		}
	}

	s.keywordIndex.Fit(all)
	logger.InfoContext(ctx, "keyword index rebuilt", "documents", len(docs), "chunks", len(all))
	return nil
}
