package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"docqa-ai/internal/answer"
	"docqa-ai/internal/chunker"
	"docqa-ai/internal/config"
	"docqa-ai/internal/http"
	"docqa-ai/internal/ingest"
	"docqa-ai/internal/keyword"
	"docqa-ai/internal/llm"
	"docqa-ai/internal/search"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	"docqa-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API provides hybrid retrieval question answering over uploaded
// documents. Uploads are chunked, embedded, and indexed for both vector
// and BM25 keyword search; questions are answered with cited sources.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: DocQA AI API
//   description: |
//     Document question answering API. Upload pdf, markdown, or plain text
//     documents and ask questions answered from their content with citations.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create LLM completion client
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.LLMMaxTokens)

	// Assemble the QA service
	keywordIndex := keyword.NewDefaultIndex()
	engine := search.NewEngine(embedder, vectorStore, cfg.QdrantCollection, keywordIndex, cfg.SearchAlpha)
	textChunker := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	extractor := ingest.NewTextExtractor(nil)
	processor := ingest.NewProcessorWithLimit(extractor, cfg.MaxFileSize)

	qaService := service.NewQAService(service.Options{
		Processor:    processor,
		Documents:    documentRepo,
		Chunker:      textChunker,
		Embedder:     embedder,
		Vectors:      vectorStore,
		Collection:   cfg.QdrantCollection,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Generator:    answer.NewGenerator(llmClient),
		TopK:         cfg.SearchTopK,
	})
	slog.Info("QA service initialized", "alpha", cfg.SearchAlpha, "top_k", cfg.SearchTopK)

	// Warm the in-memory keyword index from stored documents. The vector
	// store persists across restarts; BM25 does not.
	if err := qaService.RebuildKeywordIndex(ctx); err != nil {
		log.Fatalf("Failed to rebuild keyword index: %v", err)
	}

	// Create router with dependencies
	deps := &http.Deps{
		QAService:      qaService,
		VectorStore:    vectorStore,
		CollectionName: cfg.QdrantCollection,
		Logger:         logger,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
