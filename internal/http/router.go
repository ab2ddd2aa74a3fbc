package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa-ai/internal/handlers"
	"docqa-ai/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QAService      *service.QAService
	VectorStore    handlers.CollectionChecker
	CollectionName string
	Logger         *slog.Logger
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware(deps.Logger))

	// Add CORS middleware
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.QAService)
	askHandler := handlers.NewAskHandler(deps.QAService)
	searchHandler := handlers.NewSearchHandler(deps.QAService)
	statsHandler := handlers.NewStatsHandler(deps.QAService)
	documentsHandler := handlers.NewDocumentsHandler(deps.QAService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)

	// Register API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/search", searchHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Get("/documents", documentsHandler.List)
		r.Delete("/documents/{docID}", documentsHandler.Delete)
	})

	r.Method(http.MethodGet, "/health", healthHandler)

	return r
}
