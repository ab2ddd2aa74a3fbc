package handlers

import (
	"encoding/json"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/search"
	"docqa-ai/internal/service"
)

// SearchHandler handles HTTP requests for raw hybrid search.
type SearchHandler struct {
	qaService *service.QAService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(qaService *service.QAService) *SearchHandler {
	return &SearchHandler{qaService: qaService}
}

// SearchRequest represents the HTTP request payload for search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResponse represents the HTTP response payload for search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []search.FusedResult `json:"results"`
	Total   int                  `json:"total"`
}

// ServeHTTP handles search requests without answer generation.
//
// swagger:route POST /api/v1/search searchDocuments
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.qaService.Search(ctx, req.Query, req.TopK)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to search documents")
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:   req.Query,
		Results: results,
		Total:   len(results),
	})
}
