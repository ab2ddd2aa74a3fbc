package handlers

import (
	"encoding/json"
	"net/http"

	"docqa-ai/internal/answer"
	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/search"
	"docqa-ai/internal/service"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	qaService *service.QAService
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(qaService *service.QAService) *AskHandler {
	return &AskHandler{qaService: qaService}
}

// AskRequest represents the HTTP request payload for questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskResponse represents the HTTP response payload for questions.
//
// swagger:model AskResponse
type AskResponse struct {
	Question    string               `json:"question"`
	Answer      string               `json:"answer"`
	Confidence  float64              `json:"confidence"`
	Citations   []answer.Citation    `json:"citations"`
	ContextUsed int                  `json:"context_used"`
	FollowUps   []string             `json:"follow_up_questions,omitempty"`
	Sources     []search.FusedResult `json:"sources"`
}

// ServeHTTP handles question answering requests.
//
// swagger:route POST /api/v1/ask askQuestion
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.qaService.Ask(ctx, req.Question, req.TopK)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	citations := result.Citations
	if citations == nil {
		citations = []answer.Citation{}
	}
	sources := result.Sources
	if sources == nil {
		sources = []search.FusedResult{}
	}

	writeJSON(w, http.StatusOK, AskResponse{
		Question:    result.Question,
		Answer:      result.Answer,
		Confidence:  result.Confidence,
		Citations:   citations,
		ContextUsed: result.ContextUsed,
		FollowUps:   result.FollowUps,
		Sources:     sources,
	})
}
