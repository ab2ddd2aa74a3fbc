package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/service"
)

// DocumentsHandler handles HTTP requests for document management.
type DocumentsHandler struct {
	qaService *service.QAService
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(qaService *service.QAService) *DocumentsHandler {
	return &DocumentsHandler{qaService: qaService}
}

// DocumentResponse represents one stored document in list responses.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at"`
}

// ListDocumentsResponse represents the document list payload.
//
// swagger:model ListDocumentsResponse
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

// List handles GET requests for the document list.
//
// swagger:route GET /api/v1/documents listDocuments
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.qaService.ListDocuments(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}

	resp := ListDocumentsResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, DocumentResponse{
			DocID:      doc.ID,
			Filename:   doc.Filename,
			FileType:   doc.FileType,
			FileSize:   doc.FileSize,
			WordCount:  doc.WordCount,
			CharCount:  doc.CharCount,
			ChunkCount: doc.ChunkCount,
			UploadedAt: doc.UploadedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	resp.Total = len(resp.Documents)

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE requests for a single document.
//
// swagger:route DELETE /api/v1/documents/{docID} deleteDocument
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docID := chi.URLParam(r, "docID")
	if docID == "" {
		logger.WarnContext(ctx, "missing document id")
		writeError(w, http.StatusBadRequest, "Missing document ID")
		return
	}

	if err := h.qaService.DeleteDocument(ctx, docID); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
