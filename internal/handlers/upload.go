package handlers

import (
	"io"
	"net/http"

	"docqa-ai/internal/contextutil"
	"docqa-ai/internal/ingest"
	"docqa-ai/internal/service"
)

// UploadHandler handles HTTP requests for document uploads.
type UploadHandler struct {
	qaService *service.QAService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(qaService *service.QAService) *UploadHandler {
	return &UploadHandler{qaService: qaService}
}

// UploadResponse represents the HTTP response payload for a successful upload.
//
// swagger:model UploadResponse
type UploadResponse struct {
	DocID      string `json:"doc_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
	ChunkCount int    `json:"chunk_count"`
}

// ServeHTTP handles multipart document uploads.
//
// Accepts a single file under the "file" form field. Supported types are
// pdf, md, and txt up to 10 MB. Returns 409 when the same content was
// already uploaded.
//
// swagger:route POST /api/v1/upload uploadDocument
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(ingest.MaxFileSize); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxFileSize+1))
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	result, err := h.qaService.UploadDocument(ctx, header.Filename, data)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to upload document")
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		DocID:      result.DocID,
		Filename:   result.Filename,
		FileType:   result.FileType,
		FileSize:   result.FileSize,
		WordCount:  result.WordCount,
		CharCount:  result.CharCount,
		ChunkCount: result.ChunkCount,
	})
}
