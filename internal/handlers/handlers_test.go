package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docqa-ai/internal/answer"
	"docqa-ai/internal/chunker"
	"docqa-ai/internal/ingest"
	ingestmocks "docqa-ai/internal/ingest/mocks"
	"docqa-ai/internal/keyword"
	llmmocks "docqa-ai/internal/llm/mocks"
	"docqa-ai/internal/search"
	"docqa-ai/internal/service"
	"docqa-ai/internal/storage"
	storagemocks "docqa-ai/internal/storage/mocks"
	vsmocks "docqa-ai/internal/vectorstore/mocks"
)

type handlerFixture struct {
	extractor *ingestmocks.MockExtractor
	documents *storagemocks.MockDocumentStore
	embedder  *llmmocks.MockEmbedder
	vectors   *vsmocks.MockVectorStore
	completer *llmmocks.MockCompleter
	index     *keyword.Index
	svc       *service.QAService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		extractor: ingestmocks.NewMockExtractor(ctrl),
		documents: storagemocks.NewMockDocumentStore(ctrl),
		embedder:  llmmocks.NewMockEmbedder(ctrl),
		vectors:   vsmocks.NewMockVectorStore(ctrl),
		completer: llmmocks.NewMockCompleter(ctrl),
		index:     keyword.NewDefaultIndex(),
	}

	f.svc = service.NewQAService(service.Options{
		Processor:    ingest.NewProcessor(f.extractor),
		Documents:    f.documents,
		Chunker:      chunker.New(1000, 200),
		Embedder:     f.embedder,
		Vectors:      f.vectors,
		Collection:   "documents",
		KeywordIndex: f.index,
		Engine:       search.NewEngine(f.embedder, f.vectors, "documents", f.index, 0.5),
		Generator:    answer.NewGenerator(f.completer),
		TopK:         5,
	})
	return f
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	t.Run("successful upload returns 201", func(t *testing.T) {
		f := newHandlerFixture(t)
		text := "The refund window is thirty days."

		f.extractor.EXPECT().Extract(gomock.Any(), "txt", gomock.Any()).Return(text, nil)
		f.documents.EXPECT().GetByHash(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
		f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1, 0.2}}, nil)
		f.vectors.EXPECT().Upsert(gomock.Any(), "documents", gomock.Any()).Return(nil)
		f.documents.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		body, contentType := multipartBody(t, "policy.txt", "raw bytes")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		NewUploadHandler(f.svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body = %s", rec.Code, rec.Body.String())
		}
		var resp UploadResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.DocID == "" || resp.ChunkCount == 0 {
			t.Errorf("response = %+v, want doc ID and chunk count", resp)
		}
	})

	t.Run("missing file field returns 400", func(t *testing.T) {
		f := newHandlerFixture(t)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		_ = writer.WriteField("other", "value")
		_ = writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()

		NewUploadHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unsupported type returns 400", func(t *testing.T) {
		f := newHandlerFixture(t)

		body, contentType := multipartBody(t, "image.png", "binary")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		NewUploadHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("duplicate returns 409", func(t *testing.T) {
		f := newHandlerFixture(t)

		f.extractor.EXPECT().Extract(gomock.Any(), "txt", gomock.Any()).Return("text content here", nil)
		f.documents.EXPECT().GetByHash(gomock.Any(), gomock.Any()).Return(&storage.Document{ID: "existing"}, nil)

		body, contentType := multipartBody(t, "policy.txt", "raw bytes")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()

		NewUploadHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("get method not allowed", func(t *testing.T) {
		f := newHandlerFixture(t)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/upload", nil)
		rec := httptest.NewRecorder()

		NewUploadHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestAskHandler(t *testing.T) {
	t.Run("empty question returns 400", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{"question":""}`))
		rec := httptest.NewRecorder()

		NewAskHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid json returns 400", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		NewAskHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("answers with citations", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.index.Fit([]keyword.Chunk{
			{DocID: "doc-1", ChunkID: 0, Text: "The refund window is thirty days.", Filename: "policy.md", FileType: "md"},
		})

		f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
		f.vectors.EXPECT().Search(gomock.Any(), "documents", gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("The refund window is thirty days [Source 1].", nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
			strings.NewReader(`{"question":"what is the refund window?"}`))
		rec := httptest.NewRecorder()

		NewAskHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}

		var resp AskResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Answer == "" {
			t.Error("response missing answer")
		}
		if len(resp.Citations) != 1 {
			t.Errorf("citations = %d, want 1", len(resp.Citations))
		}
		if len(resp.Sources) == 0 {
			t.Error("response missing sources")
		}
	})
}

func TestDocumentsHandler(t *testing.T) {
	t.Run("list returns documents", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.documents.EXPECT().ListAll(gomock.Any()).Return([]*storage.Document{
			{ID: "doc-1", Filename: "policy.md", FileType: "md", ChunkCount: 3},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
		rec := httptest.NewRecorder()

		NewDocumentsHandler(f.svc).List(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp ListDocumentsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Total != 1 || resp.Documents[0].DocID != "doc-1" {
			t.Errorf("response = %+v, want one document doc-1", resp)
		}
	})

	t.Run("delete missing document returns 404", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.documents.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/missing", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("docID", "missing")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()

		NewDocumentsHandler(f.svc).Delete(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("delete returns 204", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.documents.EXPECT().GetByID(gomock.Any(), "doc-1").Return(&storage.Document{ID: "doc-1"}, nil)
		f.vectors.EXPECT().DeleteByDoc(gomock.Any(), "documents", "doc-1").Return(nil)
		f.documents.EXPECT().Delete(gomock.Any(), "doc-1").Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/doc-1", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("docID", "doc-1")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()

		NewDocumentsHandler(f.svc).Delete(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}

func TestSearchHandler(t *testing.T) {
	t.Run("empty query returns 400", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query":" "}`))
		rec := httptest.NewRecorder()

		NewSearchHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("returns fused results", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.index.Fit([]keyword.Chunk{
			{DocID: "doc-1", ChunkID: 0, Text: "refund policy details", Filename: "policy.md"},
		})
		f.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
		f.vectors.EXPECT().Search(gomock.Any(), "documents", gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(`{"query":"refund"}`))
		rec := httptest.NewRecorder()

		NewSearchHandler(f.svc).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp SearchResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Total != 1 {
			t.Errorf("total = %d, want 1", resp.Total)
		}
	})
}

type fakeChecker struct {
	exists bool
	err    error
}

func (f *fakeChecker) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, f.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		checker    *fakeChecker
		wantStatus int
		wantHealth string
	}{
		{
			name:       "healthy",
			checker:    &fakeChecker{exists: true},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "collection missing",
			checker:    &fakeChecker{exists: false},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
		{
			name:       "vector store unreachable",
			checker:    &fakeChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()

			NewHealthHandler(tt.checker, "documents").ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("health status = %q, want %q", resp.Status, tt.wantHealth)
			}
		})
	}
}
