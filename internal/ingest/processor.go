package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks docqa-ai/internal/ingest Extractor,PageExtractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize is the upload size limit in bytes (10 MB).
const MaxFileSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	"pdf": true,
	"md":  true,
	"txt": true,
}

var (
	// ErrUnsupportedType is returned for uploads that are not pdf, md, or txt.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an upload exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("file is empty")
)

// ProcessedDocument is the result of validating and extracting an upload.
type ProcessedDocument struct {
	ID        string
	Filename  string
	FileType  string
	FileSize  int64
	Hash      string
	Text      string
	WordCount int
	CharCount int
}

// Processor validates uploads and extracts their text content.
type Processor struct {
	extractor Extractor
	maxSize   int64
}

// NewProcessor creates a processor with the default size limit.
func NewProcessor(extractor Extractor) *Processor {
	return &Processor{extractor: extractor, maxSize: MaxFileSize}
}

// NewProcessorWithLimit creates a processor with a custom size limit.
func NewProcessorWithLimit(extractor Extractor, maxSize int64) *Processor {
	return &Processor{extractor: extractor, maxSize: maxSize}
}

// Process validates the upload, extracts its text, and assigns a fresh
// document ID. The hash is computed over the raw upload bytes so the same
// file re-uploaded under a different name is still detected as a
// duplicate by the caller.
func (p *Processor) Process(ctx context.Context, filename string, data []byte) (*ProcessedDocument, error) {
	fileType, err := ValidateFilename(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > p.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), p.maxSize)
	}

	text, err := p.extractor.Extract(ctx, fileType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content in %s", filename)
	}

	sum := sha256.Sum256(data)

	return &ProcessedDocument{
		ID:        uuid.New().String(),
		Filename:  filepath.Base(filename),
		FileType:  fileType,
		FileSize:  int64(len(data)),
		Hash:      hex.EncodeToString(sum[:]),
		Text:      text,
		WordCount: len(strings.Fields(text)),
		CharCount: len(text),
	}, nil
}

// ValidateFilename checks the extension against the allowed set and
// returns the normalized file type.
func ValidateFilename(filename string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" || !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
	}
	return ext, nil
}
