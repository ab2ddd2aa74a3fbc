package storage

import "time"

// Document represents an uploaded document in the database. The extracted
// text is stored so the keyword index can be rebuilt on startup without
// touching the vector store.
type Document struct {
	ID         string    // UUID
	Filename   string    // Original filename as uploaded
	FileType   string    // Lowercase extension without dot (pdf, md, txt)
	FileSize   int64     // Upload size in bytes
	Hash       string    // SHA256 hex string of the raw upload
	Text       string    // Extracted plain text
	WordCount  int
	CharCount  int
	ChunkCount int // Number of chunks produced at ingest time
	UploadedAt time.Time
}
