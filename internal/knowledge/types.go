// Package knowledge manages the document corpus backing the assistant.
//
// It covers the full lifecycle of the knowledge base: ingesting source files
// from a directory, splitting oversized documents into chunks, generating
// embeddings through an external service, persisting the resulting corpus as
// a snapshot file, and rebuilding everything when the source directory
// changes.
package knowledge

import "time"

// Metadata keys reserved by the ingestion pipeline.
const (
	// MetaParentID links a chunk back to the document it was split from.
	MetaParentID = "parentId"

	// MetaChunkIndex is the zero-based position of a chunk within its parent.
	MetaChunkIndex = "chunkIndex"

	// MetaSource records the source file path a document was loaded from.
	MetaSource = "source"

	// MetaIndexedAt records when the document was ingested (RFC 3339).
	MetaIndexedAt = "indexedAt"
)

// Document is a single retrievable unit of knowledge. A Document is either a
// whole source file or one chunk of an oversized file.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsChunk reports whether the document was produced by splitting a larger one.
func (d Document) IsChunk() bool {
	_, ok := d.Metadata[MetaParentID]
	return ok
}

// VectorEntry associates a document with its embedding vector.
type VectorEntry struct {
	DocumentID string    `json:"documentId"`
	Embedding  []float64 `json:"embedding"`
}

// Snapshot is the persisted form of the knowledge base. It is written with
// whole-file-replace semantics after every rebuild and restored eagerly at
// startup so unchanged documents keep their cached embeddings.
type Snapshot struct {
	KnowledgeBase []Document    `json:"knowledgeBase"`
	VectorStore   []VectorEntry `json:"vectorStore"`
	Timestamp     time.Time     `json:"timestamp"`
}
