package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// MaxDocumentSize is the content length above which a document is split into
// chunks before indexing.
const MaxDocumentSize = 10000

// supportedExtensions are the source file types the loader ingests.
var supportedExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".json": true,
}

// jsonSource is the optional shape of a .json source file. Any present field
// overrides the filename-derived default.
type jsonSource struct {
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// LoadDirectory materializes documents from the flat set of source files in
// dir. Files named exclude (the snapshot file) and unsupported extensions are
// skipped. A malformed .json file degrades to raw-text ingestion with a
// warning; a single unreadable file is skipped, never aborting the load.
//
// Ingestion is idempotent: unchanged files produce the same document IDs and
// content on every call. Documents longer than MaxDocumentSize are split via
// Chunk, each chunk becoming its own document with ID "{parent}-chunk-{i}";
// the oversized original is not retained.
func LoadDirectory(dir, exclude string, logger log.Logger) ([]Document, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge directory %q: %w", dir, err)
	}

	// Deterministic ingestion order regardless of readdir ordering.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	now := time.Now().UTC().Format(time.RFC3339)
	var docs []Document

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == exclude {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if !supportedExtensions[ext] {
			continue
		}

		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable source file", "path", path, "error", err)
			continue
		}

		doc := Document{
			ID:      docID(name),
			Title:   titleFromFilename(name),
			Content: string(raw),
			Metadata: map[string]string{
				MetaSource:    path,
				MetaIndexedAt: now,
			},
		}

		if ext == ".json" {
			applyJSONSource(&doc, raw, path, logger)
		}

		docs = append(docs, splitIfOversized(doc)...)
	}

	return docs, nil
}

// applyJSONSource overlays the file's own title/content/metadata fields onto
// the filename-derived document. Malformed JSON leaves the raw text in place.
func applyJSONSource(doc *Document, raw []byte, path string, logger log.Logger) {
	var src jsonSource
	if err := json.Unmarshal(raw, &src); err != nil {
		logger.Warn("malformed JSON source, ingesting as raw text", "path", path, "error", err)
		return
	}
	if src.Title != "" {
		doc.Title = src.Title
	}
	if src.Content != "" {
		doc.Content = src.Content
	}
	for k, v := range src.Metadata {
		doc.Metadata[k] = v
	}
}

// splitIfOversized returns the document unchanged when it fits, or its chunks
// when it exceeds MaxDocumentSize.
func splitIfOversized(doc Document) []Document {
	if len(doc.Content) <= MaxDocumentSize {
		return []Document{doc}
	}

	segments := Chunk(doc.Content, DefaultChunkSize)
	chunks := make([]Document, 0, len(segments))
	for i, segment := range segments {
		meta := make(map[string]string, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta[MetaParentID] = doc.ID
		meta[MetaChunkIndex] = fmt.Sprintf("%d", i)

		chunks = append(chunks, Document{
			ID:       fmt.Sprintf("%s-chunk-%d", doc.ID, i),
			Title:    fmt.Sprintf("%s (Part %d)", doc.Title, i+1),
			Content:  segment,
			Metadata: meta,
		})
	}
	return chunks
}

// docID derives a stable document identifier from the source filename.
func docID(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.ToLower(strings.ReplaceAll(base, " ", "-"))
}

// titleFromFilename turns "cancellation-policy.md" into "Cancellation Policy".
func titleFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
