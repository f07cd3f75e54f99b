package knowledge

import (
	"sync"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// Store is the in-memory document corpus together with its vector entries.
//
// The store is replaced wholesale by a rebuild: Replace swaps in a fresh
// document set and vector set under an exclusive lock, so readers never
// observe a half-replaced corpus. Accessors return copies.
type Store struct {
	mu      sync.RWMutex
	docs    []Document
	byID    map[string]int
	vectors []VectorEntry
	logger  log.Logger
}

// NewStore creates an empty store.
func NewStore(logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{byID: make(map[string]int), logger: logger}
}

// Replace swaps the entire corpus. Vector entries whose document ID does not
// resolve to a document in docs are dropped with a warning; they are stale
// leftovers, not an error.
func (s *Store) Replace(docs []Document, entries []VectorEntry) {
	byID := make(map[string]int, len(docs))
	for i, d := range docs {
		byID[d.ID] = i
	}

	kept := make([]VectorEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := byID[e.DocumentID]; !ok {
			s.logger.Warn("dropping vector entry for unknown document", "document_id", e.DocumentID)
			continue
		}
		kept = append(kept, e)
	}

	s.mu.Lock()
	s.docs = docs
	s.byID = byID
	s.vectors = kept
	s.mu.Unlock()

	s.logger.Debug("knowledge store replaced", "documents", len(docs), "vectors", len(kept))
}

// Documents returns a copy of all documents in ingestion order.
func (s *Store) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Vectors returns a copy of all vector entries. Every entry's document ID is
// guaranteed to resolve via Get.
func (s *Store) Vectors() []VectorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]VectorEntry, len(s.vectors))
	copy(out, s.vectors)
	return out
}

// Get returns the document with the given ID.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Document{}, false
	}
	return s.docs[i], true
}

// Len returns the number of documents in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
