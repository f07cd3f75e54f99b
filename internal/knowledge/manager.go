package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// Manager owns the rebuild lifecycle of the knowledge base: ingest the source
// directory, reuse cached embeddings where content is unchanged, generate the
// missing ones, swap the store, and persist a fresh snapshot.
//
// Rebuilds are serialized. A trigger that arrives while a rebuild is in
// flight is coalesced into a single follow-up run instead of racing the
// current one.
type Manager struct {
	dir          string
	snapshotPath string
	store        *Store
	vectorizer   *Vectorizer
	logger       log.Logger

	rebuildMu sync.Mutex // serializes actual rebuild cycles

	mu         sync.Mutex // guards rebuilding/pending
	rebuilding bool
	pending    bool
}

// NewManager creates a Manager for the given source directory. The snapshot
// lives inside dir under DefaultSnapshotName.
func NewManager(dir string, store *Store, vectorizer *Vectorizer, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{
		dir:          dir,
		snapshotPath: filepath.Join(dir, DefaultSnapshotName),
		store:        store,
		vectorizer:   vectorizer,
		logger:       logger,
	}
}

// SnapshotPath returns the path of the persisted snapshot file.
func (m *Manager) SnapshotPath() string {
	return m.snapshotPath
}

// Rebuild runs one full load cycle: ingest, embed (honoring the snapshot's
// cache for documents whose ID and content are unchanged), swap the store,
// persist. A snapshot write failure is logged but does not fail the rebuild;
// the in-memory corpus is already live and the next rebuild retries the
// write.
func (m *Manager) Rebuild(ctx context.Context) error {
	m.rebuildMu.Lock()
	defer m.rebuildMu.Unlock()

	docs, err := LoadDirectory(m.dir, DefaultSnapshotName, m.logger)
	if err != nil {
		return fmt.Errorf("loading knowledge directory: %w", err)
	}

	cached := m.cachedVectors(docs)

	entries, err := m.vectorizer.EnsureEmbeddings(ctx, docs, cached)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}

	m.store.Replace(docs, entries)

	if err := WriteSnapshot(m.snapshotPath, docs, entries); err != nil {
		m.logger.Warn("persisting snapshot failed", "path", m.snapshotPath, "error", err)
	}

	m.logger.Info("knowledge base rebuilt", "documents", len(docs), "vectors", len(entries))
	return nil
}

// cachedVectors returns the reusable embeddings from the persisted snapshot:
// those whose document still exists with identical content. A changed file
// keeps its ID but gets a fresh embedding.
func (m *Manager) cachedVectors(docs []Document) map[string][]float64 {
	snap, ok := ReadSnapshot(m.snapshotPath, m.logger)
	if !ok {
		return nil
	}

	content := make(map[string]string, len(snap.KnowledgeBase))
	for _, d := range snap.KnowledgeBase {
		content[d.ID] = d.Content
	}

	current := make(map[string]string, len(docs))
	for _, d := range docs {
		current[d.ID] = d.Content
	}

	cached := make(map[string][]float64)
	for _, e := range snap.VectorStore {
		prev, ok := content[e.DocumentID]
		if !ok {
			continue
		}
		if cur, ok := current[e.DocumentID]; ok && cur == prev {
			cached[e.DocumentID] = e.Embedding
		}
	}
	return cached
}

// TriggerRebuild schedules an asynchronous rebuild. If one is already in
// flight the trigger is recorded and a single follow-up rebuild runs once the
// current one finishes, however many triggers arrived in between.
func (m *Manager) TriggerRebuild(ctx context.Context) {
	m.mu.Lock()
	if m.rebuilding {
		m.pending = true
		m.mu.Unlock()
		return
	}
	m.rebuilding = true
	m.mu.Unlock()

	go func() {
		for {
			if err := m.Rebuild(ctx); err != nil {
				m.logger.Error("background rebuild failed", "error", err)
			}

			m.mu.Lock()
			if m.pending {
				m.pending = false
				m.mu.Unlock()
				continue
			}
			m.rebuilding = false
			m.mu.Unlock()
			return
		}
	}()
}
