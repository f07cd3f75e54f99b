package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// DefaultSnapshotName is the filename of the persisted snapshot inside the
// knowledge directory. The ingestion loader and the watcher both exclude it.
const DefaultSnapshotName = "knowledge-cache.json"

// WriteSnapshot persists the corpus to path with whole-file-replace
// semantics: the snapshot is written to a temporary file in the same
// directory and renamed over the target, so readers never see a partial file.
func WriteSnapshot(path string, docs []Document, entries []VectorEntry) error {
	snap := Snapshot{
		KnowledgeBase: docs,
		VectorStore:   entries,
		Timestamp:     time.Now().UTC(),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot file: %w", err)
	}
	return nil
}

// ReadSnapshot loads a previously persisted snapshot. Absence is not an
// error: a missing or unparsable file returns ok=false, which triggers full
// regeneration upstream.
func ReadSnapshot(path string, logger log.Logger) (*Snapshot, bool) {
	if logger == nil {
		logger = log.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("snapshot unreadable, regenerating", "path", path, "error", err)
		}
		return nil, false
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("snapshot corrupt, regenerating", "path", path, "error", err)
		return nil, false
	}
	return &snap, true
}
