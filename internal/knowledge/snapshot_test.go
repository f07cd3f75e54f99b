package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultSnapshotName)

	docs := []Document{
		{ID: "policy", Title: "Policy", Content: "some text", Metadata: map[string]string{MetaSource: "policy.md"}},
		{ID: "hours", Title: "Hours", Content: "open 9-5"},
	}
	entries := []VectorEntry{
		{DocumentID: "policy", Embedding: []float64{0.1, 0.2, 0.3}},
	}

	if err := WriteSnapshot(path, docs, entries); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	snap, ok := ReadSnapshot(path, log.NewNop())
	if !ok {
		t.Fatal("ReadSnapshot: expected snapshot to load")
	}
	if len(snap.KnowledgeBase) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(snap.KnowledgeBase))
	}
	if snap.KnowledgeBase[0].ID != "policy" || snap.KnowledgeBase[0].Content != "some text" {
		t.Errorf("document not preserved: %+v", snap.KnowledgeBase[0])
	}
	if len(snap.VectorStore) != 1 || snap.VectorStore[0].Embedding[1] != 0.2 {
		t.Errorf("vector entry not preserved: %+v", snap.VectorStore)
	}
	if snap.Timestamp.IsZero() {
		t.Error("timestamp must be set")
	}
}

func TestReadSnapshot_MissingFileIsAbsence(t *testing.T) {
	_, ok := ReadSnapshot(filepath.Join(t.TempDir(), "nope.json"), log.NewNop())
	if ok {
		t.Error("missing file must report absence, not a snapshot")
	}
}

func TestReadSnapshot_CorruptFileIsAbsence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, ok := ReadSnapshot(path, log.NewNop())
	if ok {
		t.Error("corrupt file must report absence, not a snapshot")
	}
}

func TestWriteSnapshot_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultSnapshotName)

	if err := WriteSnapshot(path, []Document{{ID: "old"}}, nil); err != nil {
		t.Fatal(err)
	}
	if err := WriteSnapshot(path, []Document{{ID: "new"}}, nil); err != nil {
		t.Fatal(err)
	}

	snap, ok := ReadSnapshot(path, log.NewNop())
	if !ok {
		t.Fatal("expected snapshot to load")
	}
	if len(snap.KnowledgeBase) != 1 || snap.KnowledgeBase[0].ID != "new" {
		t.Errorf("whole-file replace failed: %+v", snap.KnowledgeBase)
	}

	// No leftover temp files.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the snapshot file, found %d entries", len(entries))
	}
}
