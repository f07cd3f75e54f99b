package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// stubEmbedder returns a fixed vector per query, or an error.
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float64{0, 0, 1}, nil
}

func newStore(t *testing.T, docs []knowledge.Document, entries []knowledge.VectorEntry) *knowledge.Store {
	t.Helper()
	store := knowledge.NewStore(log.NewNop())
	store.Replace(docs, entries)
	return store
}

func TestCosineSimilarity(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{3, 2, 1}

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
	})

	t.Run("identity", func(t *testing.T) {
		assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-9)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(a, []float64{1, 2}))
	})

	t.Run("zero norm", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(a, []float64{0, 0, 0}))
		assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0, 0}, b))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	})

	t.Run("orthogonal", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	})
}

func TestSearchSemantic_FloorSortCap(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "close", Title: "Close", Content: "Very relevant."},
		{ID: "mid", Title: "Mid", Content: "Somewhat relevant."},
		{ID: "far", Title: "Far", Content: "Not relevant."},
	}
	entries := []knowledge.VectorEntry{
		{DocumentID: "close", Embedding: []float64{1, 0, 0}},
		{DocumentID: "mid", Embedding: []float64{1, 1, 0}},
		{DocumentID: "far", Embedding: []float64{0.1, 1, 0}}, // ~9.9 score, below floor
	}
	store := newStore(t, docs, entries)
	emb := &stubEmbedder{vectors: map[string][]float64{"query": {1, 0, 0}}}
	engine := New(store, emb, log.NewNop())

	results, err := engine.SearchSemantic(context.Background(), "query", 10)
	require.NoError(t, err)

	require.Len(t, results, 2, "results at or below the floor must be discarded")
	assert.Equal(t, "close", results[0].DocumentID)
	assert.InDelta(t, 100.0, results[0].Score, 1e-6)
	assert.Equal(t, "mid", results[1].DocumentID)
	for _, r := range results {
		assert.Greater(t, r.Score, MinSemanticScore)
	}

	capped, err := engine.SearchSemantic(context.Background(), "query", 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}

func TestSearch_FallsBackToLexicalOnEmbedError(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "policy", Title: "Cancellation Policy", Content: "Appointments must be cancelled at least 24 hours in advance."},
	}
	entries := []knowledge.VectorEntry{{DocumentID: "policy", Embedding: []float64{1, 0, 0}}}
	store := newStore(t, docs, entries)
	engine := New(store, &stubEmbedder{err: errors.New("service down")}, log.NewNop())

	results, err := engine.Search(context.Background(), "cancel policy", 5)
	require.NoError(t, err, "embedding failure must degrade, not surface")
	require.NotEmpty(t, results)
	assert.Equal(t, "policy", results[0].DocumentID)
}

func TestSearch_NoVectorsUsesLexical(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "hours", Title: "Opening Hours", Content: "We are open from 9 to 5."},
	}
	store := newStore(t, docs, nil)
	engine := New(store, &stubEmbedder{}, log.NewNop())

	results, err := engine.Search(context.Background(), "opening hours", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchLexical_SynonymExpansion(t *testing.T) {
	// The document says "booking" but never "appointment".
	docs := []knowledge.Document{
		{ID: "faq", Title: "FAQ", Content: "A booking can be made online at any time."},
	}
	engine := New(newStore(t, docs, nil), nil, log.NewNop())

	results := engine.SearchLexical("appointment", 5)
	require.Len(t, results, 1, "a synonym of a query token must still match")
	assert.Greater(t, results[0].Score, float64(MinLexicalScore))
}

func TestSearchLexical_ScoreMonotonicInHits(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "one", Title: "Misc", Content: "price"},
		{ID: "three", Title: "Misc", Content: "price price price"},
	}
	engine := New(newStore(t, docs, nil), nil, log.NewNop())

	results := engine.SearchLexical("price", 5)
	require.Len(t, results, 2)
	assert.Equal(t, "three", results[0].DocumentID, "more hits must not score lower")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchLexical_TitleMatchWeighted(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "titled", Title: "Price List", Content: "irrelevant text"},
		{ID: "body", Title: "Misc", Content: "the price appears once"},
	}
	engine := New(newStore(t, docs, nil), nil, log.NewNop())

	results := engine.SearchLexical("price", 5)
	require.Len(t, results, 2)
	assert.Equal(t, "titled", results[0].DocumentID)
}

func TestSearchLexical_ZeroScoresDropped(t *testing.T) {
	docs := []knowledge.Document{
		{ID: "unrelated", Title: "Gardening", Content: "tomatoes and basil"},
	}
	engine := New(newStore(t, docs, nil), nil, log.NewNop())

	results := engine.SearchLexical("insurance claim", 5)
	assert.Empty(t, results)
}

func TestSearch_EndToEndCancellationPolicy(t *testing.T) {
	doc := knowledge.Document{
		ID:      "cancellation-policy",
		Title:   "Cancellation Policy",
		Content: "Appointments must be cancelled at least 24 hours in advance.",
	}
	vec := []float64{0.3, 0.4, 0.5}
	store := newStore(t, []knowledge.Document{doc}, []knowledge.VectorEntry{{DocumentID: doc.ID, Embedding: vec}})

	t.Run("lexical", func(t *testing.T) {
		engine := New(store, nil, log.NewNop())
		results := engine.SearchLexical("cancel policy", 5)
		require.Len(t, results, 1)
		assert.Greater(t, results[0].Score, 0.0)
		assert.Contains(t, results[0].Excerpt, "cancelled")
	})

	t.Run("semantic identical embedding", func(t *testing.T) {
		emb := &stubEmbedder{vectors: map[string][]float64{"cancel policy": vec}}
		engine := New(store, emb, log.NewNop())
		results, err := engine.SearchSemantic(context.Background(), "cancel policy", 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 100.0, results[0].Score, 1e-6)
	})
}
