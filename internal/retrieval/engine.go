// Package retrieval ranks knowledge documents against a query.
//
// Two strategies are available, selected by availability rather than
// configuration: semantic ranking over cached embedding vectors when the
// embedding service is reachable, and lexical ranking with synonym expansion
// otherwise. Both attach a short excerpt justifying each hit.
//
// The two strategies score on different scales (0-100 for semantic,
// unbounded positive integers for lexical) and their relevance floors are
// deliberately independent constants; scores are only ever compared within a
// single search call.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
	"github.com/frontdesk-ai/frontdesk/internal/log"
)

const (
	// MinSemanticScore is the relevance floor for the semantic path on the
	// 0-100 similarity scale. Results scoring at or below it are discarded.
	MinSemanticScore = 20.0

	// MinLexicalScore is the relevance floor for the lexical path. Documents
	// must score above it (i.e. at least one term hit) to be returned.
	MinLexicalScore = 0

	// titleMatchWeight is the lexical score for an expanded term appearing
	// in the document title.
	titleMatchWeight = 10
)

// Result is one search hit.
type Result struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"relevanceScore"`
}

// Engine ranks the documents of a knowledge store.
type Engine struct {
	store    *knowledge.Store
	embedder knowledge.Embedder
	logger   log.Logger
}

// New creates an Engine over the given store. embedder may be nil, in which
// case only the lexical path is available.
func New(store *knowledge.Store, embedder knowledge.Embedder, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Engine{store: store, embedder: embedder, logger: logger}
}

// Search ranks documents semantically, falling back to lexical scoring when
// the embedding service is unavailable or no vectors are cached. The
// fallback is silent; Search only fails on an empty query.
func (e *Engine) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}

	if e.embedder != nil && len(e.store.Vectors()) > 0 {
		results, err := e.SearchSemantic(ctx, query, maxResults)
		if err == nil {
			return results, nil
		}
		e.logger.Warn("semantic search unavailable, falling back to lexical", "error", err)
	}

	return e.SearchLexical(query, maxResults), nil
}

// SearchSemantic embeds the query and ranks every cached vector by cosine
// similarity, converted to a 0-100 score. Results at or below
// MinSemanticScore are discarded; the rest are sorted descending and
// truncated to maxResults.
func (e *Engine) SearchSemantic(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	terms := ExpandTerms(query)
	var results []Result
	for _, entry := range e.store.Vectors() {
		score := CosineSimilarity(queryVec, entry.Embedding) * 100
		if score <= MinSemanticScore {
			continue
		}
		doc, ok := e.store.Get(entry.DocumentID)
		if !ok {
			// Stale entry; ignored at query time rather than treated as an error.
			continue
		}
		results = append(results, Result{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Excerpt:    Excerpt(doc.Content, terms),
			Score:      score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// SearchLexical scores documents by literal and synonym-expanded term
// matches: titleMatchWeight per expanded term found in the title, plus one
// per occurrence in the content. Zero-scoring documents are dropped.
func (e *Engine) SearchLexical(query string, maxResults int) []Result {
	terms := ExpandTerms(query)
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	for _, doc := range e.store.Documents() {
		score := lexicalScore(doc, terms)
		if score <= MinLexicalScore {
			continue
		}
		results = append(results, Result{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Excerpt:    Excerpt(doc.Content, terms),
			Score:      float64(score),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// lexicalScore computes the keyword relevance of one document.
func lexicalScore(doc knowledge.Document, terms []string) int {
	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleMatchWeight
		}
		score += strings.Count(content, term)
	}
	return score
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|). Vectors of different
// lengths are non-comparable and zero-norm vectors carry no direction; both
// cases return 0 rather than an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
