package knowledge

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

const (
	// DefaultEmbedBatchSize bounds the number of concurrent embedding
	// requests in flight at once.
	DefaultEmbedBatchSize = 20

	// DefaultEmbedBatchDelay is the pause enforced between batches to stay
	// under the embedding service's rate limits.
	DefaultEmbedBatchDelay = 500 * time.Millisecond

	// maxEmbedInputLength caps the content portion of the embedding input.
	maxEmbedInputLength = 8000
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Vectorizer generates embeddings for documents that do not yet have one.
type Vectorizer struct {
	embedder   Embedder
	logger     log.Logger
	batchSize  int
	limiter    *rate.Limiter
	batchDelay time.Duration
}

// NewVectorizer creates a Vectorizer. batchSize <= 0 and delay <= 0 select
// the defaults.
func NewVectorizer(embedder Embedder, batchSize int, delay time.Duration, logger log.Logger) *Vectorizer {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	if delay <= 0 {
		delay = DefaultEmbedBatchDelay
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Vectorizer{
		embedder:   embedder,
		logger:     logger,
		batchSize:  batchSize,
		batchDelay: delay,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
	}
}

// EnsureEmbeddings returns a vector entry for every document in docs that the
// service could embed. Documents present in cached (keyed by document ID)
// reuse the cached vector without a service call. The rest are embedded in
// batches of batchSize, each batch's documents concurrently, with an
// inter-batch pause.
//
// A failure embedding one document is logged and skipped; that document stays
// retrievable through the lexical path only. The returned entries preserve
// docs order. EnsureEmbeddings only fails when ctx is canceled.
func (v *Vectorizer) EnsureEmbeddings(ctx context.Context, docs []Document, cached map[string][]float64) ([]VectorEntry, error) {
	vectors := make([][]float64, len(docs))

	var pending []int
	for i, doc := range docs {
		if vec, ok := cached[doc.ID]; ok && len(vec) > 0 {
			vectors[i] = vec
			continue
		}
		pending = append(pending, i)
	}

	v.logger.Info("generating embeddings",
		"documents", len(docs),
		"cached", len(docs)-len(pending),
		"pending", len(pending))

	var mu sync.Mutex
	for start := 0; start < len(pending); start += v.batchSize {
		if err := v.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := min(start+v.batchSize, len(pending))
		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range pending[start:end] {
			doc := docs[idx]
			g.Go(func() error {
				vec, err := v.embedder.Embed(gctx, embedInput(doc))
				if err != nil {
					v.logger.Warn("embedding failed, document stays lexical-only",
						"document_id", doc.ID, "error", err)
					return nil
				}
				mu.Lock()
				vectors[idx] = vec
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	entries := make([]VectorEntry, 0, len(docs))
	for i, doc := range docs {
		if len(vectors[i]) == 0 {
			continue
		}
		entries = append(entries, VectorEntry{DocumentID: doc.ID, Embedding: vectors[i]})
	}
	return entries, nil
}

// embedInput is the text sent to the embedding service: the title plus up to
// the first maxEmbedInputLength characters of content.
func embedInput(doc Document) string {
	content := doc.Content
	if len(content) > maxEmbedInputLength {
		content = content[:maxEmbedInputLength]
	}
	return doc.Title + "\n\n" + content
}
