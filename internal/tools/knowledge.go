package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/retrieval"
)

// defaultSearchResults is the result cap for search_knowledge when the model
// does not ask for a specific count.
const defaultSearchResults = 5

// Retriever is the slice of the retrieval engine the knowledge toolset needs.
type Retriever interface {
	Search(ctx context.Context, query string, maxResults int) ([]retrieval.Result, error)
}

type searchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// RegisterKnowledge registers the document lookup tool against the retriever.
func RegisterKnowledge(r *Registry, retriever Retriever) error {
	return r.Register(Tool{
		Name:        "search_knowledge",
		Description: "Search the business knowledge base for policies, hours, pricing, and other documented information.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":       map[string]any{"type": "string", "description": "What to look up"},
				"max_results": map[string]any{"type": "integer", "description": "Maximum number of results, default 5"},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args searchArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("parsing arguments: %w", err)
			}
			if args.Query == "" {
				return nil, fmt.Errorf("query is required")
			}
			if args.MaxResults <= 0 {
				args.MaxResults = defaultSearchResults
			}
			results, err := retriever.Search(ctx, args.Query, args.MaxResults)
			if err != nil {
				return nil, err
			}
			return map[string]any{"results": results}, nil
		},
	})
}
