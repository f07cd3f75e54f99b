package api

import (
	"net/http"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// KnowledgeCounter reports how many documents the knowledge store holds.
// Implemented by knowledge.Store.
type KnowledgeCounter interface {
	Len() int
}

// health is a liveness probe. Always 200 while the process is up.
func health(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}

// readiness reports whether the knowledge base has been loaded. An empty
// store means the first rebuild has not completed yet (or the knowledge
// directory is empty) and the assistant cannot answer grounded questions.
func readiness(store KnowledgeCounter, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if store == nil || store.Len() == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":    "not ready",
				"documents": 0,
			}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ready",
			"documents": store.Len(),
		}, logger)
	}
}
