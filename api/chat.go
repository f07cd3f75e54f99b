package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/log"
	"github.com/frontdesk-ai/frontdesk/internal/session"
)

// maxChatBodyBytes bounds the request body to keep a single message from
// exhausting memory.
const maxChatBodyBytes = 64 * 1024

// Responder runs one conversation turn. Implemented by agent.Agent.
type Responder interface {
	Respond(ctx context.Context, sessionID, message string) string
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// chatResponse is the reply body.
type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// chatHandler serves the conversational endpoint.
type chatHandler struct {
	agent    Responder
	sessions *session.Store
	logger   log.Logger
}

// send handles POST /api/chat. A blank sessionId allocates a fresh session
// and echoes its id back so the client can continue the conversation.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxChatBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read request body", h.logger)
		return
	}
	if len(body) > maxChatBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large", h.logger)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be valid JSON", h.logger)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "message must not be empty", h.logger)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = h.sessions.NewSessionID()
	}

	reply := h.agent.Respond(r.Context(), sessionID, req.Message)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		SessionID: sessionID,
	}, h.logger)
}
