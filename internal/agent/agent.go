// Package agent drives the multi-turn conversation protocol: it assembles
// the prompt context, requests completions, executes requested tool calls
// through the dispatcher, and feeds the results back for a final answer.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/log"
	"github.com/frontdesk-ai/frontdesk/internal/retrieval"
	"github.com/frontdesk-ai/frontdesk/internal/session"
	"github.com/frontdesk-ai/frontdesk/internal/tools"
)

const (
	// apologyMessage is the only user-visible wording for a failed turn,
	// whatever the underlying cause.
	apologyMessage = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."

	// historyWindow is how many trailing history messages enter the prompt.
	historyWindow = 10

	// proactiveResults caps the knowledge documents retrieved up front for
	// question-looking messages.
	proactiveResults = 3
)

// DefaultSystemPrompt is the base instruction set for the assistant.
const DefaultSystemPrompt = `You are the virtual front-desk assistant for this business. ` +
	`Answer questions using the provided knowledge when available, and use the ` +
	`scheduling tools to check availability and manage appointments. Be concise ` +
	`and friendly. If you do not know something, say so rather than guessing.`

// questionIndicators mark a message as informational, triggering proactive
// knowledge retrieval.
var questionIndicators = []string{
	"what", "when", "where", "who", "why", "how",
	"can i", "can you", "could", "do you", "is there", "are there",
	"tell me", "hours", "price", "cost", "policy",
}

// Retriever is the slice of the retrieval engine the agent needs.
type Retriever interface {
	Search(ctx context.Context, query string, maxResults int) ([]retrieval.Result, error)
}

// Agent orchestrates one conversation turn at a time.
type Agent struct {
	client       llm.Client
	registry     *tools.Registry
	retriever    Retriever
	store        *knowledge.Store
	sessions     *session.Store
	systemPrompt string
	logger       log.Logger
}

// New creates an Agent. systemPrompt may be empty to use the default.
func New(client llm.Client, registry *tools.Registry, retriever Retriever, store *knowledge.Store, sessions *session.Store, systemPrompt string, logger log.Logger) *Agent {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Agent{
		client:       client,
		registry:     registry,
		retriever:    retriever,
		store:        store,
		sessions:     sessions,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// Respond runs one turn for the session and returns the assistant's answer.
// An unrecoverable failure yields the fixed apology and leaves the session
// history exactly as it was; a successful turn appends the user message and
// the final assistant message, nothing else.
func (a *Agent) Respond(ctx context.Context, sessionID, message string) string {
	reply, err := a.turn(ctx, sessionID, message)
	if err != nil {
		a.logger.Error("turn failed", "session_id", sessionID, "error", err)
		return apologyMessage
	}
	return reply
}

// turn implements the per-turn state machine. History is only mutated on the
// success paths, immediately before returning.
func (a *Agent) turn(ctx context.Context, sessionID, message string) (string, error) {
	history := a.sessions.Get(sessionID)
	prior := history.Messages()
	if len(prior) > historyWindow {
		prior = prior[len(prior)-historyWindow:]
	}

	systemPrompt := a.systemPrompt
	if looksInformational(message) {
		if addendum := a.knowledgeAddendum(ctx, message); addendum != "" {
			systemPrompt += "\n\n" + addendum
		}
	}

	userMsg := llm.Message{Role: llm.RoleUser, Content: message}
	msgs := make([]llm.Message, 0, len(prior)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	msgs = append(msgs, prior...)
	msgs = append(msgs, userMsg)

	first, err := a.client.Complete(ctx, llm.CompletionRequest{
		Messages: msgs,
		Tools:    a.registry.Definitions(),
	})
	if err != nil {
		return "", fmt.Errorf("first completion: %w", err)
	}

	if len(first.ToolCalls) == 0 {
		history.Append(userMsg, llm.Message{Role: llm.RoleAssistant, Content: first.Content})
		return first.Content, nil
	}

	// Tool round: execute every requested call in issue order and answer
	// each with a tool message tagged by its call id.
	msgs = append(msgs, llm.Message{
		Role:      llm.RoleAssistant,
		Content:   first.Content,
		ToolCalls: first.ToolCalls,
	})
	for _, call := range first.ToolCalls {
		msgs = append(msgs, llm.Message{
			Role:       llm.RoleTool,
			Content:    a.executeCall(ctx, call),
			ToolCallID: call.ID,
		})
	}

	final, err := a.client.Complete(ctx, llm.CompletionRequest{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("second completion: %w", err)
	}

	history.Append(userMsg, llm.Message{Role: llm.RoleAssistant, Content: final.Content})
	return final.Content, nil
}

// executeCall dispatches one tool call and serializes its result. Every
// failure mode ends up as an {"error": ...} body so the model can react in
// natural language.
func (a *Agent) executeCall(ctx context.Context, call llm.ToolCall) string {
	a.logger.Info("executing tool call", "tool", call.Name, "call_id", call.ID)

	payload, err := a.registry.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		payload = tools.ErrorPayload{Error: err.Error()}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		a.logger.Warn("tool result not serializable", "tool", call.Name, "error", err)
		body, _ = json.Marshal(tools.ErrorPayload{Error: "tool result could not be serialized"})
	}
	return string(body)
}

// knowledgeAddendum retrieves documents relevant to the message and formats
// them for the system prompt. Retrieval failures never block the turn.
func (a *Agent) knowledgeAddendum(ctx context.Context, message string) string {
	results, err := a.retriever.Search(ctx, message, proactiveResults)
	if err != nil {
		a.logger.Warn("proactive retrieval failed, continuing without knowledge", "error", err)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant knowledge:")
	seen := make(map[string]bool)
	for _, result := range results {
		title, content := a.expandToParent(result)
		if seen[title] {
			continue
		}
		seen[title] = true
		b.WriteString("\n\n## ")
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(content)
	}
	return b.String()
}

// expandToParent resolves a chunk hit to its full parent document by
// stitching the sibling chunks back together in order. A hit on a whole
// document is returned as-is; a chunk whose siblings are gone falls back to
// the chunk itself under a synthesized title.
func (a *Agent) expandToParent(result retrieval.Result) (title, content string) {
	doc, ok := a.store.Get(result.DocumentID)
	if !ok {
		return result.Title, result.Excerpt
	}
	parentID, isChunk := doc.Metadata[knowledge.MetaParentID]
	if !isChunk {
		return doc.Title, doc.Content
	}

	siblings := make(map[int]string)
	maxIndex := -1
	for _, candidate := range a.store.Documents() {
		if candidate.Metadata[knowledge.MetaParentID] != parentID {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(candidate.Metadata[knowledge.MetaChunkIndex], "%d", &idx); err != nil {
			continue
		}
		siblings[idx] = candidate.Content
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	if maxIndex < 0 {
		return parentID + " (excerpt)", doc.Content
	}

	parts := make([]string, 0, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		if segment, ok := siblings[i]; ok {
			parts = append(parts, segment)
		}
	}
	return parentTitle(doc.Title), strings.Join(parts, "\n\n")
}

// parentTitle strips the " (Part n)" suffix a chunk title carries.
func parentTitle(chunkTitle string) string {
	if i := strings.LastIndex(chunkTitle, " (Part "); i > 0 {
		return chunkTitle[:i]
	}
	return chunkTitle
}

// looksInformational reports whether the message reads like a question.
func looksInformational(message string) bool {
	if strings.Contains(message, "?") {
		return true
	}
	lower := strings.ToLower(message)
	for _, indicator := range questionIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
