// Package llm defines the boundary to the language-model completion and
// embedding services, plus the OpenAI-backed implementation used in
// production. The rest of the application depends only on the Client
// interface and the neutral message types, so tests substitute fakes.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a conversation sent to the completion service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCallID correlates a tool-role message with the assistant tool
	// call it answers.
	ToolCallID string `json:"toolCallId,omitempty"`

	// ToolCalls holds the calls an assistant message requested.
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
}

// ToolCall is a model-issued request to invoke a named tool. Arguments is
// the raw serialized-JSON argument string exactly as the service returned
// it; parsing is the dispatcher's job.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition is the schema advertised to the completion service for one
// callable tool. Parameters is a JSON-schema-shaped object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// CompletionRequest is one request to the completion service. When Tools is
// non-empty the service may answer with tool calls (automatic tool choice);
// with no tools it must answer in text.
type CompletionRequest struct {
	Messages []Message
	Tools    []ToolDefinition
}

// Completion is the service's answer: assistant text and/or requested tool
// calls.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the completion/embedding service boundary.
type Client interface {
	// Complete requests a chat completion.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
