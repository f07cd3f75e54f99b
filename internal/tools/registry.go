// Package tools declares the capability functions the model may call and
// dispatches model-issued calls to their handlers.
//
// The dispatch boundary converts handler failures into structured
// {"error": ...} payloads that flow back into the conversation as normal
// tool results, so the model can narrate the failure instead of the turn
// crashing.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// ErrUnknownTool is returned by Invoke for a name with no registered handler.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call. args is the raw JSON argument object from
// the model.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool couples a tool's schema with its handler. Parameters is a
// JSON-schema-shaped object describing the argument contract, sent verbatim
// to the completion service.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// ErrorPayload is the structured form a failed tool call takes on its way
// back into the conversation.
type ErrorPayload struct {
	Error string `json:"error"`
}

// Registry holds the registered tools. Registration happens once at startup;
// lookup and dispatch are read-only afterwards and safe for concurrent use.
type Registry struct {
	tools  map[string]Tool
	order  []string
	logger log.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool. An empty name, a nil handler, or a duplicate name is
// a programming error surfaced immediately.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q: handler must not be nil", t.Name)
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Definitions returns the schema list for the completion service, in
// registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Invoke routes a model-issued call to its handler. The error return is
// reserved for ErrUnknownTool; a handler failure or an unparsable argument
// string is converted into an ErrorPayload result so it still reaches the
// model as a tool result.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	args := json.RawMessage(arguments)
	if arguments == "" {
		args = json.RawMessage("{}")
	} else if !json.Valid(args) {
		r.logger.Warn("tool call arguments are not valid JSON", "tool", name)
		return ErrorPayload{Error: fmt.Sprintf("invalid arguments for %s: not valid JSON", name)}, nil
	}

	result, err := t.Handler(ctx, args)
	if err != nil {
		r.logger.Warn("tool handler failed", "tool", name, "error", err)
		return ErrorPayload{Error: err.Error()}, nil
	}

	r.logger.Debug("tool invoked", "tool", name)
	return result, nil
}
