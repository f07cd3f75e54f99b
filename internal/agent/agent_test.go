package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontdesk-ai/frontdesk/internal/knowledge"
	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/log"
	"github.com/frontdesk-ai/frontdesk/internal/retrieval"
	"github.com/frontdesk-ai/frontdesk/internal/session"
	"github.com/frontdesk-ai/frontdesk/internal/tools"
)

// scriptedClient returns one canned completion per call, recording every
// request it sees.
type scriptedClient struct {
	completions []llm.Completion
	errs        []error
	requests    []llm.CompletionRequest
}

func (c *scriptedClient) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	n := len(c.requests)
	c.requests = append(c.requests, req)
	var err error
	if n < len(c.errs) {
		err = c.errs[n]
	}
	if err != nil {
		return nil, err
	}
	if n >= len(c.completions) {
		return nil, errors.New("no scripted completion")
	}
	completion := c.completions[n]
	return &completion, nil
}

func (c *scriptedClient) Embed(context.Context, string) ([]float64, error) {
	return nil, errors.New("not implemented")
}

type stubRetriever struct {
	results []retrieval.Result
	err     error
	queries []string
}

func (s *stubRetriever) Search(_ context.Context, query string, _ int) ([]retrieval.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func newTestAgent(t *testing.T, client llm.Client, retriever Retriever, docs ...knowledge.Document) (*Agent, *session.Store) {
	t.Helper()
	store := knowledge.NewStore(log.NewNop())
	if len(docs) > 0 {
		store.Replace(docs, nil)
	}
	if retriever == nil {
		retriever = &stubRetriever{}
	}
	sessions := session.NewStore()
	registry := tools.NewRegistry(log.NewNop())
	a := New(client, registry, retriever, store, sessions, "", log.NewNop())
	return a, sessions
}

func TestRespond_PlainAnswer(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "We open at 9am."}}}
	a, sessions := newTestAgent(t, client, nil)

	reply := a.Respond(context.Background(), "s1", "hello there")
	assert.Equal(t, "We open at 9am.", reply)

	require.Len(t, client.requests, 1)
	msgs := client.requests[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, llm.RoleUser, msgs[1].Role)

	history := sessions.Get("s1").Messages()
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
	assert.Equal(t, "We open at 9am.", history[1].Content)
}

func TestRespond_ToolRound(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "call-7", Name: "check_availability", Arguments: `{"start":"2026-09-02T09:00:00Z","end":"2026-09-02T17:00:00Z"}`}}},
		{Content: "You're free all afternoon."},
	}}
	a, sessions := newTestAgent(t, client, nil)

	reply := a.Respond(context.Background(), "s1", "am I free tomorrow afternoon")
	assert.Equal(t, "You're free all afternoon.", reply)

	require.Len(t, client.requests, 2)

	// The second request must replay the assistant tool-call message followed
	// by a tool message tagged with the same call id.
	second := client.requests[1].Messages
	require.GreaterOrEqual(t, len(second), 4)
	asst := second[len(second)-2]
	toolMsg := second[len(second)-1]
	assert.Equal(t, llm.RoleAssistant, asst.Role)
	require.Len(t, asst.ToolCalls, 1)
	assert.Equal(t, "call-7", asst.ToolCalls[0].ID)
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.Equal(t, "call-7", toolMsg.ToolCallID)
	assert.Empty(t, client.requests[1].Tools, "the follow-up completion must not offer tools")

	// Only the user message and the final answer land in history.
	history := sessions.Get("s1").Messages()
	require.Len(t, history, 2)
	assert.Equal(t, "You're free all afternoon.", history[1].Content)
}

func TestRespond_UnknownToolBecomesErrorResult(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{{ID: "call-1", Name: "no_such_tool", Arguments: "{}"}}},
		{Content: "Sorry, I can't do that."},
	}}
	a, _ := newTestAgent(t, client, nil)

	reply := a.Respond(context.Background(), "s1", "do the thing")
	assert.Equal(t, "Sorry, I can't do that.", reply)

	toolMsg := client.requests[1].Messages[len(client.requests[1].Messages)-1]
	assert.Equal(t, llm.RoleTool, toolMsg.Role)
	assert.Contains(t, toolMsg.Content, "error")
	assert.Contains(t, toolMsg.Content, "no_such_tool")
}

func TestRespond_MultipleToolCallsAnsweredInOrder(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{
		{ToolCalls: []llm.ToolCall{
			{ID: "call-a", Name: "missing_a", Arguments: "{}"},
			{ID: "call-b", Name: "missing_b", Arguments: "{}"},
		}},
		{Content: "done"},
	}}
	a, _ := newTestAgent(t, client, nil)

	a.Respond(context.Background(), "s1", "two things please")

	msgs := client.requests[1].Messages
	require.GreaterOrEqual(t, len(msgs), 5)
	assert.Equal(t, "call-a", msgs[len(msgs)-2].ToolCallID)
	assert.Equal(t, "call-b", msgs[len(msgs)-1].ToolCallID)
}

func TestRespond_CompletionFailureKeepsHistoryClean(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("upstream 500")}}
	a, sessions := newTestAgent(t, client, nil)

	reply := a.Respond(context.Background(), "s1", "hello")
	assert.Equal(t, apologyMessage, reply)
	assert.Equal(t, 0, sessions.Get("s1").Len(), "a failed turn must not touch history")
}

func TestRespond_SecondCompletionFailure(t *testing.T) {
	client := &scriptedClient{
		completions: []llm.Completion{
			{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "x", Arguments: "{}"}}},
		},
		errs: []error{nil, errors.New("upstream timeout")},
	}
	a, sessions := newTestAgent(t, client, nil)

	reply := a.Respond(context.Background(), "s1", "hello")
	assert.Equal(t, apologyMessage, reply)
	assert.Equal(t, 0, sessions.Get("s1").Len())
}

func TestRespond_ProactiveKnowledgeForQuestions(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "24 hours notice."}}}
	retriever := &stubRetriever{results: []retrieval.Result{
		{DocumentID: "policy", Title: "Cancellation Policy", Excerpt: "...", Score: 55},
	}}
	doc := knowledge.Document{ID: "policy", Title: "Cancellation Policy", Content: "Cancel 24 hours ahead."}
	a, _ := newTestAgent(t, client, retriever, doc)

	a.Respond(context.Background(), "s1", "What is your cancellation policy?")

	require.Len(t, retriever.queries, 1)
	system := client.requests[0].Messages[0].Content
	assert.Contains(t, system, "Cancellation Policy")
	assert.Contains(t, system, "Cancel 24 hours ahead.")
}

func TestRespond_NonQuestionSkipsRetrieval(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "ok"}}}
	retriever := &stubRetriever{}
	a, _ := newTestAgent(t, client, retriever)

	a.Respond(context.Background(), "s1", "thanks, bye")
	assert.Empty(t, retriever.queries)
}

func TestRespond_RetrievalFailureIsIgnored(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "ok"}}}
	retriever := &stubRetriever{err: errors.New("embedder down")}
	a, _ := newTestAgent(t, client, retriever)

	reply := a.Respond(context.Background(), "s1", "what are your hours?")
	assert.Equal(t, "ok", reply)
}

func TestRespond_HistoryWindow(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "ok"}}}
	a, sessions := newTestAgent(t, client, nil)

	h := sessions.Get("s1")
	for i := 0; i < 20; i++ {
		h.Append(llm.Message{Role: llm.RoleUser, Content: "old"})
	}

	a.Respond(context.Background(), "s1", "hi")

	// system + 10 windowed + current user.
	assert.Len(t, client.requests[0].Messages, historyWindow+2)
}

func TestExpandToParent_ReassemblesChunks(t *testing.T) {
	client := &scriptedClient{completions: []llm.Completion{{Content: "ok"}}}
	docs := []knowledge.Document{
		{ID: "guide-chunk-0", Title: "Guide (Part 1)", Content: "first part", Metadata: map[string]string{
			knowledge.MetaParentID: "guide", knowledge.MetaChunkIndex: "0",
		}},
		{ID: "guide-chunk-1", Title: "Guide (Part 2)", Content: "second part", Metadata: map[string]string{
			knowledge.MetaParentID: "guide", knowledge.MetaChunkIndex: "1",
		}},
	}
	retriever := &stubRetriever{results: []retrieval.Result{
		{DocumentID: "guide-chunk-1", Title: "Guide (Part 2)", Score: 40},
	}}
	a, _ := newTestAgent(t, client, retriever, docs...)

	a.Respond(context.Background(), "s1", "what does the guide say?")

	system := client.requests[0].Messages[0].Content
	assert.Contains(t, system, "## Guide\n")
	assert.Contains(t, system, "first part\n\nsecond part")
	assert.False(t, strings.Contains(system, "(Part 2)"), "chunk titles must not leak into the prompt")
}

func TestLooksInformational(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"What are your hours?", true},
		{"do you take walk-ins", true},
		{"tell me about parking", true},
		{"thanks, bye", false},
		{"ok", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, looksInformational(tc.message), "message %q", tc.message)
	}
}
