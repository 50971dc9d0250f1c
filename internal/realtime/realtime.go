// Package realtime implements the live-search responder: the merged
// query is run through a web search client and the results are handed
// to the chat model as grounding context.
package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/chat"
	"github.com/Arya182-ui/supriya/internal/llm"
	"github.com/Arya182-ui/supriya/internal/session"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title       string
	Description string
	URL         string
}

// SearchClient is the external web search boundary.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// DefaultResultLimit is how many search hits ground the answer.
const DefaultResultLimit = 5

// Engine answers realtime queries by searching the web and letting the
// model summarize the results.
type Engine struct {
	provider llm.Provider
	search   SearchClient
	sess     *session.Session
	limit    int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithResultLimit sets how many search hits ground the answer.
func WithResultLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// NewEngine creates an Engine bound to the session.
func NewEngine(provider llm.Provider, search SearchClient, sess *session.Session, opts ...EngineOption) *Engine {
	e := &Engine{
		provider: provider,
		search:   search,
		sess:     sess,
		limit:    DefaultResultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer resolves one normalized query against live web data. A search
// or model failure propagates to the caller; the resolver surfaces it
// as this turn's failure.
func (e *Engine) Answer(ctx context.Context, query string) (string, error) {
	results, err := e.search.Search(ctx, query, e.limit)
	if err != nil {
		return "", fmt.Errorf("realtime responder: search: %w", err)
	}

	log.Debug().Int("results", len(results)).Str("query", query).Msg("[Realtime] Search complete")

	system := e.sess.SearchSystemPrompt() + "\n\n" +
		chat.RealtimeInformation(time.Now()) + "\n" +
		FormatResults(query, results)

	msgs := e.sess.History().Messages()
	msgs = append(msgs, llm.Message{Role: "user", Content: query})

	resp, err := e.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: system,
		Messages:     msgs,
	})
	if err != nil {
		return "", fmt.Errorf("realtime responder: %w", err)
	}

	reply := chat.CleanAnswer(resp.Content)
	e.sess.History().Append("user", query)
	e.sess.History().Append("assistant", reply)
	return reply, nil
}

// FormatResults renders search hits as the grounding block the model
// is instructed to answer from.
func FormatResults(query string, results []SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The search result for '%s' are:\n[start]\n", query)
	for _, r := range results {
		fmt.Fprintf(&b, "Title: %s\nDescription: %s\n\n", r.Title, r.Description)
	}
	b.WriteString("[end]")
	return b.String()
}
