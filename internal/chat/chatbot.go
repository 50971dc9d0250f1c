// Package chat implements the conversational responder: queries the
// decision layer labeled "general" are answered by the chat model with
// the session's running history for context.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/llm"
	"github.com/Arya182-ui/supriya/internal/session"
)

// Chatbot answers general queries through an LLM provider.
type Chatbot struct {
	provider llm.Provider
	sess     *session.Session
}

// New creates a Chatbot bound to the session.
func New(provider llm.Provider, sess *session.Session) *Chatbot {
	return &Chatbot{provider: provider, sess: sess}
}

// Answer replies to one normalized query and records the exchange in
// the session history.
func (c *Chatbot) Answer(ctx context.Context, query string) (string, error) {
	msgs := c.sess.History().Messages()
	msgs = append(msgs, llm.Message{Role: "user", Content: query})

	resp, err := c.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: c.sess.ChatSystemPrompt(),
		Messages:     msgs,
	})
	if err != nil {
		return "", fmt.Errorf("chat responder: %w", err)
	}

	reply := CleanAnswer(resp.Content)
	c.sess.History().Append("user", query)
	c.sess.History().Append("assistant", reply)

	log.Debug().
		Str("model", resp.Model).
		Dur("duration", resp.Duration).
		Msg("[Chat] Answered")
	return reply, nil
}

// CleanAnswer drops empty lines and stray whitespace from a model
// reply so it reads well when spoken or printed.
func CleanAnswer(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RealtimeInformation renders the current date and time as model
// context, so "what is today's date" style queries answer correctly.
func RealtimeInformation(now time.Time) string {
	var b strings.Builder
	b.WriteString("Use the real-time information if needed:\n")
	fmt.Fprintf(&b, "Day: %s\n", now.Format("Monday"))
	fmt.Fprintf(&b, "Date: %s\n", now.Format("02"))
	fmt.Fprintf(&b, "Month: %s\n", now.Format("January"))
	fmt.Fprintf(&b, "Year: %s\n", now.Format("2006"))
	fmt.Fprintf(&b, "Time: %s hours, %s minutes, %s seconds.\n",
		now.Format("15"), now.Format("04"), now.Format("05"))
	return b.String()
}
