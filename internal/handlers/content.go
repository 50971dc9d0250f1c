package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/llm"
)

const contentSystemPrompt = "You are a content writer. You write letters, " +
	"codes, applications, essays, notes, songs and poems. Write only the " +
	"requested content, with no preamble or commentary."

// ContentWriter drafts text with the language model, saves it under
// the content directory and opens it in the configured editor.
type ContentWriter struct {
	provider llm.Provider
	runner   CommandRunner
	dir      string
	editor   string
}

// ContentOption configures a ContentWriter.
type ContentOption func(*ContentWriter)

// WithContentDir sets the directory drafts are written to.
func WithContentDir(dir string) ContentOption {
	return func(c *ContentWriter) { c.dir = dir }
}

// WithEditor sets the editor command used to open drafts.
func WithEditor(editor string) ContentOption {
	return func(c *ContentWriter) { c.editor = editor }
}

// NewContentWriter creates a ContentWriter.
func NewContentWriter(provider llm.Provider, runner CommandRunner, opts ...ContentOption) *ContentWriter {
	home, _ := os.UserHomeDir()
	c := &ContentWriter{
		provider: provider,
		runner:   runner,
		dir:      filepath.Join(home, ".supriya", "content"),
		editor:   "notepad",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write generates the requested content and opens the saved draft.
func (c *ContentWriter) Write(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return fmt.Errorf("content: empty topic")
	}

	log.Info().Str("topic", topic).Msg("[Handlers] Drafting content")
	resp, err := c.provider.Chat(ctx, &llm.ChatRequest{
		SystemPrompt: contentSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: topic}},
	})
	if err != nil {
		return fmt.Errorf("content: generate: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("content: dir: %w", err)
	}
	path := filepath.Join(c.dir, slugify(topic)+".txt")
	if err := os.WriteFile(path, []byte(resp.Content), 0o644); err != nil {
		return fmt.Errorf("content: save: %w", err)
	}
	log.Info().Str("path", path).Msg("[Handlers] Content saved")

	if err := c.runner.Run(ctx, c.editor, path); err != nil {
		// The draft is on disk either way; a missing editor should not
		// fail the turn.
		log.Warn().Err(err).Str("editor", c.editor).Msg("[Handlers] Could not open editor")
	}
	return nil
}

// slugify turns a spoken topic into a safe file name.
func slugify(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(topic) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "draft"
	}
	if len(s) > 64 {
		s = s[:64]
	}
	return s
}
