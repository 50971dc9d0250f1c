package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya182-ui/supriya/internal/llm"
)

type fakeProvider struct {
	reply string
	err   error
	req   *llm.ChatRequest
}

func (f *fakeProvider) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.reply}, nil
}

func (f *fakeProvider) Name() string    { return "fake" }
func (f *fakeProvider) Available() bool { return true }

func TestNewDefaults(t *testing.T) {
	s := New("", "")
	assert.Equal(t, "Arya", s.Username)
	assert.Equal(t, "Supriya", s.AssistantName)
}

func TestPromptsCarryNames(t *testing.T) {
	s := New("Priya", "Jarvis")

	assert.Contains(t, s.ChatSystemPrompt(), "Priya")
	assert.Contains(t, s.ChatSystemPrompt(), "Jarvis")
	assert.Contains(t, s.SearchSystemPrompt(), "Priya")
	assert.Contains(t, s.SearchSystemPrompt(), "Jarvis")
}

func TestHistoryBound(t *testing.T) {
	s := New("", "", WithHistoryLimit(4))

	for i := 0; i < 10; i++ {
		s.History().Append("user", fmt.Sprintf("q%d", i))
	}

	msgs := s.History().Messages()
	require.Len(t, msgs, 4)
	// Oldest entries fall off; the latest survive in order.
	assert.Equal(t, "q6", msgs[0].Content)
	assert.Equal(t, "q9", msgs[3].Content)
}

func TestHistoryMessagesIsACopy(t *testing.T) {
	s := New("", "")
	s.History().Append("user", "hello")

	msgs := s.History().Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "hello", s.History().Messages()[0].Content)
}

func TestDecisionModelDecide(t *testing.T) {
	provider := &fakeProvider{reply: "  open chrome, general who is akbar  "}
	m := NewDecisionModel(provider)

	out, err := m.Decide(context.Background(), "open chrome and who is akbar")

	require.NoError(t, err)
	assert.Equal(t, "open chrome, general who is akbar", out)

	require.NotNil(t, provider.req)
	assert.Contains(t, provider.req.SystemPrompt, "Decision-Making Model")

	// Few-shot examples precede the utterance.
	require.NotEmpty(t, provider.req.Messages)
	last := provider.req.Messages[len(provider.req.Messages)-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "open chrome and who is akbar", last.Content)
	assert.Greater(t, len(provider.req.Messages), 1)
}

func TestDecisionModelError(t *testing.T) {
	m := NewDecisionModel(&fakeProvider{err: errors.New("upstream down")})

	_, err := m.Decide(context.Background(), "open chrome")

	assert.Error(t, err)
}
