package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya182-ui/supriya/internal/llm"
	"github.com/Arya182-ui/supriya/internal/session"
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

func TestChatbotAnswerRecordsHistory(t *testing.T) {
	provider := &fakeProvider{reply: "I am fine, thanks."}
	sess := session.New("Arya", "Supriya")
	c := New(provider, sess)

	reply, err := c.Answer(context.Background(), "How are you?")

	require.NoError(t, err)
	assert.Equal(t, "I am fine, thanks.", reply)

	require.NotNil(t, provider.req)
	assert.Contains(t, provider.req.SystemPrompt, "Supriya")
	assert.Contains(t, provider.req.SystemPrompt, "Arya")
	require.Len(t, provider.req.Messages, 1)
	assert.Equal(t, "How are you?", provider.req.Messages[0].Content)

	msgs := sess.History().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestChatbotAnswerCarriesHistoryForward(t *testing.T) {
	provider := &fakeProvider{reply: "He ruled in the 16th century."}
	sess := session.New("Arya", "Supriya")
	c := New(provider, sess)

	_, err := c.Answer(context.Background(), "Who is akbar?")
	require.NoError(t, err)
	_, err = c.Answer(context.Background(), "When did he rule?")
	require.NoError(t, err)

	// Second request carries the first exchange plus the new query.
	require.Len(t, provider.req.Messages, 3)
	assert.Equal(t, "Who is akbar?", provider.req.Messages[0].Content)
	assert.Equal(t, "When did he rule?", provider.req.Messages[2].Content)
}

func TestChatbotAnswerError(t *testing.T) {
	boom := errors.New("model down")
	sess := session.New("", "")
	c := New(&fakeProvider{err: boom}, sess)

	_, err := c.Answer(context.Background(), "How are you?")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, sess.History().Len(), "a failed turn must not pollute history")
}

func TestCleanAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello\n\n\nworld", "hello\nworld"},
		{"  spaced  \n\n  lines  ", "spaced\nlines"},
		{"single", "single"},
		{"\n\n", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanAnswer(tt.in), "input %q", tt.in)
	}
}

func TestRealtimeInformation(t *testing.T) {
	now := time.Date(2025, time.June, 25, 21, 5, 9, 0, time.UTC)
	out := RealtimeInformation(now)

	assert.Contains(t, out, "Day: Wednesday")
	assert.Contains(t, out, "Date: 25")
	assert.Contains(t, out, "Month: June")
	assert.Contains(t, out, "Year: 2025")
	assert.Contains(t, out, "Time: 21 hours, 05 minutes, 09 seconds.")
}
