package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedService returns its replies in order, then repeats the last
// one. It counts how often it was asked.
type scriptedService struct {
	replies []string
	err     error
	calls   int
}

func (s *scriptedService) Decide(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

func TestClassifyEmptyInputSkipsService(t *testing.T) {
	svc := &scriptedService{replies: []string{"open chrome"}}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "   ")

	assert.Equal(t, []string{"general (query)"}, lines)
	assert.Equal(t, 0, svc.calls, "empty input must not reach the decision service")
}

func TestClassifySplitsAndTrims(t *testing.T) {
	svc := &scriptedService{replies: []string{"open chrome , general who is akbar,  close notepad"}}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "open chrome and who is akbar and close notepad")

	assert.Equal(t, []string{"open chrome", "general who is akbar", "close notepad"}, lines)
	assert.Equal(t, 1, svc.calls)
}

func TestClassifyFiltersHallucinatedLines(t *testing.T) {
	svc := &scriptedService{replies: []string{"Sure! Here is the plan, open chrome, have a nice day"}}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "open chrome")

	assert.Equal(t, []string{"open chrome"}, lines)
}

func TestClassifyRetriesOnAmbiguity(t *testing.T) {
	svc := &scriptedService{replies: []string{
		"general (query)",
		"general (query)",
		"realtime todays news",
	}}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "whats happening")

	assert.Equal(t, []string{"realtime todays news"}, lines)
	assert.Equal(t, 3, svc.calls)
}

func TestClassifyRetryBound(t *testing.T) {
	svc := &scriptedService{replies: []string{"general (query)"}}
	c := NewClassifier(svc, WithMaxRetries(2))

	lines := c.Classify(context.Background(), "mumble mumble")

	// maxRetries+1 total attempts, then the fallback with the original
	// utterance.
	assert.Equal(t, 3, svc.calls)
	assert.Equal(t, []string{"general mumble mumble"}, lines)
}

func TestClassifyServiceErrorFallsBack(t *testing.T) {
	svc := &scriptedService{err: errors.New("upstream down")}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "open chrome")

	assert.Equal(t, []string{"general open chrome"}, lines)
	assert.Equal(t, 1, svc.calls, "service errors must not be retried")
}

func TestClassifyEmptyDecisionRetries(t *testing.T) {
	svc := &scriptedService{replies: []string{"", "open chrome"}}
	c := NewClassifier(svc)

	lines := c.Classify(context.Background(), "open chrome")

	assert.Equal(t, []string{"open chrome"}, lines)
	assert.Equal(t, 2, svc.calls)
}

func TestClassifyBatch(t *testing.T) {
	svc := &scriptedService{replies: []string{"open chrome, general who is akbar"}}
	c := NewClassifier(svc)

	batch := c.ClassifyBatch(context.Background(), "open chrome and who is akbar")

	require.Len(t, batch, 2)
	assert.Equal(t, Directive{Verb: VerbOpen, Argument: "chrome"}, batch[0])
	assert.Equal(t, Directive{Verb: VerbGeneral, Argument: "who is akbar"}, batch[1])
}

func TestFallback(t *testing.T) {
	assert.Equal(t, Directive{Verb: VerbGeneral, Argument: "hello there"}, Fallback("  hello there "))
	assert.Equal(t, Directive{Verb: VerbGeneral, Argument: "(query)"}, Fallback(""))
}
