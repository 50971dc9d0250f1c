package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arya182-ui/supriya/internal/llm"
	"github.com/Arya182-ui/supriya/internal/session"
)

// fakeProvider echoes a canned reply and captures the request.
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

// fakeSearch returns canned results.
type fakeSearch struct {
	results []SearchResult
	err     error
	query   string
}

func (f *fakeSearch) Search(_ context.Context, query string, _ int) ([]SearchResult, error) {
	f.query = query
	return f.results, f.err
}

func TestEngineAnswerGroundsOnSearchResults(t *testing.T) {
	provider := &fakeProvider{reply: "It is sunny today."}
	search := &fakeSearch{results: []SearchResult{
		{Title: "Weather today", Description: "Sunny, 31C"},
	}}
	sess := session.New("Arya", "Supriya")
	e := NewEngine(provider, search, sess)

	reply, err := e.Answer(context.Background(), "Todays weather?")

	require.NoError(t, err)
	assert.Equal(t, "It is sunny today.", reply)
	assert.Equal(t, "Todays weather?", search.query)

	require.NotNil(t, provider.req)
	assert.Contains(t, provider.req.SystemPrompt, "Weather today")
	assert.Contains(t, provider.req.SystemPrompt, "[start]")
	assert.Contains(t, provider.req.SystemPrompt, "[end]")

	// The exchange lands in the shared history.
	assert.Equal(t, 2, sess.History().Len())
}

func TestEngineAnswerSearchFailurePropagates(t *testing.T) {
	boom := errors.New("network down")
	e := NewEngine(&fakeProvider{reply: "unused"}, &fakeSearch{err: boom}, session.New("", ""))

	_, err := e.Answer(context.Background(), "Todays news?")

	assert.ErrorIs(t, err, boom)
}

func TestEngineAnswerModelFailurePropagates(t *testing.T) {
	boom := errors.New("model down")
	e := NewEngine(&fakeProvider{err: boom}, &fakeSearch{}, session.New("", ""))

	_, err := e.Answer(context.Background(), "Todays news?")

	assert.ErrorIs(t, err, boom)
}

func TestFormatResults(t *testing.T) {
	out := FormatResults("todays weather", []SearchResult{
		{Title: "Weather", Description: "Sunny"},
		{Title: "Forecast", Description: "Rain tomorrow"},
	})

	assert.Equal(t, "The search result for 'todays weather' are:\n[start]\n"+
		"Title: Weather\nDescription: Sunny\n\n"+
		"Title: Forecast\nDescription: Rain tomorrow\n\n"+
		"[end]", out)
}

const resultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/one">First <b>Hit</b></a>
  <a class="result__snippet" href="#">First snippet text</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/two">Second Hit</a>
  <a class="result__snippet" href="#">Second snippet text</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.com/three">Third Hit</a>
</div>
</body></html>`

func TestWebSearchClientParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cats", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, resultsPage)
	}))
	defer srv.Close()

	c := NewWebSearchClient(srv.Client())
	c.endpoint = srv.URL + "/"

	results, err := c.Search(context.Background(), "cats", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "First Hit", results[0].Title)
	assert.Equal(t, "First snippet text", results[0].Description)
	assert.Equal(t, "https://example.com/one", results[0].URL)
	assert.Equal(t, "Second Hit", results[1].Title)
	assert.Equal(t, "Third Hit", results[2].Title)
	assert.Empty(t, results[2].Description)
}

func TestWebSearchClientLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultsPage)
	}))
	defer srv.Close()

	c := NewWebSearchClient(srv.Client())
	c.endpoint = srv.URL + "/"

	results, err := c.Search(context.Background(), "cats", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestWebSearchClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewWebSearchClient(srv.Client())
	c.endpoint = srv.URL + "/"

	_, err := c.Search(context.Background(), "cats", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
