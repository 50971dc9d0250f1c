package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// WebSearchClient implements SearchClient against DuckDuckGo's HTML
// endpoint, which returns parseable markup without JavaScript.
type WebSearchClient struct {
	client   *http.Client
	endpoint string
}

// NewWebSearchClient creates a WebSearchClient with the given HTTP
// client, or a default one when nil.
func NewWebSearchClient(client *http.Client) *WebSearchClient {
	if client == nil {
		client = &http.Client{}
	}
	return &WebSearchClient{client: client, endpoint: searchEndpoint}
}

// Search runs one query and returns up to limit hits.
func (c *WebSearchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = DefaultResultLimit
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	results := extractResults(doc, limit)
	return results, nil
}

// extractResults walks the parsed page collecting result blocks. The
// endpoint marks titles with class "result__a" and snippets with
// "result__snippet".
func extractResults(doc *html.Node, limit int) []SearchResult {
	var results []SearchResult
	var current *SearchResult

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a"):
				if current != nil && current.Title != "" {
					results = append(results, *current)
				}
				current = &SearchResult{
					Title: strings.TrimSpace(textContent(n)),
					URL:   attr(n, "href"),
				}
			case hasClass(n, "result__snippet") && current != nil:
				current.Description = strings.TrimSpace(textContent(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.Title != "" && len(results) < limit {
		results = append(results, *current)
	}
	return results
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
