package handlers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
)

// Browser opens URLs through the platform's default browser.
type Browser struct {
	runner CommandRunner
}

// NewBrowser creates a Browser backed by the given runner.
func NewBrowser(runner CommandRunner) *Browser {
	return &Browser{runner: runner}
}

// OpenURL opens a URL in the default browser.
func (b *Browser) OpenURL(ctx context.Context, rawURL string) error {
	name, args := browserCommand()
	log.Info().Str("url", rawURL).Msg("[Handlers] Opening URL")
	if err := b.runner.Run(ctx, name, append(args, rawURL)...); err != nil {
		return fmt.Errorf("open url %q: %w", rawURL, err)
	}
	return nil
}

// GoogleSearch opens a Google search for the argument.
func (b *Browser) GoogleSearch(ctx context.Context, argument string) error {
	return b.OpenURL(ctx, "https://www.google.com/search?q="+url.QueryEscape(argument))
}

// YouTubeSearch opens a YouTube search for the argument.
func (b *Browser) YouTubeSearch(ctx context.Context, argument string) error {
	return b.OpenURL(ctx, "https://www.youtube.com/results?search_query="+url.QueryEscape(argument))
}

// PlayYouTube opens YouTube positioned on the argument so playback is
// one click away.
func (b *Browser) PlayYouTube(ctx context.Context, argument string) error {
	return b.OpenURL(ctx, "https://www.youtube.com/results?search_query="+url.QueryEscape(argument))
}
