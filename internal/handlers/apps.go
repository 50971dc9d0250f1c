package handlers

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppManager launches and terminates desktop applications by name.
// When an application cannot be launched locally the open falls back
// to a web search, which covers names that are really sites.
type AppManager struct {
	runner  CommandRunner
	browser *Browser
}

// NewAppManager creates an AppManager.
func NewAppManager(runner CommandRunner, browser *Browser) *AppManager {
	return &AppManager{runner: runner, browser: browser}
}

// Open launches the named application, falling back to a browser
// search when no local binary answers to the name.
func (a *AppManager) Open(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("open: empty application name")
	}

	log.Info().Str("app", name).Msg("[Handlers] Opening application")
	if err := a.launch(ctx, name); err == nil {
		return nil
	}

	log.Debug().Str("app", name).Msg("[Handlers] Local launch failed, falling back to web")
	return a.browser.OpenURL(ctx, "https://www.google.com/search?q="+url.QueryEscape(name))
}

func (a *AppManager) launch(ctx context.Context, name string) error {
	switch runtime.GOOS {
	case "darwin":
		return a.runner.Run(ctx, "open", "-a", name)
	case "windows":
		return a.runner.Run(ctx, "cmd", "/c", "start", "", name)
	default:
		// Binaries rarely carry spaces on Linux; collapse the spoken
		// name into the conventional executable form.
		return a.runner.Run(ctx, strings.ReplaceAll(name, " ", "-"))
	}
}

// Close terminates the named application. Closing the browser the
// assistant itself drives is ignored so a turn cannot cut off its own
// output.
func (a *AppManager) Close(ctx context.Context, name string) error {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return fmt.Errorf("close: empty application name")
	}
	if name == "chrome" {
		log.Info().Msg("[Handlers] Ignoring request to close the assistant's browser")
		return nil
	}

	log.Info().Str("app", name).Msg("[Handlers] Closing application")
	var err error
	switch runtime.GOOS {
	case "windows":
		err = a.runner.Run(ctx, "taskkill", "/f", "/im", name+".exe")
	default:
		err = a.runner.Run(ctx, "pkill", "-f", name)
	}
	if err != nil {
		return fmt.Errorf("close %q: %w", name, err)
	}
	return nil
}
