// Package handlers implements the action side of the assistant: one
// handler per action verb, each owning its side effect (process
// launch, browser navigation, file write) and reporting back only
// success or failure. Handlers are leaf I/O; all sequencing and
// isolation lives in the dispatcher.
package handlers

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/dispatch"
	"github.com/Arya182-ui/supriya/internal/intent"
)

// CommandRunner is the OS command boundary. Tests stub it; production
// uses ExecRunner.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes a command, discarding its output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if err := exec.CommandContext(ctx, name, args...).Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Output executes a command and returns its combined output.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("run %s: %w", name, err)
	}
	return string(out), nil
}

// Registry maps verbs to their handlers. It satisfies
// dispatch.Registry.
type Registry struct {
	mu sync.RWMutex
	m  map[intent.Verb]dispatch.Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[intent.Verb]dispatch.Handler)}
}

// Register binds a handler to a verb, replacing any previous binding.
func (r *Registry) Register(verb intent.Verb, h dispatch.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[verb] = h
}

// Handler returns the handler bound to the verb.
func (r *Registry) Handler(verb intent.Verb) (dispatch.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.m[verb]
	return h, ok
}

// Verbs returns the verbs with a registered handler.
func (r *Registry) Verbs() []intent.Verb {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]intent.Verb, 0, len(r.m))
	for v := range r.m {
		out = append(out, v)
	}
	return out
}

// Deps carries the collaborators the default handler set needs.
type Deps struct {
	Runner  CommandRunner
	Browser *Browser
	System  *SystemController
	Content *ContentWriter
	Files   *FileSearcher
	Tasks   *TaskHandler
	Monitor *Monitor
}

// NewDefault wires the full default handler set.
func NewDefault(deps Deps) *Registry {
	if deps.Runner == nil {
		deps.Runner = ExecRunner{}
	}
	if deps.Browser == nil {
		deps.Browser = NewBrowser(deps.Runner)
	}
	if deps.System == nil {
		deps.System = NewSystemController(deps.Runner)
	}

	r := NewRegistry()
	apps := NewAppManager(deps.Runner, deps.Browser)

	r.Register(intent.VerbOpen, apps.Open)
	r.Register(intent.VerbClose, apps.Close)
	r.Register(intent.VerbPlay, deps.Browser.PlayYouTube)
	r.Register(intent.VerbGoogleSearch, deps.Browser.GoogleSearch)
	r.Register(intent.VerbYoutubeSearch, deps.Browser.YouTubeSearch)
	r.Register(intent.VerbSystem, deps.System.Run)

	if deps.Content != nil {
		r.Register(intent.VerbContent, deps.Content.Write)
	}
	if deps.Files != nil {
		r.Register(intent.VerbSearchFiles, deps.Files.Handle)
		r.Register(intent.VerbFile, deps.Files.Handle)
	}
	if deps.Tasks != nil {
		r.Register(intent.VerbTask, deps.Tasks.Handle)
	}
	if deps.Monitor != nil {
		r.Register(intent.VerbMonitor, deps.Monitor.Handle)
	}

	// The remaining extension verbs have external back-ends. They are
	// acknowledged so the turn still succeeds; the dispatcher's sink
	// records the request.
	for _, verb := range []intent.Verb{
		intent.VerbGenerateImage, intent.VerbReminder, intent.VerbEmail,
		intent.VerbMedia, intent.VerbRecord, intent.VerbOrganize,
		intent.VerbBackup, intent.VerbSecurity, intent.VerbNetwork,
		intent.VerbSchedule, intent.VerbNote,
	} {
		r.Register(verb, acknowledge(verb))
	}

	return r
}

// acknowledge returns a handler that records the request without a
// local back-end.
func acknowledge(verb intent.Verb) dispatch.Handler {
	return func(ctx context.Context, argument string) error {
		log.Info().
			Str("verb", verb.String()).
			Str("argument", argument).
			Msg("[Handlers] Request noted; no local back-end for this verb")
		return nil
	}
}

// browserCommand returns the platform's URL-open command.
func browserCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
