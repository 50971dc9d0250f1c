// Package dispatch executes one directive batch: action directives fan
// out to their handlers concurrently, answer directives resolve to a
// single reply, and everything joins back into one report. A failing
// or panicking handler never takes a sibling task or the answer path
// down with it.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/answer"
	"github.com/Arya182-ui/supriya/internal/intent"
)

// DefaultHandlerTimeout bounds a single action handler invocation.
const DefaultHandlerTimeout = 30 * time.Second

// Handler executes one action directive's side effect. Handlers own
// their side effects and report back only success or failure.
type Handler func(ctx context.Context, argument string) error

// Registry resolves verbs to their handlers.
type Registry interface {
	Handler(verb intent.Verb) (Handler, bool)
}

// Sink receives per-directive outcomes, e.g. for an action audit log.
type Sink interface {
	Record(ctx context.Context, turnID string, res Result)
}

// Result is the outcome of one directive.
type Result struct {
	Directive intent.Directive `json:"directive"`
	Succeeded bool             `json:"succeeded"`
	Error     string           `json:"error,omitempty"`
	Duration  time.Duration    `json:"duration"`
}

// Report collects everything one dispatch cycle produced. It is
// created fresh per utterance and discarded after the reply is
// delivered.
type Report struct {
	// TurnID identifies the dispatch cycle.
	TurnID string `json:"turn_id"`
	// Results holds one entry per action directive. Completion order,
	// not batch order.
	Results []Result `json:"results"`
	// MergedAnswer is the single reply for the answer directives, empty
	// when the batch had none or the resolver failed.
	MergedAnswer string `json:"merged_answer,omitempty"`
	// Answered is true when answer directives were present and the
	// resolver succeeded.
	Answered bool `json:"answered"`
	// ResolveErr records a resolver failure for this turn.
	ResolveErr error `json:"-"`
	// Duration is the full fan-out/fan-in time.
	Duration time.Duration `json:"duration"`
}

// FailedActions returns the results of actions that did not succeed.
func (r *Report) FailedActions() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Succeeded {
			out = append(out, res)
		}
	}
	return out
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHandlerTimeout overrides the per-handler timeout.
func WithHandlerTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.handlerTimeout = d
		}
	}
}

// WithSink attaches an outcome sink.
func WithSink(s Sink) DispatcherOption {
	return func(dp *Dispatcher) { dp.sink = s }
}

// Dispatcher owns a directive batch for the duration of one cycle.
type Dispatcher struct {
	registry       Registry
	resolver       *answer.Resolver
	sink           Sink
	handlerTimeout time.Duration
}

// NewDispatcher creates a Dispatcher. The resolver may be nil for
// action-only deployments; answer directives are then skipped.
func NewDispatcher(registry Registry, resolver *answer.Resolver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry:       registry,
		resolver:       resolver,
		handlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one batch to completion and returns its report.
//
// All action directives start first, one goroutine each. Answer
// resolution then runs on the calling goroutine, concurrent with the
// actions and independent of their outcomes. The report is finalized
// only after every action task has joined, so the caller can deliver
// the merged answer without interleaving partial action output.
func (d *Dispatcher) Dispatch(ctx context.Context, batch intent.Batch) *Report {
	start := time.Now()
	report := &Report{TurnID: uuid.NewString()}

	actions := batch.Actions()
	answers := batch.Answers()

	log.Debug().
		Str("turn_id", report.TurnID).
		Int("actions", len(actions)).
		Int("answers", len(answers)).
		Msg("[Dispatch] Starting cycle")

	results := make(chan Result, len(actions))
	var wg sync.WaitGroup
	for _, directive := range actions {
		wg.Add(1)
		go func(dir intent.Directive) {
			defer wg.Done()
			results <- d.runAction(ctx, dir)
		}(directive)
	}

	if len(answers) > 0 && d.resolver != nil {
		reply, err := d.resolver.Resolve(ctx, answers)
		if err != nil {
			log.Error().Err(err).Str("turn_id", report.TurnID).Msg("[Dispatch] Resolver failed")
			report.ResolveErr = err
		} else {
			report.MergedAnswer = reply
			report.Answered = true
		}
	}

	wg.Wait()
	close(results)
	for res := range results {
		report.Results = append(report.Results, res)
		if d.sink != nil {
			d.sink.Record(ctx, report.TurnID, res)
		}
	}

	report.Duration = time.Since(start)
	log.Debug().
		Str("turn_id", report.TurnID).
		Int("failed", len(report.FailedActions())).
		Dur("duration", report.Duration).
		Msg("[Dispatch] Cycle complete")
	return report
}

// runAction invokes one handler with panic and error isolation.
func (d *Dispatcher) runAction(ctx context.Context, dir intent.Directive) (res Result) {
	res = Result{Directive: dir}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Succeeded = false
			res.Error = fmt.Sprintf("handler panic: %v", r)
			log.Error().
				Str("verb", dir.Verb.String()).
				Str("argument", dir.Argument).
				Str("panic", fmt.Sprint(r)).
				Msg("[Dispatch] Handler panicked")
		}
	}()

	handler, ok := d.registry.Handler(dir.Verb)
	if !ok {
		res.Error = fmt.Sprintf("no handler registered for verb %q", dir.Verb)
		log.Warn().Str("verb", dir.Verb.String()).Msg("[Dispatch] No handler for verb")
		return res
	}

	hctx, cancel := context.WithTimeout(ctx, d.handlerTimeout)
	defer cancel()

	if err := handler(hctx, dir.Argument); err != nil {
		res.Error = err.Error()
		log.Warn().
			Str("verb", dir.Verb.String()).
			Str("argument", dir.Argument).
			Err(err).
			Msg("[Dispatch] Action failed")
		return res
	}

	res.Succeeded = true
	return res
}
