package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultMaxRetries bounds the retry-on-ambiguity loop. The service is
// asked at most DefaultMaxRetries+1 times per utterance.
const DefaultMaxRetries = 3

// ambiguousMarker is the literal the decision service echoes back when
// it cannot decide what kind of query it was given.
const ambiguousMarker = "(query)"

// DecisionService is the external first-layer decision model. It
// receives the raw utterance and returns free text that is expected,
// but not guaranteed, to be a comma-separated list of directive lines.
type DecisionService interface {
	Decide(ctx context.Context, utterance string) (string, error)
}

// Classifier turns an utterance into validated directive lines by way
// of a DecisionService. It holds no per-call state and is safe for
// concurrent use.
type Classifier struct {
	svc        DecisionService
	maxRetries int
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithMaxRetries overrides the retry bound.
func WithMaxRetries(n int) ClassifierOption {
	return func(c *Classifier) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewClassifier creates a Classifier backed by the given service.
func NewClassifier(svc DecisionService, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		svc:        svc,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fallback returns the directive used when classification is empty,
// ambiguous after all retries, or the service fails: the utterance is
// answered conversationally. With nothing to answer, the argument is
// the literal ambiguity marker, matching the service's own idiom.
func Fallback(utterance string) Directive {
	arg := strings.TrimSpace(utterance)
	if arg == "" {
		arg = ambiguousMarker
	}
	return Directive{Verb: VerbGeneral, Argument: arg}
}

// Classify returns the ordered directive lines for one utterance.
//
// Empty or whitespace-only input short-circuits to the fallback line
// without calling the service. Service output is split on commas,
// trimmed, and filtered down to segments that start with a known verb
// prefix; anything else is hallucination tolerance and gets dropped.
// An empty filtered result, or a first segment carrying the literal
// ambiguity marker, triggers another attempt, up to the retry bound.
// Service errors are soft: they land on the fallback, never propagate.
func (c *Classifier) Classify(ctx context.Context, utterance string) []string {
	fallback := []string{string(VerbGeneral) + " " + Fallback(utterance).Argument}

	if strings.TrimSpace(utterance) == "" {
		log.Debug().Msg("[Classifier] Empty utterance, skipping decision service")
		return fallback
	}

	// The original behavior was a recursive self-call; an explicit
	// bounded loop is equivalent and testable.
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.svc.Decide(ctx, utterance)
		if err != nil {
			log.Warn().Err(err).Msg("[Classifier] Decision service failed, using fallback")
			return fallback
		}

		lines := filterDirectiveLines(raw)
		if len(lines) == 0 || strings.Contains(strings.ToLower(lines[0]), ambiguousMarker) {
			log.Debug().
				Int("attempt", attempt+1).
				Str("raw", raw).
				Msg("[Classifier] Ambiguous decision, retrying")
			continue
		}

		log.Debug().Strs("directives", lines).Msg("[Classifier] Decision")
		return lines
	}

	log.Warn().
		Int("attempts", c.maxRetries+1).
		Msg("[Classifier] Retries exhausted, using fallback")
	return fallback
}

// ClassifyBatch is Classify followed by parsing, for callers that want
// the typed batch directly.
func (c *Classifier) ClassifyBatch(ctx context.Context, utterance string) Batch {
	return ParseBatch(c.Classify(ctx, utterance))
}

// filterDirectiveLines splits raw service output into directive lines,
// keeping only segments that begin with a known verb prefix.
func filterDirectiveLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\n", "")
	var lines []string
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" || !HasKnownPrefix(seg) {
			continue
		}
		lines = append(lines, seg)
	}
	return lines
}
