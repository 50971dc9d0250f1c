// Package answer resolves the answer-class directives of a batch into
// one spoken reply. It merges the directive arguments into a single
// query, normalizes it, and picks exactly one responder: the live
// search engine when real-time data is needed, the conversational
// model otherwise.
package answer

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/intent"
)

// ErrNoAnswerDirectives is returned when Resolve is called with a
// batch that contains nothing to answer.
var ErrNoAnswerDirectives = errors.New("answer: no answer directives in batch")

// Responder produces a spoken reply for a normalized query. Both the
// conversational model and the live search engine satisfy it.
type Responder interface {
	Answer(ctx context.Context, query string) (string, error)
}

// Resolver selects between the conversational and the live-search
// responder for each turn.
type Resolver struct {
	chat   Responder
	search Responder
}

// NewResolver creates a Resolver. The search responder handles
// realtime directives; everything else goes to chat.
func NewResolver(chat, search Responder) *Resolver {
	return &Resolver{chat: chat, search: search}
}

// Resolve answers the answer-class directives of one batch. Exactly
// one responder is invoked per call; a realtime directive anywhere in
// the slice selects the live-search responder even when general
// directives are present.
func (r *Resolver) Resolve(ctx context.Context, directives []intent.Directive) (string, error) {
	if len(directives) == 0 {
		return "", ErrNoAnswerDirectives
	}

	query := Normalize(MergeQuery(directives))

	responder := r.chat
	kind := "chat"
	for _, d := range directives {
		if d.Verb == intent.VerbRealtime {
			responder = r.search
			kind = "search"
			break
		}
	}

	log.Debug().Str("responder", kind).Str("query", query).Msg("[Answer] Resolving")

	reply, err := responder.Answer(ctx, query)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// MergeQuery joins the distinct directive arguments with " and ",
// preserving first-occurrence order. Duplicate arguments (exact string
// match) are dropped. A stray leading verb token is stripped in case a
// caller hands in raw lines rather than parsed arguments.
func MergeQuery(directives []intent.Directive) string {
	seen := make(map[string]struct{}, len(directives))
	var parts []string
	for _, d := range directives {
		arg := strings.TrimSpace(stripVerbToken(d.Argument, d.Verb))
		if arg == "" {
			continue
		}
		if _, dup := seen[arg]; dup {
			continue
		}
		seen[arg] = struct{}{}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " and ")
}

// interrogatives is the fixed word list that turns a query into a
// question for punctuation purposes.
var interrogatives = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"how", "who", "where", "when", "why", "which", "whose", "whom",
		"what", "can", "could", "would", "should", "is", "are", "was",
		"were", "did", "do", "does", "has", "have", "had", "will",
		"shall", "may", "might", "am", "must", "please",
	} {
		interrogatives[w] = struct{}{}
	}
}

// Normalize prepares a merged query for the responder: lowercase,
// trimmed, terminal punctuation appended ("?" when any token is on the
// interrogative list, "." otherwise), first character capitalized.
func Normalize(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}

	q = strings.TrimRight(q, ".?!")
	if isQuestion(q) {
		q += "?"
	} else {
		q += "."
	}

	runes := []rune(q)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isQuestion(q string) bool {
	for _, tok := range strings.Fields(q) {
		if _, ok := interrogatives[tok]; ok {
			return true
		}
	}
	return false
}

func stripVerbToken(arg string, verb intent.Verb) string {
	lowered := strings.ToLower(strings.TrimSpace(arg))
	prefix := string(verb)
	if strings.HasPrefix(lowered, prefix+" ") {
		return lowered[len(prefix)+1:]
	}
	if lowered == prefix {
		return ""
	}
	return lowered
}
