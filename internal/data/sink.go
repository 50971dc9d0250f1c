package data

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Arya182-ui/supriya/internal/dispatch"
)

// AuditSink records dispatch results in the action log. It satisfies
// dispatch.Sink.
type AuditSink struct {
	store *Store
}

// NewAuditSink creates an AuditSink over the store.
func NewAuditSink(store *Store) *AuditSink {
	return &AuditSink{store: store}
}

// Record appends one dispatch result to the audit log. Audit failures
// are logged, never surfaced; a full disk must not break the turn.
func (s *AuditSink) Record(ctx context.Context, turnID string, res dispatch.Result) {
	err := s.store.LogAction(ctx, ActionRecord{
		TurnID:    turnID,
		Verb:      res.Directive.Verb.String(),
		Argument:  res.Directive.Argument,
		Succeeded: res.Succeeded,
		Error:     res.Error,
		Duration:  res.Duration,
	})
	if err != nil {
		log.Warn().Err(err).Str("turn_id", turnID).Msg("[Data] Audit write failed")
	}
}
