package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/store"
)

// auditedPoster wraps the controller client so every post attempt leaves an
// audit row.  Audit failures are logged and swallowed; they must never change
// what the user hears.
type auditedPoster struct {
	client   *homeassistant.Client
	audit    *store.Store
	traceID  string
	personID string
}

func (p *auditedPoster) PostResponse(ctx context.Context, n *homeassistant.Notification, value any, kind homeassistant.ResponseKind, extra map[string]any) (string, error) {
	// The event ID is gone from n after a successful commit; keep it for the
	// audit row.
	eventID := n.EventID

	speak, err := p.client.PostResponse(ctx, n, value, kind, extra)

	result, errMsg := store.ResultCommitted, ""
	if err != nil {
		result, errMsg = store.ResultFailed, err.Error()
	}
	if auditErr := p.audit.WriteEvent(ctx, p.traceID, eventID, string(kind),
		fmt.Sprint(value), p.personID, result, errMsg); auditErr != nil {
		slog.Warn("failed to write event audit row", "trace_id", p.traceID, "err", auditErr)
	}

	return speak, err
}
