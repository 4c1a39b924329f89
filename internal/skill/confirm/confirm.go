// Package confirm implements the single-round confirmation protocol for
// free-text answers.
//
// Structured inputs (numbers, selections, durations, explicit yes/no) are
// unambiguous and commit on first receipt.  Free text is ambiguous: when the
// notification carries a confirmation template, the raw value is parked in
// the platform session and echoed back, and only an explicit "yes" on the
// following turn commits it.
package confirm

import (
	"context"

	"github.com/voicebridge/actionable/internal/skill/alexa"
	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/locale"
	"github.com/voicebridge/actionable/internal/skill/speech"
)

// State of the confirmation protocol at the start of a turn.
type State int

const (
	// NoActiveNotification: nothing to respond to; any parked value is
	// disregarded.
	NoActiveNotification State = iota
	// AwaitingResponse: a notification is pending, no confirmation round in
	// flight.
	AwaitingResponse
	// AwaitingConfirmation: a free-text value is parked and waits for an
	// explicit yes or no.
	AwaitingConfirmation
)

func (s State) String() string {
	switch s {
	case NoActiveNotification:
		return "no_active_notification"
	case AwaitingResponse:
		return "awaiting_response"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	}
	return "unknown"
}

// unconfirmedResponseKey is the single session attribute the skill owns.
const unconfirmedResponseKey = "unconfirmedResponse"

// Session wraps the platform-owned session attribute map.  The platform
// persists whatever the response envelope returns, so mutations here carry
// over to the session's next turn.
type Session struct {
	attrs map[string]any
}

// NewSession wraps the inbound attribute map; nil is promoted to an empty map.
func NewSession(attrs map[string]any) *Session {
	if attrs == nil {
		attrs = make(map[string]any)
	}
	return &Session{attrs: attrs}
}

// Attributes returns the map to hand back in the response envelope.
func (s *Session) Attributes() map[string]any {
	return s.attrs
}

// Unconfirmed returns the parked free-text value, if one is pending.
func (s *Session) Unconfirmed() (string, bool) {
	v, ok := s.attrs[unconfirmedResponseKey].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetUnconfirmed parks a free-text value pending confirmation.  At most one
// value is pending at a time; a new proposal overwrites the previous one.
func (s *Session) SetUnconfirmed(value string) {
	s.attrs[unconfirmedResponseKey] = value
}

// ClearUnconfirmed removes the parked value.
func (s *Session) ClearUnconfirmed() {
	delete(s.attrs, unconfirmedResponseKey)
}

// StateOf derives the protocol state at turn start from the freshly fetched
// notification and the platform session.
func StateOf(n homeassistant.Notification, sess *Session) State {
	if !n.Active() {
		return NoActiveNotification
	}
	if _, ok := sess.Unconfirmed(); ok {
		return AwaitingConfirmation
	}
	return AwaitingResponse
}

// Poster is the commit side of the controller client.
type Poster interface {
	PostResponse(ctx context.Context, n *homeassistant.Notification, value any, kind homeassistant.ResponseKind, extra map[string]any) (string, error)
}

// Machine drives the confirmation transitions for one turn.
type Machine struct {
	poster  Poster
	strings locale.Strings
}

// NewMachine creates a turn-scoped Machine.
func NewMachine(poster Poster, strs locale.Strings) *Machine {
	return &Machine{poster: poster, strings: strs}
}

// Commit posts a response immediately and ends the session with the commit's
// spoken result.  Used for every unambiguous input kind.
func (m *Machine) Commit(ctx context.Context, n *homeassistant.Notification, value any, kind homeassistant.ResponseKind, extra map[string]any) alexa.Reply {
	speak, _ := m.poster.PostResponse(ctx, n, value, kind, extra)
	return alexa.Tell(speak)
}

// Propose handles a free-text value.  With a confirmation template present
// the value is parked and echoed back for a yes/no round; otherwise it
// commits immediately as a string response.
func (m *Machine) Propose(ctx context.Context, n *homeassistant.Notification, sess *Session, value string, extra map[string]any) alexa.Reply {
	if !n.HasError && n.ConfirmationText != "" {
		sess.SetUnconfirmed(value)
		return alexa.Ask(speech.Compose(n.ConfirmationText, value, m.strings.Get(locale.Okay)))
	}
	return m.Commit(ctx, n, value, homeassistant.ResponseString, extra)
}

// Affirm handles an affirmative utterance.  With a confirmation pending it
// commits the parked value as a string response; the parked value is cleared
// only when the commit succeeded, so a failed post can be retried on a later
// turn.  Without a pending confirmation the "yes" itself is the response.
func (m *Machine) Affirm(ctx context.Context, n *homeassistant.Notification, sess *Session, extra map[string]any) alexa.Reply {
	if StateOf(*n, sess) == AwaitingConfirmation {
		value, _ := sess.Unconfirmed()
		speak, err := m.poster.PostResponse(ctx, n, value, homeassistant.ResponseString, extra)
		if err == nil {
			sess.ClearUnconfirmed()
		}
		return alexa.Tell(speak)
	}
	return m.Commit(ctx, n, string(homeassistant.ResponseYes), homeassistant.ResponseYes, extra)
}

// Reject handles a negative utterance.  With a confirmation pending the
// parked value is discarded and the original prompt is re-spoken behind an
// acknowledgement, keeping the session open while the event is still active.
// Without a pending confirmation the "no" itself is the response.
func (m *Machine) Reject(ctx context.Context, n *homeassistant.Notification, sess *Session, extra map[string]any) alexa.Reply {
	if _, pending := sess.Unconfirmed(); pending {
		sess.ClearUnconfirmed()
		speak := m.strings.Get(locale.Okay) + ". " + n.PromptText()
		if n.Active() {
			return alexa.Ask(speak)
		}
		n.Clear()
		return alexa.Tell(speak)
	}
	return m.Commit(ctx, n, string(homeassistant.ResponseNo), homeassistant.ResponseNo, extra)
}
