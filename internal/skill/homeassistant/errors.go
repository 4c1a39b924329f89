package homeassistant

import (
	"errors"
	"fmt"

	"github.com/voicebridge/actionable/internal/skill/locale"
)

// Classified controller failures.  Remote errors are never retried; they are
// converted to spoken text at the point of detection and surfaced as the
// turn's reply.
var (
	// ErrUnauthorized is a 401 from the controller (bad or expired token).
	ErrUnauthorized = errors.New("home assistant: unauthorized")

	// ErrNotFound is a 404 from the controller (wrong URL or missing API).
	ErrNotFound = errors.New("home assistant: not found")

	// ErrMisconfigured means the controller answered 2xx but the notification
	// entity carried no usable payload.  The remote side exists but is not
	// set up for actionable notifications; this is distinct from transport
	// failures.
	ErrMisconfigured = errors.New("home assistant: notification entity has no state")

	// ErrNoActiveEvent means a response was about to be posted while no
	// notification event is pending.
	ErrNoActiveEvent = errors.New("home assistant: no active notification event")
)

// RemoteError is any other ≥400 status from the controller.
type RemoteError struct {
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("home assistant: status %d", e.Status)
}

// statusError classifies an HTTP status ≥400 into the error taxonomy.
// Statuses below 400 return nil.
func statusError(status int) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status >= 400:
		return &RemoteError{Status: status}
	}
	return nil
}

// spokenError maps a classified error to the locale text spoken to the user.
func spokenError(err error, strs locale.Strings) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Error 401 " + strs.Get(locale.Error401)
	case errors.Is(err, ErrNotFound):
		return "Error 404 " + strs.Get(locale.Error404)
	case errors.Is(err, ErrMisconfigured), errors.Is(err, ErrNoActiveEvent):
		return strs.Get(locale.ErrorConfig)
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return fmt.Sprintf("Error %d, %s", remote.Status, strs.Get(locale.Error400))
	}
	// Transport-level failure (timeout, refused connection, bad TLS).
	return strs.Get(locale.Error400)
}
