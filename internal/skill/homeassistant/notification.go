// Package homeassistant talks to the Home Assistant controller: it reads the
// one pending actionable notification and posts the user's committed response
// back as an event on the automation bus.
package homeassistant

// EntityID is the helper entity whose state carries the pending notification
// payload.
const EntityID = "input_text.alexa_actionable_notification"

// EventName is the event type posted back to the automation bus.
const EventName = "alexa_actionable_notification"

// ResponseKind tags which slot type produced a committed value.
type ResponseKind string

const (
	ResponseYes      ResponseKind = "ResponseYes"
	ResponseNo       ResponseKind = "ResponseNo"
	ResponseNone     ResponseKind = "ResponseNone"
	ResponseSelect   ResponseKind = "ResponseSelect"
	ResponseNumeric  ResponseKind = "ResponseNumeric"
	ResponseDuration ResponseKind = "ResponseDuration"
	ResponseString   ResponseKind = "ResponseString"
)

// Notification is the one pending automation event awaiting a spoken
// response.  It is fetched fresh at the start of every turn and cleared once
// a response has been committed.
type Notification struct {
	// HasError marks a notification that could not be fetched; ErrorText
	// then holds the spoken explanation and no other field is populated.
	HasError  bool
	ErrorText string

	// EventID identifies the pending event.  Empty means no notification is
	// active and nothing may be posted.
	EventID string

	// Text is the prompt describing the pending question.
	Text string

	// ConfirmationText is the template spoken to echo a free-text answer
	// back before committing it.  Empty disables the confirmation round.
	ConfirmationText string

	// ResponseText is the template spoken after a successful commit.
	ResponseText string
}

// Active reports whether there is a pending event to respond to.
func (n Notification) Active() bool {
	return n.EventID != ""
}

// PromptText returns what to speak when (re)introducing the notification:
// the error explanation for failed fetches, otherwise the prompt.
func (n Notification) PromptText() string {
	if n.HasError {
		return n.ErrorText
	}
	return n.Text
}

// Clear resets the notification after a committed response.
func (n *Notification) Clear() {
	*n = Notification{}
}
