// Package alexa defines the inbound request envelope and outbound response
// envelope the conversational platform exchanges with the skill endpoint,
// plus helpers for slot extraction.
//
// Only the fields the skill actually consumes are modelled; the platform
// sends considerably more, and unknown fields are ignored on decode.
package alexa

import (
	"encoding/json"
	"time"
)

// Request types dispatched by the skill.
const (
	RequestTypeLaunch       = "LaunchRequest"
	RequestTypeIntent       = "IntentRequest"
	RequestTypeSessionEnded = "SessionEndedRequest"
)

// Built-in and custom intent names the skill handles.
const (
	IntentYes      = "AMAZON.YesIntent"
	IntentNo       = "AMAZON.NoIntent"
	IntentCancel   = "AMAZON.CancelIntent"
	IntentStop     = "AMAZON.StopIntent"
	IntentString   = "String"
	IntentSelect   = "Select"
	IntentNumber   = "Number"
	IntentDuration = "Duration"
	IntentDate     = "Date"
)

// ReasonExceededMaxReprompts is the session-end reason after the user stayed
// silent through every reprompt.
const ReasonExceededMaxReprompts = "EXCEEDED_MAX_REPROMPTS"

// resolutionMatch is the entity-resolution status code for a successful
// canonical match.
const resolutionMatch = "ER_SUCCESS_MATCH"

// RequestEnvelope is the platform's inbound request.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Context Context `json:"context"`
	Request Request `json:"request"`
}

// Session carries per-conversation state owned by the platform.  Attributes
// round-trip: whatever the skill returns in the response envelope is handed
// back on the session's next request.
type Session struct {
	New        bool           `json:"new"`
	SessionID  string         `json:"sessionId"`
	Attributes map[string]any `json:"attributes"`
	User       User           `json:"user,omitzero"`
}

// User identifies the account the session belongs to.  AccessToken is the
// account-linking token, present once the user has linked the skill.
type User struct {
	UserID      string `json:"userId,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Context carries request-scoped platform state.
type Context struct {
	System System `json:"System"`
}

// System describes the invoking device and identities.
type System struct {
	User   User    `json:"user,omitzero"`
	Person *Person `json:"person,omitempty"`
}

// Person is the recognized speaker, when voice profiles are enabled.
type Person struct {
	PersonID string `json:"personId"`
}

// Request is the typed payload of one turn.
type Request struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Locale    string    `json:"locale"`
	Intent    *Intent   `json:"intent,omitempty"`
	// Reason is set on SessionEndedRequest.
	Reason string `json:"reason,omitempty"`
}

// Intent is the recognized intent with its filled slots.
type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots"`
}

// Slot is one named value captured from the utterance.
type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value"`
	Resolutions *Resolutions `json:"resolutions,omitempty"`
}

// Resolutions holds the entity-resolution results for a slot.
type Resolutions struct {
	ResolutionsPerAuthority []Resolution `json:"resolutionsPerAuthority"`
}

// Resolution is one authority's attempt at canonicalizing the raw value.
type Resolution struct {
	Status ResolutionStatus  `json:"status"`
	Values []ResolutionValue `json:"values"`
}

// ResolutionStatus carries the authority's match-status code.
type ResolutionStatus struct {
	Code string `json:"code"`
}

// ResolutionValue wraps one canonical value candidate.
type ResolutionValue struct {
	Value CanonicalValue `json:"value"`
}

// CanonicalValue is the resolved canonical entity.
type CanonicalValue struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// DecodeRequest parses a raw request envelope.
func DecodeRequest(data []byte) (*RequestEnvelope, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// IsType reports whether the request has the given type.
func (e *RequestEnvelope) IsType(requestType string) bool {
	return e.Request.Type == requestType
}

// IsIntent reports whether the request is an IntentRequest for the named intent.
func (e *RequestEnvelope) IsIntent(name string) bool {
	return e.Request.Type == RequestTypeIntent &&
		e.Request.Intent != nil &&
		e.Request.Intent.Name == name
}

// IntentName returns the intent name, or "" for non-intent requests.
func (e *RequestEnvelope) IntentName() string {
	if e.Request.Intent == nil {
		return ""
	}
	return e.Request.Intent.Name
}

// SlotValue returns the raw spoken value of the named slot, or "" when the
// slot is absent or unfilled.
func (e *RequestEnvelope) SlotValue(name string) string {
	if e.Request.Intent == nil {
		return ""
	}
	slot, ok := e.Request.Intent.Slots[name]
	if !ok {
		return ""
	}
	return slot.Value
}

// ResolvedSlotValue walks the slot's entity resolutions and returns the first
// successfully matched canonical value name.  It returns "" when the slot is
// absent or no authority produced a match, which callers must treat as
// invalid input rather than an empty answer.
func (e *RequestEnvelope) ResolvedSlotValue(name string) string {
	if e.Request.Intent == nil {
		return ""
	}
	slot, ok := e.Request.Intent.Slots[name]
	if !ok || slot.Resolutions == nil {
		return ""
	}
	for _, res := range slot.Resolutions.ResolutionsPerAuthority {
		if res.Status.Code != resolutionMatch {
			continue
		}
		for _, v := range res.Values {
			if v.Value.Name != "" {
				return v.Value.Name
			}
		}
	}
	return ""
}

// AccountLinkingToken returns the account-linking access token, preferring
// the request context's system user over the session user.
func (e *RequestEnvelope) AccountLinkingToken() string {
	if t := e.Context.System.User.AccessToken; t != "" {
		return t
	}
	return e.Session.User.AccessToken
}

// PersonID returns the recognized speaker's ID, or "" when the platform did
// not identify a person.
func (e *RequestEnvelope) PersonID() string {
	if e.Context.System.Person == nil {
		return ""
	}
	return e.Context.System.Person.PersonID
}
