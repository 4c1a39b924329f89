package dispatch

import (
	"context"

	"github.com/sosodev/duration"

	"github.com/voicebridge/actionable/internal/skill/alexa"
	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/locale"
)

// Slot names as declared in the interaction model.
const (
	slotStrings    = "Strings"
	slotSelections = "Selections"
	slotNumbers    = "Numbers"
	slotDurations  = "Durations"
	slotDates      = "Dates"
	slotTimes      = "Times"
)

// handleLaunch speaks the pending prompt.  The session stays open only while
// there is an active notification to answer.
func handleLaunch(ctx context.Context, t *turn) (alexa.Reply, error) {
	n := t.fetch(ctx)
	if n.Active() {
		return alexa.Ask(n.PromptText()), nil
	}
	return alexa.Tell(n.PromptText()), nil
}

// handleYes drives the affirmative confirmation transition.
func handleYes(ctx context.Context, t *turn) (alexa.Reply, error) {
	n := t.fetch(ctx)
	return t.machine.Affirm(ctx, &n, t.session, t.extra), nil
}

// handleNo drives the negative confirmation transition.
func handleNo(ctx context.Context, t *turn) (alexa.Reply, error) {
	n := t.fetch(ctx)
	return t.machine.Reject(ctx, &n, t.session, t.extra), nil
}

// handleString proposes a free-text answer, which may open a confirmation
// round before being committed.
func handleString(ctx context.Context, t *turn) (alexa.Reply, error) {
	value := t.env.SlotValue(slotStrings)
	if value == "" {
		return alexa.Reply{}, &InvalidInputError{Slot: slotStrings, Reason: "no value captured"}
	}
	n := t.fetch(ctx)
	return t.machine.Propose(ctx, &n, t.session, value, t.extra), nil
}

// handleSelect commits a resolved multiple-choice selection.  An unresolved
// slot is invalid input; an empty selection is never posted.
func handleSelect(ctx context.Context, t *turn) (alexa.Reply, error) {
	selection := t.env.ResolvedSlotValue(slotSelections)
	if selection == "" {
		return alexa.Reply{}, &InvalidInputError{Slot: slotSelections, Reason: "no resolved canonical value"}
	}

	n := t.fetch(ctx)
	if speak, err := t.poster.PostResponse(ctx, &n, selection, homeassistant.ResponseSelect, t.extra); err != nil {
		return alexa.Tell(speak), nil
	}
	return alexa.Tell(t.strings.Format(locale.Selected, selection)), nil
}

// handleNumber commits a numeric answer.
func handleNumber(ctx context.Context, t *turn) (alexa.Reply, error) {
	number := t.env.SlotValue(slotNumbers)
	if number == "" || number == "?" {
		return alexa.Reply{}, &InvalidInputError{Slot: slotNumbers, Reason: "no number captured"}
	}
	n := t.fetch(ctx)
	return t.machine.Commit(ctx, &n, number, homeassistant.ResponseNumeric, t.extra), nil
}

// handleDuration parses the ISO-8601 duration slot and commits its total
// length in seconds.
func handleDuration(ctx context.Context, t *turn) (alexa.Reply, error) {
	raw := t.env.SlotValue(slotDurations)
	if raw == "" {
		return alexa.Reply{}, &InvalidInputError{Slot: slotDurations, Reason: "no duration captured"}
	}
	d, err := duration.Parse(raw)
	if err != nil {
		return alexa.Reply{}, &InvalidInputError{Slot: slotDurations, Reason: "unrecognized duration " + raw}
	}
	seconds := d.ToTimeDuration().Seconds()

	n := t.fetch(ctx)
	return t.machine.Commit(ctx, &n, seconds, homeassistant.ResponseDuration, t.extra), nil
}

// handleDate rejects date answers: the automation bus has no date response
// kind, so the user is asked to answer without one.  A request that carries
// neither a date nor a time slot is invalid input.
func handleDate(ctx context.Context, t *turn) (alexa.Reply, error) {
	dates := t.env.SlotValue(slotDates)
	times := t.env.SlotValue(slotTimes)
	if dates == "" && times == "" {
		return alexa.Reply{}, &InvalidInputError{Slot: slotDates, Reason: "no date or time captured"}
	}
	return alexa.Ask(t.strings.Get(locale.ErrorSpecificDate)), nil
}

// handleCancelStop speaks the closing message.  No remote interaction.
func handleCancelStop(_ context.Context, t *turn) (alexa.Reply, error) {
	return alexa.Tell(t.strings.Get(locale.StopMessage)), nil
}

// handleSessionEnded posts a "none" response when the session died from
// exceeded reprompts, so the controller can clear its side.  The platform
// ignores any speech in this reply, so it is empty.
func handleSessionEnded(ctx context.Context, t *turn) (alexa.Reply, error) {
	if t.env.Request.Reason == alexa.ReasonExceededMaxReprompts {
		n := t.fetch(ctx)
		t.poster.PostResponse(ctx, &n, string(homeassistant.ResponseNone), homeassistant.ResponseNone, t.extra)
	}
	return alexa.Reply{}, nil
}

// handleReflector echoes unhandled intents so gaps in the interaction model
// are audible during testing.
func handleReflector(_ context.Context, t *turn) (alexa.Reply, error) {
	return alexa.Tell("You just triggered " + t.env.IntentName() + "."), nil
}
