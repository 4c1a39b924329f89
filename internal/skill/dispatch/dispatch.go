// Package dispatch routes one inbound platform request to exactly one
// handler and turns the outcome into a response envelope.
//
// Handlers are evaluated in a fixed order: session lifecycle and specific
// intents first, the generic intent reflector last.  Whatever happens, a turn
// always produces a spoken reply; unrecoverable conditions are routed to the
// catch-all path instead of escaping.
package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/voicebridge/actionable/common/trace"
	"github.com/voicebridge/actionable/internal/skill/alexa"
	"github.com/voicebridge/actionable/internal/skill/confirm"
	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/locale"
	"github.com/voicebridge/actionable/internal/skill/observability"
	"github.com/voicebridge/actionable/internal/skill/store"
)

// InvalidInputError signals a slot value that is missing or unparsable (an
// unresolved selection, an unrecognized duration, a date-only response).  It
// is routed to the catch-all reply path, never silently committed.
type InvalidInputError struct {
	Slot   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for slot %q: %s", e.Slot, e.Reason)
}

// Config holds the dispatcher's collaborators.
type Config struct {
	// HomeAssistant is the controller connection configuration.
	HomeAssistant homeassistant.Config

	// Locales is the loaded message catalog.
	Locales *locale.Catalog

	// Audit is the optional event audit log; nil disables auditing.
	Audit *store.Store
}

// handlerFunc processes one matched request.  A returned error diverts the
// turn to the catch-all reply path.
type handlerFunc func(ctx context.Context, t *turn) (alexa.Reply, error)

// route pairs a match predicate with its handler.  Order in the routes slice
// is the dispatch priority.
type route struct {
	name   string
	match  func(*alexa.RequestEnvelope) bool
	handle handlerFunc
}

// Dispatcher selects and runs one handler per inbound request.  It holds no
// per-turn state; everything a handler needs lives on the turn.
type Dispatcher struct {
	cfg        Config
	httpClient *http.Client
	routes     []route
}

// New creates a Dispatcher.  The underlying HTTP client is shared across
// turns for connection pooling.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		cfg:        cfg,
		httpClient: homeassistant.NewHTTPClient(cfg.HomeAssistant),
	}
	d.routes = []route{
		{name: "launch", match: matchType(alexa.RequestTypeLaunch), handle: handleLaunch},
		{name: "yes", match: matchIntent(alexa.IntentYes), handle: handleYes},
		{name: "no", match: matchIntent(alexa.IntentNo), handle: handleNo},
		{name: "string", match: matchIntent(alexa.IntentString), handle: handleString},
		{name: "select", match: matchIntent(alexa.IntentSelect), handle: handleSelect},
		{name: "number", match: matchIntent(alexa.IntentNumber), handle: handleNumber},
		{name: "duration", match: matchIntent(alexa.IntentDuration), handle: handleDuration},
		{name: "date", match: matchIntent(alexa.IntentDate), handle: handleDate},
		{name: "cancel_stop", match: matchCancelOrStop, handle: handleCancelStop},
		{name: "session_ended", match: matchType(alexa.RequestTypeSessionEnded), handle: handleSessionEnded},
		{name: "reflector", match: matchType(alexa.RequestTypeIntent), handle: handleReflector},
	}
	return d
}

func matchType(requestType string) func(*alexa.RequestEnvelope) bool {
	return func(e *alexa.RequestEnvelope) bool { return e.IsType(requestType) }
}

func matchIntent(name string) func(*alexa.RequestEnvelope) bool {
	return func(e *alexa.RequestEnvelope) bool { return e.IsIntent(name) }
}

func matchCancelOrStop(e *alexa.RequestEnvelope) bool {
	return e.IsIntent(alexa.IntentCancel) || e.IsIntent(alexa.IntentStop)
}

// turn is the per-request context shared by a handler and its helpers.
type turn struct {
	env     *alexa.RequestEnvelope
	strings locale.Strings
	session *confirm.Session
	poster  *auditedPoster
	machine *confirm.Machine
	client  *homeassistant.Client
	// extra carries kind-independent fields merged into every posted event
	// (the recognized speaker, when present).
	extra map[string]any
}

// fetch refreshes the notification state from the controller.
func (t *turn) fetch(ctx context.Context) homeassistant.Notification {
	return t.client.FetchNotification(ctx)
}

// newTurn builds the per-request context: resolved locale strings, a
// turn-scoped controller client (falling back to the platform's account
// linking token when no static token is configured), the confirmation
// machine, and the wrapped session attributes.
func (d *Dispatcher) newTurn(env *alexa.RequestEnvelope, traceID string) *turn {
	strs := d.cfg.Locales.ForLocale(env.Request.Locale)

	haCfg := d.cfg.HomeAssistant
	haCfg.HTTPClient = d.httpClient
	client := homeassistant.NewClient(haCfg, env.AccountLinkingToken(), strs)

	extra := map[string]any{}
	if pid := env.PersonID(); pid != "" {
		extra["event_person_id"] = pid
	}

	poster := &auditedPoster{client: client, audit: d.cfg.Audit, traceID: traceID, personID: env.PersonID()}
	return &turn{
		env:     env,
		strings: strs,
		session: confirm.NewSession(env.Session.Attributes),
		poster:  poster,
		machine: confirm.NewMachine(poster, strs),
		client:  client,
		extra:   extra,
	}
}

// Dispatch handles one request to completion and always returns a response
// envelope.  Panics and handler errors both land in the catch-all path so a
// turn never ends without a reply.
func (d *Dispatcher) Dispatch(ctx context.Context, env *alexa.RequestEnvelope) alexa.ResponseEnvelope {
	traceID := trace.GenerateID()
	ctx = trace.WithTraceID(ctx, traceID)

	t := d.newTurn(env, traceID)

	var reply alexa.Reply
	func() {
		defer func() {
			if r := recover(); r != nil {
				observability.WithTrace(ctx).Error("panic during turn", "panic", r)
				reply = d.catchAll(ctx, t, fmt.Errorf("panic: %v", r))
			}
		}()
		reply = d.dispatch(ctx, t)
	}()

	return reply.Envelope(t.session.Attributes())
}

func (d *Dispatcher) dispatch(ctx context.Context, t *turn) alexa.Reply {
	log := observability.WithTrace(ctx)

	for _, r := range d.routes {
		if !r.match(t.env) {
			continue
		}
		log.Info("handling request",
			"handler", r.name, "type", t.env.Request.Type, "intent", t.env.IntentName())

		reply, err := r.handle(ctx, t)
		if err != nil {
			log.Warn("handler failed, taking catch-all path", "handler", r.name, "err", err)
			return d.catchAll(ctx, t, err)
		}
		return reply
	}

	log.Warn("no handler matched request", "type", t.env.Request.Type)
	return d.catchAll(ctx, t, fmt.Errorf("unhandled request type %q", t.env.Request.Type))
}

// catchAll produces the best-effort reply for unrecoverable conditions.  It
// re-fetches the notification so the user can be re-prompted with whatever
// question is still pending.
func (d *Dispatcher) catchAll(ctx context.Context, t *turn, cause error) alexa.Reply {
	observability.WithTrace(ctx).Error("catch-all handler triggered", "cause", cause)

	n := t.fetch(ctx)
	if prompt := n.PromptText(); prompt != "" {
		return alexa.Ask(t.strings.Format(locale.ErrorAcoustic, prompt))
	}
	return alexa.Tell(t.strings.Get(locale.ErrorConfig))
}
