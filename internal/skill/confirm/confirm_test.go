package confirm_test

import (
	"context"
	"testing"

	"github.com/voicebridge/actionable/internal/skill/confirm"
	"github.com/voicebridge/actionable/internal/skill/homeassistant"
	"github.com/voicebridge/actionable/internal/skill/locale"
)

// fakePoster records commits instead of talking to a controller.
type fakePoster struct {
	posts []postedEvent
	err   error
	speak string
}

type postedEvent struct {
	value any
	kind  homeassistant.ResponseKind
	extra map[string]any
}

func (f *fakePoster) PostResponse(_ context.Context, n *homeassistant.Notification, value any, kind homeassistant.ResponseKind, _ map[string]any) (string, error) {
	if !n.Active() {
		return "not set up", homeassistant.ErrNoActiveEvent
	}
	f.posts = append(f.posts, postedEvent{value: value, kind: kind})
	if f.err != nil {
		return f.speak, f.err
	}
	n.Clear()
	return f.speak, nil
}

func testStrings(t *testing.T) locale.Strings {
	t.Helper()
	c, err := locale.Load()
	if err != nil {
		t.Fatalf("locale.Load: %v", err)
	}
	return c.ForLocale("en-US")
}

func activeNotification() homeassistant.Notification {
	return homeassistant.Notification{
		EventID:          "evt_1",
		Text:             "What should I add to the list?",
		ConfirmationText: "Did you say <response>?",
		ResponseText:     "Added <response>.",
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		name  string
		n     homeassistant.Notification
		attrs map[string]any
		want  confirm.State
	}{
		{"no event", homeassistant.Notification{}, nil, confirm.NoActiveNotification},
		{"no event ignores parked value", homeassistant.Notification{},
			map[string]any{"unconfirmedResponse": "milk"}, confirm.NoActiveNotification},
		{"active event", activeNotification(), nil, confirm.AwaitingResponse},
		{"active event with parked value", activeNotification(),
			map[string]any{"unconfirmedResponse": "milk"}, confirm.AwaitingConfirmation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confirm.StateOf(tt.n, confirm.NewSession(tt.attrs))
			if got != tt.want {
				t.Errorf("StateOf = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestPropose_WithConfirmationTemplateParks(t *testing.T) {
	poster := &fakePoster{speak: "ok"}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(nil)

	reply := m.Propose(context.Background(), &n, sess, "buy milk", nil)

	if len(poster.posts) != 0 {
		t.Fatalf("proposal must not post; posted %v", poster.posts)
	}
	if v, ok := sess.Unconfirmed(); !ok || v != "buy milk" {
		t.Errorf("parked value = %q, %v", v, ok)
	}
	if reply.Text != "Did you say buy milk?" {
		t.Errorf("reply = %q", reply.Text)
	}
	if !reply.KeepOpen {
		t.Error("confirmation round must keep the session open")
	}
}

func TestPropose_WithoutTemplateCommitsImmediately(t *testing.T) {
	poster := &fakePoster{speak: "Added buy milk."}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	n.ConfirmationText = ""
	sess := confirm.NewSession(nil)

	reply := m.Propose(context.Background(), &n, sess, "buy milk", nil)

	if len(poster.posts) != 1 {
		t.Fatalf("want one post, got %d", len(poster.posts))
	}
	if poster.posts[0].kind != homeassistant.ResponseString || poster.posts[0].value != "buy milk" {
		t.Errorf("posted %+v", poster.posts[0])
	}
	if _, ok := sess.Unconfirmed(); ok {
		t.Error("immediate commit must not park a value")
	}
	if reply.KeepOpen {
		t.Error("commit must end the session")
	}
}

func TestAffirm_CommitsParkedValueAndClears(t *testing.T) {
	poster := &fakePoster{speak: "Added buy milk."}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(map[string]any{"unconfirmedResponse": "buy milk"})

	reply := m.Affirm(context.Background(), &n, sess, nil)

	if len(poster.posts) != 1 {
		t.Fatalf("want exactly one post, got %d", len(poster.posts))
	}
	got := poster.posts[0]
	if got.kind != homeassistant.ResponseString || got.value != "buy milk" {
		t.Errorf("posted %+v; want ResponseString %q", got, "buy milk")
	}
	if _, ok := sess.Unconfirmed(); ok {
		t.Error("parked value not cleared after successful commit")
	}
	if reply.Text != "Added buy milk." || reply.KeepOpen {
		t.Errorf("reply = %+v", reply)
	}
}

func TestAffirm_WithoutPendingConfirmationPostsYes(t *testing.T) {
	poster := &fakePoster{speak: "Okay"}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(nil)

	m.Affirm(context.Background(), &n, sess, nil)

	if len(poster.posts) != 1 || poster.posts[0].kind != homeassistant.ResponseYes {
		t.Fatalf("posted %v; want one ResponseYes", poster.posts)
	}
	if poster.posts[0].value != "ResponseYes" {
		t.Errorf("yes value = %v", poster.posts[0].value)
	}
}

func TestAffirm_FailedCommitLeavesParkedValue(t *testing.T) {
	poster := &fakePoster{speak: "Error 500, something", err: &homeassistant.RemoteError{Status: 500}}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(map[string]any{"unconfirmedResponse": "buy milk"})

	reply := m.Affirm(context.Background(), &n, sess, nil)

	if v, ok := sess.Unconfirmed(); !ok || v != "buy milk" {
		t.Errorf("parked value = %q, %v; a failed commit must not clear it", v, ok)
	}
	if reply.Text != "Error 500, something" {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestReject_DiscardsParkedValueAndRepromptsWhileActive(t *testing.T) {
	poster := &fakePoster{speak: "unused"}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(map[string]any{"unconfirmedResponse": "buy milk"})

	reply := m.Reject(context.Background(), &n, sess, nil)

	if len(poster.posts) != 0 {
		t.Fatalf("rejection must not post; posted %v", poster.posts)
	}
	if _, ok := sess.Unconfirmed(); ok {
		t.Error("parked value not cleared on rejection")
	}
	if reply.Text != "Okay. What should I add to the list?" {
		t.Errorf("reply = %q; want acknowledgement plus original prompt", reply.Text)
	}
	if !reply.KeepOpen {
		t.Error("session must stay open while the event is active")
	}
}

func TestReject_WithoutPendingConfirmationPostsNo(t *testing.T) {
	poster := &fakePoster{speak: "Okay"}
	m := confirm.NewMachine(poster, testStrings(t))
	n := activeNotification()
	sess := confirm.NewSession(nil)

	reply := m.Reject(context.Background(), &n, sess, nil)

	if len(poster.posts) != 1 || poster.posts[0].kind != homeassistant.ResponseNo {
		t.Fatalf("posted %v; want one ResponseNo", poster.posts)
	}
	if reply.KeepOpen {
		t.Error("no-commit must end the session")
	}
}

func TestAffirm_NoActiveEventDisregardsParkedValue(t *testing.T) {
	poster := &fakePoster{speak: "Okay"}
	m := confirm.NewMachine(poster, testStrings(t))
	n := homeassistant.Notification{}
	sess := confirm.NewSession(map[string]any{"unconfirmedResponse": "stale"})

	reply := m.Affirm(context.Background(), &n, sess, nil)

	// Without an event nothing may be posted; the fake refuses like the
	// real client does.
	if len(poster.posts) != 0 {
		t.Fatalf("posted %v; want none", poster.posts)
	}
	if reply.KeepOpen {
		t.Error("reply must end the session")
	}
}
