package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/voicebridge/actionable/common/trace"
)

func TestWithTraceIncludesTraceID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := trace.WithTraceID(context.Background(), "t_deadbeef")
	WithTrace(ctx).Info("hello")

	if !strings.Contains(buf.String(), "trace_id=t_deadbeef") {
		t.Errorf("log line missing trace_id: %q", buf.String())
	}
}

func TestWithTraceWithoutContextUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	WithTrace(context.Background()).Info("hello")

	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace_id in log line: %q", buf.String())
	}
}

func TestRedactSecrets(t *testing.T) {
	got := RedactSecrets("authorization failed for token abc123secret", "abc123secret")
	if strings.Contains(got, "abc123secret") {
		t.Errorf("secret survived redaction: %q", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Errorf("no redaction marker in %q", got)
	}
}
