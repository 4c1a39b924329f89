package homeassistant

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/voicebridge/actionable/common/redact"
	"github.com/voicebridge/actionable/common/trace"
	"github.com/voicebridge/actionable/internal/skill/locale"
	"github.com/voicebridge/actionable/internal/skill/speech"
)

// defaultTimeout bounds each controller call (connect + read).
const defaultTimeout = 10 * time.Second

// Config holds the connection settings for the controller.
type Config struct {
	// BaseURL is the Home Assistant base URL, e.g. "https://ha.example.com".
	// A trailing slash is stripped.
	BaseURL string

	// Token is the long-lived access token.  When empty, callers fall back
	// to the platform's account-linking token per turn.
	Token string

	// InsecureSkipVerify disables TLS certificate verification for
	// self-signed Home Assistant deployments.
	InsecureSkipVerify bool

	// Timeout bounds each request; zero means defaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (shared across turns for
	// connection pooling).  When nil one is constructed from the settings
	// above.
	HTTPClient *http.Client
}

// NewHTTPClient builds the shared http.Client for the given settings.
func NewHTTPClient(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Client performs the two controller operations for one conversational turn.
// It is constructed per turn with the turn's resolved locale strings; the
// underlying http.Client is shared.
type Client struct {
	baseURL    string
	token      string
	strings    locale.Strings
	httpClient *http.Client
}

// NewClient creates a turn-scoped controller client.
func NewClient(cfg Config, token string, strs locale.Strings) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}
	if token == "" {
		token = cfg.Token
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      token,
		strings:    strs,
		httpClient: httpClient,
	}
}

// stateBody is the outer JSON of GET /api/states/{entity}.
type stateBody struct {
	State string `json:"state"`
}

// notificationPayload is the nested JSON carried inside the entity state.
type notificationPayload struct {
	Event            string `json:"event"`
	Text             string `json:"text"`
	ConfirmationText string `json:"confirmation_text"`
	ResponseText     string `json:"response_text"`
}

// FetchNotification reads the pending notification from the controller.
// Failures are folded into the returned Notification as spoken error text;
// callers always get something they can say.
func (c *Client) FetchNotification(ctx context.Context) Notification {
	body, err := c.do(ctx, http.MethodGet, "/api/states/"+EntityID, nil)
	if err != nil {
		slog.Error("fetching notification state failed",
			"trace_id", trace.FromContext(ctx),
			"err", redact.String(err.Error(), c.token))
		return Notification{HasError: true, ErrorText: spokenError(err, c.strings)}
	}

	var outer stateBody
	if err := json.Unmarshal(body, &outer); err != nil {
		slog.Error("notification state is not valid JSON", "trace_id", trace.FromContext(ctx), "err", err)
		return Notification{HasError: true, ErrorText: c.strings.Get(locale.ErrorConfig)}
	}
	if outer.State == "" {
		slog.Error("no entity state provided by Home Assistant; " +
			"did you forget to add the actionable notification entity?")
		return Notification{HasError: true, ErrorText: spokenError(ErrMisconfigured, c.strings)}
	}

	var payload notificationPayload
	if err := json.Unmarshal([]byte(outer.State), &payload); err != nil {
		slog.Error("notification payload is not valid JSON", "trace_id", trace.FromContext(ctx), "err", err)
		return Notification{HasError: true, ErrorText: spokenError(ErrMisconfigured, c.strings)}
	}

	n := Notification{
		EventID:          payload.Event,
		Text:             payload.Text,
		ConfirmationText: payload.ConfirmationText,
		ResponseText:     payload.ResponseText,
	}
	slog.Debug("fetched notification", "trace_id", trace.FromContext(ctx),
		"event_id", n.EventID, "active", n.Active())
	return n
}

// PostResponse commits the user's response against the pending event.  The
// returned string is always speakable: the substituted response template (or
// generic acknowledgement) on success, the classified error text otherwise.
// A non-nil error means nothing was committed; on success the notification is
// cleared.
func (c *Client) PostResponse(ctx context.Context, n *Notification, value any, kind ResponseKind, extra map[string]any) (string, error) {
	if n.HasError {
		return n.ErrorText, ErrMisconfigured
	}
	if !n.Active() {
		return spokenError(ErrNoActiveEvent, c.strings), ErrNoActiveEvent
	}

	requestBody := map[string]any{
		"event_id":            n.EventID,
		"event_response":      value,
		"event_response_type": string(kind),
	}
	for k, v := range extra {
		requestBody[k] = v
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return spokenError(err, c.strings), fmt.Errorf("marshal event body: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPost, "/api/events/"+EventName, payload); err != nil {
		slog.Error("posting response event failed",
			"trace_id", trace.FromContext(ctx),
			"event_id", n.EventID, "kind", kind,
			"err", redact.String(err.Error(), c.token))
		return spokenError(err, c.strings), err
	}

	speak := speech.Compose(n.ResponseText, value, c.strings.Get(locale.Okay))
	slog.Info("response committed", "trace_id", trace.FromContext(ctx),
		"event_id", n.EventID, "kind", kind)
	n.Clear()
	return speak, nil
}

// do performs one controller request and returns the raw body, classifying
// any ≥400 status through statusError.
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := statusError(resp.StatusCode); err != nil {
		slog.Debug("controller error body", "status", resp.StatusCode,
			"body", redact.String(string(respBody), c.token))
		return nil, err
	}
	return respBody, nil
}
