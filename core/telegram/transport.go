package telegram

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/toybot/core/config"
	"github.com/m3rciful/toybot/core/logger"
	"github.com/m3rciful/toybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const (
	defaultLongPoll = 10 * time.Second
	// apiSlack is added on top of the long poll window before a getUpdates
	// call counts as stalled.
	apiSlack = 10 * time.Second
)

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// LongPollTimeout returns the configured getUpdates window.
func (o PollerOptions) LongPollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds <= 0 {
		return defaultLongPoll
	}
	return time.Duration(o.LongPollTimeoutSeconds) * time.Second
}

// BuildPoller returns a webhook listener in webhook mode and a long poller otherwise.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: opts.LongPollTimeout()}
}

// BuildHTTPClient returns the Bot API client. Header and overall timeouts
// leave room for a getUpdates call that is held open for longPoll.
func BuildHTTPClient(longPoll time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: longPoll + apiSlack/2,
	}
	return &http.Client{
		Timeout:   longPoll + apiSlack,
		Transport: &retryTransport{base: base, maxRetries: 2, backoff: time.Second},
	}
}

// retryTransport repeats requests that failed before any response arrived.
// Requests with a body are only repeated when the body can be rebuilt.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	for attempt := 0; ; attempt++ {
		try, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}
		resp, err := base.RoundTrip(try)
		if err == nil || attempt >= t.maxRetries || !netutil.ShouldRetry(err) || !replayable(req) {
			return resp, err
		}
		wait := t.backoff * time.Duration(attempt+1)
		logger.Debug(req.Context(), logger.ComponentTGWire, "http.retry",
			append(netutil.Describe(err),
				slog.Int("attempts", attempt+1),
				slog.Duration("backoff", wait),
			)...,
		)
		timer := time.NewTimer(wait)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// rewind returns req for the first attempt and a fresh clone afterwards.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 {
		return req, nil
	}
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("telegram: rewind request body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}
