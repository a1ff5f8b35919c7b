package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPoller(t *testing.T) {
	wh, ok := BuildPoller(PollerOptions{
		RunMode: "WEBHOOK",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://toys.example/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "https://toys.example/hook", wh.Endpoint.PublicURL)

	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, lp.Timeout)

	lp, ok = BuildPoller(PollerOptions{LongPollTimeoutSeconds: 25}).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, 25*time.Second, lp.Timeout)
}

func TestBuildHTTPClientOutlastsLongPoll(t *testing.T) {
	c := BuildHTTPClient(25 * time.Second)
	assert.Greater(t, c.Timeout, 25*time.Second)
	_, ok := c.Transport.(*retryTransport)
	assert.True(t, ok)
}

type flakyTransport struct {
	fails int
	calls int
}

func (f *flakyTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func TestRetryTransportRetriesDialErrors(t *testing.T) {
	base := &flakyTransport{fails: 2}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/getMe", nil)
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, base.calls)
}

func TestRetryTransportGivesUp(t *testing.T) {
	base := &flakyTransport{fails: 10}
	rt := &retryTransport{base: base, maxRetries: 1, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodGet, "https://api.telegram.org/getMe", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 2, base.calls)
}

func TestRetryTransportKeepsOneShotBodies(t *testing.T) {
	base := &flakyTransport{fails: 10}
	rt := &retryTransport{base: base, maxRetries: 3, backoff: time.Millisecond}

	req, err := http.NewRequest(http.MethodPost, "https://api.telegram.org/sendMessage", io.NopCloser(strings.NewReader("text=hi")))
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.Error(t, err)
	assert.Equal(t, 1, base.calls)
}
