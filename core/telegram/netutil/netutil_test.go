package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	dial := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	assert.True(t, ShouldRetry(dial))
	assert.True(t, ShouldRetry(&url.Error{Op: "Post", URL: "https://api.telegram.org", Err: timeoutErr{}}))
	assert.True(t, ShouldRetry(fmt.Errorf("read: %w", syscall.ECONNRESET)))
	assert.True(t, ShouldRetry(errors.New("telegram: retry after 3 (429)")))
	assert.False(t, ShouldRetry(errors.New("telegram: chat not found (400)")))
	assert.False(t, ShouldRetry(fmt.Errorf("send: %w", context.Canceled)))
	assert.False(t, ShouldRetry(errors.New("bad request")))
	assert.False(t, ShouldRetry(nil))
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "timeout", ClassifyError(fmt.Errorf("send: %w", context.DeadlineExceeded)))
	assert.Equal(t, "dial", ClassifyError(&net.OpError{Op: "dial", Err: errors.New("refused")}))
	assert.Equal(t, "http_4xx", ClassifyError(errors.New("telegram: chat not found (400)")))
	assert.Equal(t, "unknown", ClassifyError(errors.New("boom")))
}

func TestRedactToken(t *testing.T) {
	msg := `Post "https://api.telegram.org/bot123456:AA-bb_CC/sendMessage": EOF`
	assert.Equal(t, `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF`, RedactToken(msg))
}
