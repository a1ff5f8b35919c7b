package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	msg   *tele.Message
	store map[string]any
	sent  []any
}

func newFake(uid int64, text string) *fakeContext {
	return &fakeContext{
		msg: &tele.Message{
			Text:   text,
			Sender: &tele.User{ID: uid},
			Chat:   &tele.Chat{ID: uid, Type: tele.ChatPrivate},
		},
		store: map[string]any{},
	}
}

func (f *fakeContext) Message() *tele.Message { return f.msg }
func (f *fakeContext) Sender() *tele.User     { return f.msg.Sender }
func (f *fakeContext) Chat() *tele.Chat       { return f.msg.Chat }
func (f *fakeContext) Text() string           { return f.msg.Text }
func (f *fakeContext) Update() tele.Update    { return tele.Update{ID: 1, Message: f.msg} }
func (f *fakeContext) Get(k string) any       { return f.store[k] }
func (f *fakeContext) Set(k string, v any)    { f.store[k] = v }

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestMessageKind(t *testing.T) {
	assert.Equal(t, "other", messageKind(nil))
	assert.Equal(t, "text", messageKind(&tele.Message{Text: "хочу куклу"}))
	assert.Equal(t, "command", messageKind(&tele.Message{Text: "/start"}))
	assert.Equal(t, "voice", messageKind(&tele.Message{Voice: &tele.Voice{}}))
	assert.Equal(t, "sticker", messageKind(&tele.Message{Sticker: &tele.Sticker{}}))
}

func TestRateLimitDropsFastRepeats(t *testing.T) {
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Exclude:   map[string]struct{}{"command": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	passed := 0
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(newFake(1, "привет")))
	require.NoError(t, h(newFake(1, "привет ещё раз")))
	require.NoError(t, h(newFake(2, "привет")))
	require.NoError(t, h(newFake(1, "/help")))

	assert.Equal(t, 3, passed)
	assert.Equal(t, 1, limited)
}

func TestAdminOnly(t *testing.T) {
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{AdminID: 42, OnReject: func(tele.Context) error { rejected++; return nil }})
	ran := 0
	h := mw(func(tele.Context) error { ran++; return nil })

	require.NoError(t, h(newFake(42, "/stats_all")))
	require.NoError(t, h(newFake(7, "/stats_all")))
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, rejected)

	nobody := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { ran++; return nil })
	require.NoError(t, nobody(newFake(0, "/stats_all")))
	assert.Equal(t, 1, ran)
}

func TestRecoverSwallowsPanics(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	assert.NoError(t, h(newFake(1, "привет")))

	want := errors.New("send failed")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(newFake(1, "привет")), want)
}

func TestMessageMetricsCountsSends(t *testing.T) {
	c := newFake(1, "привет")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		require.NoError(t, c.Send("раз"))
		return c.Send("два")
	})
	require.NoError(t, h(c))
	assert.Equal(t, 2, MessagesSent(c))
	assert.Len(t, c.sent, 2)
}

func TestLoggerMiddlewareCachesContext(t *testing.T) {
	c := newFake(5, "привет")
	h := LoggerMiddleware(func(tele.Context) error { return nil })
	require.NoError(t, h(c))
	assert.NotNil(t, c.store["log_ctx"])
}
