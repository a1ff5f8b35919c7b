package helpers

import (
	"context"

	"github.com/m3rciful/toybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const ctxStoreKey = "log_ctx"

// BuildContext returns the logging context of the update behind c: its rid
// plus update, user and chat ids. The first call caches it in c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxStoreKey).(context.Context); ok {
		return ctx
	}
	id, uid, cid := c.Update().ID, SenderID(c), ChatID(c)
	ctx := logger.WithRID(context.Background(), logger.BuildRID(id, cid, uid))
	ctx = logger.WithUpdateMeta(ctx, id, uid, cid)
	c.Set(ctxStoreKey, ctx)
	return ctx
}

// WithHandler names the handler serving c in its cached logging context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		c.Set(ctxStoreKey, ctx)
	}
	return ctx
}

// SenderID returns the sender's user id or 0.
func SenderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// ChatID returns the chat id or 0.
func ChatID(c tele.Context) int64 {
	if ch := c.Chat(); ch != nil {
		return ch.ID
	}
	return 0
}
