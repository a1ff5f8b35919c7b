package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/toybot/core/dispatch"
	"github.com/m3rciful/toybot/core/logger"

	tele "gopkg.in/telebot.v4"
)

var sender atomic.Pointer[dispatch.Dispatcher]

// SetDispatcher routes SendText through d. With nil, sends happen inline.
func SetDispatcher(d *dispatch.Dispatcher) {
	sender.Store(d)
}

// SendText queues a plain-text reply to the chat of c. When the queue is
// closed or full the reply is sent inline instead of being lost.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	send := func(context.Context) error {
		if len(opts) > 0 && opts[0] != nil {
			return c.Send(text, opts[0])
		}
		return c.Send(text)
	}
	d := sender.Load()
	if d == nil {
		return send(context.Background())
	}
	ctx := BuildContext(c)
	err := d.Enqueue(ctx, "send", "sendMessage", send)
	if errors.Is(err, dispatch.ErrQueueFull) || errors.Is(err, dispatch.ErrQueueClosed) {
		logger.Warn(ctx, logger.ComponentTG, "queue.fallback",
			slog.String("op", "sendMessage"),
			slog.String("cause", err.Error()),
		)
		return send(ctx)
	}
	return err
}
