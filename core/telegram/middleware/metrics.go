package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const sentKey = "messages_sent"

// countingContext counts successful Send and Reply calls in the context store.
type countingContext struct{ tele.Context }

func (c countingContext) count(err error) error {
	if err == nil {
		c.Set(sentKey, MessagesSent(c.Context)+1)
	}
	return err
}

func (c countingContext) Send(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Send(what, opts...))
}

func (c countingContext) Reply(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Reply(what, opts...))
}

// MessageMetricsMiddleware makes MessagesSent report how many replies the
// downstream handlers sent for the update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(sentKey, 0)
		return next(countingContext{Context: c})
	}
}

// MessagesSent returns the counter kept by MessageMetricsMiddleware.
func MessagesSent(c tele.Context) int {
	n, _ := c.Get(sentKey).(int)
	return n
}
