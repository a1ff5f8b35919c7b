package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/toybot/core/logger"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures RateLimitMiddleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Exclude lists message kinds (see messageKind) that bypass the limit.
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// lastSeen remembers when each user was last let through. Entries older
// than the interval are pruned on every sweep.
type lastSeen struct {
	mu       sync.Mutex
	at       map[int64]time.Time
	interval time.Duration
	swept    time.Time
}

func (l *lastSeen) allow(uid int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.swept) > time.Minute {
		for id, t := range l.at {
			if now.Sub(t) >= l.interval {
				delete(l.at, id)
			}
		}
		l.swept = now
	}
	if t, ok := l.at[uid]; ok && now.Sub(t) < l.interval {
		return false
	}
	l.at[uid] = now
	return true
}

// RateLimitMiddleware drops messages a user sends faster than one per
// Interval. A dropped message is answered by OnLimited when set.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	seen := &lastSeen{at: make(map[int64]time.Time), interval: opts.Interval}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			u := c.Sender()
			if u == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[messageKind(c.Message())]; skip {
				return next(c)
			}
			if seen.allow(u.ID, time.Now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), logger.ComponentTG, "rate_limit",
				slog.Bool("rate_limited", true),
				slog.Duration("interval", opts.Interval),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
