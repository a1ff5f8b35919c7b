package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/toybot/core/logger"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"
	"github.com/m3rciful/toybot/core/telegram/middleware"
	"github.com/m3rciful/toybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

// observed runs h under the handler name and logs one summary line for it.
func observed(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		ctx := tghelpers.WithHandler(c, name)
		err := h(c)
		attrs := []slog.Attr{
			slog.String("status", logger.Status(err)),
			slog.Int("count", middleware.MessagesSent(c)),
			slog.Duration("duration", time.Since(start)),
		}
		logger.Info(ctx, logger.ComponentTG, "handler.handled", append(attrs, netutil.Describe(err)...)...)
		return err
	}
}

// skipped logs an update nobody handles.
func skipped(c tele.Context, name string) error {
	logger.Info(tghelpers.WithHandler(c, name), logger.ComponentTG, "handler.handled",
		slog.String("status", "skip"),
	)
	return nil
}

// handlerName turns "/Stats All" into "cmd.stats_all".
func handlerName(command string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(command), "/"))
	if name == "" {
		return "cmd.unknown"
	}
	return "cmd." + strings.ReplaceAll(name, " ", "_")
}

func guarded(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}
