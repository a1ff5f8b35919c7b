package middleware

import (
	"log/slog"

	"github.com/m3rciful/toybot/core/logger"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions configures AdminOnlyMiddleware.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware passes only updates from AdminID. When no admin is
// configured nobody passes.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			uid := tghelpers.SenderID(c)
			if opts.AdminID != 0 && uid == opts.AdminID {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), logger.ComponentTG, "admin.reject",
				slog.Bool("admin_configured", opts.AdminID != 0),
			)
			if opts.OnReject == nil {
				return nil
			}
			return opts.OnReject(c)
		}
	}
}
