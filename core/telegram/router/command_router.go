package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/toybot/core/logger"
	tg "github.com/m3rciful/toybot/core/telegram"
	"github.com/m3rciful/toybot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures CommandRoutes.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command. Admin-only
// commands are gated by AdminID.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	admin := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})
	var routes []tg.Route
	for name, cmd := range reg.Commands() {
		h := observed(handlerName(name), cmd.Handler)
		if cmd.AdminOnly {
			h = admin(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: guarded(h)})
	}
	logger.Info(context.Background(), logger.ComponentTGWire, "commands",
		slog.Int("count", len(routes)),
	)
	return routes
}
