package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/toybot/core/logger"
	tg "github.com/m3rciful/toybot/core/telegram"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"
	"github.com/m3rciful/toybot/core/telegram/middleware"
	"github.com/m3rciful/toybot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

func (a *App) runTelegram(ctx context.Context) error {
	reg := tg.NewRegistry()
	a.register(reg)

	admin := middleware.AdminOptions{AdminID: a.cfg.Telegram.AdminID, OnReject: replyWith(msgAdminOnly)}
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       admin.AdminID,
		OnAdminReject: admin.OnReject,
	})
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{NonText: a.onNonText, Admin: admin})...)

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, replyWith(msgSlowDown)),
		Routes:      routes,
	})
}

func (a *App) register(reg *tg.Registry) {
	reg.RegisterCommand("/start", tg.Command{Handler: a.onStart, Description: "Начать разговор"})
	reg.RegisterCommand("/help", tg.Command{Handler: a.onHelp, Description: "Что умеет бот"})
	reg.RegisterCommand("/stats", tg.Command{Handler: a.onStats, Description: "Статистика ответов"})
	reg.RegisterCommand("/reset", tg.Command{Handler: a.onReset, Description: "Забыть контекст разговора"})
	reg.RegisterCommand("/stats_all", tg.Command{
		Handler:     a.onStatsAll,
		Description: "Статистика по всем сессиям",
		AdminOnly:   true,
	})
	reg.SetTextFallback(a.onText)
}

func replyWith(text string) tele.HandlerFunc {
	return func(c tele.Context) error { return tghelpers.SendText(c, text) }
}

func (a *App) onText(c tele.Context) error {
	turn := a.converse(tghelpers.BuildContext(c), tghelpers.SenderID(c), c.Text())
	return tghelpers.SendText(c, turn.Answer)
}

func (a *App) onNonText(c tele.Context) error {
	return tghelpers.SendText(c, a.comp.Engine.NonText(tghelpers.SenderID(c)))
}

func (a *App) onStart(c tele.Context) error {
	return tghelpers.SendText(c, a.comp.Engine.Start(tghelpers.SenderID(c)))
}

func (a *App) onHelp(c tele.Context) error {
	return tghelpers.SendText(c, a.comp.Engine.Help(tghelpers.SenderID(c)))
}

func (a *App) onStats(c tele.Context) error {
	sc, _ := a.comp.Store.Snapshot(tghelpers.SenderID(c))
	return tghelpers.SendText(c, userStatsText(sc.Stats))
}

func (a *App) onReset(c tele.Context) error {
	uid := tghelpers.SenderID(c)
	existed := a.comp.Store.Reset(uid)
	logger.Info(tghelpers.BuildContext(c), logger.ComponentDialog, "session.reset",
		slog.Bool("existed", existed),
	)
	return tghelpers.SendText(c, msgReset)
}

func (a *App) onStatsAll(c tele.Context) error {
	return tghelpers.SendText(c, a.totalStats(tghelpers.BuildContext(c)))
}

// totalStats reports in-memory totals and, with a database, the stored count.
func (a *App) totalStats(ctx context.Context) string {
	totals, sessions := a.comp.Store.Totals()
	out := totalStatsText(totals, sessions)
	if a.outcomes == nil {
		return out
	}
	stored, err := a.outcomes.Counts(ctx)
	if err != nil {
		logger.Warn(ctx, logger.ComponentStats, "stats.count", slog.String("err", err.Error()))
		return out
	}
	return out + fmt.Sprintf(msgStored, stored.Total())
}
