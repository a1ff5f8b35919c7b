package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/toybot/core/config"
	"github.com/m3rciful/toybot/core/dispatch"
	"github.com/m3rciful/toybot/core/logger"
	tghelpers "github.com/m3rciful/toybot/core/telegram/helpers"
	"github.com/m3rciful/toybot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const apiBase = "https://api.telegram.org"

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a tele.Bot.Handle endpoint.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config      *coreconfig.Config
	Registry    *Registry
	Middlewares []Middleware
	Routes      []Route
}

// SenderOptions returns dispatcher options for outbound Bot API calls.
func SenderOptions() dispatch.Options {
	return dispatch.Options{
		Name:        "tg.sender",
		MaxRetries:  2,
		ShouldRetry: netutil.ShouldRetry,
		Describe:    netutil.Describe,
	}
}

// RunTelegram starts the bot and blocks until ctx is done. Replies go
// through a dispatcher that lives as long as the bot.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	cfg := opts.Config
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	pollOpts := PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
	poller := BuildPoller(pollOpts)
	client := BuildHTTPClient(pollOpts.LongPollTimeout())

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Telegram.Token, Poller: poller, Client: client})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(ctx, poller, time.Since(start))
	if _, polling := poller.(*tele.LongPoller); polling {
		// A webhook left over from an earlier webhook run blocks getUpdates.
		if err := deleteWebhook(ctx, client, cfg.Telegram.Token); err != nil {
			logger.Warn(ctx, logger.ComponentTG, "delete_webhook", netutil.Describe(err)...)
		}
	}

	sender := dispatch.New(SenderOptions())
	tghelpers.SetDispatcher(sender)
	defer func() {
		tghelpers.SetDispatcher(nil)
		sender.Close()
	}()

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	SetupCommands(bot, reg)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		bot.Start()
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-stopped
	case <-stopped:
	}
	logger.Info(ctx, logger.ComponentTG, "stopped",
		slog.Uint64("count", sender.DoneCount()),
		slog.Uint64("failed", sender.ErrorCount()),
	)
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func logMode(ctx context.Context, poller tele.Poller, took time.Duration) {
	switch p := poller.(type) {
	case *tele.Webhook:
		logger.Info(ctx, logger.ComponentTG, "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("duration", took),
		)
	case *tele.LongPoller:
		logger.Info(ctx, logger.ComponentTG, "mode",
			slog.String("mode", "polling"),
			slog.Duration("timeout", p.Timeout),
			slog.Duration("duration", took),
		)
	}
}

func deleteWebhook(ctx context.Context, client *http.Client, token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	form := url.Values{"drop_pending_updates": {"false"}}
	endpoint := fmt.Sprintf("%s/bot%s/deleteWebhook", apiBase, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook: %s (%d)", resp.Status, resp.StatusCode)
	}
	return nil
}
