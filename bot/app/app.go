package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/toybot/bot/dialog"
	"github.com/m3rciful/toybot/bot/stats"
	"github.com/m3rciful/toybot/core/bootstrap"
	coreconfig "github.com/m3rciful/toybot/core/config"
	"github.com/m3rciful/toybot/core/dispatch"
	"github.com/m3rciful/toybot/core/logger"
)

// Mode selects the transport the app talks through.
type Mode int

const (
	// ModeServe runs the Telegram bot.
	ModeServe Mode = iota
	// ModeConsole chats over In and Out.
	ModeConsole
)

// Options tune Bootstrap.
type Options struct {
	Mode Mode
	In   io.Reader
	Out  io.Writer
	// Bootstrap overrides the infrastructure hooks, mainly for tests.
	Bootstrap bootstrap.Options
}

// App owns the engine, the stats pipeline and the ops server.
type App struct {
	cfg   *coreconfig.Config
	opts  Options
	infra *bootstrap.Result
	comp  *Components

	metrics  *prometheus.Registry
	recorder stats.Recorder
	queue    *dispatch.Dispatcher
	// outcomes is nil without a database.
	outcomes *stats.Postgres
}

// Bootstrap initializes logging and the optional database, loads the data
// files and builds the stats pipeline.
func Bootstrap(ctx context.Context, cfg *coreconfig.Config, opts Options) (*App, error) {
	if opts.Mode == ModeServe {
		if err := coreconfig.RequireTelegram(cfg); err != nil {
			return nil, err
		}
	}

	bopts := opts.Bootstrap
	bopts.Config = cfg
	infra, err := bootstrap.Run(ctx, bopts)
	if err != nil {
		return nil, err
	}

	comp, err := Build(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	a := &App{cfg: cfg, opts: opts, infra: infra, comp: comp}
	if err := a.initStats(); err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initStats() error {
	a.metrics = prometheus.NewRegistry()
	a.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "toybot",
			Name:      "sessions",
			Help:      "Conversations held in memory.",
		}, func() float64 {
			_, n := a.comp.Store.Totals()
			return float64(n)
		}),
	)
	prom, err := stats.NewPrometheus(a.metrics)
	if err != nil {
		return err
	}

	// Counters are bumped inline; only the table insert is queued and retried,
	// so a failed write never counts a turn twice.
	a.recorder = prom
	if a.infra.DB == nil {
		return nil
	}
	a.outcomes = stats.NewPostgres(a.infra.DB)
	a.queue = dispatch.New(dispatch.Options{
		Name:         logger.ComponentStats,
		Workers:      2,
		QueueSize:    1024,
		MaxRetries:   2,
		RetryBackoff: time.Second,
		ShouldRetry: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	})
	a.recorder = stats.Multi{prom, stats.NewAsync(a.outcomes, a.queue)}
	return nil
}

// Run serves the selected transport and, when configured, the ops server. It
// returns when the transport stops or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if a.cfg.Ops.Listen != "" {
		g.Go(func() error { return a.serveOps(gctx) })
	}
	g.Go(func() error {
		defer cancel()
		if a.opts.Mode == ModeConsole {
			return a.chat(gctx)
		}
		return a.runTelegram(gctx)
	})
	return g.Wait()
}

// Close drains pending stats and releases the database.
func (a *App) Close() error {
	if a.queue != nil {
		a.queue.Close()
	}
	return a.infra.Close()
}

// converse runs one turn and hands its record to the stats pipeline.
func (a *App) converse(ctx context.Context, userID int64, utterance string) dialog.Turn {
	start := time.Now()
	turn := a.comp.Engine.Reply(ctx, userID, utterance)

	logger.Info(ctx, logger.ComponentDialog, "turn.handled",
		slog.String("state", turn.State.String()),
		slog.String("intent", turn.Intent.String()),
		slog.String("outcome", turn.Outcome.String()),
		slog.String("toy", turn.Toy),
		slog.String("text", logger.SanitizeLimit(utterance, 200)),
		slog.String("answer", logger.SanitizeLimit(turn.Answer, 200)),
		slog.Int64("intent_total", turn.Stats.Intent),
		slog.Int64("retrieval_total", turn.Stats.Retrieval),
		slog.Int64("failure_total", turn.Stats.Failure),
		slog.Duration("duration", logger.Took(start)),
	)

	if a.recorder != nil {
		r := stats.NewRecord(userID, utterance, turn.Answer)
		r.Intent = turn.Intent
		r.Outcome = turn.Outcome
		r.State = turn.State
		if err := a.recorder.Record(ctx, r); err != nil && !errors.Is(err, dispatch.ErrQueueFull) {
			logger.Warn(ctx, logger.ComponentStats, "stats.enqueue", slog.String("err", err.Error()))
		}
	}
	return turn
}
