// Package logger writes one structured line per event. Every event carries a
// component and an event name; the Telegram layer adds update identifiers
// through the context helpers.
package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/m3rciful/toybot/core/buildinfo"
	coreconfig "github.com/m3rciful/toybot/core/config"
)

// Component names used across the bot.
const (
	ComponentApp      = "app"
	ComponentTG       = "tg"
	ComponentTGWire   = "tg.wire"
	ComponentDB       = "db"
	ComponentMigrate  = "db.migrate"
	ComponentDialog   = "dialog"
	ComponentCatalog  = "catalog"
	ComponentModel    = "model"
	ComponentStats    = "stats"
	ComponentOps      = "ops"
	ComponentConsole  = "console"
	ComponentDispatch = "dispatch"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	closed   bool

	logSink *sink
	files   []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newSampler(1, 50)
	traceOverride bool

	// L is the base logger. It stays nil until InitLogger runs and every
	// helper in this package tolerates that.
	L *slog.Logger
)

// InitLogger configures the global logger from cfg. Only the first call has
// an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))
		debugSampler.Set(parseDebugSample(cfg))
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		var outputs []io.Writer
		outputs, files, err = openOutputs(cfg)
		if err != nil {
			return
		}
		logSink = newSink(outputs, 64*1024)
		L = slog.New(newLineHandler(handlerOptions{
			level: &levelVar,
			sink:  logSink,
			enc:   selectEncoding(cfg),
			order: selectKeyOrder(cfg),
		}))
		slog.SetDefault(L)
		logStartup(cfg)
	})
	return err
}

func logStartup(cfg *coreconfig.Config) {
	attrs := []slog.Attr{
		slog.String("go_version", runtime.Version()),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", selectProfile(cfg)),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("catalog", cfg.Data.Catalog),
			slog.String("lemmatizer", cfg.Data.Lemmatizer),
		)
	}
	Info(context.Background(), ComponentApp, "startup", attrs...)
}

// Shutdown flushes buffered lines and closes log files. Later calls are no-ops.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if logSink != nil {
		errs = append(errs, logSink.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// LogEvent logs attrs under event through logg, or through the logger of ctx
// when logg is nil.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

func emit(ctx context.Context, level slog.Level, component, event string, attrs []slog.Attr) {
	logg := FromContext(ctx)
	if logg == nil || !logg.Enabled(ctx, level) {
		return
	}
	if component != "" {
		attrs = append([]slog.Attr{slog.String("component", component)}, attrs...)
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs a debug-level event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, component, event, attrs)
}

// Info logs an info-level event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, component, event, attrs)
}

// Warn logs a warn-level event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, component, event, attrs)
}

// Error logs an error-level event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, component, event, attrs)
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// logged this time. TRACE=1 lets every event through.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
