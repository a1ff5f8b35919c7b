// Package dispatch runs side-effect jobs (Telegram sends, stats writes) on a
// bounded worker pool with retries, off the request path.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/toybot/core/logger"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("dispatch: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("dispatch: queue full")
)

// Options controls the behaviour of the dispatcher.
type Options struct {
	// Name is logged as the component of job events.
	Name         string
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
	// ShouldRetry decides whether a failed attempt is repeated. Nil never retries.
	ShouldRetry func(error) bool
	// Describe adds transport specific attributes to failure logs.
	Describe func(error) []slog.Attr
}

// Job is a unit of work. Run must be idempotent when retries are enabled.
type Job func(ctx context.Context) error

type job struct {
	ctx    context.Context
	action string
	target string
	run    Job
}

// Dispatcher executes jobs asynchronously.
type Dispatcher struct {
	opts   Options
	jobs   chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errs   atomic.Uint64
	done   atomic.Uint64
}

// New starts a dispatcher, filling zeroed options with defaults.
func New(opts Options) *Dispatcher {
	if opts.Name == "" {
		opts.Name = logger.ComponentDispatch
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}

	d := &Dispatcher{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue schedules run without blocking.
func (d *Dispatcher) Enqueue(ctx context.Context, action, target string, run Job) error {
	if run == nil {
		return errors.New("dispatch: nil job")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: context.WithoutCancel(ctx), action: action, target: target, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed after all attempts.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// DoneCount returns the number of jobs that succeeded.
func (d *Dispatcher) DoneCount() uint64 {
	return d.done.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = j.run(ctx); lastErr == nil {
			d.done.Add(1)
			attrs := d.attrs(j, slog.Duration("duration", time.Since(start)))
			if attempt > 1 {
				attrs = append(attrs, slog.Int("attempts", attempt))
			}
			logger.Debug(j.ctx, d.opts.Name, j.action+".ok", attrs...)
			return
		}
		if d.opts.ShouldRetry == nil || !d.opts.ShouldRetry(lastErr) || attempt == attempts {
			break
		}
		delay := d.opts.RetryBackoff * time.Duration(attempt)
		logger.Debug(j.ctx, d.opts.Name, j.action+".retry",
			d.attrs(j, slog.Int("attempts", attempt), slog.Duration("backoff", delay))...)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = errors.Join(lastErr, ctx.Err())
			attempt = attempts
		case <-timer.C:
		}
	}

	d.errs.Add(1)
	attrs := d.attrs(j,
		slog.String("status", "fail"),
		slog.Int("attempts", attempts),
		slog.Duration("duration", time.Since(start)),
	)
	if d.opts.Describe != nil {
		attrs = append(attrs, d.opts.Describe(lastErr)...)
	} else {
		attrs = append(attrs, slog.String("err", lastErr.Error()))
	}
	logger.Error(j.ctx, d.opts.Name, j.action+".fail", attrs...)
}

func (d *Dispatcher) attrs(j job, extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(extra)+1)
	if j.target != "" {
		attrs = append(attrs, slog.String("op", j.target))
	}
	return append(attrs, extra...)
}
