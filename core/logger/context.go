package logger

import (
	"context"
	"log/slog"
)

type ctxKey uint8

const (
	keyRID ctxKey = iota
	keyUpdateID
	keyUserID
	keyChatID
	keyHandler
)

// FromContext returns the logger for ctx. Every context currently shares L.
func FromContext(context.Context) *slog.Logger {
	return L
}

func with(ctx context.Context, key ctxKey, val any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, val)
}

func from[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithRID attaches a correlation id to ctx.
func WithRID(ctx context.Context, rid string) context.Context {
	return with(ctx, keyRID, rid)
}

// WithUpdateMeta attaches the identifiers of one Telegram update.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = with(ctx, keyUpdateID, updateID)
	ctx = with(ctx, keyUserID, userID)
	return with(ctx, keyChatID, chatID)
}

// WithHandler names the handler serving ctx. An empty name leaves ctx as is.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return with(ctx, keyHandler, handler)
}

func RIDFrom(ctx context.Context) string     { return from[string](ctx, keyRID) }
func HandlerFrom(ctx context.Context) string { return from[string](ctx, keyHandler) }
func UpdateIDFrom(ctx context.Context) int   { return from[int](ctx, keyUpdateID) }
func UserIDFrom(ctx context.Context) int64   { return from[int64](ctx, keyUserID) }
func ChatIDFrom(ctx context.Context) int64   { return from[int64](ctx, keyChatID) }
