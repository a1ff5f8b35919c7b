package logger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type encoding uint8

const (
	encodingJSON encoding = iota
	encodingKV
)

const (
	timeLayout = "2006-01-02T15:04:05.000Z07:00"

	// maxUtteranceRunes bounds user-supplied text copied into a log line.
	maxUtteranceRunes = 200
)

// utteranceKeys carry raw chat text and are clipped before encoding.
var utteranceKeys = []string{"text", "answer", "utterance"}

var errNoSink = errors.New("logger: sink not initialized")

type handlerOptions struct {
	level slog.Leveler
	sink  *sink
	enc   encoding
	order []string
}

// lineHandler renders every record as one flat line. Nested groups become
// dotted keys, durations become *_ms integers.
type lineHandler struct {
	opts   handlerOptions
	prefix string
	attrs  []slog.Attr
}

func newLineHandler(opts handlerOptions) *lineHandler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if len(opts.order) == 0 {
		opts.order = slices.Clone(defaultKeyOrder)
	}
	return &lineHandler{opts: opts}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.sink == nil {
		return errNoSink
	}
	f := make(fields, 16)
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeLayout)
	f["level"] = normalizeLevel(r.Level.String())
	if h.opts.enc == encodingJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		f.add(h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.prefix, a)
		return true
	})
	f.mergeContext(ctx)
	f.finish(r.Message, h.opts.enc == encodingJSON)

	line, err := h.opts.enc.encode(f, h.opts.order)
	if err != nil {
		return err
	}
	return h.opts.sink.Write(append(line, '\n'))
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clip(h.attrs), attrs...)
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// fields is the flattened view of one record.
type fields map[string]any

func (f fields) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := scalar(key, v); ok {
		f[k] = val
	}
}

func (f fields) setDefault(key string, val any) {
	if _, ok := f[key]; !ok {
		f[key] = val
	}
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) mergeContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	if rid := RIDFrom(ctx); rid != "" {
		f.setDefault("rid", rid)
	}
	if id := UpdateIDFrom(ctx); id != 0 {
		f.setDefault("update_id", id)
	}
	if id := UserIDFrom(ctx); id != 0 {
		f.setDefault("user_id", id)
	}
	if id := ChatIDFrom(ctx); id != 0 {
		f.setDefault("chat_id", id)
	}
	if name := HandlerFrom(ctx); name != "" {
		f.setDefault("handler", name)
	}
}

// finish fills required keys, normalizes enumerations and drops empty values.
func (f fields) finish(msg string, keepFullRID bool) {
	if rid := f.str("rid"); rid != "" {
		if short := CompactRID(rid); short != rid {
			if keepFullRID {
				f.setDefault("rid_full", rid)
			}
			f["rid"] = short
		}
	}
	if f.str("event") == "" {
		f["event"] = cmpOr(msg, "unknown")
	}
	if f.str("component") == "" {
		f["component"] = ComponentApp
	}
	if s := f.str("status"); s != "" {
		f["status"] = normalizeStatus(s)
	}
	if o := f.str("outcome"); o != "" {
		if v, ok := normalizeOutcome(o); ok {
			f["outcome"] = v
		} else {
			delete(f, "outcome")
		}
	}
	for _, k := range utteranceKeys {
		if s, ok := f[k].(string); ok {
			f[k] = SanitizeLimit(s, maxUtteranceRunes)
		}
	}
	for k, v := range f {
		switch x := v.(type) {
		case nil:
			delete(f, k)
		case string:
			if x == "" {
				delete(f, k)
			}
		case fmt.Stringer:
			if x.String() == "" {
				delete(f, k)
			}
		}
	}
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// scalar converts v into a JSON-friendly value. Durations are renamed so the
// unit is part of the key.
func scalar(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func msKey(key string) string {
	switch {
	case key == "duration":
		return "duration_ms"
	case strings.HasSuffix(key, "_ms"):
		return key
	}
	return key + "_ms"
}

// orderedKeys lists the keys of f from order first, the rest sorted.
func orderedKeys(f fields, order []string) []string {
	keys := make([]string, 0, len(f))
	listed := make(map[string]bool, len(order))
	for _, k := range order {
		listed[k] = true
		if _, ok := f[k]; ok {
			keys = append(keys, k)
		}
	}
	rest := make([]string, 0, len(f)-len(keys))
	for k := range f {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

func (e encoding) encode(f fields, order []string) ([]byte, error) {
	keys := orderedKeys(f, order)
	if e == encodingKV {
		var b []byte
		for i, k := range keys {
			if i > 0 {
				b = append(b, ' ')
			}
			b = append(b, k...)
			b = append(b, '=')
			b = append(b, kvValue(f[k])...)
		}
		return b, nil
	}
	b := []byte{'{'}
	for i, k := range keys {
		val, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendQuote(b, k)
		b = append(b, ':')
		b = append(b, val...)
	}
	return append(b, '}'), nil
}

func kvValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprint(x)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
