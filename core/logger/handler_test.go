package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, enc encoding) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	s := newSink([]io.Writer{buf}, 1024)
	h := newLineHandler(handlerOptions{level: slog.LevelInfo, sink: s, enc: enc})
	return slog.New(h), func() string {
		require.NoError(t, s.Close())
		return strings.TrimSpace(buf.String())
	}
}

func TestKVLineOrder(t *testing.T) {
	log, read := newTestLogger(t, encodingKV)
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", ComponentDialog), slog.LevelInfo, "turn.handled",
		slog.String("outcome", "retrieval"),
		slog.String("state", "NONE"),
		slog.String("intent", "offtopic"),
	)

	tokens := strings.Fields(read())
	want := []string{"ts=", "level=INFO", "component=dialog", "event=turn.handled", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "state=NONE", "intent=offtopic", "outcome=retrieval"}
	require.GreaterOrEqual(t, len(tokens), len(want))
	for i, prefix := range want {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
}

func TestJSONLineOrder(t *testing.T) {
	log, read := newTestLogger(t, encodingJSON)
	ctx := WithUpdateMeta(WithRID(Background(), "rid-json"), 11, 22, 33)

	LogEvent(ctx, log.With("component", ComponentStats), slog.LevelError, "stats.record",
		slog.String("status", "FAIL"),
		slog.String("err", "boom"),
	)

	line := read()
	pos := -1
	for _, part := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"stats"`, `"event":"stats.record"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`} {
		idx := strings.Index(line, part)
		require.Greater(t, idx, pos, "%s out of order in %s", part, line)
		pos = idx
	}
}

func TestCompactRIDInLines(t *testing.T) {
	raw := BuildRID(12, 34, 56)

	kv, readKV := newTestLogger(t, encodingKV)
	LogEvent(WithRID(Background(), raw), kv, slog.LevelInfo, "rid.test")
	line := readKV()
	assert.Contains(t, line, "rid=c.y.1k")
	assert.NotContains(t, line, "rid_full=")

	js, readJSON := newTestLogger(t, encodingJSON)
	LogEvent(WithRID(Background(), raw), js, slog.LevelInfo, "rid.test")
	line = readJSON()
	assert.Contains(t, line, `"rid":"c.y.1k"`)
	assert.Contains(t, line, `"rid_full":"12:34:56"`)
	assert.Contains(t, line, `"ts_unix_nano"`)
}

func TestUnknownOutcomeDropped(t *testing.T) {
	log, read := newTestLogger(t, encodingKV)
	LogEvent(Background(), log, slog.LevelInfo, "turn.handled",
		slog.String("outcome", "maybe"),
		slog.Duration("duration", 1500*time.Microsecond),
	)

	line := read()
	assert.NotContains(t, line, "outcome=")
	assert.Contains(t, line, "component=app")
	assert.Contains(t, line, "duration_ms=2")
}

func TestGroupsFlattenAndUtteranceClipped(t *testing.T) {
	log, read := newTestLogger(t, encodingJSON)
	long := strings.Repeat("я", maxUtteranceRunes+10)
	log.WithGroup("turn").Info("turn.handled", slog.String("state", "NONE"))
	log.Info("turn.handled", slog.String("text", long), slog.String("answer", ""))

	lines := strings.Split(read(), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"turn.state":"NONE"`)
	assert.Contains(t, lines[1], `"text":"`+strings.Repeat("я", maxUtteranceRunes)+`…"`)
	assert.NotContains(t, lines[1], `"answer"`)
}

func TestBelowLevelFiltered(t *testing.T) {
	log, read := newTestLogger(t, encodingKV)
	LogEvent(Background(), log, slog.LevelDebug, "noise")
	assert.Empty(t, read())
}

func TestSinkRejectsWritesAfterClose(t *testing.T) {
	s := newSink([]io.Writer{io.Discard}, 0)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write([]byte("late\n")), errSinkClosed)
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "приветмир", SanitizeLimit("привет\x00мир", 20))
	assert.Equal(t, "расскажи…", SanitizeLimit("расскажи анекдот", 8))
	assert.Equal(t, "", SanitizeLimit("abc", 0))
}

func TestSampler(t *testing.T) {
	s := newSampler(1, 3)
	assert.Equal(t, []bool{true, false, false, true}, []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()})

	s.Set(0, 0)
	assert.True(t, s.Allow())

	num, den := parseRatio("2/5")
	assert.Equal(t, [2]int{2, 5}, [2]int{num, den})
	num, den = parseRatio("10")
	assert.Equal(t, [2]int{1, 10}, [2]int{num, den})
	num, den = parseRatio("x/5")
	assert.Equal(t, [2]int{0, 0}, [2]int{num, den})
}
