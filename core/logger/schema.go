package logger

import "strings"

// Level names as they appear in the "level" field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

var levelNames = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

// outcomes is the closed set accepted in the "outcome" field. Transport
// outcomes share the key with dialog turn outcomes.
var outcomes = set("ok", "fail", "cancelled", "rate_limited", "intent", "retrieval", "failure")

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func normalizeOutcome(outcome string) (string, bool) {
	o := strings.ToLower(strings.TrimSpace(outcome))
	return o, outcomes[o]
}

// defaultKeyOrder lists keys emitted ahead of the sorted remainder.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler", "op",
	"state", "intent", "outcome", "duration_ms",
	"toy", "category", "age", "price", "score", "confidence",
	"text", "answer", "count",
	"mode", "listen", "public_url", "http_code",
	"db", "host", "port",
	"err", "cause", "retryable", "attempts", "backoff_ms", "rate_limited",
}
