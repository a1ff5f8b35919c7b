package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	coreconfig "github.com/m3rciful/toybot/core/config"
)

// selectEncoding honours an explicit format and otherwise picks key=value
// output for the debug and dev profiles.
func selectEncoding(cfg *coreconfig.Config) encoding {
	if cfg == nil {
		return encodingJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return encodingKV
	case "json":
		return encodingJSON
	}
	switch selectProfile(cfg) {
	case "debug", "dev":
		return encodingKV
	}
	return encodingJSON
}

func selectKeyOrder(cfg *coreconfig.Config) []string {
	var order []string
	if cfg != nil && strings.TrimSpace(cfg.Logging.KeysOrder) != "default" {
		for _, k := range strings.Split(cfg.Logging.KeysOrder, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
	}
	if len(order) == 0 {
		return slices.Clone(defaultKeyOrder)
	}
	return order
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(cfg.Logging.Level))); err != nil {
		if strings.EqualFold(strings.TrimSpace(cfg.Logging.Level), "warning") {
			return slog.LevelWarn
		}
		return slog.LevelInfo
	}
	return lvl
}

func selectProfile(cfg *coreconfig.Config) string {
	if cfg == nil {
		return ""
	}
	if p := strings.TrimSpace(cfg.Logging.Profile); p != "" {
		return strings.ToLower(p)
	}
	return "prod"
}

// openOutputs returns stdout plus, when both dir and file are set, the
// appended log file.
func openOutputs(cfg *coreconfig.Config) ([]io.Writer, []io.Closer, error) {
	outputs := []io.Writer{os.Stdout}
	if cfg == nil {
		return outputs, nil, nil
	}
	dir, name := strings.TrimSpace(cfg.Logging.Dir), strings.TrimSpace(cfg.Logging.BotFile)
	if dir == "" || name == "" {
		return outputs, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open log file %s: %w", path, err)
	}
	return append(outputs, f), []io.Closer{f}, nil
}

// parseDebugSample reads logging.debug_sample. Empty means 1/50, "0" turns
// sampling off and anything unparsable falls back to 1/50.
func parseDebugSample(cfg *coreconfig.Config) (int, int) {
	if cfg == nil || strings.TrimSpace(cfg.Logging.DebugSample) == "" {
		return 1, 50
	}
	ratio := strings.TrimSpace(cfg.Logging.DebugSample)
	if ratio == "0" || ratio == "off" {
		return 0, 0
	}
	if num, den := parseRatio(ratio); num > 0 && den > 0 {
		return num, den
	}
	return 1, 50
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
