package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/toybot/core/logger"
)

// RunMigrations applies every pending up migration from cfg.Migrations.
func RunMigrations(ctx context.Context, cfg Config) error {
	dir, err := filepath.Abs(cfg.Migrations)
	if err != nil {
		return fmt.Errorf("resolve migrations dir: %w", err)
	}
	files := upFiles(dir)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), URL(cfg))
	if err != nil {
		logger.Error(ctx, logger.ComponentMigrate, "migrate.init", slog.String("err", err.Error()))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer m.Close()

	from, dirty, _ := m.Version()
	if dirty {
		return fmt.Errorf("database is dirty at version %d; fix it and force the version", from)
	}

	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, logger.ComponentMigrate, "migrate.apply",
			slog.String("err", err.Error()),
			slog.Duration("duration", logger.Took(start)),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}
	to, _, _ := m.Version()

	applied := between(files, uint64(from), uint64(to))
	names, cut := logger.SummarizeStrings(applied, 6)
	logger.Info(ctx, logger.ComponentMigrate, "migrate.summary",
		slog.String("path", dir),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", len(applied)),
		slog.String("files", names),
		slog.Bool("files_truncated", cut),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// upFiles lists the *.up.sql file names in dir, sorted.
func upFiles(dir string) []string {
	paths, _ := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	slices.Sort(names)
	return names
}

func version(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// between returns the files with a version in (from, to].
func between(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := version(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
