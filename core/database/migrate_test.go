package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetween(t *testing.T) {
	files := []string{"0001_dialog_outcomes.up.sql", "0002_add_state.up.sql", "0003_index.up.sql"}
	assert.Len(t, between(files, 0, 3), 3)
	assert.Equal(t, []string{"0002_add_state.up.sql", "0003_index.up.sql"}, between(files, 1, 3))
	assert.Empty(t, between(files, 3, 3))
	assert.Empty(t, between(files, 2, 1))
}

func TestUpFilesSkipsDown(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, upFiles(dir))
}

func TestUpFilesFindsBundledMigrations(t *testing.T) {
	assert.Contains(t, upFiles("../../migrations"), "0001_dialog_outcomes.up.sql")
}

func TestURLEscapesPassword(t *testing.T) {
	u := URL(Config{User: "bot", Password: "p@ss", Host: "db", Port: "5432", Name: "toys", SSLMode: "disable"})
	assert.Equal(t, "postgres://bot:p%40ss@db:5432/toys?sslmode=disable", u)
}
