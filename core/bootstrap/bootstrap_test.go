package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/toybot/core/config"
	coredatabase "github.com/m3rciful/toybot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipsDatabaseWhenNotConfigured(t *testing.T) {
	called := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			called = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.False(t, called)
	assert.NoError(t, res.Close())
}

func TestRunClosesDatabaseWhenMigrationFails(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	cfg := &coreconfig.Config{Database: coreconfig.DatabaseConfig{Host: "db", Name: "toys"}}
	_, err = Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coredatabase.Config) (*sqlx.DB, error) {
			return sqlx.NewDb(raw, "postgres"), nil
		},
		Migrate: func(context.Context, coredatabase.Config) error {
			return errors.New("dirty database version 1")
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunPropagatesLoggerFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: func(*coreconfig.Config) error { return errors.New("no log dir") },
	})
	require.Error(t, err)
}
