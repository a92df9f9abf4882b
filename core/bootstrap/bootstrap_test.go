package bootstrap

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coredatabase "github.com/m3rciful/fitbot/core/database"
)

func noopLogger(*coreconfig.Config) error { return nil }

func TestRunFileDriverSkipsDatabase(t *testing.T) {
	called := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: "file", FilePath: "x.json"},
		LoggerInit: noopLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			called = true
			return nil, nil
		},
	})
	require.NoError(t, err)
	require.False(t, called)
	require.Nil(t, res.DB)
	require.Equal(t, coredatabase.DriverFile, res.Driver)
}

func TestRunSQLDriverConnectsAndMigrates(t *testing.T) {
	var steps []string
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: "sqlite", SQLitePath: "x.db"},
		LoggerInit: noopLogger,
		Connect: func(cfg coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect:"+cfg.Driver)
			return nil, nil
		},
		Migrate: func(cfg coredatabase.Config) error {
			steps = append(steps, "migrate:"+cfg.MigrationsDir)
			return nil
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"connect:sqlite", "migrate:migrations"}, steps)
	require.Equal(t, coredatabase.DriverSQLite, res.Driver)
}

func TestRunPropagatesFailures(t *testing.T) {
	_, err := Run(Options{})
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = Run(Options{Config: &coreconfig.Config{}, LoggerInit: func(*coreconfig.Config) error { return boom }})
	require.ErrorIs(t, err, boom)

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: "sqlite"},
		LoggerInit: noopLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return nil, nil },
		Migrate:    func(coredatabase.Config) error { return boom },
	})
	require.ErrorIs(t, err, boom)

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: "cassandra"},
		LoggerInit: noopLogger,
	})
	require.Error(t, err)
}
