package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/fitbot/core/config"
	coretelegram "github.com/m3rciful/fitbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ opts coretelegram.RunOptions }

func (a app) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestRunWiresLifecycleHooks(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FITBOT_RUNNER_TEST=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FITBOT_RUNNER_TEST") })
	t.Setenv("FITBOT_CONFIG", "")

	var (
		loadedPath string
		events     []string
	)
	err := Run(Options{
		ConfigEnvVar:      "FITBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		EnvFiles:          []string{envFile, filepath.Join(dir, "missing.env")},
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap: func(ConfigCarrier) (TelegramApp, error) {
			return app{opts: coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error { events = append(events, "start"); return nil },
				OnStop:  func(context.Context, coretelegram.Runtime) error { events = append(events, "stop"); return nil },
			}}, nil
		},
		ShutdownLogger: func() error { events = append(events, "logger"); return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	require.Equal(t, "config.yaml", loadedPath)
	require.Equal(t, "from-dotenv", os.Getenv("FITBOT_RUNNER_TEST"))
	require.Equal(t, []string{"start", "stop", "logger"}, events)
}

func TestRunFailures(t *testing.T) {
	require.Error(t, Run(Options{}))

	boom := errors.New("boom")
	err := Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return nil, boom },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return nil, nil },
	})
	require.ErrorIs(t, err, boom)

	err = Run(Options{
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: &coreconfig.Config{}}, nil },
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return nil, boom },
		ShutdownLogger: func() error { return nil },
	})
	require.ErrorIs(t, err, boom)
}
