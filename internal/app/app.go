// Package app wires storage, the catalog, the gate and the menu router into
// Telegram run options.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/fitbot/core/bootstrap"
	coreconfig "github.com/m3rciful/fitbot/core/config"
	"github.com/m3rciful/fitbot/core/logger"
	coretelegram "github.com/m3rciful/fitbot/core/telegram"
	"github.com/m3rciful/fitbot/core/telegram/router"
	"github.com/m3rciful/fitbot/core/telegram/sender"
	"github.com/m3rciful/fitbot/internal/catalog"
	"github.com/m3rciful/fitbot/internal/config"
	"github.com/m3rciful/fitbot/internal/gate"
	"github.com/m3rciful/fitbot/internal/menu"
	"github.com/m3rciful/fitbot/internal/observability"
	"github.com/m3rciful/fitbot/internal/tgbot"
	"github.com/m3rciful/fitbot/internal/users"
)

// App holds the long-lived components of the bot.
type App struct {
	cfg       *config.Config
	registry  *users.Registry
	authority *tgbot.MembershipAuthority
	handlers  *tgbot.Handlers
	metrics   *observability.Server
	driver    string
}

// Options overrides pieces of the startup pipeline in tests.
type Options struct {
	LoggerInit func(*coreconfig.Config) error
	// Authority replaces the Bot API membership lookup.
	Authority gate.Authority
}

// Bootstrap initialises logging and storage and builds the app.
func Bootstrap(cfg *config.Config) (*App, error) {
	return New(cfg, Options{})
}

// New builds the app with opts.
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		LoggerInit: opts.LoggerInit,
	})
	if err != nil {
		return nil, err
	}

	store, err := openStore(res, cfg)
	if err != nil {
		return nil, err
	}
	ctx := logger.Background()
	registry, err := users.NewRegistry(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	cat, err := catalog.Load(cfg.Content.ProgramsFile, cfg.Content.AssetsDir)
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	logger.Info(ctx, logger.CompCatalog, "catalog.loaded",
		slog.Int("programs", len(cat.ListPrograms())),
		slog.Int("assets", len(cat.ListAssets())),
	)

	a := &App{cfg: cfg, registry: registry, driver: res.Driver}
	authority := opts.Authority
	if authority == nil {
		a.authority = tgbot.NewMembershipAuthority()
		authority = a.authority
	}
	g := gate.New(authority, cfg.Channel.ID, cfg.Channel.Timeout)

	channelURL := cfg.Channel.InviteURL
	if channelURL == "" {
		channelURL = menu.ChannelURL(cfg.Channel.ID)
	}
	r := menu.NewRouter(registry, g, cat, menu.Texts{
		ChannelURL:  channelURL,
		ContactURL:  cfg.Content.ContactURL,
		ContactName: cfg.Content.ContactName,
	})
	a.handlers = tgbot.NewHandlers(r, cfg.Stats.AdminOnly)
	return a, nil
}

func openStore(res *bootstrap.Result, cfg *config.Config) (users.Store, error) {
	if res.DB != nil {
		return users.NewSQLStore(res.DB), nil
	}
	store, err := users.NewFileStore(cfg.Database.FilePath)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	return store, nil
}

// TelegramRunOptions registers commands, callbacks and fallbacks and returns
// the options for coretelegram.RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()
	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: tgbot.OnAdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.TextRoutes(reg)...)

	return coretelegram.RunOptions{
		Config:            core,
		Registry:          reg,
		DispatcherOptions: sender.Options{OnResult: observability.RecordSend},
		Middlewares:       coretelegram.DefaultMiddlewares(core, tgbot.OnLimited),
		Routes:            routes,
		OnStart:           a.onStart,
		OnStop:            a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	if a.authority != nil {
		a.authority.Bind(rt.Bot)
	}
	a.metrics = observability.StartServer(a.cfg.Metrics.Address)
	logger.Info(ctx, logger.CompApp, "app.started",
		slog.String("driver", a.driver),
		slog.String("channel", a.cfg.Channel.ID),
		slog.Int("total", a.registry.Count()),
		slog.String("listen", a.cfg.Metrics.Address),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var errs []error
	if err := a.metrics.Shutdown(stopCtx); err != nil {
		errs = append(errs, fmt.Errorf("metrics: %w", err))
	}
	if err := a.registry.Close(); err != nil {
		errs = append(errs, fmt.Errorf("users store: %w", err))
	}
	return errors.Join(errs...)
}

