package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/browser"
	"github.com/aretw0/canopy/pkg/adapters/file"
	httpAdapter "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// AppOptions adjusts how NewApp wires the Finder.
type AppOptions struct {
	// Hooks are merged after the built-in metrics and debug hooks.
	Hooks domain.LifecycleHooks
	// Streams enables the SSE event stream used by the HTTP server.
	Streams bool
	// Driver replaces the Playwright driver of the browser provider.
	Driver browser.Driver
}

// App is a fully wired Finder plus the resources it owns.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Finder   *canopy.Finder
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Streams  *httpAdapter.StreamManager

	// Tree is the loaded category tree, nil when a browser drives the run.
	Tree *memory.Tree

	closers []func() error
}

// NewApp builds the provider, report store, locker and metrics described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AppOptions) (_ *App, err error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	// 1. Provider
	provider, err := app.provider(cfg, opts)
	if err != nil {
		return nil, err
	}

	// 2. Hooks
	app.Metrics, err = observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	hooks := app.Metrics.Hooks().Merge(createDebugHooks(logger))
	if opts.Streams {
		app.Streams = httpAdapter.NewStreamManager(logger)
		hooks = hooks.Merge(app.Streams.Hooks())
	}
	hooks = hooks.Merge(opts.Hooks)

	finderOpts := []canopy.Option{
		canopy.WithLimits(cfg.Limits),
		canopy.WithLogger(logger),
		canopy.WithLifecycleHooks(hooks),
	}
	if cfg.Seed != nil {
		finderOpts = append(finderOpts, canopy.WithSeed(*cfg.Seed))
	}

	// 3. Persistence
	store, locker, err := app.persistence(ctx, cfg)
	if err != nil {
		return nil, err
	}
	finderOpts = append(finderOpts, canopy.WithReportStore(store))
	if locker != nil {
		finderOpts = append(finderOpts, canopy.WithSessionLock(locker, cfg.Session.ID, cfg.Session.LockTTL))
	}

	app.Finder, err = canopy.New(provider, finderOpts...)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) provider(cfg *config.Config, opts AppOptions) (ports.MenuProvider, error) {
	if cfg.Browser.URL != "" {
		driver := opts.Driver
		if driver == nil {
			pw, err := browser.NewPlaywrightDriver(browser.PlaywrightOptions{
				Headless: cfg.Browser.Headless,
				Timeout:  cfg.Browser.Timeout,
				Install:  cfg.Browser.Install,
			})
			if err != nil {
				return nil, err
			}
			driver = pw
		}

		var providerOpts []browser.Option
		providerOpts = append(providerOpts, browser.WithLogger(a.Logger))
		if cfg.Seed != nil {
			providerOpts = append(providerOpts, browser.WithSeed(*cfg.Seed))
		}
		p, err := browser.NewProvider(driver, cfg.Browser.URL, browser.Selectors{
			Children:  cfg.Browser.Children,
			Items:     cfg.Browser.Items,
			NoResults: cfg.Browser.NoResults,
			Dismiss:   cfg.Browser.Dismiss,
			Up:        cfg.Browser.Up,
		}, providerOpts...)
		if err != nil {
			return nil, errors.Join(err, driver.Close())
		}
		a.closers = append(a.closers, p.Close)
		a.Logger.Info("Browser provider ready", "url", cfg.Browser.URL)
		return p, nil
	}

	if cfg.Tree == "" {
		return nil, errors.New("no menu to search: set tree (a YAML/JSON category file) or browser.url")
	}
	var treeOpts []memory.TreeOption
	if cfg.Seed != nil {
		treeOpts = append(treeOpts, memory.WithSeed(*cfg.Seed))
	}
	tree, err := file.LoadTree(cfg.Tree, treeOpts...)
	if err != nil {
		return nil, err
	}
	a.Tree = tree
	a.Logger.Debug("Tree loaded", "path", cfg.Tree, "roots", len(tree.Roots()))
	return tree, nil
}

func (a *App) persistence(ctx context.Context, cfg *config.Config) (ports.ReportStore, ports.DistributedLocker, error) {
	if !cfg.Redis.Enabled() {
		return file.NewStore(cfg.Reports), nil, nil
	}

	store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithPrefix(cfg.Redis.Prefix),
		redis.WithTTL(cfg.Redis.TTL),
	)
	a.closers = append(a.closers, store.Close)
	if err := store.Ping(ctx); err != nil {
		return nil, nil, err
	}
	a.Logger.Debug("Redis store ready", "addr", cfg.Redis.Addr)

	if cfg.Session.ID == "" {
		return store, nil, nil
	}
	return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), nil
}

// Close releases the provider and store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
