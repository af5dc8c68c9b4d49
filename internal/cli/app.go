// Package cli wires configuration into a running controller for the
// tendril command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/adapters/file"
	httpAdapter "github.com/aretw0/tendril/pkg/adapters/http"
	"github.com/aretw0/tendril/pkg/adapters/memory"
	"github.com/aretw0/tendril/pkg/adapters/process"
	"github.com/aretw0/tendril/pkg/adapters/redis"
	"github.com/aretw0/tendril/pkg/adapters/sim"
	"github.com/aretw0/tendril/pkg/adapters/sqlite"
	"github.com/aretw0/tendril/pkg/observability"
	"github.com/aretw0/tendril/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// App is a controller with its adapters, built from a Config.
type App struct {
	Controller *tendril.Controller
	Server     *httpAdapter.Server
	Metrics    *observability.Metrics

	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

// Build creates every adapter the configuration selects and the controller
// on top of them. Extra options are applied last.
func Build(cfg config.Config, logger *slog.Logger, extra ...tendril.Option) (*App, error) {
	app := &App{
		cfg:     cfg,
		logger:  logger,
		Metrics: observability.NewMetrics(prometheus.NewRegistry()),
	}

	opts := []tendril.Option{
		tendril.WithLogger(logger),
		tendril.WithHooks(createLogHooks(logger).Merge(app.Metrics.Hooks())),
		tendril.WithDrivers(app.drivers()),
		tendril.WithTickPeriod(cfg.Loop.Tick),
		tendril.WithSyncPeriod(cfg.Loop.Sync),
		tendril.WithFeedPeriod(cfg.Loop.Feed),
	}

	persistence, err := app.persistence()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	opts = append(opts, persistence...)

	if cfg.HTTP.Addr != "" {
		app.Server = httpAdapter.NewServer(
			httpAdapter.WithLogger(logger.With("component", "http")),
			httpAdapter.WithMetrics(app.Metrics.Handler()),
			httpAdapter.WithVersion(tendril.Version),
		)
		opts = append(opts,
			tendril.WithUpdateSource(app.Server.Updates()),
			tendril.WithSnapshotSink(app.Server),
		)
	}

	ctrl, err := tendril.New(append(opts, extra...)...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Controller = ctrl
	return app, nil
}

// persistence selects the store, update sources, sinks and locker. The file
// update source and sink stay on for the sqlite and file backends since the
// client exchanges documents through the data directory.
func (a *App) persistence() ([]tendril.Option, error) {
	cfg := a.cfg
	switch cfg.Store.Backend {
	case config.BackendFile:
		return []tendril.Option{
			tendril.WithStore(file.NewStore(cfg.DataDir)),
			tendril.WithUpdateSource(file.NewUpdateSource(cfg.DataDir)),
			tendril.WithSnapshotSink(file.NewSink(cfg.DataDir)),
		}, nil

	case config.BackendMemory:
		return []tendril.Option{
			tendril.WithStore(memory.NewStore()),
			tendril.WithSnapshotSink(memory.NewSink()),
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return []tendril.Option{
			tendril.WithStore(store),
			tendril.WithUpdateSource(file.NewUpdateSource(cfg.DataDir)),
			tendril.WithSnapshotSink(file.NewSink(cfg.DataDir)),
		}, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		client := redis.NewClient(rc.Addr, rc.Password, rc.DB)
		a.closers = append(a.closers, client)
		return []tendril.Option{
			tendril.WithStore(redis.NewFromClient(client, redis.WithPrefix(rc.Prefix))),
			tendril.WithUpdateSource(redis.NewUpdateSource(client, rc.Prefix)),
			tendril.WithSnapshotSink(redis.NewSink(client, rc.Prefix)),
			tendril.WithLocker(redis.NewLocker(client, rc.Prefix, redis.WithLockerLogger(a.logger)), cfg.Lock.Key, cfg.Lock.TTL),
		}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// drivers returns simulated peripherals in sim mode. Players use the
// configured command when it is installed; in sim mode a missing command
// falls back to a simulated player.
func (a *App) drivers() tendril.Drivers {
	var d tendril.Drivers
	simulated := a.cfg.Hardware == config.HardwareSim
	if simulated {
		d.GPIO = sim.NewGPIO()
		d.ADC = sim.NewADC()
	}
	d.Video = a.player("video", a.cfg.Media.Video, simulated)
	d.Audio = a.player("audio", a.cfg.Media.Audio, simulated)
	return d
}

func (a *App) player(name string, cmd config.PlayerCommand, simulated bool) ports.MediaBackend {
	pc := process.Config{Command: cmd.Command, Args: cmd.Args}
	if err := pc.Validate(); err != nil {
		if simulated {
			a.logger.Info("Using simulated player", "player", name, "reason", err)
			return sim.NewMedia()
		}
		a.logger.Warn("Player disabled", "player", name, "err", err)
		return nil
	}
	b, err := process.NewBackend(pc, process.WithLogger(a.logger.With("player", name)))
	if err != nil {
		a.logger.Warn("Player disabled", "player", name, "err", err)
		return nil
	}
	return b
}

// Run drives the controller, and the HTTP server when configured, until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Controller.Run(gctx)
	})
	if a.Server != nil {
		g.Go(func() error {
			return a.Server.ListenAndServe(gctx, a.cfg.HTTP.Addr)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases database connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
