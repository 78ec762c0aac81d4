package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/cashbook/internal/client/connectivity"
	"github.com/iudanet/cashbook/internal/client/data"
	"github.com/iudanet/cashbook/internal/client/iocli"
	"github.com/iudanet/cashbook/internal/client/notify"
	"github.com/iudanet/cashbook/internal/client/queue"
	"github.com/iudanet/cashbook/internal/client/storage/boltdb"
	"github.com/iudanet/cashbook/internal/client/sync"
	"github.com/iudanet/cashbook/internal/config"
	"github.com/iudanet/cashbook/internal/server/storage/sqlite"
)

// App wires the local store, the authoritative store and the sync engine
// for the lifetime of one command.
type App struct {
	cfg      *config.Config
	io       iocli.IO
	logger   *slog.Logger
	local    *boltdb.Storage
	remote   *sqlite.Storage
	monitor  *connectivity.Monitor
	marker   *connectivity.MarkerWatcher
	engine   *sync.Engine
	resolver *sync.Resolver
	data     data.Service
}

// openApp открывает хранилища и собирает движок синхронизации
func openApp(ctx context.Context, cfg *config.Config, io iocli.IO, logger *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, io: io, logger: logger}

	local, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database %s: %w", cfg.DBPath, err)
	}
	app.local = local

	remoteStore, err := sqlite.New(ctx, cfg.RemoteDBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to open remote database %s: %w", cfg.RemoteDBPath, err)
	}
	app.remote = remoteStore

	// Маркер офлайн-режима решает, есть ли связь
	app.monitor = connectivity.NewMonitor(true, logger)
	if cfg.OfflineMarker != "" {
		marker, err := connectivity.NewMarkerWatcher(cfg.OfflineMarker, app.monitor, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		if err := marker.Start(); err != nil {
			app.Close()
			return nil, err
		}
		app.marker = marker
	}

	engine, err := sync.NewEngine(ctx, sync.Config{
		Queue:         queue.New(local, logger),
		Remote:        remoteStore,
		Domain:        local,
		Metadata:      local,
		Connectivity:  app.monitor,
		Sink:          notify.Multi{notify.NewLogSink(logger), notify.NewWriterSink(io)},
		Logger:        logger,
		RemoteTimeout: cfg.RemoteTimeout,
		RetryBase:     cfg.RetryBase,
		RetryCap:      cfg.RetryCap,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.engine = engine
	app.resolver = sync.NewResolver(engine, logger)
	app.data = data.NewService(local, engine, logger)

	return app, nil
}

// Close releases everything opened by openApp
func (a *App) Close() {
	var errs []error
	if a.marker != nil {
		errs = append(errs, a.marker.Stop())
	}
	if a.monitor != nil {
		a.monitor.Close()
	}
	if a.remote != nil {
		errs = append(errs, a.remote.Close())
	}
	if a.local != nil {
		errs = append(errs, a.local.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("failed to close application", "error", err)
	}
}
