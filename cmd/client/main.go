package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophtodo/internal/buildinfo"
	"github.com/dmitrijs2005/gophtodo/internal/client/cli"
	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/client/config"
	"github.com/dmitrijs2005/gophtodo/internal/client/credential"
	"github.com/dmitrijs2005/gophtodo/internal/client/metrics"
	"github.com/dmitrijs2005/gophtodo/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtodo/internal/client/session"
	"github.com/dmitrijs2005/gophtodo/internal/client/todo"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, os.Args[1:], nil)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	repo, closeRepo, err := metadata.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Error(ctx, "closing storage failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
	}

	var creds credential.Store = credential.NewMemoryStore()
	if cfg.Credential.Persist {
		creds = credential.NewDurableStore(repo,
			credential.WithPassphrase(cfg.Credential.Passphrase),
			credential.WithLogger(logger),
		)
	}

	api, err := client.New(cfg.APIBaseURL, creds,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
		client.WithMetrics(mt),
	)
	if err != nil {
		return err
	}

	sm := session.New(api, creds,
		session.WithLogger(logger),
		session.WithMetrics(mt),
		session.WithTimeout(cfg.RequestTimeout),
	)
	sm.Start(ctx)

	var store todo.Store = todo.NewRemoteStore(api)
	if cfg.ListMode == config.ListModeLocal {
		store = todo.NewLocalStore(repo, todo.WithLocalLogger(logger))
	}
	list := todo.NewManager(store, todo.WithLogger(logger), todo.WithMetrics(mt))

	var watcher cli.Watcher
	if cfg.RevalidateInterval > 0 {
		watcher = session.NewWatcher(sm, api, cfg.RevalidateInterval, session.WithWatcherLogger(logger))
	}

	app := cli.NewApp(cli.Deps{
		Session:    sm,
		Todos:      list,
		Watcher:    watcher,
		Logger:     logger,
		RemoteList: cfg.ListMode == config.ListModeRemote,
	})
	app.Run(ctx)

	return nil
}
