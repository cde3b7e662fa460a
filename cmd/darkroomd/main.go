package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"darkroom/internal/config"
	"darkroom/internal/daemon"
	"darkroom/internal/ledger"
	"darkroom/internal/logging"
	"darkroom/internal/migrate"
	"darkroom/internal/photos"
	"darkroom/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := ledger.Open(cfg)
	if err != nil {
		logger.Error("open ledger", logging.Error(err))
		return
	}

	source := photos.NewHTTPSource(cfg.Source)
	target := photos.NewDirTarget(cfg.Paths.TargetDir)
	pipe := pipeline.New(source, target, logger)
	manager := migrate.NewManager(cfg, store, pipe, logger)

	d, err := daemon.New(cfg, store, manager, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("darkroomd shutting down")
}
