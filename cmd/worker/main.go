// Package main runs the asynq worker that archives contact leads to object
// storage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/queue"
	"github.com/pqui/archstudio/internal/s3storage"
	"github.com/pqui/archstudio/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if !cfg.QueueEnabled() {
		log.Fatal("redis.addr is not set; the server archives leads in-process")
	}
	if !cfg.StorageEnabled() {
		log.Fatal("storage.endpoint is not set; there is nowhere to archive leads")
	}

	store, err := s3storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		log.Fatalf("ensure buckets: %v", err)
	}

	srv := asynq.NewServer(queue.RedisOpt(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), asynq.Config{
		Concurrency: cfg.Contact.Workers,
		Logger:      log.WithField("component", "asynq"),
	})
	archiver := worker.NewArchiver(store, log.WithField("component", "archiver"))

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	log.WithField("concurrency", cfg.Contact.Workers).Info("worker started")
	if err := srv.Run(archiver.Handler()); err != nil {
		log.WithError(err).Error("worker stopped")
		os.Exit(1)
	}
}
