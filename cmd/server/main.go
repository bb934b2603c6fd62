// Package main is the entry point for the archstudio web server. It wires
// configuration, the content backend, object storage and the lead archive
// pipeline into internal/server and blocks until SIGINT or SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pqui/archstudio/internal/backend"
	"github.com/pqui/archstudio/internal/config"
	"github.com/pqui/archstudio/internal/contact"
	"github.com/pqui/archstudio/internal/logging"
	"github.com/pqui/archstudio/internal/metrics"
	"github.com/pqui/archstudio/internal/processing"
	"github.com/pqui/archstudio/internal/queue"
	"github.com/pqui/archstudio/internal/s3storage"
	"github.com/pqui/archstudio/internal/server"
	"github.com/pqui/archstudio/internal/signing"
	"github.com/pqui/archstudio/internal/views"
	"github.com/pqui/archstudio/internal/viewstate"
	"github.com/pqui/archstudio/internal/worker"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	// Cancelled on SIGINT/SIGTERM; every long-running part below stops on it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := backend.Open(ctx, cfg.DataSource, log)
	if err != nil {
		log.Fatalf("open datasource: %v", err)
	}
	defer source.Close()

	var (
		images views.ImageResolver = s3storage.StaticURLs{Base: cfg.Storage.MediaBaseURL}
		leads  worker.LeadStore
	)
	if cfg.StorageEnabled() {
		store, err := s3storage.New(cfg.Storage)
		if err != nil {
			log.Fatalf("init storage: %v", err)
		}
		if err := store.EnsureBuckets(ctx); err != nil {
			log.Fatalf("ensure buckets: %v", err)
		}
		images, leads = store, store
	}

	// Leads go through Redis when it is configured; otherwise a small
	// in-process pool archives them.
	var dispatcher contact.Dispatcher
	if cfg.QueueEnabled() {
		client := asynq.NewClient(queue.RedisOpt(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
		defer client.Close()
		dispatcher = queue.NewDispatcher(client)
	} else {
		archiver := worker.NewArchiver(leads, log.WithField("component", "archiver"))
		pool := processing.New(archiver.Archive, cfg.Contact.Workers, log.WithField("component", "pool"))
		pool.Start(ctx)
		defer pool.Wait()
		dispatcher = pool
	}

	registry := viewstate.New(cfg.Views.TTL, cfg.Views.MaxActive, log.WithField("component", "views"))
	go registry.Run(ctx, sweepInterval)

	m := metrics.New(func() float64 { return float64(registry.Len()) })

	contactSvc := contact.NewService(contact.Options{
		Sink:       source,
		Dispatcher: dispatcher,
		Signer:     signing.NewSigner(cfg.Contact.Secret()),
		FormTTL:    cfg.Contact.FormTTL,
		Logger:     log.WithField("component", "contact"),
		Observe:    m.ObserveSubmission,
	})

	srv := server.New(server.Deps{
		Config:  cfg,
		Source:  source,
		Contact: contactSvc,
		Views:   registry,
		Images:  images,
		Metrics: m,
		Logger:  log,
	})

	log.WithFields(logrus.Fields{
		"address":    cfg.Server.Address,
		"datasource": cfg.DataSource.Driver,
		"queue":      cfg.QueueEnabled(),
		"storage":    cfg.StorageEnabled(),
	}).Info("starting archstudio")
	if err := srv.Run(ctx); err != nil {
		log.WithError(err).Error("server stopped")
		stop()
		os.Exit(1)
	}
}
