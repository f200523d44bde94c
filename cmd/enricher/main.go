package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/azeraturan/spiderfoot/internal/bus"
	"github.com/azeraturan/spiderfoot/internal/config"
	"github.com/azeraturan/spiderfoot/internal/logger"
	"github.com/azeraturan/spiderfoot/internal/notifier"
	"github.com/azeraturan/spiderfoot/internal/runner"
	"github.com/azeraturan/spiderfoot/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetDebug(cfg.Debug)

	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatalf("failed to open findings store: %v", err)
	}
	defer store.Close()

	// DSN comes from cfg.Database.DSN (ENV DATABASE_DSN overrides it in LoadConfig)
	var pg *storage.Postgres
	if cfg.Database.DSN != "" {
		pg, err = storage.NewPostgres(cfg.Database.DSN)
		if err != nil {
			logger.Fatalf("failed to connect postgres: %v", err)
		}
		defer pg.Close()

		if err := pg.Migrate(); err != nil {
			logger.Fatalf("migrations failed: %v", err)
		}
	}

	b := bus.New()
	events := b.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			if err := store.SaveEvent(ev); err != nil {
				logger.Errorf("store event %s: %v", ev.Type, err)
			}
			if pg != nil {
				if err := pg.AddEvent(ev); err != nil {
					logger.Errorf("queue event %s: %v", ev.Type, err)
				}
			}
		}
	}()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.Webhook.Enabled && pg != nil {
		go notifier.NewWorker(pg, notifier.NewWebhook(cfg.Webhook.URL)).Run(workerCtx)
	}

	r := runner.New(cfg, b)

	// Ctrl+C stops between addresses, not mid-query
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Infof("stop requested, finishing current query")
		r.CancelRunning()
	}()

	run, err := r.RunOnce()
	if err != nil {
		logger.Fatalf("enrichment failed: %v", err)
	}

	b.Unsubscribe(events)
	wg.Wait()

	if err := store.AddRun(run); err != nil {
		logger.Errorf("store run summary: %v", err)
	}

	logger.Infof(
		"run finished: name=%q targets=%d findings=%d",
		run.Name,
		run.TargetsCount,
		run.Findings,
	)
}
