package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"money-tracking/internal/config"
	"money-tracking/internal/database"
	"money-tracking/internal/jobs"
	"money-tracking/internal/ledger"
	"money-tracking/internal/notify"
	"money-tracking/internal/rates"
	"money-tracking/internal/router"
)

func main() {
	// load configuration
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if cfg.Database.Driver == "sqlite" {
		if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
			log.Fatalf("create data dir: %v", err)
		}
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	logger := log.Default()

	// init database
	db, err := database.InitWithLogLevel(cfg.Database, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer database.Close(db)

	// run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	notifier := notify.NewLogNotifier(logger, cfg.Ledger.ReminderLead)
	svc := ledger.New(db,
		ledger.WithNotifier(notifier),
		ledger.WithLimits(cfg.Ledger),
	)
	if n, err := svc.RescheduleReminders(context.Background()); err != nil {
		log.Printf("reschedule reminders: %v", err)
	} else if n > 0 {
		log.Printf("rescheduled %d reminder(s)", n)
	}

	// background sweeps
	scheduler := jobs.New(time.Minute)
	if err := scheduler.AddExpirySweep(cfg.Ledger.ExpirySweep, svc); err != nil {
		log.Fatalf("schedule jobs: %v", err)
	}
	if err := scheduler.AddReminders("@every 1m", notifier); err != nil {
		log.Fatalf("schedule jobs: %v", err)
	}
	// flag plans that expired while the app was closed
	jobs.RunExpirySweep(context.Background(), svc, time.Minute)
	scheduler.Start()

	// setup router
	r := router.SetupRouter(cfg, router.Deps{
		DB:     db,
		Ledger: svc,
		Rates:  rates.New(cfg.Rates.BaseURL, cfg.Rates.TTL, nil),
		Logger: logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	scheduler.Stop(ctx)
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
