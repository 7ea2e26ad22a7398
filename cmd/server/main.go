package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"badgereader/internal/badge"
	"badgereader/internal/db"
	"badgereader/internal/engine"
	"badgereader/internal/ledger"
	"badgereader/internal/notify"
	"badgereader/internal/platform/config"
	cryptoutil "badgereader/internal/platform/crypto"
	"badgereader/internal/platform/email"
	"badgereader/internal/platform/jobs"
	"badgereader/internal/platform/metrics"
	"badgereader/internal/report"
	"badgereader/internal/share"
	"badgereader/internal/shift"
	"badgereader/internal/storage"
	"badgereader/internal/storage/filelog"
	"badgereader/internal/storage/pglog"
	"badgereader/internal/storage/sheetlog"
	"badgereader/internal/transport/http/handlers/admin"
	"badgereader/internal/transport/http/handlers/swipe"
	"badgereader/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	directory, err := badge.Load(cfg.RosterFile)
	if err != nil {
		log.Fatalf("roster load failed: %v", err)
	}
	log.Printf("loaded %d badges and %d people", directory.BadgeCount(), directory.PersonCount())

	store, err := share.NewDir(cfg.ShareDir)
	if err != nil {
		log.Fatalf("share mount not usable: %v", err)
	}

	var swipeLog storage.SwipeLogger
	switch cfg.StorageBackend {
	case config.BackendFile:
		swipeLog = filelog.New(store, cfg.SwipeLogFile, directory)
	case config.BackendSheet:
		swipeLog = sheetlog.New(store, cfg.SwipeLogSheet, directory)
	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()
		pg := pglog.New(pool, directory)
		if err := pg.Init(ctx); err != nil {
			log.Fatalf("db init failed: %v", err)
		}
		swipeLog = pg
	}

	if err := swipeLog.CheckHealth(ctx); err != nil {
		log.Fatalf("swipe log not usable: %v", err)
	}

	book := ledger.NewBook(store, cfg.TargetShiftMinutes)
	states := shift.NewStateTable(cfg.DebounceWindow, cfg.SwipeBuffer)
	eng := engine.New(directory, states, swipeLog, book)
	if err := eng.Restore(ctx); err != nil {
		log.Fatalf("state restore failed: %v", err)
	}

	var notifier notify.Notifier = notify.Noop{}
	if cfg.EmailEnabled {
		notifier = notify.NewEmail(email.New(cfg), cfg.EmailFrom, cfg.NotificationEmails)
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}
	generator := report.NewGenerator(book, directory, cfg.ReportDir, cryptoSvc)

	jobSvc := jobs.New()
	jobSvc.Start(ctx, cfg.ReportInterval, generator.GenerateAll)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.BodyLimit(1 << 20))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := eng.CheckHealth(ctx); err != nil {
			http.Error(w, "storage not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	swipeHandler := swipe.NewHandler(eng, notifier, collector)
	router.Group(func(r chi.Router) {
		r.Use(middleware.AccessKey(cfg))
		r.Post("/", swipeHandler.HandleSwipe)
	})
	router.Get("/", swipeHandler.HandleInfo)

	adminHandler := admin.NewHandler(eng, directory, book, store, generator, collector)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWTSecret))
		r.Get("/status", adminHandler.HandleStatus)
		r.Get("/metrics", adminHandler.HandleMetrics)
		r.Get("/documents", adminHandler.HandleDocuments)
		r.Post("/reports/monthly", adminHandler.HandleMonthlyReport)
	})

	log.Printf("badge reader server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
