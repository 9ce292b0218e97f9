// rootlined is the Rootline API server. It serves the import preview,
// merge, and person endpoints over HTTP and applies database migrations
// on startup.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/api"
	"github.com/rootlinehq/rootline/internal/config"
	"github.com/rootlinehq/rootline/internal/db"
	"github.com/rootlinehq/rootline/internal/db/migrations"
	"github.com/rootlinehq/rootline/internal/dbpool"
	"github.com/rootlinehq/rootline/internal/preview"
	"github.com/rootlinehq/rootline/internal/service"
	"github.com/rootlinehq/rootline/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	sessions := preview.NewMemoryStore(ctx, log, preview.WithTTL(cfg.SessionTTL))

	base := store.Base{Pool: pool, Log: log}
	personStore := store.NewPersonStore(base)
	mergeStore := store.NewMergeStore(base)
	auditStore := store.NewAuditStore(base)

	auditWorker := service.NewAuditWorker(auditStore, log, cfg.AuditQueueSize)
	go auditWorker.Run(ctx)

	deps := &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Imports:     service.NewImportService(sessions, auditWorker, log),
		Merges:      service.NewMergeService(mergeStore, auditWorker, log),
		Persons:     service.NewPersonService(personStore, log),
		Audit:       service.NewAuditService(auditStore, log),
		Sessions:    sessions,
		UserLookup:  &base,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(ctx, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("server starting")

		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("server stopped")

	return nil
}

func configureLogger(log *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "text" {
		log.SetFormatter(&logrus.TextFormatter{})
	}

	log.SetOutput(os.Stdout)
}
