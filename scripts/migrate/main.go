// Package main provides a standalone migration script that imports a family
// tree from a legacy desktop SQLite database into the Rootline PostgreSQL
// schema, owned by a single user.
//
// Usage:
//
//	SQLITE_PATH=/path/to/tree.sqlite DATABASE_URL=postgres://... go run ./scripts/migrate
package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite"
)

// config holds environment-driven migration settings.
type config struct {
	SQLitePath  string
	DatabaseURL string
	UserID      string
	UserLabel   string
	DryRun      bool
}

// skippedLink records a relationship that was skipped during migration.
type skippedLink struct {
	PersonID   string
	RelativeID string
	Kind       string
	Reason     string
}

// report holds the final migration summary.
type report struct {
	Source          string
	Target          string
	UserLabel       string
	UserID          string
	PersonsRead     int
	PersonsInserted int
	PersonsVerified int
	LinksRead       int
	LinksInserted   int
	LinksSkipped    int
	LinksVerified   int
	SkippedLinks    []skippedLink
	SpotChecks      []string
	Duration        time.Duration
	DryRun          bool
	Err             error
}

func main() {
	cfg := loadConfig()
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	slog.Info("starting migration",
		"sqlite", cfg.SQLitePath,
		"user", cfg.UserLabel,
		"dry_run", cfg.DryRun,
	)

	start := time.Now()
	r, err := runMigration(context.Background(), cfg)
	r.Duration = time.Since(start)
	if err != nil {
		r.Err = err
		slog.Error("migration failed", "error", err)
	}
	printReport(&r)
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig reads configuration from environment variables.
func loadConfig() config {
	c := config{
		SQLitePath:  envOr("SQLITE_PATH", "tree.sqlite"),
		DatabaseURL: envOr("DATABASE_URL", ""),
		UserLabel:   envOr("USER_LABEL", "legacy-import"),
		DryRun:      os.Getenv("DRY_RUN") == "true" || os.Getenv("DRY_RUN") == "1",
	}
	if uid := os.Getenv("USER_ID"); uid != "" {
		c.UserID = uid
	} else {
		c.UserID = deterministicUUID(c.UserLabel)
	}
	return c
}

// deterministicUUID generates a UUID v5-like deterministic UUID from a name
// using SHA-256 and formatting as a UUID string.
func deterministicUUID(name string) string {
	h := sha256.Sum256([]byte("rootline:" + name))
	// Set version 5 and variant bits.
	h[6] = (h[6] & 0x0f) | 0x50
	h[8] = (h[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		h[0:4], h[4:6], h[6:8], h[8:10], h[10:16])
}

// ensureUser creates the owning user row if it doesn't already exist. The
// generated API key hash is deterministic so re-runs stay idempotent; rotate
// it through the normal key flow before handing the account to a person.
func ensureUser(ctx context.Context, tx pgx.Tx, userID, label string) error {
	slog.Info("ensuring user exists", "id", userID, "label", label)
	hash := sha256.Sum256([]byte("migration-" + userID))
	apiKeyHash := fmt.Sprintf("%x", hash)
	_, err := tx.Exec(ctx,
		`INSERT INTO users (id, api_key_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO NOTHING`,
		userID, apiKeyHash)
	return err
}

// runMigration executes the full migration pipeline.
//
//nolint:funlen // Migration pipeline is sequential; splitting would hurt readability.
func runMigration(ctx context.Context, cfg config) (report, error) {
	r := report{
		Source:    cfg.SQLitePath,
		Target:    sanitizeURL(cfg.DatabaseURL),
		UserLabel: cfg.UserLabel,
		UserID:    cfg.UserID,
		DryRun:    cfg.DryRun,
	}

	// Open SQLite (read-only).
	lite, err := sql.Open("sqlite", cfg.SQLitePath+"?mode=ro")
	if err != nil {
		return r, fmt.Errorf("open sqlite: %w", err)
	}
	defer lite.Close()

	// Read persons and relationship links from SQLite.
	persons, err := readPersons(ctx, lite)
	if err != nil {
		return r, fmt.Errorf("read persons: %w", err)
	}
	r.PersonsRead = len(persons)
	slog.Info("read persons from sqlite", "count", r.PersonsRead)

	links, err := readLinks(ctx, lite)
	if err != nil {
		return r, fmt.Errorf("read links: %w", err)
	}
	r.LinksRead = len(links)
	slog.Info("read links from sqlite", "count", r.LinksRead)

	if cfg.DryRun {
		slog.Info("dry run — skipping PostgreSQL writes")
		r.PersonsInserted = r.PersonsRead
		r.LinksInserted = r.LinksRead
		return r, nil
	}

	// Connect to PostgreSQL and run in a transaction.
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return r, fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return r, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	if err := ensureUser(ctx, tx, cfg.UserID, cfg.UserLabel); err != nil {
		return r, fmt.Errorf("ensure user: %w", err)
	}

	ids := buildIDMap(cfg.UserID, persons)
	if err := insertPersons(ctx, tx, persons, cfg.UserID, ids); err != nil {
		return r, fmt.Errorf("insert persons: %w", err)
	}
	r.PersonsInserted = len(persons)
	slog.Info("inserted persons", "count", r.PersonsInserted)

	inserted, skipped := insertLinks(ctx, tx, links, ids)
	r.LinksInserted = inserted
	r.LinksSkipped = len(skipped)
	r.SkippedLinks = skipped
	slog.Info("inserted links", "count", r.LinksInserted, "skipped", r.LinksSkipped)

	// Verify counts.
	r.PersonsVerified, err = countRows(ctx, tx, "persons", cfg.UserID)
	if err != nil {
		return r, fmt.Errorf("verify person count: %w", err)
	}
	r.LinksVerified, err = countRows(ctx, tx, "relationships", cfg.UserID)
	if err != nil {
		return r, fmt.Errorf("verify link count: %w", err)
	}

	// Spot-check random persons.
	r.SpotChecks, err = spotCheck(ctx, tx, persons, ids)
	if err != nil {
		return r, fmt.Errorf("spot check: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r, fmt.Errorf("commit: %w", err)
	}
	slog.Info("transaction committed")
	return r, nil
}
