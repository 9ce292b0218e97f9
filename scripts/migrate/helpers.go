package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

// parseTime parses a SQLite datetime string to time.Time.
func parseTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		slog.Warn("unparseable time, using now", "value", s)
		return time.Now()
	}
	return t.UTC()
}

// strOr returns the string value of a nullable column or a default.
func strOr(s sql.NullString, def string) string {
	if !s.Valid {
		return def
	}
	return s.String
}

// sanitizeURL removes credentials from a database URL for display.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparseable URL]"
	}
	u.User = nil
	return u.String()
}

// envOr returns the environment variable value or a default.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// allowedTables is the set of table names that countRows may query.
var allowedTables = map[string]bool{
	"persons":       true,
	"relationships": true,
}

// countRows counts rows in a table belonging to a given user. The
// relationships table carries no owner column, so it counts through the
// owning side of each edge.
func countRows(ctx context.Context, tx pgx.Tx, table, userID string) (int, error) {
	if !allowedTables[table] {
		return 0, fmt.Errorf("disallowed table name: %s", table)
	}

	var query string
	switch table {
	case "persons":
		query = `SELECT count(*) FROM persons WHERE owner_id = $1`
	case "relationships":
		query = `SELECT count(*) FROM relationships r
		         JOIN persons p ON p.id = r.person_id
		         WHERE p.owner_id = $1`
	}

	var count int
	err := tx.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// spotCheck verifies 5 random persons match between SQLite and PostgreSQL.
//
//nolint:unparam // error return kept for future use when spot-check failures become fatal.
func spotCheck(ctx context.Context, tx pgx.Tx, persons []person, ids map[int64]string) ([]string, error) {
	if len(persons) == 0 {
		return nil, nil
	}
	count := min(5, len(persons))
	indices := rand.Perm(len(persons))[:count]
	var checks []string

	for _, idx := range indices {
		p := persons[idx]
		var pgGiven, pgSurname, pgSex string
		err := tx.QueryRow(ctx,
			`SELECT given_name, surname, sex FROM persons WHERE id = $1`,
			ids[p.ID],
		).Scan(&pgGiven, &pgSurname, &pgSex)
		if err != nil {
			checks = append(checks, fmt.Sprintf("❌ #%d — not found in postgres: %v", p.ID, err))
			continue
		}
		if pgGiven == p.GivenName && pgSurname == p.Surname && pgSex == normalizeSex(p.Sex) {
			checks = append(checks, fmt.Sprintf("✅ #%d — %s %s (%s)", p.ID, pgGiven, pgSurname, pgSex))
		} else {
			checks = append(checks, fmt.Sprintf("❌ #%d — mismatch: pg(%s/%s/%s) vs sqlite(%s/%s/%s)",
				p.ID, pgGiven, pgSurname, pgSex, p.GivenName, p.Surname, normalizeSex(p.Sex)))
		}
	}
	return checks, nil
}

// printReport outputs the final migration summary.
func printReport(r *report) {
	personStatus := statusIcon(r.PersonsRead, r.PersonsInserted, r.PersonsVerified)
	linkStatus := statusIcon(r.LinksInserted, r.LinksInserted, r.LinksVerified)

	fmt.Println()
	fmt.Println("=== Rootline Migration Report ===")
	if r.DryRun {
		fmt.Println("MODE: DRY RUN (no changes made)")
	}
	fmt.Printf("Source: %s\n", r.Source)
	fmt.Printf("Target: %s\n", r.Target)
	fmt.Printf("User: %s (%s)\n", r.UserLabel, r.UserID)
	fmt.Println()
	fmt.Printf("Persons: %d read → %d inserted → %d verified %s\n",
		r.PersonsRead, r.PersonsInserted, r.PersonsVerified, personStatus)
	if r.LinksSkipped > 0 {
		fmt.Printf("Links: %d read → %d inserted (%d skipped) → %d verified %s\n",
			r.LinksRead, r.LinksInserted, r.LinksSkipped, r.LinksVerified, linkStatus)
	} else {
		fmt.Printf("Links: %d read → %d inserted → %d verified %s\n",
			r.LinksRead, r.LinksInserted, r.LinksVerified, linkStatus)
	}

	if len(r.SkippedLinks) > 0 {
		fmt.Println("\nSkipped links:")
		for _, s := range r.SkippedLinks {
			fmt.Printf("  - %s → %s [%s] (reason: %s)\n", s.PersonID, s.RelativeID, s.Kind, s.Reason)
		}
	}

	if len(r.SpotChecks) > 0 {
		fmt.Println("\nSpot checks:")
		for _, c := range r.SpotChecks {
			fmt.Printf("  %s\n", c)
		}
	}

	fmt.Printf("\nDuration: %.1fs\n", r.Duration.Seconds())
	if r.Err != nil {
		fmt.Printf("Status: FAILED — %v\n", r.Err)
	} else {
		fmt.Println("Status: SUCCESS")
	}
}

// statusIcon returns a check or X based on count match.
func statusIcon(expected, inserted, verified int) string {
	if verified == 0 && inserted > 0 {
		return "⏳"
	}
	if expected == inserted && inserted == verified {
		return "✅"
	}
	if inserted == verified {
		return "✅"
	}
	return "❌"
}
