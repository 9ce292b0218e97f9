package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// link represents a relationship row read from the legacy SQLite database.
// The legacy app stores one undirected row per spouse pair; parent links are
// directed (relative_id is the parent of individual_id).
type link struct {
	IndividualID int64
	RelativeID   int64
	Kind         string
	Created      string
}

// readLinks reads all relationship links from the legacy SQLite database.
func readLinks(ctx context.Context, db *sql.DB) ([]link, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT individual_id, relative_id, kind, created FROM links`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.IndividualID, &l.RelativeID, &l.Kind, &l.Created); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// insertLinks inserts relationship rows, skipping links whose endpoints are
// missing, self-referential, or of an unknown kind. Spouse links expand to
// two directed rows to match the Rootline schema. Returns the number of rows
// actually inserted (ON CONFLICT DO NOTHING absorbs duplicates and second
// parents of the same kind).
func insertLinks(ctx context.Context, tx pgx.Tx, links []link, ids map[int64]string) (int, []skippedLink) {
	var skipped []skippedLink
	inserted := 0

	for i := 0; i < len(links); i++ {
		l := links[i]
		personID, ok := ids[l.IndividualID]
		if !ok {
			skipped = append(skipped, skippedLink{legacyRef(l.IndividualID), legacyRef(l.RelativeID), l.Kind, "person not found"})
			continue
		}
		relativeID, ok := ids[l.RelativeID]
		if !ok {
			skipped = append(skipped, skippedLink{legacyRef(l.IndividualID), legacyRef(l.RelativeID), l.Kind, "relative not found"})
			continue
		}
		if personID == relativeID {
			skipped = append(skipped, skippedLink{legacyRef(l.IndividualID), legacyRef(l.RelativeID), l.Kind, "self-referential link"})
			continue
		}

		switch l.Kind {
		case "mother", "father", "spouse":
		default:
			skipped = append(skipped, skippedLink{legacyRef(l.IndividualID), legacyRef(l.RelativeID), l.Kind, "unknown kind"})
			continue
		}

		createdAt := parseTime(l.Created)
		pairs := [][2]string{{personID, relativeID}}
		if l.Kind == "spouse" {
			pairs = append(pairs, [2]string{relativeID, personID})
		}

		for _, pair := range pairs {
			tag, err := tx.Exec(ctx,
				`INSERT INTO relationships (person_id, relative_id, kind, created_at)
				 VALUES ($1,$2,$3,$4)
				 ON CONFLICT DO NOTHING`,
				pair[0], pair[1], l.Kind, createdAt,
			)
			if err != nil {
				slog.Warn("link insert failed, skipping", "person", l.IndividualID, "relative", l.RelativeID, "error", err)
				skipped = append(skipped, skippedLink{legacyRef(l.IndividualID), legacyRef(l.RelativeID), l.Kind, err.Error()})
				break
			}
			inserted += int(tag.RowsAffected())
		}
	}
	return inserted, skipped
}

// legacyRef formats a legacy integer ID for report output.
func legacyRef(id int64) string {
	return fmt.Sprintf("#%d", id)
}

// normalizeSex maps legacy sex markers onto the GEDCOM-style single letters
// the Rootline schema stores. Unknown values collapse to empty.
func normalizeSex(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	switch s.String {
	case "M", "male", "Male":
		return "M"
	case "F", "female", "Female":
		return "F"
	default:
		return ""
	}
}
