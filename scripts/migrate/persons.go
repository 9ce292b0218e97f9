package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// person represents an individual read from the legacy SQLite database.
type person struct {
	ID         int64
	GivenName  string
	Surname    string
	Sex        sql.NullString
	BirthDate  sql.NullString
	BirthPlace sql.NullString
	DeathDate  sql.NullString
	DeathPlace sql.NullString
	Created    string
	Updated    string
}

// readPersons reads all individuals from the legacy SQLite database.
func readPersons(ctx context.Context, db *sql.DB) ([]person, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, given_name, surname, sex, birth_date, birth_place,
		        death_date, death_place, created, updated
		 FROM individuals`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []person
	for rows.Next() {
		var p person
		if err := rows.Scan(&p.ID, &p.GivenName, &p.Surname, &p.Sex,
			&p.BirthDate, &p.BirthPlace, &p.DeathDate, &p.DeathPlace,
			&p.Created, &p.Updated); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

// insertPersons batch-inserts persons into PostgreSQL in groups of 100.
func insertPersons(ctx context.Context, tx pgx.Tx, persons []person, userID string, ids map[int64]string) error {
	const batchSize = 100
	for i := 0; i < len(persons); i += batchSize {
		end := min(i+batchSize, len(persons))
		if err := insertPersonBatch(ctx, tx, persons[i:end], userID, ids); err != nil {
			return fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// insertPersonBatch inserts a single batch of persons.
func insertPersonBatch(ctx context.Context, tx pgx.Tx, batch []person, userID string, ids map[int64]string) error {
	for i := range batch {
		p := &batch[i]
		createdAt := parseTime(p.Created)
		updatedAt := parseTime(p.Updated)

		_, err := tx.Exec(ctx,
			`INSERT INTO persons (id, owner_id, given_name, surname, sex,
			    birth_date, birth_place, death_date, death_place,
			    created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			 ON CONFLICT (id) DO NOTHING`,
			ids[p.ID], userID, p.GivenName, p.Surname, normalizeSex(p.Sex),
			strOr(p.BirthDate, ""), strOr(p.BirthPlace, ""),
			strOr(p.DeathDate, ""), strOr(p.DeathPlace, ""),
			createdAt, updatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}
	return nil
}

// buildIDMap assigns a deterministic UUID to every legacy person ID so that
// re-running the migration maps each individual to the same row.
func buildIDMap(userID string, persons []person) map[int64]string {
	m := make(map[int64]string, len(persons))
	for i := range persons {
		m[persons[i].ID] = deterministicUUID(fmt.Sprintf("%s/person/%d", userID, persons[i].ID))
	}
	return m
}
