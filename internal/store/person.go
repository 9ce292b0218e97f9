package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rootlinehq/rootline/internal/models"
)

// PersonStore provides read access to durable person records and their
// relationship edges, plus the write operations the apply-import path
// needs.
type PersonStore struct {
	Base
}

// NewPersonStore creates a new PersonStore.
func NewPersonStore(base Base) *PersonStore {
	return &PersonStore{Base: base}
}

// GetPerson returns one person by id.
func (s *PersonStore) GetPerson(ctx context.Context, personID uuid.UUID) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		"SELECT "+personColumns+" FROM persons WHERE id = $1", personID)

	p, err := scanPerson(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrPersonNotFound
		}

		return nil, fmt.Errorf("scanning person: %w", err)
	}

	return p, nil
}

// CreatePerson inserts a new person record and returns it.
func (s *PersonStore) CreatePerson(ctx context.Context, p models.Person) (*models.Person, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`INSERT INTO persons (owner_id, given_name, surname, sex,
			birth_date, birth_place, death_date, death_place, protected)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+personColumns,
		p.OwnerID, p.GivenName, p.Surname, p.Sex,
		p.BirthDate, p.BirthPlace, p.DeathDate, p.DeathPlace, p.Protected,
	)

	created, err := scanPerson(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("scanning created person: %w", err)
	}

	return created, nil
}

// ListRelationships returns every directed edge incident to the person,
// both outgoing (person_id) and incoming (relative_id).
func (s *PersonStore) ListRelationships(ctx context.Context, personID uuid.UUID) ([]models.Relationship, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		"SELECT "+relationshipColumns+` FROM relationships
		WHERE person_id = $1 OR relative_id = $1
		ORDER BY kind, person_id, relative_id`, personID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.Relationship
	for rows.Next() {
		r, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}

		rels = append(rels, r)
	}

	return rels, rows.Err()
}

// CreateRelationship inserts one directed edge. A spouse link must be
// written as two calls, one per direction.
func (s *PersonStore) CreateRelationship(ctx context.Context, rel models.Relationship) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.Pool.Exec(ctx,
		"INSERT INTO relationships (person_id, relative_id, kind) VALUES ($1, $2, $3)",
		rel.PersonID, rel.RelativeID, rel.Kind,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateKey
		}

		return fmt.Errorf("inserting relationship: %w", err)
	}

	return nil
}
