package store

import (
	"github.com/rootlinehq/rootline/internal/models"
)

// personColumns lists the columns selected for person queries.
const personColumns = `id, owner_id, given_name, surname, sex,
	birth_date, birth_place, death_date, death_place,
	protected, merged_into, created_at, updated_at`

// relationshipColumns lists the columns selected for relationship queries.
const relationshipColumns = `person_id, relative_id, kind, created_at`

// scanPerson scans a single row into a models.Person.
func scanPerson(scan func(dest ...any) error) (*models.Person, error) {
	var p models.Person

	err := scan(
		&p.ID,
		&p.OwnerID,
		&p.GivenName,
		&p.Surname,
		&p.Sex,
		&p.BirthDate,
		&p.BirthPlace,
		&p.DeathDate,
		&p.DeathPlace,
		&p.Protected,
		&p.MergedInto,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// scanRelationship scans a single row into a models.Relationship.
func scanRelationship(scan func(dest ...any) error) (models.Relationship, error) {
	var r models.Relationship

	err := scan(&r.PersonID, &r.RelativeID, &r.Kind, &r.CreatedAt)

	return r, err
}
