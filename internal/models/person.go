package models

import (
	"time"

	"github.com/google/uuid"
)

// Relationship kinds stored at the durable layer. A spouse link is
// logically one undirected edge stored as two directed rows; a child-of
// link is the inverse reading of a mother or father row.
const (
	RelMother = "mother"
	RelFather = "father"
	RelSpouse = "spouse"
)

// Person is a durable person record owned by a user's tree.
type Person struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	GivenName  string     `json:"given_name"`
	Surname    string     `json:"surname"`
	Sex        string     `json:"sex,omitempty"`
	BirthDate  string     `json:"birth_date,omitempty"`
	BirthPlace string     `json:"birth_place,omitempty"`
	DeathDate  string     `json:"death_date,omitempty"`
	DeathPlace string     `json:"death_place,omitempty"`
	Protected  bool       `json:"protected"`
	MergedInto *uuid.UUID `json:"merged_into,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Relationship is one directed edge in the durable graph: PersonID's
// Kind-relative is RelativeID (e.g. kind "mother" means RelativeID is the
// mother of PersonID).
type Relationship struct {
	PersonID   uuid.UUID `json:"person_id"`
	RelativeID uuid.UUID `json:"relative_id"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}
