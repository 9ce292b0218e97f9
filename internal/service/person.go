package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/domain"
	"github.com/rootlinehq/rootline/internal/models"
)

// PersonStore is the data-access interface PersonService depends on.
// Reads are unscoped at the store level; the service enforces ownership.
type PersonStore interface {
	GetPerson(ctx context.Context, personID uuid.UUID) (*models.Person, error)
	ListRelationships(ctx context.Context, personID uuid.UUID) ([]models.Relationship, error)
}

// Compile-time check: *PersonService must satisfy domain.PersonService.
var _ domain.PersonService = (*PersonService)(nil)

// PersonService wraps PersonStore with per-user ownership scoping. A
// person owned by someone else reads as not found rather than forbidden,
// so ids never leak across users.
type PersonService struct {
	store PersonStore
	log   *logrus.Logger
}

// NewPersonService creates a PersonService.
func NewPersonService(store PersonStore, log *logrus.Logger) *PersonService {
	return &PersonService{store: store, log: log}
}

// GetPerson returns one person owned by the user.
func (s *PersonService) GetPerson(ctx context.Context, userID, personID uuid.UUID) (*models.Person, error) {
	p, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	if p.OwnerID != userID {
		return nil, models.ErrPersonNotFound
	}

	return p, nil
}

// ListRelationships returns every edge incident to a person owned by the
// user.
func (s *PersonService) ListRelationships(ctx context.Context, userID, personID uuid.UUID) ([]models.Relationship, error) {
	if _, err := s.GetPerson(ctx, userID, personID); err != nil {
		return nil, err
	}

	return s.store.ListRelationships(ctx, personID)
}
