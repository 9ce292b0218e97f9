package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rootlinehq/rootline/internal/api"
	"github.com/rootlinehq/rootline/internal/models"
)

func newPersonRouter(repo *mockPersonRepo) *gin.Engine {
	r := newTestRouter()
	h := api.NewPersonHandler(repo, testLogger())

	r.GET("/persons/:id", h.Get)
	r.GET("/persons/:id/relationships", h.Relationships)

	return r
}

func TestPersonGet(t *testing.T) {
	t.Parallel()

	personID := uuid.New()

	repo := &mockPersonRepo{
		getPerson: func(_ context.Context, userID, id uuid.UUID) (*models.Person, error) {
			if userID.String() != testUserID {
				t.Errorf("userID = %s", userID)
			}
			return &models.Person{ID: id, GivenName: "Anna"}, nil
		},
	}

	r := newPersonRouter(repo)
	w := doRequest(r, http.MethodGet, "/persons/"+personID.String(), "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPersonGet_InvalidID(t *testing.T) {
	t.Parallel()

	r := newPersonRouter(&mockPersonRepo{})
	w := doRequest(r, http.MethodGet, "/persons/not-a-uuid", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPersonRelationships_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockPersonRepo{
		listRelationships: func(_ context.Context, _, _ uuid.UUID) ([]models.Relationship, error) {
			return nil, models.ErrPersonNotFound
		},
	}

	r := newPersonRouter(repo)
	w := doRequest(r, http.MethodGet, "/persons/"+uuid.NewString()+"/relationships", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
