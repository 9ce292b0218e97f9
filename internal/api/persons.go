package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/models"
)

// PersonHandler serves durable person read endpoints.
type PersonHandler struct {
	repo PersonRepository
	log  *logrus.Logger
}

// NewPersonHandler creates a PersonHandler with the given service and logger.
func NewPersonHandler(repo PersonRepository, log *logrus.Logger) *PersonHandler {
	return &PersonHandler{repo: repo, log: log}
}

// Get handles GET /api/v1/persons/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	personID := parsePersonID(c, "id")
	if personID == uuid.Nil {
		return
	}

	userID := getUserID(c)
	if userID == uuid.Nil {
		return
	}

	person, err := h.repo.GetPerson(c.Request.Context(), userID, personID)
	if err != nil {
		if errors.Is(err, models.ErrPersonNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "person not found")

			return
		}

		h.log.WithError(err).Error("getting person")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, person)
}

// Relationships handles GET /api/v1/persons/:id/relationships.
func (h *PersonHandler) Relationships(c *gin.Context) {
	personID := parsePersonID(c, "id")
	if personID == uuid.Nil {
		return
	}

	userID := getUserID(c)
	if userID == uuid.Nil {
		return
	}

	rels, err := h.repo.ListRelationships(c.Request.Context(), userID, personID)
	if err != nil {
		if errors.Is(err, models.ErrPersonNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "person not found")

			return
		}

		h.log.WithError(err).Error("listing relationships")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, gin.H{"relationships": rels})
}
