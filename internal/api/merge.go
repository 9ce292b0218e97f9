package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/metrics"
	"github.com/rootlinehq/rootline/internal/models"
)

// MergeHandler serves the person-merge endpoints.
type MergeHandler struct {
	repo MergeRepository
	log  *logrus.Logger
}

// NewMergeHandler creates a MergeHandler with the given service and logger.
func NewMergeHandler(repo MergeRepository, log *logrus.Logger) *MergeHandler {
	return &MergeHandler{repo: repo, log: log}
}

// respondMergeError maps merge-layer errors onto HTTP responses.
func (h *MergeHandler) respondMergeError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, models.ErrMissingSource),
		errors.Is(err, models.ErrMissingTarget),
		errors.Is(err, models.ErrSameSourceTarget):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrPersonNotFound),
		errors.Is(err, models.ErrNotOwner):
		// Someone else's person reads as not found, so ids never leak.
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "person not found")
	case errors.Is(err, models.ErrGenderMismatch),
		errors.Is(err, models.ErrProtectedPerson),
		errors.Is(err, models.ErrAlreadyMergedAway),
		errors.Is(err, models.ErrParentSlotTaken),
		errors.Is(err, models.ErrMergeRolledBack):
		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		h.log.WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// Preview handles POST /api/v1/merge/preview.
func (h *MergeHandler) Preview(c *gin.Context) {
	var req models.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	userID := getUserID(c)
	if userID == uuid.Nil {
		return
	}

	preview, err := h.repo.PreviewMerge(c.Request.Context(), userID, req)
	if err != nil {
		h.respondMergeError(c, err, "previewing merge")

		return
	}

	c.JSON(http.StatusOK, preview)
}

// Execute handles POST /api/v1/merge.
func (h *MergeHandler) Execute(c *gin.Context) {
	var req models.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	userID := getUserID(c)
	if userID == uuid.Nil {
		return
	}

	result, err := h.repo.ExecuteMerge(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrParentSlotTaken) || errors.Is(err, models.ErrMergeRolledBack) {
			metrics.MergesTotal.WithLabelValues("conflict").Inc()
		} else {
			metrics.MergesTotal.WithLabelValues("error").Inc()
		}

		h.respondMergeError(c, err, "executing merge")

		return
	}

	metrics.MergesTotal.WithLabelValues("success").Inc()

	h.log.WithFields(logrus.Fields{
		"action": "merge.execute", "user_id": userID,
		"source": req.SourcePersonID, "target": req.TargetPersonID,
		"transferred": result.Transferred, "deduplicated": result.Deduplicated,
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}
