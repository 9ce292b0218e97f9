package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/metrics"
	"github.com/rootlinehq/rootline/internal/models"
)

// ImportHandler serves the import-preview endpoints.
type ImportHandler struct {
	repo ImportRepository
	log  *logrus.Logger
}

// NewImportHandler creates an ImportHandler with the given service and logger.
func NewImportHandler(repo ImportRepository, log *logrus.Logger) *ImportHandler {
	return &ImportHandler{repo: repo, log: log}
}

// uploadScope pulls the authenticated user and the upload id path
// parameter, responding with an error on either being invalid.
func (h *ImportHandler) uploadScope(c *gin.Context) (userID, uploadID string, ok bool) {
	uid := getUserID(c)
	if uid == uuid.Nil {
		return "", "", false
	}

	uploadID = c.Param("upload_id")
	if err := validatePathID(uploadID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return "", "", false
	}

	return uid.String(), uploadID, true
}

// respondSessionError maps session-layer errors onto HTTP responses.
func (h *ImportHandler) respondSessionError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "no preview session for this upload")
	case errors.Is(err, models.ErrMissingID), errors.Is(err, models.ErrInvalidResolution):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	default:
		h.log.WithError(err).Error(op)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// Prepare handles POST /api/v1/imports/:upload_id/preview.
func (h *ImportHandler) Prepare(c *gin.Context) {
	var req models.PrepareImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	start := time.Now()

	result, err := h.repo.PrepareImport(c.Request.Context(), userID, uploadID, req)
	if err != nil {
		h.log.WithError(err).Error("preparing import")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	metrics.ParseDuration.Observe(time.Since(start).Seconds())

	if !result.Success {
		// The upload could not be parsed; the result carries the issues.
		c.JSON(http.StatusUnprocessableEntity, result)

		return
	}

	metrics.IndividualsParsed.Add(float64(result.Summary.Total))

	h.log.WithFields(logrus.Fields{
		"action": "import.prepare", "user_id": userID,
		"upload_id": uploadID, "individuals": result.Summary.Total,
	}).Info("audit")

	c.JSON(http.StatusCreated, result)
}

// List handles GET /api/v1/imports/:upload_id/individuals.
func (h *ImportHandler) List(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	query := models.ListQuery{
		Page:      parseInt(c.DefaultQuery("page", "1"), 1),
		Limit:     parseInt(c.DefaultQuery("limit", "50"), 50),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Search:    c.Query("search"),
	}

	page, err := h.repo.ListIndividuals(c.Request.Context(), userID, uploadID, query)
	if err != nil {
		h.respondSessionError(c, err, "listing individuals")

		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/imports/:upload_id/individuals/:id.
func (h *ImportHandler) Get(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	individualID := c.Param("id")
	if err := validatePathID(individualID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	detail, err := h.repo.GetIndividual(c.Request.Context(), userID, uploadID, individualID)
	if err != nil {
		if errors.Is(err, models.ErrPersonNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "individual not found in this upload")

			return
		}

		h.respondSessionError(c, err, "getting individual")

		return
	}

	c.JSON(http.StatusOK, detail)
}

// Tree handles GET /api/v1/imports/:upload_id/tree.
func (h *ImportHandler) Tree(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	rels, err := h.repo.GetTree(c.Request.Context(), userID, uploadID)
	if err != nil {
		h.respondSessionError(c, err, "getting tree")

		return
	}

	c.JSON(http.StatusOK, gin.H{"relationships": rels})
}

// Statistics handles GET /api/v1/imports/:upload_id/statistics.
func (h *ImportHandler) Statistics(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	stats, err := h.repo.GetStatistics(c.Request.Context(), userID, uploadID)
	if err != nil {
		h.respondSessionError(c, err, "getting statistics")

		return
	}

	c.JSON(http.StatusOK, stats)
}

// SaveDecisions handles PUT /api/v1/imports/:upload_id/decisions.
func (h *ImportHandler) SaveDecisions(c *gin.Context) {
	var req models.SaveDecisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	summary, err := h.repo.SaveDecisions(c.Request.Context(), userID, uploadID, req.Decisions)
	if err != nil {
		h.respondSessionError(c, err, "saving decisions")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "import.decisions", "user_id": userID,
		"upload_id": uploadID, "count": len(req.Decisions),
	}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetDecisions handles GET /api/v1/imports/:upload_id/decisions.
func (h *ImportHandler) GetDecisions(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	decisions, err := h.repo.GetDecisions(c.Request.Context(), userID, uploadID)
	if err != nil {
		h.respondSessionError(c, err, "getting decisions")

		return
	}

	c.JSON(http.StatusOK, gin.H{"decisions": decisions})
}

// Discard handles DELETE /api/v1/imports/:upload_id.
func (h *ImportHandler) Discard(c *gin.Context) {
	userID, uploadID, ok := h.uploadScope(c)
	if !ok {
		return
	}

	if err := h.repo.DiscardImport(c.Request.Context(), userID, uploadID); err != nil {
		h.respondSessionError(c, err, "discarding import")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action": "import.discard", "user_id": userID, "upload_id": uploadID,
	}).Info("audit")

	c.JSON(http.StatusOK, gin.H{"discarded": true})
}
