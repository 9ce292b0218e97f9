package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rootlinehq/rootline/internal/domain"
	"github.com/rootlinehq/rootline/internal/models"
)

// MergeStore is the data-access interface MergeService depends on.
// It reuses domain.MergeService since the method sets are identical, avoiding duplication.
type MergeStore = domain.MergeService

// Compile-time check: *MergeService must satisfy domain.MergeService.
var _ domain.MergeService = (*MergeService)(nil)

// MergeService wraps MergeStore with audit logging for executed merges.
type MergeService struct {
	store       MergeStore
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewMergeService creates a MergeService.
func NewMergeService(store MergeStore, auditWorker AuditEnqueuer, log *logrus.Logger) *MergeService {
	return &MergeService{store: store, auditWorker: auditWorker, log: log}
}

// PreviewMerge returns the read-only merge safety report (pass-through).
func (s *MergeService) PreviewMerge(
	ctx context.Context, userID uuid.UUID, req models.MergeRequest,
) (*models.MergePreview, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return s.store.PreviewMerge(ctx, userID, req)
}

// ExecuteMerge runs the transactional merge and records an audit entry on
// success.
func (s *MergeService) ExecuteMerge(
	ctx context.Context, userID uuid.UUID, req models.MergeRequest,
) (*models.MergeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := s.store.ExecuteMerge(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"source":       req.SourcePersonID,
		"target":       req.TargetPersonID,
		"transferred":  result.Transferred,
		"deduplicated": result.Deduplicated,
	}).Info("merge.execute")

	if s.auditWorker != nil {
		s.auditWorker.Enqueue(&AuditJob{
			UserID:     userID.String(),
			Action:     "merge.execute",
			EntityType: "person",
			EntityID:   req.SourcePersonID.String(),
			Detail: map[string]any{
				"target":       req.TargetPersonID.String(),
				"transferred":  result.Transferred,
				"deduplicated": result.Deduplicated,
			},
		})
	}

	return result, nil
}
