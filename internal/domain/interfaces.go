// Package domain defines the canonical service interfaces shared across API
// layers (REST, client). Consumers should depend on these interfaces rather
// than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/google/uuid"

	"github.com/rootlinehq/rootline/internal/models"
)

// ImportService defines the import-preview lifecycle: parse an upload into
// a reconciliation session, inspect it, record resolution decisions and
// discard it. Sessions are scoped to (user, upload).
type ImportService interface {
	PrepareImport(ctx context.Context, userID, uploadID string, req models.PrepareImportRequest) (*models.PreparedImport, error)
	ListIndividuals(ctx context.Context, userID, uploadID string, query models.ListQuery) (*models.IndividualPage, error)
	GetIndividual(ctx context.Context, userID, uploadID, individualID string) (*models.IndividualDetail, error)
	GetTree(ctx context.Context, userID, uploadID string) ([]models.TreeRelationship, error)
	GetStatistics(ctx context.Context, userID, uploadID string) (*models.Statistics, error)
	SaveDecisions(ctx context.Context, userID, uploadID string, decisions []models.ResolutionDecision) (models.ImportSummary, error)
	GetDecisions(ctx context.Context, userID, uploadID string) ([]models.ResolutionDecision, error)
	DiscardImport(ctx context.Context, userID, uploadID string) error
}

// MergeService defines duplicate-person consolidation operations.
type MergeService interface {
	PreviewMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error)
	ExecuteMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error)
}

// PersonService defines read access to durable person records, scoped to
// the requesting user.
type PersonService interface {
	GetPerson(ctx context.Context, userID, personID uuid.UUID) (*models.Person, error)
	ListRelationships(ctx context.Context, userID, personID uuid.UUID) ([]models.Relationship, error)
}

// AuditService defines audit log recording and query operations.
type AuditService interface {
	Auditor
	QueryAudit(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

// Auditor is the minimal interface for recording audit entries.
// Used by services and handlers for fire-and-forget audit logging.
type Auditor interface {
	RecordAudit(ctx context.Context, userID, action, entityType, entityID string, detail map[string]any) error
}
