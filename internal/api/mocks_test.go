package api_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/rootlinehq/rootline/internal/models"
)

// mockImportRepo implements domain.ImportService with function fields.
type mockImportRepo struct {
	prepareImport   func(ctx context.Context, userID, uploadID string, req models.PrepareImportRequest) (*models.PreparedImport, error)
	listIndividuals func(ctx context.Context, userID, uploadID string, query models.ListQuery) (*models.IndividualPage, error)
	getIndividual   func(ctx context.Context, userID, uploadID, individualID string) (*models.IndividualDetail, error)
	getTree         func(ctx context.Context, userID, uploadID string) ([]models.TreeRelationship, error)
	getStatistics   func(ctx context.Context, userID, uploadID string) (*models.Statistics, error)
	saveDecisions   func(ctx context.Context, userID, uploadID string, decisions []models.ResolutionDecision) (models.ImportSummary, error)
	getDecisions    func(ctx context.Context, userID, uploadID string) ([]models.ResolutionDecision, error)
	discardImport   func(ctx context.Context, userID, uploadID string) error
}

func (m *mockImportRepo) PrepareImport(ctx context.Context, userID, uploadID string, req models.PrepareImportRequest) (*models.PreparedImport, error) {
	return m.prepareImport(ctx, userID, uploadID, req)
}

func (m *mockImportRepo) ListIndividuals(ctx context.Context, userID, uploadID string, query models.ListQuery) (*models.IndividualPage, error) {
	return m.listIndividuals(ctx, userID, uploadID, query)
}

func (m *mockImportRepo) GetIndividual(ctx context.Context, userID, uploadID, individualID string) (*models.IndividualDetail, error) {
	return m.getIndividual(ctx, userID, uploadID, individualID)
}

func (m *mockImportRepo) GetTree(ctx context.Context, userID, uploadID string) ([]models.TreeRelationship, error) {
	return m.getTree(ctx, userID, uploadID)
}

func (m *mockImportRepo) GetStatistics(ctx context.Context, userID, uploadID string) (*models.Statistics, error) {
	return m.getStatistics(ctx, userID, uploadID)
}

func (m *mockImportRepo) SaveDecisions(ctx context.Context, userID, uploadID string, decisions []models.ResolutionDecision) (models.ImportSummary, error) {
	return m.saveDecisions(ctx, userID, uploadID, decisions)
}

func (m *mockImportRepo) GetDecisions(ctx context.Context, userID, uploadID string) ([]models.ResolutionDecision, error) {
	return m.getDecisions(ctx, userID, uploadID)
}

func (m *mockImportRepo) DiscardImport(ctx context.Context, userID, uploadID string) error {
	return m.discardImport(ctx, userID, uploadID)
}

// mockMergeRepo implements domain.MergeService with function fields.
type mockMergeRepo struct {
	previewMerge func(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error)
	executeMerge func(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error)
}

func (m *mockMergeRepo) PreviewMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error) {
	return m.previewMerge(ctx, userID, req)
}

func (m *mockMergeRepo) ExecuteMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error) {
	return m.executeMerge(ctx, userID, req)
}

// mockPersonRepo implements domain.PersonService with function fields.
type mockPersonRepo struct {
	getPerson         func(ctx context.Context, userID, personID uuid.UUID) (*models.Person, error)
	listRelationships func(ctx context.Context, userID, personID uuid.UUID) ([]models.Relationship, error)
}

func (m *mockPersonRepo) GetPerson(ctx context.Context, userID, personID uuid.UUID) (*models.Person, error) {
	return m.getPerson(ctx, userID, personID)
}

func (m *mockPersonRepo) ListRelationships(ctx context.Context, userID, personID uuid.UUID) ([]models.Relationship, error) {
	return m.listRelationships(ctx, userID, personID)
}

// mockAuditRepo implements domain.AuditService with function fields.
type mockAuditRepo struct {
	queryAudit func(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error)
}

func (m *mockAuditRepo) RecordAudit(_ context.Context, _, _, _, _ string, _ map[string]any) error {
	return nil
}

func (m *mockAuditRepo) QueryAudit(ctx context.Context, userID string, opts models.AuditQueryOpts) ([]models.AuditEntry, bool, error) {
	return m.queryAudit(ctx, userID, opts)
}
