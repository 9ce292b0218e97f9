package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rootlinehq/rootline/internal/domain"
	"github.com/rootlinehq/rootline/internal/gedcom"
	"github.com/rootlinehq/rootline/internal/models"
	"github.com/rootlinehq/rootline/internal/preview"
)

// Compile-time check: *ImportService must satisfy domain.ImportService.
var _ domain.ImportService = (*ImportService)(nil)

// ImportService owns the import-preview lifecycle: it parses uploads into
// reconciliation sessions and proxies session reads and decision writes to
// the session repository.
type ImportService struct {
	sessions    preview.Repository
	auditWorker AuditEnqueuer
	log         *logrus.Logger
}

// NewImportService creates an ImportService.
func NewImportService(sessions preview.Repository, auditWorker AuditEnqueuer, log *logrus.Logger) *ImportService {
	return &ImportService{sessions: sessions, auditWorker: auditWorker, log: log}
}

// auditAsync enqueues an audit entry via the AuditWorker (best-effort, non-blocking).
func (s *ImportService) auditAsync(userID, action, entityType, entityID string, detail map[string]any) {
	if s.auditWorker == nil {
		return
	}
	s.auditWorker.Enqueue(&AuditJob{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	})
}

// PrepareImport parses the uploaded GEDCOM content, runs relationship and
// orphaned-reference validation, and stores the result as the user's
// reconciliation session for the upload. A fatal parse (unsupported
// version) creates no session; the returned result carries the issues.
func (s *ImportService) PrepareImport(
	ctx context.Context, userID, uploadID string, req models.PrepareImportRequest,
) (*models.PreparedImport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parsed := gedcom.Parse(req.Content)
	if !parsed.Success {
		return &models.PreparedImport{
			Success: false,
			Version: parsed.Version,
			Issues:  parsed.Errors,
		}, nil
	}

	// Consistency and orphan validation are independent passes over the
	// same parsed result.
	var (
		roleWarnings []models.ParseIssue
		orphans      models.OrphanValidation
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		roleWarnings = gedcom.ValidateRelationshipConsistency(&parsed)
		return nil
	})
	g.Go(func() error {
		orphans = gedcom.ValidateOrphanedReferences(&parsed)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sessions hold the cleaned families so relative lookups never chase
	// a reference the upload left dangling.
	sessionData := parsed
	sessionData.Families = orphans.CleanedFamilies

	key := preview.SessionKey{UploadID: uploadID, UserID: userID}

	summary, err := s.sessions.Store(key, &sessionData, req.DuplicateMatches)
	if err != nil {
		return nil, err
	}

	issues := append(parsed.Errors, roleWarnings...)
	issues = append(issues, orphans.Warnings...)

	s.log.WithFields(logrus.Fields{
		"upload_id":   uploadID,
		"individuals": len(parsed.Individuals),
		"families":    len(sessionData.Families),
		"warnings":    len(issues),
	}).Info("import.prepare")

	s.auditAsync(userID, "import.prepare", "import", uploadID, map[string]any{
		"individuals": len(parsed.Individuals),
		"families":    len(sessionData.Families),
		"duplicates":  summary.Duplicates,
	})

	return &models.PreparedImport{
		Success:    true,
		Version:    parsed.Version,
		Summary:    summary,
		Statistics: gedcom.ExtractStatistics(&sessionData),
		Issues:     issues,
	}, nil
}

// ListIndividuals returns one page of the session's individuals (pass-through).
func (s *ImportService) ListIndividuals(
	_ context.Context, userID, uploadID string, query models.ListQuery,
) (*models.IndividualPage, error) {
	return s.sessions.GetIndividuals(preview.SessionKey{UploadID: uploadID, UserID: userID}, query)
}

// GetIndividual returns one individual with resolved relatives (pass-through).
func (s *ImportService) GetIndividual(
	_ context.Context, userID, uploadID, individualID string,
) (*models.IndividualDetail, error) {
	return s.sessions.GetIndividual(preview.SessionKey{UploadID: uploadID, UserID: userID}, individualID)
}

// GetTree returns the session's flattened relationship tuples (pass-through).
func (s *ImportService) GetTree(_ context.Context, userID, uploadID string) ([]models.TreeRelationship, error) {
	return s.sessions.GetTree(preview.SessionKey{UploadID: uploadID, UserID: userID})
}

// GetStatistics returns fresh parse statistics for the session (pass-through).
func (s *ImportService) GetStatistics(_ context.Context, userID, uploadID string) (*models.Statistics, error) {
	return s.sessions.GetStatistics(preview.SessionKey{UploadID: uploadID, UserID: userID})
}

// SaveDecisions stores a resolution batch and records an audit entry.
func (s *ImportService) SaveDecisions(
	_ context.Context, userID, uploadID string, decisions []models.ResolutionDecision,
) (models.ImportSummary, error) {
	key := preview.SessionKey{UploadID: uploadID, UserID: userID}

	summary, err := s.sessions.SaveDecisions(key, decisions)
	if err != nil {
		return models.ImportSummary{}, err
	}

	s.auditAsync(userID, "import.decisions", "import", uploadID,
		map[string]any{"count": len(decisions)})

	return summary, nil
}

// GetDecisions returns the decisions saved so far (pass-through).
func (s *ImportService) GetDecisions(_ context.Context, userID, uploadID string) ([]models.ResolutionDecision, error) {
	return s.sessions.GetDecisions(preview.SessionKey{UploadID: uploadID, UserID: userID})
}

// DiscardImport destroys the user's session for the upload and records an
// audit entry.
func (s *ImportService) DiscardImport(_ context.Context, userID, uploadID string) error {
	err := s.sessions.Clear(preview.SessionKey{UploadID: uploadID, UserID: userID})
	if err == nil {
		s.auditAsync(userID, "import.discard", "import", uploadID, nil)
	}

	return err
}
