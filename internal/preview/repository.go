// Package preview holds the per-upload, per-user reconciliation workspace
// that sits between parsing and the durable write path. Sessions are
// ephemeral working state, not an audit log; they are destroyed explicitly
// or evicted after a TTL.
package preview

import (
	"github.com/rootlinehq/rootline/internal/models"
)

// SessionKey identifies one reconciliation session. One session exists per
// key; users never see each other's sessions.
type SessionKey struct {
	UploadID string
	UserID   string
}

// Repository is the capability-scoped access interface for reconciliation
// sessions. The in-memory implementation lives in this package; a
// deployment needing cross-process sessions can back this with a
// transactional store instead.
type Repository interface {
	// Store creates (or replaces) the session for key from parsed data and
	// externally supplied duplicate matches, annotating every individual's
	// status from match membership.
	Store(key SessionKey, parsed *models.ParsingResult, matches []models.DuplicateMatch) (models.ImportSummary, error)

	// GetIndividuals returns one filtered, sorted page of the session's
	// individuals with fresh summary counts and statistics.
	GetIndividuals(key SessionKey, query models.ListQuery) (*models.IndividualPage, error)

	// GetIndividual resolves one individual plus its parents, spouses and
	// children from the session's in-memory family list.
	GetIndividual(key SessionKey, individualID string) (*models.IndividualDetail, error)

	// GetTree flattens the session's families into relationship tuples.
	GetTree(key SessionKey) ([]models.TreeRelationship, error)

	// GetStatistics recomputes parse statistics for the session.
	GetStatistics(key SessionKey) (*models.Statistics, error)

	// SaveDecisions validates and upserts a resolution batch. One invalid
	// entry rejects the whole batch before any decision is stored.
	SaveDecisions(key SessionKey, decisions []models.ResolutionDecision) (models.ImportSummary, error)

	// GetDecisions returns the decisions saved so far.
	GetDecisions(key SessionKey) ([]models.ResolutionDecision, error)

	// Clear removes the per-user session and garbage-collects the
	// per-upload container once no users remain.
	Clear(key SessionKey) error

	// ActiveSessions reports the current session count (metrics).
	ActiveSessions() int
}
