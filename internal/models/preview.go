package models

import "math"

// Reconciliation statuses computed when a session is stored.
const (
	StatusNew       = "new"
	StatusDuplicate = "duplicate"
	StatusExisting  = "existing"
)

// Resolution values for an operator's per-individual decision.
const (
	ResolutionMerge       = "merge"
	ResolutionImportAsNew = "import_as_new"
	ResolutionSkip        = "skip"
)

// DuplicateMatch is an externally supplied candidate match between a
// parsed individual and an already-persisted person.
type DuplicateMatch struct {
	SourceIndividualID string   `json:"source_individual_id"`
	ExistingPersonID   string   `json:"existing_person_id"`
	Confidence         float64  `json:"confidence"`
	MatchingFields     []string `json:"matching_fields,omitempty"`
}

// PreviewIndividual is a parsed individual annotated with its
// reconciliation status and any duplicate match.
type PreviewIndividual struct {
	Individual
	Status string          `json:"status"`
	Match  *DuplicateMatch `json:"match,omitempty"`
}

// ImportSummary holds per-status counts for a preview session. Counts are
// recomputed from current statuses on every read, never cached stale.
type ImportSummary struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Duplicates int `json:"duplicates"`
	Existing   int `json:"existing"`
}

// ResolutionDecision is the operator's choice for one parsed individual.
type ResolutionDecision struct {
	IndividualID string `json:"individual_id"`
	Resolution   string `json:"resolution"`
}

// Validate checks the resolution against the closed three-value enum.
func (d *ResolutionDecision) Validate() error {
	if d.IndividualID == "" {
		return ErrMissingID
	}

	switch d.Resolution {
	case ResolutionMerge, ResolutionImportAsNew, ResolutionSkip:
		return nil
	default:
		return ErrInvalidResolution
	}
}

// ListQuery describes a paginated, sorted, filtered read of a session's
// individuals.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

// PageInfo describes the pagination of a list response.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo computes pagination metadata for a total item count.
func NewPageInfo(page, limit, total int) PageInfo {
	return PageInfo{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// IndividualPage is one page of a session's individuals plus freshly
// recomputed statistics.
type IndividualPage struct {
	Individuals []PreviewIndividual `json:"individuals"`
	PageInfo    PageInfo            `json:"page_info"`
	Summary     ImportSummary       `json:"summary"`
	Statistics  Statistics          `json:"statistics"`
}

// RelativeRef is a lightweight reference to another parsed individual.
type RelativeRef struct {
	ID        string `json:"id"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	Role      string `json:"role,omitempty"`
}

// IndividualDetail is one individual with relatives resolved from the
// session's in-memory family list.
type IndividualDetail struct {
	PreviewIndividual
	Parents  []RelativeRef `json:"parents,omitempty"`
	Spouses  []RelativeRef `json:"spouses,omitempty"`
	Children []RelativeRef `json:"children,omitempty"`
}

// TreeRelationship is one flattened relationship tuple for external
// consumers (spouse or parent-child).
type TreeRelationship struct {
	Type     string `json:"type"`
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	FamilyID string `json:"family_id"`
}

// Tree relationship tuple types.
const (
	TreeRelSpouse      = "spouse"
	TreeRelParentChild = "parent_child"
)

// PrepareImportRequest is the payload for creating a preview session from
// raw GEDCOM content plus upstream duplicate matches.
type PrepareImportRequest struct {
	Content          string           `json:"content"`
	DuplicateMatches []DuplicateMatch `json:"duplicate_matches,omitempty"`
}

// Validate checks that required fields are present and within limits.
func (r *PrepareImportRequest) Validate() error {
	if r.Content == "" {
		return ErrMissingContent
	}

	if len(r.Content) > 32<<20 {
		return ErrFieldTooLong("content", 32<<20)
	}

	return nil
}

// PreparedImport reports the outcome of preparing a preview session.
// A failed parse carries the fatal issues and no session is created.
type PreparedImport struct {
	Success    bool          `json:"success"`
	Version    string        `json:"version,omitempty"`
	Summary    ImportSummary `json:"summary"`
	Statistics Statistics    `json:"statistics"`
	Issues     []ParseIssue  `json:"issues,omitempty"`
}

// SaveDecisionsRequest is the payload for saving a resolution batch.
type SaveDecisionsRequest struct {
	Decisions []ResolutionDecision `json:"decisions"`
}

// Validate checks every decision; one invalid entry rejects the batch.
func (r *SaveDecisionsRequest) Validate() error {
	for i := range r.Decisions {
		if err := r.Decisions[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}
