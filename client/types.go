package client

import "time"

// HealthResponse is the /health liveness payload.
type HealthResponse struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	Database        string  `json:"database"`
	PreviewSessions int     `json:"preview_sessions"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// ReadyResponse is the /ready readiness payload.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// CanonicalDate is a normalized GEDCOM date value.
type CanonicalDate struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
	Partial    bool   `json:"partial"`
	Modifier   string `json:"modifier,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventDetail pairs a normalized date with a place string.
type EventDetail struct {
	Date  *CanonicalDate `json:"date,omitempty"`
	Place string         `json:"place,omitempty"`
}

// FieldError is a per-field parse diagnostic on an individual.
type FieldError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Individual is one parsed INDI record. IDs are scoped to the upload that
// produced them.
type Individual struct {
	ID             string       `json:"id"`
	GivenName      string       `json:"given_name"`
	Surname        string       `json:"surname"`
	Sex            string       `json:"sex,omitempty"`
	Birth          *EventDetail `json:"birth,omitempty"`
	Death          *EventDetail `json:"death,omitempty"`
	ChildOfFamily  string       `json:"child_of_family,omitempty"`
	SpouseFamilies []string     `json:"spouse_families,omitempty"`
	DateErrors     []FieldError `json:"date_errors,omitempty"`
}

// ParseIssue is one diagnostic from parsing or validation.
type ParseIssue struct {
	Severity     string `json:"severity"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecordID     string `json:"record_id,omitempty"`
	Field        string `json:"field,omitempty"`
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// Statistics aggregates counts and date extremes over a parsed upload.
type Statistics struct {
	IndividualCount int    `json:"individual_count"`
	FamilyCount     int    `json:"family_count"`
	DateErrorCount  int    `json:"date_error_count"`
	EarliestDate    string `json:"earliest_date,omitempty"`
	LatestDate      string `json:"latest_date,omitempty"`
}

// DuplicateMatch is a candidate match between a parsed individual and an
// already-persisted person.
type DuplicateMatch struct {
	SourceIndividualID string   `json:"source_individual_id"`
	ExistingPersonID   string   `json:"existing_person_id"`
	Confidence         float64  `json:"confidence"`
	MatchingFields     []string `json:"matching_fields,omitempty"`
}

// PreviewIndividual is a parsed individual annotated with its
// reconciliation status.
type PreviewIndividual struct {
	Individual
	Status string          `json:"status"`
	Match  *DuplicateMatch `json:"match,omitempty"`
}

// ImportSummary holds per-status counts for a preview session.
type ImportSummary struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Duplicates int `json:"duplicates"`
	Existing   int `json:"existing"`
}

// PreparedImport reports the outcome of preparing a preview session.
type PreparedImport struct {
	Success    bool          `json:"success"`
	Version    string        `json:"version,omitempty"`
	Summary    ImportSummary `json:"summary"`
	Statistics Statistics    `json:"statistics"`
	Issues     []ParseIssue  `json:"issues,omitempty"`
}

// PrepareImportRequest is the payload for creating a preview session.
type PrepareImportRequest struct {
	Content          string           `json:"content"`
	DuplicateMatches []DuplicateMatch `json:"duplicate_matches,omitempty"`
}

// PageInfo describes the pagination of a list response.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// IndividualPage is one page of a session's individuals.
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

// IndividualDetail is one individual with resolved relatives.
type IndividualDetail struct {
	PreviewIndividual
	Parents  []RelativeRef `json:"parents,omitempty"`
	Spouses  []RelativeRef `json:"spouses,omitempty"`
	Children []RelativeRef `json:"children,omitempty"`
}

// TreeRelationship is one flattened relationship tuple.
type TreeRelationship struct {
	Type     string `json:"type"`
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	FamilyID string `json:"family_id"`
}

// ResolutionDecision is the operator's choice for one parsed individual.
// Resolution is one of "merge", "import_as_new" or "skip".
type ResolutionDecision struct {
	IndividualID string `json:"individual_id"`
	Resolution   string `json:"resolution"`
}

// ListIndividualsOptions holds filters for listing a session's individuals.
type ListIndividualsOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

// Person is a durable person record.
type Person struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	GivenName  string    `json:"given_name"`
	Surname    string    `json:"surname"`
	Sex        string    `json:"sex,omitempty"`
	BirthDate  string    `json:"birth_date,omitempty"`
	BirthPlace string    `json:"birth_place,omitempty"`
	DeathDate  string    `json:"death_date,omitempty"`
	DeathPlace string    `json:"death_place,omitempty"`
	Protected  bool      `json:"protected"`
	MergedInto *string   `json:"merged_into,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Relationship is one directed edge in the durable graph.
type Relationship struct {
	PersonID   string    `json:"person_id"`
	RelativeID string    `json:"relative_id"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// MergeRequest asks to consolidate source into target.
type MergeRequest struct {
	SourcePersonID      string `json:"source_person_id"`
	TargetPersonID      string `json:"target_person_id"`
	AllowGenderMismatch bool   `json:"allow_gender_mismatch,omitempty"`
}

// MergeConflict describes one relationship that cannot transfer cleanly.
type MergeConflict struct {
	Kind             string `json:"kind"`
	SourceRelativeID string `json:"source_relative_id"`
	TargetRelativeID string `json:"target_relative_id"`
	Message          string `json:"message"`
}

// MergePreview is the read-only safety report produced before a merge.
type MergePreview struct {
	Source              Person          `json:"source"`
	Target              Person          `json:"target"`
	SourceRelationships []Relationship  `json:"source_relationships"`
	TargetRelationships []Relationship  `json:"target_relationships"`
	Conflicts           []MergeConflict `json:"conflicts,omitempty"`
	CanExecute          bool            `json:"can_execute"`
}

// MergeResult reports the outcome of an executed merge.
type MergeResult struct {
	SourcePersonID string `json:"source_person_id"`
	TargetPersonID string `json:"target_person_id"`
	Transferred    int    `json:"transferred"`
	Deduplicated   int    `json:"deduplicated"`
}

// AuditEntry is a single audit log entry.
type AuditEntry struct {
	ID         int64          `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditQueryOptions holds filters for querying the audit log.
type AuditQueryOptions struct {
	EntityType string
	EntityID   string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}
