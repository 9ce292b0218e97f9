package models

// CanonicalDate is the normalized form of a GEDCOM date value.
// Normalized is zero-padded at year, year-month or year-month-day
// granularity so canonical dates sort lexicographically.
type CanonicalDate struct {
	Original   string `json:"original"`
	Normalized string `json:"normalized"`
	Valid      bool   `json:"valid"`
	Partial    bool   `json:"partial"`
	Modifier   string `json:"modifier,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EventDetail pairs a normalized date with a verbatim place string.
type EventDetail struct {
	Date  *CanonicalDate `json:"date,omitempty"`
	Place string         `json:"place,omitempty"`
}

// Individual is one INDI record from a parsed GEDCOM file. IDs are
// interchange-scoped (e.g. "@I1@" stripped to "I1") and only meaningful
// within the upload that produced them.
type Individual struct {
	ID            string       `json:"id"`
	GivenName     string       `json:"given_name"`
	Surname       string       `json:"surname"`
	Sex           string       `json:"sex,omitempty"`
	Birth         *EventDetail `json:"birth,omitempty"`
	Death         *EventDetail `json:"death,omitempty"`
	ChildOfFamily string       `json:"child_of_family,omitempty"`
	SpouseFamilies []string    `json:"spouse_families,omitempty"`
	DateErrors    []FieldError `json:"date_errors,omitempty"`
}

// FieldError is a structured per-field parse diagnostic on an Individual.
type FieldError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Family is one FAM record from a parsed GEDCOM file.
type Family struct {
	ID           string         `json:"id"`
	HusbandID    string         `json:"husband_id,omitempty"`
	WifeID       string         `json:"wife_id,omitempty"`
	ChildIDs     []string       `json:"child_ids,omitempty"`
	MarriageDate *CanonicalDate `json:"marriage_date,omitempty"`
}

// Issue severities. Fatal issues abort parsing; warnings never do.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue codes, machine-checkable by a presentation layer.
const (
	CodeUnsupportedVersion = "unsupported_version"
	CodeInvalidDate        = "invalid_date"
	CodeOrphanedReference  = "orphaned_reference"
	CodeRoleMismatch       = "role_mismatch"
)

// ParseIssue is a single diagnostic attached to a parsing or validation
// result. RecordID names the offending record; SuggestedFix is optional.
type ParseIssue struct {
	Severity     string `json:"severity"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecordID     string `json:"record_id,omitempty"`
	Field        string `json:"field,omitempty"`
	SuggestedFix string `json:"suggested_fix,omitempty"`
}

// ParsingResult is the output of parsing one GEDCOM file.
type ParsingResult struct {
	Success     bool         `json:"success"`
	Version     string       `json:"version,omitempty"`
	Individuals []Individual `json:"individuals"`
	Families    []Family     `json:"families"`
	Errors      []ParseIssue `json:"errors,omitempty"`
}

// Statistics aggregates counts and the lexicographic min/max over all
// normalized birth and death dates of a parsing result.
type Statistics struct {
	IndividualCount int    `json:"individual_count"`
	FamilyCount     int    `json:"family_count"`
	DateErrorCount  int    `json:"date_error_count"`
	EarliestDate    string `json:"earliest_date,omitempty"`
	LatestDate      string `json:"latest_date,omitempty"`
}

// OrphanValidation is the non-destructive result of orphaned-reference
// checking. CleanedFamilies never references an individual id absent from
// the parsed set; the original families are left untouched.
type OrphanValidation struct {
	HasOrphans      bool         `json:"has_orphans"`
	Warnings        []ParseIssue `json:"warnings,omitempty"`
	CleanedFamilies []Family     `json:"cleaned_families"`
}
