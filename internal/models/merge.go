package models

import "github.com/google/uuid"

// MergeRequest asks to consolidate two already-persisted person records.
// Source is merged into Target; Source's relationships are re-pointed onto
// Target and the redundant source-side edges removed.
type MergeRequest struct {
	SourcePersonID      uuid.UUID `json:"source_person_id"`
	TargetPersonID      uuid.UUID `json:"target_person_id"`
	AllowGenderMismatch bool      `json:"allow_gender_mismatch,omitempty"`
}

// Validate checks that both person ids are present and distinct.
func (r *MergeRequest) Validate() error {
	if r.SourcePersonID == uuid.Nil {
		return ErrMissingSource
	}

	if r.TargetPersonID == uuid.Nil {
		return ErrMissingTarget
	}

	if r.SourcePersonID == r.TargetPersonID {
		return ErrSameSourceTarget
	}

	return nil
}

// MergeConflict describes one relationship that cannot transfer cleanly,
// e.g. the target already has a mother and the source's mother would also
// move over.
type MergeConflict struct {
	Kind             string    `json:"kind"`
	SourceRelativeID uuid.UUID `json:"source_relative_id"`
	TargetRelativeID uuid.UUID `json:"target_relative_id"`
	Message          string    `json:"message"`
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
	SourcePersonID uuid.UUID `json:"source_person_id"`
	TargetPersonID uuid.UUID `json:"target_person_id"`
	Transferred    int       `json:"transferred"`
	Deduplicated   int       `json:"deduplicated"`
}
