package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rootlinehq/rootline/internal/models"
)

// MergeStore consolidates two already-persisted person records'
// relationships. Preview is read-only; Execute runs inside one
// transaction and either transfers everything or nothing.
type MergeStore struct {
	Base
}

// NewMergeStore creates a new MergeStore.
func NewMergeStore(base Base) *MergeStore {
	return &MergeStore{Base: base}
}

// PreviewMerge loads both persons' current relationships, checks merge
// safety and lists relationship conflicts without writing anything.
func (s *MergeStore) PreviewMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergePreview, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginReadTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("previewing merge: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // read-only transaction.

	source, target, err := s.loadPair(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := checkMergeSafety(userID, source, target, req.AllowGenderMismatch); err != nil {
		return nil, err
	}

	sourceRels, err := loadRelationships(ctx, tx, req.SourcePersonID)
	if err != nil {
		return nil, err
	}

	targetRels, err := loadRelationships(ctx, tx, req.TargetPersonID)
	if err != nil {
		return nil, err
	}

	conflicts := findConflicts(req, sourceRels, targetRels)

	return &models.MergePreview{
		Source:              *source,
		Target:              *target,
		SourceRelationships: sourceRels,
		TargetRelationships: targetRels,
		Conflicts:           conflicts,
		CanExecute:          len(conflicts) == 0,
	}, nil
}

// ExecuteMerge re-points every relationship edge incident to the source
// person onto the target inside one transaction, deduplicating edges the
// target already has. Spouse directed-edge pairs migrate together. Any
// constraint violation mid-transfer rolls back the entire transaction.
func (s *MergeStore) ExecuteMerge(ctx context.Context, userID uuid.UUID, req models.MergeRequest) (*models.MergeResult, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("executing merge: %w", err)
	}

	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback after commit.

	source, target, err := s.loadPair(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := checkMergeSafety(userID, source, target, req.AllowGenderMismatch); err != nil {
		return nil, err
	}

	sourceRels, err := loadRelationships(ctx, tx, req.SourcePersonID)
	if err != nil {
		return nil, err
	}

	targetRels, err := loadRelationships(ctx, tx, req.TargetPersonID)
	if err != nil {
		return nil, err
	}

	// Safety errors and conflicts block execution before any write.
	if conflicts := findConflicts(req, sourceRels, targetRels); len(conflicts) > 0 {
		return nil, fmt.Errorf("%d relationship conflict(s): %w", len(conflicts), models.ErrParentSlotTaken)
	}

	result, err := transferRelationships(ctx, tx, req, sourceRels, targetRels)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("constraint violated mid-transfer: %w", models.ErrMergeRolledBack)
		}

		return nil, err
	}

	_, err = tx.Exec(ctx,
		"UPDATE persons SET merged_into = $1, updated_at = now() WHERE id = $2",
		req.TargetPersonID, req.SourcePersonID)
	if err != nil {
		return nil, fmt.Errorf("marking source merged: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing merge: %w", err)
	}

	return result, nil
}

// loadPair loads source and target persons and rejects records that were
// already merged away.
func (s *MergeStore) loadPair(ctx context.Context, tx pgx.Tx, req models.MergeRequest) (*models.Person, *models.Person, error) {
	load := func(id uuid.UUID) (*models.Person, error) {
		row := tx.QueryRow(ctx, "SELECT "+personColumns+" FROM persons WHERE id = $1", id)

		p, err := scanPerson(row.Scan)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("person %s: %w", id, models.ErrPersonNotFound)
			}

			return nil, fmt.Errorf("loading person %s: %w", id, err)
		}

		if p.MergedInto != nil {
			return nil, fmt.Errorf("person %s: %w", id, models.ErrAlreadyMergedAway)
		}

		return p, nil
	}

	source, err := load(req.SourcePersonID)
	if err != nil {
		return nil, nil, err
	}

	target, err := load(req.TargetPersonID)
	if err != nil {
		return nil, nil, err
	}

	return source, target, nil
}

// checkMergeSafety enforces ownership, the protected-record rule and
// gender compatibility.
func checkMergeSafety(userID uuid.UUID, source, target *models.Person, allowGenderMismatch bool) error {
	if source.OwnerID != userID || target.OwnerID != userID {
		return models.ErrNotOwner
	}

	if source.Protected {
		return models.ErrProtectedPerson
	}

	if !allowGenderMismatch && source.Sex != "" && target.Sex != "" && source.Sex != target.Sex {
		return models.ErrGenderMismatch
	}

	return nil
}

// loadRelationships returns every edge incident to the person, both
// directions, inside the caller's transaction.
func loadRelationships(ctx context.Context, tx pgx.Tx, personID uuid.UUID) ([]models.Relationship, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+relationshipColumns+` FROM relationships
		WHERE person_id = $1 OR relative_id = $1
		ORDER BY kind, person_id, relative_id`, personID)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var rels []models.Relationship
	for rows.Next() {
		r, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}

		rels = append(rels, r)
	}

	return rels, rows.Err()
}

// findConflicts lists parent-slot collisions: the target already has a
// mother or father and the source would transfer a different one.
func findConflicts(req models.MergeRequest, sourceRels, targetRels []models.Relationship) []models.MergeConflict {
	sourceParent := map[string]uuid.UUID{}
	for _, r := range sourceRels {
		if r.PersonID == req.SourcePersonID && (r.Kind == models.RelMother || r.Kind == models.RelFather) {
			sourceParent[r.Kind] = r.RelativeID
		}
	}

	targetParent := map[string]uuid.UUID{}
	for _, r := range targetRels {
		if r.PersonID == req.TargetPersonID && (r.Kind == models.RelMother || r.Kind == models.RelFather) {
			targetParent[r.Kind] = r.RelativeID
		}
	}

	var conflicts []models.MergeConflict

	for _, kind := range []string{models.RelMother, models.RelFather} {
		src, srcOK := sourceParent[kind]
		tgt, tgtOK := targetParent[kind]

		// Identical parents deduplicate; a source parent that is the
		// target itself collapses to nothing. Only a genuinely different
		// parent is a conflict.
		if srcOK && tgtOK && src != tgt && src != req.TargetPersonID {
			conflicts = append(conflicts, models.MergeConflict{
				Kind:             kind,
				SourceRelativeID: src,
				TargetRelativeID: tgt,
				Message:          fmt.Sprintf("target already has a %s and the source's %s would also transfer", kind, kind),
			})
		}
	}

	return conflicts
}

// edgeKey identifies a directed edge for set membership checks.
type edgeKey struct {
	personID   uuid.UUID
	relativeID uuid.UUID
	kind       string
}

// transferRelationships performs the actual edge surgery. All scans are
// linear in the two persons' relationship counts.
func transferRelationships(ctx context.Context, tx pgx.Tx, req models.MergeRequest, sourceRels, targetRels []models.Relationship) (*models.MergeResult, error) {
	sourceID, targetID := req.SourcePersonID, req.TargetPersonID

	targetEdges := make(map[edgeKey]bool, len(targetRels))
	for _, r := range targetRels {
		targetEdges[edgeKey{r.PersonID, r.RelativeID, r.Kind}] = true
	}

	sourceIncoming := make(map[edgeKey]bool, len(sourceRels))
	for _, r := range sourceRels {
		if r.RelativeID == sourceID {
			sourceIncoming[edgeKey{r.PersonID, r.RelativeID, r.Kind}] = true
		}
	}

	result := &models.MergeResult{SourcePersonID: sourceID, TargetPersonID: targetID}
	handled := make(map[edgeKey]bool)

	deleteEdge := func(person, relative uuid.UUID, kind string) error {
		_, err := tx.Exec(ctx,
			"DELETE FROM relationships WHERE person_id = $1 AND relative_id = $2 AND kind = $3",
			person, relative, kind)
		if err != nil {
			return fmt.Errorf("deleting edge: %w", err)
		}

		result.Deduplicated++

		return nil
	}

	repointOwner := func(relative uuid.UUID, kind string) error {
		_, err := tx.Exec(ctx,
			`UPDATE relationships SET person_id = $1
			WHERE person_id = $2 AND relative_id = $3 AND kind = $4`,
			targetID, sourceID, relative, kind)
		if err != nil {
			return fmt.Errorf("re-pointing edge owner: %w", err)
		}

		result.Transferred++

		return nil
	}

	repointRelative := func(person uuid.UUID, kind string) error {
		_, err := tx.Exec(ctx,
			`UPDATE relationships SET relative_id = $1
			WHERE person_id = $2 AND relative_id = $3 AND kind = $4`,
			targetID, person, sourceID, kind)
		if err != nil {
			return fmt.Errorf("re-pointing edge relative: %w", err)
		}

		result.Transferred++

		return nil
	}

	// Pass 1: edges owned by the source (its mother, father, spouses).
	for _, r := range sourceRels {
		if r.PersonID != sourceID {
			continue
		}

		switch r.Kind {
		case models.RelSpouse:
			// A spousal link is one undirected edge stored as two
			// directed rows; both must move or both must go.
			reverse := edgeKey{r.RelativeID, sourceID, models.RelSpouse}
			hasReverse := sourceIncoming[reverse]

			duplicate := r.RelativeID == targetID ||
				targetEdges[edgeKey{targetID, r.RelativeID, models.RelSpouse}]

			if duplicate {
				if err := deleteEdge(sourceID, r.RelativeID, models.RelSpouse); err != nil {
					return nil, err
				}

				if hasReverse {
					handled[reverse] = true
					if err := deleteEdge(r.RelativeID, sourceID, models.RelSpouse); err != nil {
						return nil, err
					}
				}

				continue
			}

			if err := repointOwner(r.RelativeID, models.RelSpouse); err != nil {
				return nil, err
			}

			if hasReverse {
				handled[reverse] = true
				if err := repointRelative(r.RelativeID, models.RelSpouse); err != nil {
					return nil, err
				}
			}

		case models.RelMother, models.RelFather:
			if r.RelativeID == targetID {
				if err := deleteEdge(sourceID, r.RelativeID, r.Kind); err != nil {
					return nil, err
				}

				continue
			}

			if targetEdges[edgeKey{targetID, r.RelativeID, r.Kind}] {
				if err := deleteEdge(sourceID, r.RelativeID, r.Kind); err != nil {
					return nil, err
				}

				continue
			}

			// Conflict detection already rejected a differing target
			// parent; the partial unique index still backstops this
			// update inside the transaction.
			if err := repointOwner(r.RelativeID, r.Kind); err != nil {
				return nil, err
			}
		}
	}

	// Pass 2: edges pointing at the source (children's parent links,
	// spouse rows not already migrated as a pair).
	for _, r := range sourceRels {
		if r.RelativeID != sourceID {
			continue
		}

		key := edgeKey{r.PersonID, r.RelativeID, r.Kind}
		if handled[key] {
			continue
		}

		if r.PersonID == targetID {
			if err := deleteEdge(r.PersonID, sourceID, r.Kind); err != nil {
				return nil, err
			}

			continue
		}

		if targetEdges[edgeKey{r.PersonID, targetID, r.Kind}] {
			if err := deleteEdge(r.PersonID, sourceID, r.Kind); err != nil {
				return nil, err
			}

			continue
		}

		if err := repointRelative(r.PersonID, r.Kind); err != nil {
			return nil, err
		}
	}

	return result, nil
}
