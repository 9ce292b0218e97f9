package gedcom

import (
	"fmt"

	"github.com/rootlinehq/rootline/internal/models"
)

// ValidateRelationshipConsistency flags individuals whose declared family
// membership is not corroborated by that family's own member list. The
// check is advisory and never mutates the parsed data.
func ValidateRelationshipConsistency(result *models.ParsingResult) []models.ParseIssue {
	families := make(map[string]*models.Family, len(result.Families))
	for i := range result.Families {
		families[result.Families[i].ID] = &result.Families[i]
	}

	var issues []models.ParseIssue

	for i := range result.Individuals {
		ind := &result.Individuals[i]

		if ind.ChildOfFamily != "" {
			fam, ok := families[ind.ChildOfFamily]
			if !ok || !containsID(fam.ChildIDs, ind.ID) {
				issues = append(issues, models.ParseIssue{
					Severity: models.SeverityWarning,
					Code:     models.CodeRoleMismatch,
					Message:  fmt.Sprintf("individual %s declares FAMC %s but is not listed as a child of that family", ind.ID, ind.ChildOfFamily),
					RecordID: ind.ID,
					Field:    "child_of_family",
				})
			}
		}

		for _, famID := range ind.SpouseFamilies {
			fam, ok := families[famID]
			if !ok || (fam.HusbandID != ind.ID && fam.WifeID != ind.ID) {
				issues = append(issues, models.ParseIssue{
					Severity: models.SeverityWarning,
					Code:     models.CodeRoleMismatch,
					Message:  fmt.Sprintf("individual %s declares FAMS %s but is not the husband or wife of that family", ind.ID, famID),
					RecordID: ind.ID,
					Field:    "spouse_families",
				})
			}
		}
	}

	return issues
}

// ValidateOrphanedReferences checks every family pointer against the set
// of parsed individual ids. Unknown husband/wife pointers are nulled and
// unknown children filtered out in a parallel cleaned family list, one
// structured warning per orphan. The original families are left untouched.
func ValidateOrphanedReferences(result *models.ParsingResult) models.OrphanValidation {
	known := make(map[string]bool, len(result.Individuals))
	for i := range result.Individuals {
		known[result.Individuals[i].ID] = true
	}

	validation := models.OrphanValidation{
		CleanedFamilies: make([]models.Family, 0, len(result.Families)),
	}

	for i := range result.Families {
		cleaned := copyFamily(&result.Families[i])

		if cleaned.HusbandID != "" && !known[cleaned.HusbandID] {
			validation.Warnings = append(validation.Warnings, orphanIssue(cleaned.ID, "husband", cleaned.HusbandID))
			cleaned.HusbandID = ""
		}

		if cleaned.WifeID != "" && !known[cleaned.WifeID] {
			validation.Warnings = append(validation.Warnings, orphanIssue(cleaned.ID, "wife", cleaned.WifeID))
			cleaned.WifeID = ""
		}

		if len(cleaned.ChildIDs) > 0 {
			kept := cleaned.ChildIDs[:0]
			for _, childID := range cleaned.ChildIDs {
				if known[childID] {
					kept = append(kept, childID)
					continue
				}

				validation.Warnings = append(validation.Warnings, orphanIssue(cleaned.ID, "children", childID))
			}

			cleaned.ChildIDs = kept
			if len(cleaned.ChildIDs) == 0 {
				cleaned.ChildIDs = nil
			}
		}

		validation.CleanedFamilies = append(validation.CleanedFamilies, cleaned)
	}

	validation.HasOrphans = len(validation.Warnings) > 0

	return validation
}

// copyFamily deep-copies a family so cleaning never aliases the parsed
// record's slices.
func copyFamily(fam *models.Family) models.Family {
	cleaned := *fam

	if fam.ChildIDs != nil {
		cleaned.ChildIDs = make([]string, len(fam.ChildIDs))
		copy(cleaned.ChildIDs, fam.ChildIDs)
	}

	if fam.MarriageDate != nil {
		date := *fam.MarriageDate
		cleaned.MarriageDate = &date
	}

	return cleaned
}

func orphanIssue(familyID, field, individualID string) models.ParseIssue {
	return models.ParseIssue{
		Severity:     models.SeverityWarning,
		Code:         models.CodeOrphanedReference,
		Message:      fmt.Sprintf("family %s references unknown individual %s in field %s", familyID, individualID, field),
		RecordID:     familyID,
		Field:        field,
		SuggestedFix: fmt.Sprintf("remove the reference to %s or include the individual record in the export", individualID),
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
