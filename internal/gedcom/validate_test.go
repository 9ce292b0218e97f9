package gedcom

import (
	"reflect"
	"testing"

	"github.com/rootlinehq/rootline/internal/models"
)

func parsedFixture() models.ParsingResult {
	return models.ParsingResult{
		Success: true,
		Version: "5.5.1",
		Individuals: []models.Individual{
			{ID: "I1", GivenName: "John", Surname: "Smith", SpouseFamilies: []string{"F1"}},
			{ID: "I2", GivenName: "Mary", Surname: "Jones", SpouseFamilies: []string{"F1"}},
			{ID: "I3", GivenName: "Bobby", Surname: "Smith", ChildOfFamily: "F1"},
		},
		Families: []models.Family{
			{ID: "F1", HusbandID: "I1", WifeID: "I2", ChildIDs: []string{"I3"}},
		},
	}
}

func TestValidateRelationshipConsistency_Clean(t *testing.T) {
	parsed := parsedFixture()

	if issues := ValidateRelationshipConsistency(&parsed); len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
}

func TestValidateRelationshipConsistency_UncorroboratedMembership(t *testing.T) {
	parsed := parsedFixture()
	parsed.Individuals = append(parsed.Individuals,
		models.Individual{ID: "I4", ChildOfFamily: "F1"},      // not in F1's child list
		models.Individual{ID: "I5", SpouseFamilies: []string{"F1"}}, // not husband or wife
		models.Individual{ID: "I6", ChildOfFamily: "F9"},      // family does not exist
	)

	issues := ValidateRelationshipConsistency(&parsed)
	if len(issues) != 3 {
		t.Fatalf("issues = %d, want 3: %+v", len(issues), issues)
	}

	for _, issue := range issues {
		if issue.Code != models.CodeRoleMismatch || issue.Severity != models.SeverityWarning {
			t.Errorf("unexpected issue: %+v", issue)
		}
	}
}

func TestValidateOrphanedReferences_Clean(t *testing.T) {
	parsed := parsedFixture()

	validation := ValidateOrphanedReferences(&parsed)
	if validation.HasOrphans {
		t.Errorf("expected no orphans, got %+v", validation.Warnings)
	}
	if len(validation.CleanedFamilies) != 1 {
		t.Fatalf("cleaned families = %d, want 1", len(validation.CleanedFamilies))
	}
}

func TestValidateOrphanedReferences_OrphanedChild(t *testing.T) {
	parsed := parsedFixture()
	parsed.Families[0].ChildIDs = append(parsed.Families[0].ChildIDs, "I99")

	original := parsed.Families[0]
	originalChildren := append([]string(nil), original.ChildIDs...)

	validation := ValidateOrphanedReferences(&parsed)

	if !validation.HasOrphans {
		t.Fatal("HasOrphans = false, want true")
	}
	if len(validation.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want exactly one", validation.Warnings)
	}

	warn := validation.Warnings[0]
	if warn.Field != "children" || warn.RecordID != "F1" || warn.SuggestedFix == "" {
		t.Errorf("unexpected warning: %+v", warn)
	}

	cleaned := validation.CleanedFamilies[0]
	if !reflect.DeepEqual(cleaned.ChildIDs, []string{"I3"}) {
		t.Errorf("cleaned children = %v, want [I3]", cleaned.ChildIDs)
	}

	// The parsed input must be byte-for-byte unchanged.
	if !reflect.DeepEqual(parsed.Families[0].ChildIDs, originalChildren) {
		t.Errorf("original families mutated: %v", parsed.Families[0].ChildIDs)
	}
}

func TestValidateOrphanedReferences_OrphanedParents(t *testing.T) {
	parsed := parsedFixture()
	parsed.Families[0].HusbandID = "I77"
	parsed.Families[0].WifeID = "I88"

	validation := ValidateOrphanedReferences(&parsed)

	if len(validation.Warnings) != 2 {
		t.Fatalf("warnings = %+v, want two", validation.Warnings)
	}

	cleaned := validation.CleanedFamilies[0]
	if cleaned.HusbandID != "" || cleaned.WifeID != "" {
		t.Errorf("cleaned parents = %q/%q, want empty", cleaned.HusbandID, cleaned.WifeID)
	}

	if parsed.Families[0].HusbandID != "I77" || parsed.Families[0].WifeID != "I88" {
		t.Error("original families mutated")
	}
}

func TestValidateOrphanedReferences_EveryPointerResolves(t *testing.T) {
	parsed := parsedFixture()
	parsed.Families = append(parsed.Families,
		models.Family{ID: "F2", HusbandID: "I1", WifeID: "I99", ChildIDs: []string{"I2", "I98", "I3"}},
	)

	validation := ValidateOrphanedReferences(&parsed)

	known := map[string]bool{"I1": true, "I2": true, "I3": true}
	for _, fam := range validation.CleanedFamilies {
		if fam.HusbandID != "" && !known[fam.HusbandID] {
			t.Errorf("family %s husband %s unresolved", fam.ID, fam.HusbandID)
		}
		if fam.WifeID != "" && !known[fam.WifeID] {
			t.Errorf("family %s wife %s unresolved", fam.ID, fam.WifeID)
		}
		for _, child := range fam.ChildIDs {
			if !known[child] {
				t.Errorf("family %s child %s unresolved", fam.ID, child)
			}
		}
	}
}
