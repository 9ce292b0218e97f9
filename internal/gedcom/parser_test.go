package gedcom

import (
	"strings"
	"testing"

	"github.com/rootlinehq/rootline/internal/models"
)

const sampleHeader = `0 HEAD
1 SOUR ROOTLINE_TEST
1 GEDC
2 VERS 5.5.1
2 FORM LINEAGE-LINKED
`

func sampleFile(body string) string {
	return sampleHeader + body + "0 TRLR\n"
}

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "5.5.1", text: sampleFile(""), want: "5.5.1"},
		{name: "5.5", text: strings.ReplaceAll(sampleFile(""), "5.5.1", "5.5"), want: "5.5"},
		{name: "no header", text: "0 @I1@ INDI\n0 TRLR\n", want: ""},
		{name: "header without GEDC", text: "0 HEAD\n1 SOUR X\n0 TRLR\n", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectVersion(tc.text); got != tc.want {
				t.Errorf("DetectVersion = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	for _, v := range SupportedVersions {
		if err := ValidateVersion(v); err != nil {
			t.Errorf("ValidateVersion(%q) = %v, want nil", v, err)
		}
	}

	for _, v := range []string{"", "4.0", "7.0", "5.5.2"} {
		if err := ValidateVersion(v); err == nil {
			t.Errorf("ValidateVersion(%q) = nil, want error", v)
		}
	}
}

func TestParse_UnsupportedVersionIsFatal(t *testing.T) {
	text := strings.ReplaceAll(sampleFile("0 @I1@ INDI\n1 NAME John /Smith/\n"), "5.5.1", "7.0")

	result := Parse(text)
	if result.Success {
		t.Fatal("expected Success=false for unsupported version")
	}
	if len(result.Individuals) != 0 {
		t.Error("fatal path must not extract records")
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != models.CodeUnsupportedVersion {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
	if result.Errors[0].Severity != models.SeverityError {
		t.Errorf("severity = %q, want error", result.Errors[0].Severity)
	}
}

func TestParse_IndividualWithBirthDate(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME John /Smith/
1 SEX M
1 BIRT
2 DATE 15 JAN 1950
2 PLAC Boston, Massachusetts
`)

	result := Parse(text)
	if !result.Success {
		t.Fatalf("Parse failed: %+v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected zero warnings, got %+v", result.Errors)
	}
	if len(result.Individuals) != 1 {
		t.Fatalf("individuals = %d, want 1", len(result.Individuals))
	}

	ind := result.Individuals[0]
	if ind.ID != "I1" {
		t.Errorf("ID = %q, want I1", ind.ID)
	}
	if ind.GivenName != "John" || ind.Surname != "Smith" {
		t.Errorf("name = %q/%q, want John/Smith", ind.GivenName, ind.Surname)
	}
	if ind.Sex != "M" {
		t.Errorf("Sex = %q, want M", ind.Sex)
	}
	if ind.Birth == nil || ind.Birth.Date == nil {
		t.Fatal("birth date missing")
	}
	if ind.Birth.Date.Normalized != "1950-01-15" {
		t.Errorf("birth date = %q, want 1950-01-15", ind.Birth.Date.Normalized)
	}
	if ind.Birth.Place != "Boston, Massachusetts" {
		t.Errorf("birth place = %q", ind.Birth.Place)
	}
}

func TestParse_PartialBirthDate(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME John /Smith/
1 BIRT
2 DATE ABT 1950
`)

	result := Parse(text)
	if !result.Success || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: success=%v errors=%+v", result.Success, result.Errors)
	}

	date := result.Individuals[0].Birth.Date
	if date == nil {
		t.Fatal("birth date missing")
	}
	if date.Normalized != "1950" || !date.Partial || date.Modifier != "ABT" {
		t.Errorf("date = %+v, want normalized 1950, partial, ABT", date)
	}
}

func TestParse_BadDateRecordedTwice(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME Jane /Doe/
1 BIRT
2 DATE 30 FEB 1990
1 DEAT
2 DATE 12 NOV 2050
2 PLAC Somewhere
`)

	result := Parse(text)
	if !result.Success {
		t.Fatalf("bad dates must not abort parsing: %+v", result.Errors)
	}

	ind := result.Individuals[0]
	if ind.Birth == nil || ind.Birth.Date != nil {
		t.Error("invalid birth date must leave the field nil")
	}
	if ind.Death == nil || ind.Death.Date == nil {
		t.Error("valid death date missing")
	}
	if ind.Death.Place != "Somewhere" {
		t.Errorf("death place = %q", ind.Death.Place)
	}

	if len(ind.DateErrors) != 1 || ind.DateErrors[0].Field != "birth_date" {
		t.Errorf("DateErrors = %+v, want one birth_date entry", ind.DateErrors)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("flat warnings = %+v, want exactly one", result.Errors)
	}

	warn := result.Errors[0]
	if warn.Code != models.CodeInvalidDate || warn.RecordID != "I1" || warn.Severity != models.SeverityWarning {
		t.Errorf("unexpected warning: %+v", warn)
	}
}

func TestParse_NameWithoutSurnameConvention(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME Madonna
`)

	ind := Parse(text).Individuals[0]
	if ind.GivenName != "Madonna" || ind.Surname != "" {
		t.Errorf("name = %q/%q, want Madonna with empty surname", ind.GivenName, ind.Surname)
	}
}

func TestParse_Family(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME John /Smith/
1 FAMS @F1@
0 @I2@ INDI
1 NAME Mary /Jones/
1 FAMS @F1@
0 @I3@ INDI
1 NAME Bobby /Smith/
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 CHIL @I3@
1 MARR
2 DATE JUN 1948
`)

	result := Parse(text)
	if !result.Success || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result.Errors)
	}
	if len(result.Families) != 1 {
		t.Fatalf("families = %d, want 1", len(result.Families))
	}

	fam := result.Families[0]
	if fam.ID != "F1" || fam.HusbandID != "I1" || fam.WifeID != "I2" {
		t.Errorf("family = %+v", fam)
	}
	if len(fam.ChildIDs) != 1 || fam.ChildIDs[0] != "I3" {
		t.Errorf("children = %v, want [I3]", fam.ChildIDs)
	}
	if fam.MarriageDate == nil || fam.MarriageDate.Normalized != "1948-06" {
		t.Errorf("marriage date = %+v, want 1948-06", fam.MarriageDate)
	}

	if result.Individuals[0].SpouseFamilies[0] != "F1" {
		t.Errorf("spouse families = %v", result.Individuals[0].SpouseFamilies)
	}
	if result.Individuals[2].ChildOfFamily != "F1" {
		t.Errorf("child-of family = %q", result.Individuals[2].ChildOfFamily)
	}
}

func TestParse_ToleratesMalformedLines(t *testing.T) {
	text := sampleFile("garbage line\n0 @I1@ INDI\n1 NAME A /B/\nnot-a-level TAG\n")

	result := Parse(text)
	if !result.Success || len(result.Individuals) != 1 {
		t.Fatalf("malformed lines must be skipped: %+v", result)
	}
}

func TestExtractStatistics(t *testing.T) {
	text := sampleFile(`0 @I1@ INDI
1 NAME A /B/
1 BIRT
2 DATE 15 JAN 1950
1 DEAT
2 DATE 1999
0 @I2@ INDI
1 NAME C /D/
1 BIRT
2 DATE 30 FEB 1990
0 @F1@ FAM
1 HUSB @I1@
`)

	result := Parse(text)
	stats := ExtractStatistics(&result)

	if stats.IndividualCount != 2 || stats.FamilyCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", stats.IndividualCount, stats.FamilyCount)
	}
	if stats.DateErrorCount != 1 {
		t.Errorf("DateErrorCount = %d, want 1", stats.DateErrorCount)
	}
	if stats.EarliestDate != "1950-01-15" {
		t.Errorf("EarliestDate = %q, want 1950-01-15", stats.EarliestDate)
	}
	if stats.LatestDate != "1999" {
		t.Errorf("LatestDate = %q, want 1999", stats.LatestDate)
	}
}
