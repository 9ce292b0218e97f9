// Package gedcom parses GEDCOM interchange text into a forest of
// individual and family records, normalizes date values, and checks the
// referential integrity of the parsed forest.
//
// Parsing is tolerant: a missing or unsupported schema version is the only
// fatal condition. Unparseable dates and dangling pointers are recorded as
// structured warnings and never abort the walk. The package is pure; it
// performs no I/O and holds no shared state.
package gedcom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rootlinehq/rootline/internal/models"
)

// SupportedVersions are the GEDCOM schema versions the parser accepts.
var SupportedVersions = []string{"5.5", "5.5.1"}

// record is one node of the tokenized, level-tagged record tree.
type record struct {
	level    int
	xref     string
	tag      string
	value    string
	children []*record
}

// child returns the first child with the given tag, or nil.
func (r *record) child(tag string) *record {
	for _, c := range r.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// childValue returns the value of the first child with the given tag.
func (r *record) childValue(tag string) string {
	if c := r.child(tag); c != nil {
		return c.value
	}
	return ""
}

// tokenize splits GEDCOM text into lines of the form
// "LEVEL [@XREF@] TAG [VALUE]" and rebuilds the record tree using the
// level numbers. Malformed lines are skipped.
func tokenize(text string) []*record {
	var roots []*record
	var stack []*record

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec := parseLine(line)
		if rec == nil {
			continue
		}

		// Pop the stack until the parent of this level is on top.
		for len(stack) > 0 && stack[len(stack)-1].level >= rec.level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			roots = append(roots, rec)
		} else {
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, rec)
		}

		stack = append(stack, rec)
	}

	return roots
}

// parseLine parses a single GEDCOM line, returning nil when the line does
// not follow the level/tag shape.
func parseLine(line string) *record {
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 {
		return nil
	}

	level, err := strconv.Atoi(parts[0])
	if err != nil || level < 0 {
		return nil
	}

	rec := &record{level: level}

	rest := parts[1:]
	if strings.HasPrefix(rest[0], "@") && strings.HasSuffix(rest[0], "@") {
		if len(rest) < 2 {
			return nil
		}

		rec.xref = stripXref(rest[0])
		rec.tag = rest[1]

		return rec
	}

	rec.tag = rest[0]
	if len(rest) > 1 {
		rec.value = rest[1]
	}

	return rec
}

// stripXref removes the surrounding @-delimiters from a cross-reference
// pointer, e.g. "@I1@" -> "I1".
func stripXref(s string) string {
	return strings.Trim(s, "@")
}

// DetectVersion scans the text for the HEAD > GEDC > VERS declaration and
// returns the declared version, or "" when no declaration is present.
func DetectVersion(text string) string {
	for _, root := range tokenize(text) {
		if root.tag != "HEAD" {
			continue
		}

		if gedc := root.child("GEDC"); gedc != nil {
			return gedc.childValue("VERS")
		}
	}

	return ""
}

// ValidateVersion rejects an empty version string and any version outside
// the supported schema versions.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("no GEDCOM version declaration found")
	}

	for _, v := range SupportedVersions {
		if version == v {
			return nil
		}
	}

	return fmt.Errorf("unsupported GEDCOM version %q (supported: %s)",
		version, strings.Join(SupportedVersions, ", "))
}

// Parse converts raw GEDCOM text into a ParsingResult. A missing or
// unsupported version is the only fatal path; every other problem is
// recorded as a warning and parsing continues.
func Parse(text string) models.ParsingResult {
	version := DetectVersion(text)
	if err := ValidateVersion(version); err != nil {
		return models.ParsingResult{
			Success: false,
			Version: version,
			Errors: []models.ParseIssue{{
				Severity: models.SeverityError,
				Code:     models.CodeUnsupportedVersion,
				Message:  err.Error(),
			}},
		}
	}

	result := models.ParsingResult{
		Success:     true,
		Version:     version,
		Individuals: []models.Individual{},
		Families:    []models.Family{},
	}

	for _, root := range tokenize(text) {
		// The record kinds form a closed set; extend this switch to add
		// a new kind.
		switch root.tag {
		case "INDI":
			ind, warnings := extractIndividual(root)
			result.Individuals = append(result.Individuals, ind)
			result.Errors = append(result.Errors, warnings...)
		case "FAM":
			fam, warnings := extractFamily(root)
			result.Families = append(result.Families, fam)
			result.Errors = append(result.Errors, warnings...)
		default:
			// HEAD, TRLR, SUBM and any vendor records carry no
			// genealogical payload here.
		}
	}

	return result
}

// extractIndividual builds an Individual from an INDI record. A failed
// date normalization is recorded twice, as a structured per-field error on
// the individual and as a flat warning on the result, but never aborts
// extraction; the field is left nil.
func extractIndividual(rec *record) (models.Individual, []models.ParseIssue) {
	ind := models.Individual{ID: rec.xref}

	if name := rec.childValue("NAME"); name != "" {
		ind.GivenName, ind.Surname = splitName(name)
	}

	ind.Sex = rec.childValue("SEX")

	var warnings []models.ParseIssue

	if birt := rec.child("BIRT"); birt != nil {
		ind.Birth = extractEvent(birt, &ind, "birth_date", &warnings)
	}

	if deat := rec.child("DEAT"); deat != nil {
		ind.Death = extractEvent(deat, &ind, "death_date", &warnings)
	}

	if famc := rec.childValue("FAMC"); famc != "" {
		ind.ChildOfFamily = stripXref(famc)
	}

	for _, c := range rec.children {
		if c.tag == "FAMS" && c.value != "" {
			ind.SpouseFamilies = append(ind.SpouseFamilies, stripXref(c.value))
		}
	}

	return ind, warnings
}

// extractEvent reads the DATE and PLAC sub-records of a BIRT or DEAT
// record, normalizing the date and recording failures on both the
// individual and the warning list.
func extractEvent(rec *record, ind *models.Individual, field string, warnings *[]models.ParseIssue) *models.EventDetail {
	ev := &models.EventDetail{Place: rec.childValue("PLAC")}

	raw := rec.childValue("DATE")
	if raw == "" {
		return ev
	}

	date := NormalizeDate(raw)
	if !date.Valid {
		ind.DateErrors = append(ind.DateErrors, models.FieldError{
			Field:   field,
			Value:   raw,
			Message: date.Error,
		})
		*warnings = append(*warnings, models.ParseIssue{
			Severity: models.SeverityWarning,
			Code:     models.CodeInvalidDate,
			Message:  fmt.Sprintf("%s: %s", field, date.Error),
			RecordID: ind.ID,
			Field:    field,
		})

		return ev
	}

	ev.Date = &date

	return ev
}

// splitName separates a GEDCOM NAME value into given name and surname
// using the slash-delimited surname convention ("John /Smith/"). When the
// convention is absent, the whole string becomes the given name.
func splitName(name string) (given, surname string) {
	first := strings.Index(name, "/")
	if first < 0 {
		return strings.TrimSpace(name), ""
	}

	second := strings.Index(name[first+1:], "/")
	if second < 0 {
		return strings.TrimSpace(name), ""
	}

	given = strings.TrimSpace(name[:first])
	surname = strings.TrimSpace(name[first+1 : first+1+second])

	return given, surname
}

// extractFamily builds a Family from a FAM record.
func extractFamily(rec *record) (models.Family, []models.ParseIssue) {
	fam := models.Family{ID: rec.xref}

	if husb := rec.childValue("HUSB"); husb != "" {
		fam.HusbandID = stripXref(husb)
	}

	if wife := rec.childValue("WIFE"); wife != "" {
		fam.WifeID = stripXref(wife)
	}

	for _, c := range rec.children {
		if c.tag == "CHIL" && c.value != "" {
			fam.ChildIDs = append(fam.ChildIDs, stripXref(c.value))
		}
	}

	var warnings []models.ParseIssue

	if marr := rec.child("MARR"); marr != nil {
		if raw := marr.childValue("DATE"); raw != "" {
			date := NormalizeDate(raw)
			if date.Valid {
				fam.MarriageDate = &date
			} else {
				warnings = append(warnings, models.ParseIssue{
					Severity: models.SeverityWarning,
					Code:     models.CodeInvalidDate,
					Message:  fmt.Sprintf("marriage_date: %s", date.Error),
					RecordID: fam.ID,
					Field:    "marriage_date",
				})
			}
		}
	}

	return fam, warnings
}
