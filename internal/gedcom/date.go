package gedcom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rootlinehq/rootline/internal/models"
)

// monthNumbers maps GEDCOM month abbreviations to calendar months.
var monthNumbers = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// dateModifiers are the recognized leading qualifier tokens. The qualifier
// is stripped before token dispatch and preserved on the result.
var dateModifiers = map[string]bool{
	"ABT": true, // about / approximate
	"BEF": true,
	"AFT": true,
	"BET": true,
	"CAL": true, // calculated
	"EST": true,
}

var (
	canonicalFullRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	canonicalMonthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	yearRe           = regexp.MustCompile(`^\d{1,4}$`)
)

// NormalizeDate converts heterogeneous GEDCOM date text into a canonical
// partial-date form. The normalized string is zero-padded at year,
// year-month or year-month-day granularity so canonical dates sort
// lexicographically. Failures are reported inside the returned struct;
// NormalizeDate never panics.
//
// Normalization is idempotent: feeding a normalized value back in returns
// it unchanged.
func NormalizeDate(text string) models.CanonicalDate {
	d := models.CanonicalDate{Original: text}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		d.Error = "empty date"
		return d
	}

	// Already-canonical forms pass through unchanged.
	if m := canonicalFullRe.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])

		return buildFullDate(d, year, time.Month(month), day)
	}

	if m := canonicalMonthRe.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])

		if month < 1 || month > 12 {
			d.Error = fmt.Sprintf("invalid month %02d", month)
			return d
		}

		d.Normalized = fmt.Sprintf("%04d-%02d", year, month)
		d.Valid = true
		d.Partial = true

		return d
	}

	upper := strings.ToUpper(trimmed)
	tokens := strings.Fields(upper)

	if dateModifiers[tokens[0]] {
		d.Modifier = tokens[0]
		tokens = tokens[1:]
	}

	switch len(tokens) {
	case 1:
		if !yearRe.MatchString(tokens[0]) {
			d.Error = fmt.Sprintf("unrecognized year %q", tokens[0])
			return d
		}

		year, _ := strconv.Atoi(tokens[0])
		d.Normalized = fmt.Sprintf("%04d", year)
		d.Valid = true
		d.Partial = true

		return d

	case 2:
		month, ok := monthNumbers[tokens[0]]
		if !ok {
			d.Error = fmt.Sprintf("unknown month abbreviation %q", tokens[0])
			return d
		}

		if !yearRe.MatchString(tokens[1]) {
			d.Error = fmt.Sprintf("unrecognized year %q", tokens[1])
			return d
		}

		year, _ := strconv.Atoi(tokens[1])
		d.Normalized = fmt.Sprintf("%04d-%02d", year, month)
		d.Valid = true
		d.Partial = true

		return d

	case 3:
		day, err := strconv.Atoi(tokens[0])
		if err != nil {
			d.Error = fmt.Sprintf("unrecognized day %q", tokens[0])
			return d
		}

		month, ok := monthNumbers[tokens[1]]
		if !ok {
			d.Error = fmt.Sprintf("unknown month abbreviation %q", tokens[1])
			return d
		}

		if !yearRe.MatchString(tokens[2]) {
			d.Error = fmt.Sprintf("unrecognized year %q", tokens[2])
			return d
		}

		year, _ := strconv.Atoi(tokens[2])

		return buildFullDate(d, year, month, day)

	default:
		d.Error = fmt.Sprintf("unrecognized date format %q", trimmed)
		return d
	}
}

// buildFullDate validates a literal day/month/year by reconstructing the
// date and rejecting it when the round-trip does not match (catches
// e.g. 30 FEB). On success it fills in the canonical full-date form.
func buildFullDate(d models.CanonicalDate, year int, month time.Month, day int) models.CanonicalDate {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		d.Error = fmt.Sprintf("invalid calendar date %02d %s %04d", day, month, year)
		return d
	}

	d.Normalized = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	d.Valid = true

	return d
}
