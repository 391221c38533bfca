package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExtractField returns the first match of re in text. With a capture group
// the group's value is returned, otherwise the whole match. The boolean is
// false when the pattern does not occur; callers decide whether a missing
// field is fatal for their statement layout.
func ExtractField(text string, re *regexp.Regexp) (string, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	if len(match) > 1 {
		return match[1], true
	}
	return match[0], true
}

// ParseDateDMY builds a date from day, month and four-digit year strings.
func ParseDateDMY(day, month, year string) (time.Time, error) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q", day)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q", month)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year %q", year)
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), nil
}

// ParseDateDMYWithoutCentury resolves a two-digit year against the
// statement's own start and end year. Statements spanning more than two
// consecutive years are not supported, and an entry dated outside both
// years is a data shape error rather than something to guess about.
func ParseDateDMYWithoutCentury(statementStartYear, statementEndYear int, day, month, yy string) (time.Time, error) {
	span := statementEndYear - statementStartYear
	if span != 0 && span != 1 {
		return time.Time{}, fmt.Errorf("non-consecutive statement years %d..%d are not supported", statementStartYear, statementEndYear)
	}

	y, err := strconv.Atoi(yy)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year %q", yy)
	}

	var year int
	switch y {
	case statementStartYear % 100:
		year = statementStartYear
	case statementEndYear % 100:
		year = statementEndYear
	default:
		return time.Time{}, fmt.Errorf("entry year %q is in neither statement year %d nor %d", yy, statementStartYear, statementEndYear)
	}

	return ParseDateDMY(day, month, strconv.Itoa(year))
}

// NumberFormat names a locale's digit-grouping convention.
type NumberFormat int

const (
	// NumberUS parses "1,234.56".
	NumberUS NumberFormat = iota
	// NumberCH parses "1'234.56".
	NumberCH
	// NumberDE parses "1.234,56".
	NumberDE
)

// ParseNumber parses an exact amount written in the given locale
// convention. The result is never a float.
func ParseNumber(s string, format NumberFormat) (decimal.Decimal, error) {
	switch format {
	case NumberUS:
		s = strings.ReplaceAll(s, ",", "")
	case NumberCH:
		s = strings.ReplaceAll(s, "'", "")
	case NumberDE:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		return decimal.Zero, fmt.Errorf("unknown number format %d", format)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
