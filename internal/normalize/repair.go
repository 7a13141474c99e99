package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	// dottedTimePattern matches an hour.minute time of day such as "18.15",
	// but not the components of a dotted date such as "2010.05.18"
	dottedTimePattern = regexp.MustCompile(`(^|[\s-])(\d{1,2})\.(\d{2})\b`)

	// trailingRangePattern matches a trailing " - 21:00" end of a time range
	trailingRangePattern = regexp.MustCompile(`\s+-\s*\d{1,2}:\d{2}(:\d{2})?$`)

	// yearPattern accepts a four-digit year hint
	yearPattern = regexp.MustCompile(`^\d{4}$`)
)

// markers are annotations that appear glued to timestamps in the source tables
var markers = []string{"UT", "TBD", "ongoing", "AIA", "HMI"}

// Clean strips annotations from a timestamp token and collapses whitespace.
// With extra set, dotted times of day are rewritten with a colon first.
func Clean(token string, extra bool) string {
	s := strings.Join(strings.Fields(token), " ")

	if extra {
		s = dottedTimePattern.ReplaceAllString(s, "${1}${2}:${3}")
	}

	for _, m := range markers {
		s = strings.ReplaceAll(s, m, "")
	}

	s = strings.Join(strings.Fields(s), " ")
	s = trailingRangePattern.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}

// Repair reconstructs a timestamp from a malformed or partial token.
//
// The token is cleaned and retried against the catalogue, then matched by
// shape, in order:
//
//  1. 4-5 characters without "/": a time of day on the anchor's date
//  2. 4-5 characters with "/": a month/day in the hinted year
//  3. 9-12 characters with a space: "month/day hour:minute" in the hinted year
//  4. 15-16 characters: a full date and time that carries its own year
//  5. candidates joined by "-": only the first candidate is resolved
//  6. anything else: a leading slice of length len/(len/10), in the hinted year
//
// Rules 5 and 6 lose information by construction.
func Repair(token string, hints Hints) (time.Time, error) {
	cleaned := Clean(token, hints.ExtraClean)
	if cleaned == "" {
		return time.Time{}, unparseable(token, "nothing left after cleaning")
	}

	if t, ok := parseCatalogue(cleaned, hints.Formats); ok {
		return t, nil
	}

	t, err := repairShape(token, cleaned, hints)
	if err == nil || !isUnparseable(err) {
		return t, err
	}

	// Candidates joined by a dash, e.g. "2010.05.01 - 02"
	if first, _, found := strings.Cut(cleaned, "-"); found {
		first = strings.TrimSpace(first)
		if first == "" {
			return time.Time{}, unparseable(token, "empty first candidate")
		}
		if t, ok := parseCatalogue(first, hints.Formats); ok {
			return t, nil
		}
		return repairShape(token, first, hints)
	}

	t, cerr := repairCompound(token, cleaned, hints)
	if cerr == nil {
		return t, nil
	}
	if !isUnparseable(cerr) {
		return time.Time{}, cerr
	}

	return time.Time{}, err
}

// repairShape applies the length-keyed rules to a cleaned token
func repairShape(token, s string, hints Hints) (time.Time, error) {
	n := len(s)

	switch {
	case (n == 4 || n == 5) && !strings.Contains(s, "/"):
		return onAnchorDate(token, s, hints.Anchor)

	case n == 4 || n == 5:
		year, err := requireYear(token, hints.Year)
		if err != nil {
			return time.Time{}, err
		}
		if t, ok := parseAny(year+"/"+s, "2006/1/2"); ok {
			return t, nil
		}

	case n >= 9 && n <= 12 && strings.Contains(s, " "):
		year, err := requireYear(token, hints.Year)
		if err != nil {
			return time.Time{}, err
		}
		if t, ok := withYear(s, year); ok {
			return t, nil
		}

	case n == 15 || n == 16:
		if t, ok := parseAny(s,
			"1/2/2006 15:04",
			"2006/1/2 15:04",
			"2006-1-2 15:04",
			"2006.1.2 15:04",
			"1/2/06 15:04:05",
			"2-Jan-06 15:04",
		); ok {
			return t, nil
		}
	}

	return time.Time{}, unparseable(token, "no repair rule matched")
}

// repairCompound handles tokens holding several date-time pairs by keeping a
// leading slice of the string. The slice length is a heuristic, not a parse.
func repairCompound(token, s string, hints Hints) (time.Time, error) {
	n := len(s)
	if n < 10 {
		return time.Time{}, unparseable(token, "no repair rule matched")
	}

	year, err := requireYear(token, hints.Year)
	if err != nil {
		return time.Time{}, err
	}

	idx := n / (n / 10)
	prefix := strings.TrimSpace(s[:idx])

	if t, ok := parseCatalogue(prefix, hints.Formats); ok {
		return t, nil
	}
	if t, ok := withYear(prefix, year); ok {
		return t, nil
	}
	if prefix == s {
		return time.Time{}, unparseable(token, "no repair rule matched")
	}
	return repairShape(token, prefix, hints)
}

// withYear splices year into a "month/day clock" token
func withYear(s, year string) (time.Time, bool) {
	date, clock, found := strings.Cut(s, " ")
	if !found {
		return time.Time{}, false
	}
	return parseAny(date+"/"+year+" "+clock, "1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006 1504")
}

// onAnchorDate combines a bare time of day with the anchor's calendar date
func onAnchorDate(token, clock string, anchor time.Time) (time.Time, error) {
	if anchor.IsZero() {
		return time.Time{}, &MissingAnchorError{Token: token}
	}

	tod, ok := parseTimeOfDay(clock)
	if !ok {
		return time.Time{}, unparseable(token, "not a time of day")
	}

	y, m, d := anchor.Date()
	return time.Date(y, m, d, tod.Hour(), tod.Minute(), tod.Second(), 0, anchor.Location()), nil
}

func requireYear(token, year string) (string, error) {
	year = strings.TrimSpace(year)
	if !yearPattern.MatchString(year) {
		return "", unparseable(token, "a four-digit year hint is required")
	}
	return year, nil
}

func isUnparseable(err error) bool {
	_, ok := err.(*UnparseableTimestampError)
	return ok
}
