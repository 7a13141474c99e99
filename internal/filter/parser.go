package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// periodLayouts are the accepted period notations, coarsest first, with the
// span each one covers
var periodLayouts = []struct {
	layout string
	years  int
	months int
	days   int
}{
	{"2006", 1, 0, 0},
	{"2006-01", 0, 1, 0},
	{"2006-01-02", 0, 0, 1},
}

// ParsePeriod parses "2021", "2021-03" or "2021-03-04" into the half-open
// UTC interval it covers
func ParsePeriod(s string) (time.Time, time.Time, error) {
	s = strings.TrimSpace(s)
	for _, p := range periodLayouts {
		if t, err := time.Parse(p.layout, s); err == nil {
			return t, t.AddDate(p.years, p.months, p.days), nil
		}
	}
	return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: use YYYY, YYYY-MM or YYYY-MM-DD", s)
}

// ParseRange parses a period or an "A..B" range of periods, where either side
// may be empty for an open end. The returned bounds are [from, to).
//
// Examples: "2014", "2014-03", "2014-03..2014-05", "2014-03-04..", "..2012".
func ParseRange(input string) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	left, right, isRange := strings.Cut(input, "..")
	if !isRange {
		from, to, err := ParsePeriod(input)
		if err != nil {
			return nil, nil, err
		}
		return &from, &to, nil
	}

	var from, to *time.Time
	if strings.TrimSpace(left) != "" {
		start, _, err := ParsePeriod(left)
		if err != nil {
			return nil, nil, err
		}
		from = &start
	}
	if strings.TrimSpace(right) != "" {
		_, end, err := ParsePeriod(right)
		if err != nil {
			return nil, nil, err
		}
		to = &end
	}

	if from == nil && to == nil {
		return nil, nil, fmt.Errorf("date range %q has no bounds", input)
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}

	return from, to, nil
}

// ParseInstruments parses a comma-separated instrument list. "all" or an
// empty string means no restriction.
func ParseInstruments(input string) ([]event.Instrument, error) {
	var out []event.Instrument
	for _, part := range strings.Split(input, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" || part == "ALL" {
			continue
		}
		// ParseInstrument falls back to SDO, so anything else round-trips
		// to a different name
		instrument := event.ParseInstrument(part)
		if string(instrument) != part {
			return nil, fmt.Errorf("unknown instrument %q: use AIA, HMI or SDO", part)
		}
		out = append(out, instrument)
	}
	return out, nil
}
