package normalize

import (
	"strings"
	"time"
)

// Format is one entry of the timestamp catalogue
type Format struct {
	Name    string
	Layout  string
	Example string
}

// Formats is the ordered timestamp catalogue. Entries are tried in order and
// the first exact match wins, so the order is part of the behavior.
var Formats = []Format{
	{Name: "dmy", Layout: "2-Jan-06 15:04:05", Example: "06-Apr-10 21:11:55"},
	{Name: "ymd-dot", Layout: "2006.1.2", Example: "2010.05.18"},
	{Name: "doy", Layout: "06-002-15:04:05", Example: "10-123-04:05:06"},
	{Name: "ymd-dot-time", Layout: "2006.1.2_15:04:05", Example: "2010.11.10_06:01:20"},
	{Name: "dmy-long", Layout: "2-Jan-2006 15:04:05", Example: "9-Apr-2010 07:30:00"},
}

// Hints carries the context a caller holds when resolving a token
type Hints struct {
	// Year is the four-digit year a document covers, empty when unknown
	Year string

	// Anchor supplies the date for time-only tokens; the zero time means none
	Anchor time.Time

	// ExtraClean rewrites dotted times of day ("18.15") before repair
	ExtraClean bool

	// Formats restricts the catalogue to the named entries when non-empty
	Formats []string
}

// Resolve parses a single date/time token into an absolute UTC timestamp.
// The catalogue is tried first; if no entry matches exactly, the token goes
// through Repair with the given hints.
func Resolve(token string, hints Hints) (time.Time, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return time.Time{}, unparseable(token, "empty token")
	}

	if t, ok := parseCatalogue(trimmed, hints.Formats); ok {
		return t, nil
	}

	return Repair(trimmed, hints)
}

// parseCatalogue tries each allowed catalogue entry in order
func parseCatalogue(token string, allowed []string) (time.Time, bool) {
	for _, f := range Formats {
		if len(allowed) > 0 && !contains(allowed, f.Name) {
			continue
		}
		if t, err := time.Parse(f.Layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// LookupFormat returns the catalogue entry with the given name
func LookupFormat(name string) (Format, bool) {
	for _, f := range Formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// parseAny tries layouts in order and returns the first success
func parseAny(value string, layouts ...string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
