// Package filter narrows a timeline to the events a caller asked for.
//
// Criteria combine with AND; within a list, any entry may match:
//   - Start range: From (inclusive) and To (exclusive)
//   - Instruments: AIA, HMI or SDO
//   - Text: case-insensitive substring of the comment or source
//
// Example usage:
//
//	from, to, err := filter.ParseRange("2014-03..2014-05")
//	f := filter.NewFilter()
//	f.From, f.To = from, to
//	f.Instruments = []event.Instrument{event.InstrumentAIA}
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	Instruments []event.Instrument `json:"instruments,omitempty"`

	// Text matches against comment and source (case-insensitive substring)
	Text []string `json:"text,omitempty"`
}

// NewFilter creates a new empty filter that matches every event
func NewFilter() *Filter {
	return &Filter{
		Instruments: []event.Instrument{},
		Text:        []string{},
	}
}

// IsEmpty reports whether the filter has no active criteria
func (f *Filter) IsEmpty() bool {
	return f.From == nil &&
		f.To == nil &&
		len(f.Instruments) == 0 &&
		len(f.Text) == 0
}

// Matches checks whether an event passes every active criterion
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	if f.From != nil && evt.Start.Before(*f.From) {
		return false
	}
	if f.To != nil && !evt.Start.Before(*f.To) {
		return false
	}

	if len(f.Instruments) > 0 {
		matched := false
		for _, instr := range f.Instruments {
			if strings.EqualFold(string(evt.Instrument), string(instr)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Text) > 0 {
		matched := false
		haystack := strings.ToLower(evt.Comment + "\n" + evt.Source)
		for _, text := range f.Text {
			if strings.Contains(haystack, strings.ToLower(text)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the matching events in their original order. An empty filter
// returns events unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0)
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active criteria
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.From != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.From.Format(time.RFC3339)))
	}

	if f.To != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.To.Format(time.RFC3339)))
	}

	if len(f.Instruments) > 0 {
		names := make([]string, len(f.Instruments))
		for i, instr := range f.Instruments {
			names[i] = string(instr)
		}
		parts = append(parts, fmt.Sprintf("Instruments: %s", strings.Join(names, ", ")))
	}

	if len(f.Text) > 0 {
		parts = append(parts, fmt.Sprintf("Text: %s", strings.Join(f.Text, ", ")))
	}

	return strings.Join(parts, " | ")
}
