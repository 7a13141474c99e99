package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByStart      SortOrder = "start"
	SortByInstrument SortOrder = "instrument"
	SortBySource     SortOrder = "source"
)

// ParseSortOrder validates a sort order name
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "", SortByStart:
		return SortByStart, nil
	case SortByInstrument, SortBySource:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be start, instrument or source)", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order.
// Ties fall back to start time, then to the existing order.
func sortEvents(events []*event.Event, sortOrder SortOrder) {
	switch sortOrder {
	case SortByStart:
		event.SortByStart(events)
	case SortByInstrument:
		sort.SliceStable(events, func(i, j int) bool {
			if events[i].Instrument != events[j].Instrument {
				return events[i].Instrument < events[j].Instrument
			}
			return events[i].Start.Before(events[j].Start)
		})
	case SortBySource:
		sort.SliceStable(events, func(i, j int) bool {
			si, sj := strings.ToLower(events[i].Source), strings.ToLower(events[j].Source)
			if si != sj {
				return si < sj
			}
			return events[i].Start.Before(events[j].Start)
		})
	}
}
