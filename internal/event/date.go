package event

import (
	"sort"
	"time"
)

// TimeLayout is how timeline timestamps are rendered in delimited output
const TimeLayout = "2006-01-02T15:04:05.000000"

// Unknown is rendered in place of an end time the source did not report
const Unknown = "Unknown"

// FormatTime renders a timeline timestamp, or Unknown for the zero time
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return t.Format(TimeLayout)
}

// SortByStart sorts events by start time. The sort is stable, so events
// with equal start times keep their ingestion order.
func SortByStart(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

// IsSorted reports whether events are in non-decreasing start order
func IsSorted(events []*Event) bool {
	for i := 1; i < len(events); i++ {
		if events[i].Start.Before(events[i-1].Start) {
			return false
		}
	}
	return true
}
