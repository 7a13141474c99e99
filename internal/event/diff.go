package event

import (
	"strings"
)

// Snapshot represents a built timeline at a point in time
type Snapshot struct {
	Events    []*Event `json:"events"`     // ordered by start
	UpdatedAt string   `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make([]*Event, 0),
	}
}

// Index returns the snapshot's events keyed by ID
func (s *Snapshot) Index() map[string]*Event {
	index := make(map[string]*Event, len(s.Events))
	for _, evt := range s.Events {
		index[evt.ID] = evt
	}
	return index
}

// DiffResult contains the results of comparing two timelines
type DiffResult struct {
	NewEvents     []*Event
	RemovedEvents []*Event
	ByInstrument  map[Instrument][]*Event // new events grouped by instrument
}

// Diff compares current events against a previous snapshot and returns new and
// removed events, both in timeline order. An empty instrumentFilter (or "ALL")
// keeps every instrument.
func Diff(previous *Snapshot, current []*Event, instrumentFilter string) *DiffResult {
	result := &DiffResult{
		NewEvents:     make([]*Event, 0),
		RemovedEvents: make([]*Event, 0),
		ByInstrument:  make(map[Instrument][]*Event),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	keep := func(evt *Event) bool {
		if instrumentFilter == "" || strings.EqualFold(instrumentFilter, "ALL") {
			return true
		}
		return strings.EqualFold(string(evt.Instrument), instrumentFilter)
	}

	before := previous.Index()
	seen := make(map[string]bool, len(current))

	for _, evt := range current {
		seen[evt.ID] = true
		if !keep(evt) {
			continue
		}

		if _, exists := before[evt.ID]; !exists {
			result.NewEvents = append(result.NewEvents, evt)
			result.ByInstrument[evt.Instrument] = append(result.ByInstrument[evt.Instrument], evt)
		}
	}

	for _, evt := range previous.Events {
		if !seen[evt.ID] && keep(evt) {
			result.RemovedEvents = append(result.RemovedEvents, evt)
		}
	}

	SortByStart(result.NewEvents)
	SortByStart(result.RemovedEvents)

	return result
}

// CreateSnapshot creates a snapshot from a list of events
func CreateSnapshot(events []*Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	snap.Events = append(snap.Events, events...)
	SortByStart(snap.Events)
	return snap
}
