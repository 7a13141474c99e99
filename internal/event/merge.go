package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MergeWindow is the default distance between start times within which
// consecutive events are treated as the same physical occurrence.
const MergeWindow = 5 * time.Minute

// ErrUnsorted is returned by Merge when its input is not ordered by start time
var ErrUnsorted = errors.New("events not sorted by start time")

// Merge consolidates a start-sorted sequence of events in one forward pass.
//
// An event whose start is within window of the last event absorbed into the
// open event is folded into it: the end is overwritten, a disagreeing
// instrument becomes SDO, and comment and source are joined with " and "
// unless already contained. Otherwise the open event is closed and a new one
// is opened from the incoming event.
//
// This is a greedy chain, not clustering: events 4 minutes apart keep extending
// the same open event however far the last one ends up from the first.
//
// Input events are never modified.
func Merge(events []*Event, window time.Duration) ([]*Event, error) {
	if len(events) == 0 {
		return []*Event{}, nil
	}

	for i := 1; i < len(events); i++ {
		if events[i].Start.Before(events[i-1].Start) {
			return nil, fmt.Errorf("%w: event %d starts %s before event %d at %s",
				ErrUnsorted, i, events[i].Start.Format(time.RFC3339),
				i-1, events[i-1].Start.Format(time.RFC3339))
		}
	}

	merged := make([]*Event, 0, len(events))
	open := seed(events[0])
	last := events[0].Start

	for _, evt := range events[1:] {
		if evt.Start.Sub(last) <= window {
			absorb(open, evt)
			last = evt.Start
			continue
		}
		merged = append(merged, finalize(open))
		open = seed(evt)
		last = evt.Start
	}

	merged = append(merged, finalize(open))
	return merged, nil
}

// seed opens a new accumulator from a copy of evt
func seed(evt *Event) *Event {
	acc := evt.Clone()
	if acc.Count == 0 {
		acc.Count = 1
	}
	if acc.Instrument == "" {
		acc.Instrument = InstrumentSDO
	}
	return acc
}

// absorb folds evt into the open accumulator
func absorb(acc, evt *Event) {
	acc.End = evt.End

	if evt.Instrument != acc.Instrument {
		acc.Instrument = InstrumentSDO
	}

	acc.Comment = join(acc.Comment, evt.Comment)
	acc.Source = join(acc.Source, evt.Source)

	if evt.Count > 0 {
		acc.Count += evt.Count
	} else {
		acc.Count++
	}
}

// finalize recomputes the ID once an accumulator is closed
func finalize(acc *Event) *Event {
	acc.ID = GenerateID(acc.Start, acc.Instrument, acc.Comment)
	return acc
}

func join(existing, incoming string) string {
	if strings.Contains(existing, incoming) {
		return existing
	}
	if existing == "" {
		return incoming
	}
	return existing + " and " + incoming
}
