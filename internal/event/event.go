package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

// Instrument identifies which part of the observatory an event belongs to
type Instrument string

const (
	InstrumentAIA Instrument = "AIA"
	InstrumentHMI Instrument = "HMI"
	InstrumentSDO Instrument = "SDO" // spacecraft level, also the fallback
)

// ParseInstrument maps free text onto an Instrument, defaulting to SDO
func ParseInstrument(s string) Instrument {
	switch Instrument(strings.ToUpper(strings.TrimSpace(s))) {
	case InstrumentAIA:
		return InstrumentAIA
	case InstrumentHMI:
		return InstrumentHMI
	default:
		return InstrumentSDO
	}
}

// Event represents one record of the canonical timeline
type Event struct {
	ID         string     `json:"id"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"` // zero when the source did not report an end
	Instrument Instrument `json:"instrument"`
	Comment    string     `json:"comment"`
	Source     string     `json:"source"`
	Count      int        `json:"count,omitempty"` // number of source records merged into this one
}

// GenerateID creates a deterministic ID for an event based on stable fields
func GenerateID(start time.Time, instrument Instrument, comment string) string {
	h := sha1.New()
	h.Write([]byte(start.UTC().Format(time.RFC3339) + "|" + string(instrument) + "|" + comment))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// NewEvent creates a new Event with ID populated
func NewEvent(start, end time.Time, instrument Instrument, comment, source string) *Event {
	if instrument == "" {
		instrument = InstrumentSDO
	}
	return &Event{
		ID:         GenerateID(start, instrument, comment),
		Start:      start,
		End:        end,
		Instrument: instrument,
		Comment:    comment,
		Source:     source,
		Count:      1,
	}
}

// HasEnd reports whether the end time is known
func (e *Event) HasEnd() bool {
	return !e.End.IsZero()
}

// Clone returns a shallow copy of the event
func (e *Event) Clone() *Event {
	c := *e
	return &c
}
