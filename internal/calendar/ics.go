// Package calendar renders timeline events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// DefaultName is the calendar name used when none is given
const DefaultName = "SDO Timeline"

// GenerateICS generates a single iCalendar (.ics) document holding one
// VEVENT per timeline event. Returns an empty string for no events.
func GenerateICS(events []*event.Event, name string) string {
	return generate(events, name, time.Now().UTC())
}

func generate(events []*event.Event, name string, stamp time.Time) string {
	if len(events) == 0 {
		return ""
	}
	if name == "" {
		name = DefaultName
	}

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//SDO Timeline//sdo-timeline//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeICS(name)))

	for _, evt := range events {
		writeEvent(&ics, evt, stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.Event, stamp time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	id := evt.ID
	if id == "" {
		id = event.GenerateID(evt.Start, evt.Instrument, evt.Comment)
	}
	ics.WriteString(fmt.Sprintf("UID:%s@sdo-timeline\r\n", id))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(stamp)))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(evt.Start)))

	// open-ended events carry no DTEND
	if evt.HasEnd() {
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(evt.End)))
	}

	instrument := evt.Instrument
	if instrument == "" {
		instrument = event.InstrumentSDO
	}
	summary := fmt.Sprintf("[%s] %s", instrument, evt.Comment)
	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(summary)))

	description := fmt.Sprintf("%s\nSource: %s", evt.Comment, evt.Source)
	if evt.Count > 1 {
		description = fmt.Sprintf("%s\nMerged from %d entries", description, evt.Count)
	}
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:TRANSPARENT\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// RFC 5545 text escaping
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
