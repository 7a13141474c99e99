package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/pfrederiksen/sdo-timeline/internal/calendar"
	"github.com/pfrederiksen/sdo-timeline/internal/dataset"
	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/normalize"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatCSV   OutputFormat = "csv"
	FormatTSV   OutputFormat = "tsv"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatICS   OutputFormat = "ics"
)

// Header is the column order of delimited output
var Header = []string{"Start Time", "End Time", "Instrument", "Source", "Comment"}

// ParseFormat validates a format name
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatTSV, FormatJSON, FormatTable, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be csv, tsv, json, table or ics)", s)
	}
}

// WriteOutput writes the timeline in the specified format
func WriteOutput(w io.Writer, events []*event.Event, format OutputFormat) error {
	switch format {
	case FormatCSV:
		return writeDelimited(w, events, ',')
	case FormatTSV:
		return writeDelimited(w, events, '\t')
	case FormatJSON:
		return writeJSON(w, events)
	case FormatTable:
		return writeTable(w, events)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(events, calendar.DefaultName))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// record renders one event as a delimited row
func record(evt *event.Event) []string {
	end := event.Unknown
	if evt.HasEnd() {
		end = event.FormatTime(evt.End)
	}

	instrument := string(evt.Instrument)
	if instrument == "" {
		instrument = string(event.InstrumentSDO)
	}

	comment := evt.Comment
	if strings.TrimSpace(comment) == "" {
		comment = normalize.NoComment
	}

	return []string{event.FormatTime(evt.Start), end, instrument, evt.Source, comment}
}

func writeDelimited(w io.Writer, events []*event.Event, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, evt := range events {
		if err := cw.Write(record(evt)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// writeJSON outputs events as an indented JSON array
func writeJSON(w io.Writer, events []*event.Event) error {
	if events == nil {
		events = []*event.Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

func writeTable(w io.Writer, events []*event.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events found.")
		return err
	}

	table := tablewriter.NewTable(w)

	headers := make([]any, len(Header))
	for i, h := range Header {
		headers[i] = h
	}
	table.Header(headers...)

	for _, evt := range events {
		row := record(evt)
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}

// WriteDatasets lists the catalogue as a table, one row per dataset with the
// number of documents its URL expands to
func WriteDatasets(w io.Writer, datasets []dataset.Dataset, now time.Time) error {
	table := tablewriter.NewTable(w)
	table.Header("Name", "Layout", "Documents", "Source", "Description")

	for _, d := range datasets {
		layout := string(d.Layout)
		if layout == "" {
			layout = "auto"
		}

		source := d.URL
		if d.URLTemplate != "" {
			source = d.URLTemplate
		}

		documents := fmt.Sprint(len(d.Expand(now)))
		if d.Scrape {
			documents = "crawled"
		}

		if err := table.Append(d.Name, layout, documents, source, d.Description); err != nil {
			return err
		}
	}

	return table.Render()
}

// WriteCodes lists the maneuver codes in numeric order
func WriteCodes(w io.Writer, codes map[int]string) error {
	keys := make([]int, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	table := tablewriter.NewTable(w)
	table.Header("Code", "Description")
	for _, k := range keys {
		if err := table.Append(strconv.Itoa(k), codes[k]); err != nil {
			return err
		}
	}
	return table.Render()
}
