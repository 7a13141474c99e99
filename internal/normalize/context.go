package normalize

import (
	"strings"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// NoComment substitutes for a comment no source field supplies
const NoComment = "No Comment"

// Layout names the column arrangement of a source table
type Layout string

const (
	// LayoutText is a fixed-width text table: start, end, then unused columns
	LayoutText Layout = "text"

	// LayoutHTMLRows is a hypertext table with one event per row and several
	// instrument-specific comment columns
	LayoutHTMLRows Layout = "html_rows"

	// LayoutColumns is a column-oriented table unpivoted into start, comment rows
	LayoutColumns Layout = "columns"

	// LayoutCoded is a start, end, numeric code table using the code table for comments
	LayoutCoded Layout = "coded"
)

// ParseLayout validates a layout name
func ParseLayout(s string) (Layout, bool) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutText, LayoutHTMLRows, LayoutColumns, LayoutCoded:
		return l, true
	}
	return "", false
}

// CommentColumn is a cell position that may carry the comment, and the
// instrument an event gets when that cell is the first non-empty one
type CommentColumn struct {
	Index      int              `yaml:"index" json:"index"`
	Instrument event.Instrument `yaml:"instrument" json:"instrument"`
}

// DefaultCommentColumns are the observation-table positions: the generic
// event column, then the AIA description, then the HMI description.
var DefaultCommentColumns = []CommentColumn{
	{Index: 2, Instrument: event.InstrumentSDO},
	{Index: 4, Instrument: event.InstrumentAIA},
	{Index: 7, Instrument: event.InstrumentHMI},
}

// Context describes the document a row came from
type Context struct {
	Dataset string
	Source  string // document identifier, copied to every event
	Year    string // four-digit year, empty when the document does not imply one
	Layout  Layout

	// Formats restricts the timestamp catalogue; empty means all formats
	Formats    []string
	ExtraClean bool

	// DefaultComment is used when a row carries no comment of its own
	DefaultComment string

	// Instrument fixes the instrument for every row; empty derives it
	Instrument event.Instrument

	CommentColumns []CommentColumn

	// Columns is the widest row the layout accounts for; zero uses the layout default
	Columns int
}

// InstrumentFromSource derives an instrument from a document name or URL
func InstrumentFromSource(source string) event.Instrument {
	switch {
	case strings.Contains(source, "AIA"):
		return event.InstrumentAIA
	case strings.Contains(source, "HMI"):
		return event.InstrumentHMI
	default:
		return event.InstrumentSDO
	}
}

func (c Context) hints() Hints {
	return Hints{
		Year:       c.Year,
		ExtraClean: c.ExtraClean,
		Formats:    c.Formats,
	}
}

func (c Context) commentColumns() []CommentColumn {
	if len(c.CommentColumns) > 0 {
		return c.CommentColumns
	}
	return DefaultCommentColumns
}

// width is the number of cells a row of this layout may hold
func (c Context) width() int {
	if c.Columns > 0 {
		return c.Columns
	}

	switch c.Layout {
	case LayoutHTMLRows:
		w := 2
		for _, cc := range c.commentColumns() {
			if cc.Index+1 > w {
				w = cc.Index + 1
			}
		}
		return w
	case LayoutColumns:
		return 2
	case LayoutCoded:
		return 3
	default:
		return 4
	}
}

func (c Context) instrument() event.Instrument {
	if c.Instrument != "" {
		return c.Instrument
	}
	return InstrumentFromSource(c.Source)
}

func (c Context) defaultComment() string {
	if s := strings.TrimSpace(c.DefaultComment); s != "" {
		return s
	}
	return NoComment
}
