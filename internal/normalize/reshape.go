package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/logger"
)

// Row is one tokenized source row
type Row struct {
	Cells  []string
	Number int // 1-based position in the source document, for diagnostics
}

// IsBlank reports whether every cell is empty after trimming
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r Row) cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Reshaper maps rows onto canonical events. Recoverable row problems are
// reported through its logger and counted in its metrics.
type Reshaper struct {
	log     *logger.Logger
	metrics *logger.Metrics
}

// NewReshaper creates a Reshaper. A nil logger or metrics falls back to the
// package defaults.
func NewReshaper(log *logger.Logger, metrics *logger.Metrics) *Reshaper {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	return &Reshaper{log: log, metrics: metrics}
}

// Reshape converts one row into an Event according to the context's layout.
// A blank row yields a nil event and no error.
//
// Rows wider than the layout are truncated with a warning. Timestamp and code
// failures are returned; they are never replaced by a default.
func (r *Reshaper) Reshape(row Row, ctx Context) (*event.Event, error) {
	if row.IsBlank() {
		return nil, nil
	}

	row = r.fitWidth(row, ctx)

	start, err := Resolve(row.cell(0), ctx.hints())
	if err != nil {
		return nil, fmt.Errorf("%s row %d: start time: %w", ctx.Source, row.Number, err)
	}

	var (
		end        time.Time
		instrument event.Instrument
		comment    string
	)

	switch ctx.Layout {
	case LayoutHTMLRows:
		end, err = r.resolveEnd(row, ctx, start)
		instrument, comment = pickComment(row, ctx.commentColumns())

	case LayoutColumns:
		instrument = ctx.instrument()
		comment = row.cell(1)

	case LayoutCoded:
		end, err = r.resolveEnd(row, ctx, start)
		if err == nil {
			instrument = ctx.instrument()
			comment, err = LookupCode(row.cell(2))
		}

	default:
		end, err = r.resolveEnd(row, ctx, start)
		instrument = ctx.instrument()
	}
	if err != nil {
		return nil, fmt.Errorf("%s row %d: %w", ctx.Source, row.Number, err)
	}

	if comment == "" {
		comment = ctx.defaultComment()
	}

	r.metrics.IncrCounter("rows.parsed")
	return event.NewEvent(start, end, instrument, comment, ctx.Source), nil
}

// fitWidth drops the cells beyond what the layout accounts for
func (r *Reshaper) fitWidth(row Row, ctx Context) Row {
	limit := ctx.width()
	if len(row.Cells) <= limit {
		return row
	}

	shapeErr := &UnexpectedRowShapeError{
		Source:  ctx.Source,
		Row:     row.Number,
		Columns: len(row.Cells),
		Max:     limit,
	}
	r.log.Warn("row wider than layout, dropping extra columns", logger.Fields{
		"dataset": ctx.Dataset,
		"source":  ctx.Source,
		"row":     row.Number,
		"columns": len(row.Cells),
		"max":     limit,
		"error":   shapeErr.Error(),
	})
	r.metrics.IncrCounter("rows.recovered")

	row.Cells = row.Cells[:limit]
	return row
}

// resolveEnd reads the end column. An end with no digits is unknown; a bare
// time of day rolls over from start; anything else resolves with start as anchor.
func (r *Reshaper) resolveEnd(row Row, ctx Context, start time.Time) (time.Time, error) {
	raw := row.cell(1)
	cleaned := Clean(raw, ctx.ExtraClean)
	if !hasDigit(cleaned) {
		return time.Time{}, nil
	}

	// "00:10-01:00" keeps its first candidate, like " - " ranges in Clean
	if first, _, found := strings.Cut(cleaned, "-"); found && IsTimeOfDay(strings.TrimSpace(first)) {
		cleaned = strings.TrimSpace(first)
	}

	var (
		end time.Time
		err error
	)
	if IsTimeOfDay(cleaned) {
		end, err = Rollover(start, cleaned)
	} else {
		hints := ctx.hints()
		hints.Anchor = start
		end, err = Resolve(raw, hints)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("end time: %w", err)
	}

	if end.Before(start) {
		r.log.Warn("end time before start, treating end as unknown", logger.Fields{
			"dataset": ctx.Dataset,
			"source":  ctx.Source,
			"row":     row.Number,
			"start":   start.Format(time.RFC3339),
			"end":     end.Format(time.RFC3339),
		})
		r.metrics.IncrCounter("rows.end_dropped")
		return time.Time{}, nil
	}

	return end, nil
}

// pickComment returns the first non-empty comment column and its instrument
func pickComment(row Row, columns []CommentColumn) (event.Instrument, string) {
	for _, cc := range columns {
		if s := row.cell(cc.Index); s != "" {
			return cc.Instrument, s
		}
	}
	return event.InstrumentSDO, ""
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
