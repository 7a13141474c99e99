package normalize

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/sdo-timeline/internal/logger"
)

// Unpivot turns a column-oriented document into rows. The first block lists
// every start time, one per line; each following block is the full comment
// text of one event, in the same order. The result has one two-cell row
// (start, comment) per event.
func Unpivot(blocks [][]string) ([]Row, error) {
	if len(blocks) == 0 {
		return nil, nil
	}

	starts := blockStarts(blocks[0])
	comments := blocks[1:]
	if len(comments) != len(starts) {
		return nil, fmt.Errorf("%w: %d start times but %d comment blocks",
			ErrUnexpectedRowShape, len(starts), len(comments))
	}

	rows := make([]Row, 0, len(starts))
	for i, start := range starts {
		rows = append(rows, Row{
			Cells:  []string{start, joinLines(comments[i])},
			Number: i + 1,
		})
	}
	return rows, nil
}

// Unpivot is the recovering form used during a build: when the block counts
// disagree it pairs what it can, warns, and drops the remainder.
func (r *Reshaper) Unpivot(blocks [][]string, ctx Context) []Row {
	rows, err := Unpivot(blocks)
	if err == nil {
		return rows
	}

	starts := blockStarts(blocks[0])
	comments := blocks[1:]

	n := len(starts)
	if len(comments) < n {
		n = len(comments)
	}

	r.log.Warn("column blocks do not pair up, dropping unmatched entries", logger.Fields{
		"dataset":  ctx.Dataset,
		"source":   ctx.Source,
		"starts":   len(starts),
		"comments": len(comments),
	})
	r.metrics.IncrCounter("rows.recovered")

	rows = make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{
			Cells:  []string{starts[i], joinLines(comments[i])},
			Number: i + 1,
		})
	}
	return rows
}

func joinLines(lines []string) string {
	return strings.Join(strings.Fields(strings.Join(lines, " ")), " ")
}

func blockStarts(lines []string) []string {
	var starts []string
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			starts = append(starts, s)
		}
	}
	return starts
}
