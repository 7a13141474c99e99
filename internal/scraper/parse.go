package scraper

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/sdo-timeline/internal/normalize"
)

// ErrTableNotFound indicates a hypertext document without the requested table
var ErrTableNotFound = errors.New("table not found")

// cellSeparator splits fixed-width text rows: a tab, or two or more spaces
var cellSeparator = regexp.MustCompile(`\t+|\s{2,}`)

// FirstLine returns the first non-blank line of a document, trimmed
func FirstLine(body []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line
		}
	}
	return ""
}

// SplitCells splits one fixed-width text line into trimmed cells
func SplitCells(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	return cellSeparator.Split(line, -1)
}

// ParseText splits a text table into rows, skipping the first skip lines and
// any blank lines. Row numbers are 1-based line numbers in the document.
func ParseText(r io.Reader, skip int) ([]normalize.Row, error) {
	var rows []normalize.Row

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	n := 0
	for sc.Scan() {
		n++
		if n <= skip {
			continue
		}
		cells := SplitCells(sc.Text())
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, normalize.Row{Cells: cells, Number: n})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading text table: %w", err)
	}
	return rows, nil
}

// ParseTextBlocks splits a column-oriented text document into blank-line
// separated blocks of trimmed lines, after skipping the first skip lines
func ParseTextBlocks(r io.Reader, skip int) ([][]string, error) {
	var (
		blocks [][]string
		cur    []string
	)

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		if n <= skip {
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading text blocks: %w", err)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks, nil
}

// table returns the index-th <table> of a document
func table(r io.Reader, index int) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tables := doc.Find("table")
	if index < 0 || index >= tables.Length() {
		return nil, fmt.Errorf("%w: index %d of %d", ErrTableNotFound, index, tables.Length())
	}
	return tables.Eq(index), nil
}

// tableRows returns the text of every cell, row by row. Rows of nested
// tables are not included.
func tableRows(t *goquery.Selection) [][]string {
	var out [][]string
	t.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.ParentsFiltered("table").First().Get(0) != t.Get(0) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("td, th").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
		})
		out = append(out, cells)
	})
	return out
}

// ParseHTMLRows extracts one row per <tr> of the index-th table, skipping the
// first skip rows. Row numbers count table rows from 1.
func ParseHTMLRows(r io.Reader, index, skip int) ([]normalize.Row, error) {
	t, err := table(r, index)
	if err != nil {
		return nil, err
	}

	var rows []normalize.Row
	for i, cells := range tableRows(t) {
		if i < skip || len(cells) == 0 {
			continue
		}
		rows = append(rows, normalize.Row{Cells: cells, Number: i + 1})
	}
	return rows, nil
}

// ParseHTMLColumns extracts the index-th table column by column, skipping
// the first skip rows, for column-oriented tables
func ParseHTMLColumns(r io.Reader, index, skip int) ([][]string, error) {
	t, err := table(r, index)
	if err != nil {
		return nil, err
	}

	var blocks [][]string
	for i, cells := range tableRows(t) {
		if i < skip {
			continue
		}
		for c, cell := range cells {
			for len(blocks) <= c {
				blocks = append(blocks, nil)
			}
			if cell != "" {
				blocks[c] = append(blocks[c], cell)
			}
		}
	}
	return blocks, nil
}
