// Package timeline builds the merged observatory event timeline from the
// dataset catalogue: it expands or crawls each dataset into documents,
// fetches them, splits them into rows, reshapes the rows into events, and
// merges near-duplicates.
package timeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/dataset"
	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/logger"
	"github.com/pfrederiksen/sdo-timeline/internal/normalize"
	"github.com/pfrederiksen/sdo-timeline/internal/scraper"
)

// Fetcher retrieves documents and crawls listing pages
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*scraper.Document, error)
	Links(ctx context.Context, listing, substr string) ([]string, error)
}

// Result is the outcome of one build
type Result struct {
	Events    []*event.Event
	Documents int // documents fetched and parsed
	Missing   int // documents that did not exist
	Rows      int // events produced before merging
}

// Builder runs the timeline pipeline
type Builder struct {
	fetcher  Fetcher
	reshaper *normalize.Reshaper
	window   time.Duration
	now      func() time.Time
	log      *logger.Logger
	metrics  *logger.Metrics
}

// Option configures a Builder
type Option func(*Builder)

// WithWindow sets the merge window
func WithWindow(d time.Duration) Option {
	return func(b *Builder) {
		b.window = d
	}
}

// WithClock fixes the time used to expand open-ended year ranges
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) {
		b.log = l
	}
}

// WithMetrics sets the metrics tracker
func WithMetrics(m *logger.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// NewBuilder creates a Builder that fetches through f
func NewBuilder(f Fetcher, opts ...Option) *Builder {
	b := &Builder{
		fetcher: f,
		window:  event.MergeWindow,
		now:     time.Now,
		log:     logger.Default(),
		metrics: logger.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reshaper = normalize.NewReshaper(b.log, b.metrics)
	return b
}

// Build produces the sorted, merged timeline for the given datasets. Any
// timestamp or code failure aborts the build; a wrong timestamp is worse
// than no timeline.
func (b *Builder) Build(ctx context.Context, datasets []dataset.Dataset) (*Result, error) {
	started := time.Now()
	res := &Result{}

	var events []*event.Event
	for _, d := range datasets {
		targets, err := b.targets(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
		}

		for _, t := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			evts, err := b.document(ctx, d, t, res)
			if err != nil {
				return nil, fmt.Errorf("dataset %s: %w", d.Name, err)
			}
			events = append(events, evts...)
		}
	}

	res.Rows = len(events)
	event.SortByStart(events)

	merged, err := event.Merge(events, b.window)
	if err != nil {
		return nil, fmt.Errorf("merging events: %w", err)
	}
	res.Events = merged

	b.metrics.AddCounter("events.merged", int64(len(events)-len(merged)))
	b.metrics.SetGauge("events.final", float64(len(merged)))
	b.metrics.RecordTiming("build", time.Since(started))

	b.log.Info("timeline built", logger.Fields{
		"datasets":  len(datasets),
		"documents": res.Documents,
		"missing":   res.Missing,
		"rows":      res.Rows,
		"events":    len(merged),
	})

	return res, nil
}

// targets lists the documents of a dataset, crawling its listing page when needed
func (b *Builder) targets(ctx context.Context, d dataset.Dataset) ([]dataset.Target, error) {
	if !d.Scrape {
		return d.Expand(b.now()), nil
	}

	links, err := b.fetcher.Links(ctx, d.URL, d.LinkSubstring())
	if err != nil {
		return nil, fmt.Errorf("crawling %s: %w", d.URL, err)
	}

	targets := make([]dataset.Target, 0, len(links))
	for _, l := range links {
		targets = append(targets, d.Target(l))
	}
	return targets, nil
}

// document fetches one target and reshapes its rows into events
func (b *Builder) document(ctx context.Context, d dataset.Dataset, t dataset.Target, res *Result) ([]*event.Event, error) {
	fetchStart := time.Now()
	doc, err := b.fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return nil, err
	}
	b.metrics.RecordTiming("fetch", time.Since(fetchStart))

	if doc.Missing {
		res.Missing++
		b.metrics.IncrCounter("documents.missing")
		b.log.Info("document not found, skipping", logger.Fields{
			"dataset": d.Name,
			"url":     t.URL,
		})
		return nil, nil
	}

	nctx := d.Context(t, scraper.FirstLine(doc.Body))

	rows, err := b.rows(d, nctx, doc)
	if errors.Is(err, scraper.ErrTableNotFound) {
		res.Missing++
		b.metrics.IncrCounter("documents.malformed")
		b.log.Warn("document has no usable table, skipping", logger.Fields{
			"dataset": d.Name,
			"url":     t.URL,
			"table":   d.Table,
		})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.URL, err)
	}

	res.Documents++
	b.metrics.IncrCounter("documents.parsed")

	events := make([]*event.Event, 0, len(rows))
	for _, row := range rows {
		evt, err := b.reshaper.Reshape(row, nctx)
		if err != nil {
			return nil, err
		}
		if evt != nil {
			events = append(events, evt)
		}
	}

	b.log.Debug("document parsed", logger.Fields{
		"dataset": d.Name,
		"source":  nctx.Source,
		"layout":  string(nctx.Layout),
		"rows":    len(rows),
		"events":  len(events),
	})
	return events, nil
}

// rows splits a document according to its layout
func (b *Builder) rows(d dataset.Dataset, nctx normalize.Context, doc *scraper.Document) ([]normalize.Row, error) {
	body := bytes.NewReader(doc.Body)

	switch nctx.Layout {
	case normalize.LayoutHTMLRows:
		return scraper.ParseHTMLRows(body, d.Table, d.SkipRows)

	case normalize.LayoutColumns:
		var (
			blocks [][]string
			err    error
		)
		if isHTML(doc.URL) {
			blocks, err = scraper.ParseHTMLColumns(body, d.Table, d.SkipRows)
		} else {
			blocks, err = scraper.ParseTextBlocks(body, d.SkipRows)
		}
		if err != nil {
			return nil, err
		}
		return b.reshaper.Unpivot(blocks, nctx), nil

	default:
		return scraper.ParseText(body, d.SkipRows)
	}
}

func isHTML(location string) bool {
	l := strings.ToLower(location)
	return strings.HasSuffix(l, ".html") || strings.HasSuffix(l, ".htm")
}
