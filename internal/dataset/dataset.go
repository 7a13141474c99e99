// Package dataset holds the static description of every source document
// family the timeline is built from: where it lives, how its rows are laid
// out, and which timestamp hints apply.
package dataset

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/pfrederiksen/sdo-timeline/internal/normalize"
)

//go:embed datasets.yaml
var defaultCatalogue []byte

// Range is an inclusive integer range. A zero To on a year range means the
// current year.
type Range struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to" json:"to"`
}

// Dataset describes one family of source documents
type Dataset struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Exactly one of URL and URLTemplate is set
	URL         string `yaml:"url,omitempty" json:"url,omitempty"`
	URLTemplate string `yaml:"url_template,omitempty" json:"url_template,omitempty"`
	Years       *Range `yaml:"years,omitempty" json:"years,omitempty"`
	Months      *Range `yaml:"months,omitempty" json:"months,omitempty"`

	// Scrape means URL is a listing page whose links are the documents
	Scrape     bool   `yaml:"scrape,omitempty" json:"scrape,omitempty"`
	LinkFilter string `yaml:"link_filter,omitempty" json:"link_filter,omitempty"`

	SkipRows int              `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`
	Layout   normalize.Layout `yaml:"layout,omitempty" json:"layout,omitempty"`
	Table    int              `yaml:"table,omitempty" json:"table,omitempty"`

	ExtraClean     bool                      `yaml:"extra_clean,omitempty" json:"extra_clean,omitempty"`
	Formats        []string                  `yaml:"formats,omitempty" json:"formats,omitempty"`
	CommentColumns []normalize.CommentColumn `yaml:"comment_columns,omitempty" json:"comment_columns,omitempty"`
	Columns        int                       `yaml:"columns,omitempty" json:"columns,omitempty"`
	DefaultComment string                    `yaml:"default_comment,omitempty" json:"default_comment,omitempty"`
}

// Target is one concrete document to fetch
type Target struct {
	Dataset string
	URL     string
	Year    string // four-digit year implied by the document, may be empty
}

// Catalogue is the full, read-only set of datasets
type Catalogue struct {
	Datasets []Dataset `yaml:"datasets" json:"datasets"`
}

// Default returns the catalogue compiled into the binary
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue, "embedded datasets.yaml")
}

// Load reads a catalogue from a YAML file
func Load(filename string) (*Catalogue, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading dataset catalogue: %w", err)
	}
	return Parse(data, filename)
}

// Parse decodes and validates a YAML catalogue. name is used in errors.
func Parse(data []byte, name string) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", name, err)
	}
	return &c, nil
}

// Validate checks every dataset for a usable location, layout and format list
func (c *Catalogue) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets defined")
	}

	seen := make(map[string]bool, len(c.Datasets))
	for i := range c.Datasets {
		d := &c.Datasets[i]
		if d.Name == "" {
			return fmt.Errorf("dataset %d has no name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate dataset %q", d.Name)
		}
		seen[d.Name] = true

		if err := d.validate(); err != nil {
			return fmt.Errorf("dataset %q: %w", d.Name, err)
		}
	}
	return nil
}

func (d *Dataset) validate() error {
	switch {
	case d.URL == "" && d.URLTemplate == "":
		return fmt.Errorf("url or url_template is required")
	case d.URL != "" && d.URLTemplate != "":
		return fmt.Errorf("url and url_template are mutually exclusive")
	case d.URLTemplate != "" && d.Years == nil:
		return fmt.Errorf("url_template requires a years range")
	case d.Scrape && d.URL == "":
		return fmt.Errorf("scrape requires url")
	case d.SkipRows < 0:
		return fmt.Errorf("skip_rows must not be negative")
	}

	if d.Layout != "" {
		if _, ok := normalize.ParseLayout(string(d.Layout)); !ok {
			return fmt.Errorf("unknown layout %q", d.Layout)
		}
	}

	for _, f := range d.Formats {
		if _, ok := normalize.LookupFormat(f); !ok {
			return fmt.Errorf("unknown timestamp format %q", f)
		}
	}

	if d.Months != nil && (d.Months.From < 1 || d.Months.To > 12 || d.Months.From > d.Months.To) {
		return fmt.Errorf("months must lie within 1..12")
	}
	return nil
}

// Lookup returns the dataset with the given name
func (c *Catalogue) Lookup(name string) (Dataset, bool) {
	for _, d := range c.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return Dataset{}, false
}

// Select returns the named datasets in catalogue order, or all of them when
// names is empty
func (c *Catalogue) Select(names []string) ([]Dataset, error) {
	if len(names) == 0 {
		return append([]Dataset(nil), c.Datasets...), nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := c.Lookup(n); !ok {
			return nil, fmt.Errorf("unknown dataset %q", n)
		}
		want[n] = true
	}

	var out []Dataset
	for _, d := range c.Datasets {
		if want[d.Name] {
			out = append(out, d)
		}
	}
	return out, nil
}

// Expand returns the concrete documents of a non-scraped dataset, sorted by
// URL. now fixes the meaning of an open-ended year range.
func (d Dataset) Expand(now time.Time) []Target {
	if d.URLTemplate == "" {
		return []Target{d.Target(d.URL)}
	}

	lastYear := d.Years.To
	if lastYear == 0 {
		lastYear = now.Year()
	}

	months := []int{0}
	if d.Months != nil {
		months = months[:0]
		for m := d.Months.From; m <= d.Months.To; m++ {
			months = append(months, m)
		}
	}

	var targets []Target
	for y := d.Years.From; y <= lastYear; y++ {
		year := strconv.Itoa(y)
		for _, m := range months {
			u := strings.ReplaceAll(d.URLTemplate, "{year}", year)
			if m > 0 {
				u = strings.ReplaceAll(u, "{month}", fmt.Sprintf("%02d", m))
			}
			targets = append(targets, Target{Dataset: d.Name, URL: u, Year: year})
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].URL < targets[j].URL
	})
	return targets
}

// LinkSubstring is the substring a crawled link must contain to be a document
func (d Dataset) LinkSubstring() string {
	if d.LinkFilter != "" {
		return d.LinkFilter
	}
	return "txt"
}

// Target wraps a crawled document location
func (d Dataset) Target(url string) Target {
	return Target{Dataset: d.Name, URL: url, Year: YearFromSource(url)}
}

// LayoutFor returns the dataset's layout, detecting it from the document
// location when the catalogue does not name one
func (d Dataset) LayoutFor(url string) normalize.Layout {
	if d.Layout != "" {
		return d.Layout
	}
	return DetectLayout(url)
}

// DetectLayout is the location-based shape signal: documents whose location
// contains "txt" are text tables, everything else is a row-oriented
// hypertext table.
func DetectLayout(url string) normalize.Layout {
	if strings.Contains(url, "txt") {
		return normalize.LayoutText
	}
	return normalize.LayoutHTMLRows
}

var sourceYearPattern = regexp.MustCompile(`(?:19|20)\d{2}`)

// YearFromSource extracts a four-digit year from a document name, such as
// jsocobs_info2014.html. The last match in the base name wins.
func YearFromSource(url string) string {
	matches := sourceYearPattern.FindAllString(path.Base(url), -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1]
}

// SourceName is the document identifier recorded on each event
func SourceName(url string) string {
	return path.Base(strings.TrimRight(url, "/"))
}

// Context builds the normalization context for one document. firstLine is
// the document's first line of text, used as the default comment for text
// tables.
func (d Dataset) Context(t Target, firstLine string) normalize.Context {
	layout := d.LayoutFor(t.URL)

	year := t.Year
	if year == "" {
		year = YearFromSource(t.URL)
	}

	comment := d.DefaultComment
	if comment == "" && layout == normalize.LayoutText {
		comment = strings.TrimSpace(firstLine)
	}

	return normalize.Context{
		Dataset:        d.Name,
		Source:         SourceName(t.URL),
		Year:           year,
		Layout:         layout,
		Formats:        d.Formats,
		ExtraClean:     d.ExtraClean,
		DefaultComment: comment,
		CommentColumns: d.CommentColumns,
		Columns:        d.Columns,
	}
}
