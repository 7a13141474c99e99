// Package cli implements the command-line interface for sdo-timeline.
//
// The cli package provides the Cobra-based CLI: build assembles the merged
// observatory timeline and writes it as CSV, TSV, JSON, a table or an
// iCalendar feed; datasets lists the catalogue; serve exposes the last built
// timeline over HTTP. Settings come from flags, SDO_TIMELINE_* environment
// variables, .env files and an optional config file via the config package.
package cli
