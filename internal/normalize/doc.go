// Package normalize turns tokenized rows from observatory operations logs into
// canonical timeline events.
//
// Source documents use dozens of undocumented date notations. Timestamps are
// resolved against an ordered catalogue of exact layouts first and, failing
// that, against a fixed list of repair heuristics that use contextual hints:
// the year a document covers, an anchor timestamp for time-only tokens, and a
// dataset-specific cleaning pass. Anything the heuristics cannot place is an
// error; a wrong timestamp is worse than a missing row.
//
// The Reshaper maps rows onto the canonical event shape for each known table
// layout (fixed-width text, row-oriented and column-oriented hypertext tables,
// and the coded maneuver log).
package normalize
