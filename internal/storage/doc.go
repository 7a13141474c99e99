// Package storage persists built timelines.
//
// The last built timeline is kept as a JSON snapshot (timeline.json) in the
// data directory, by default ~/.local/share/sdo-timeline/. It feeds the
// --new-only diff of the next build and the HTTP server. Timelines can also
// be exported to PostgreSQL, keyed by event ID.
package storage
