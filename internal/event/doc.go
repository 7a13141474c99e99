// Package event provides the canonical timeline record for SDO operations events.
//
// The event package handles event representation, ordering, and consolidation. Events from
// every source are sorted by start time and then merged in a single forward pass: events whose
// start falls within the merge window of the currently open event are folded into it. Each event
// carries a deterministic SHA1-based ID generated from its start time, instrument, and comment,
// enabling snapshot-based diffing across runs.
package event
