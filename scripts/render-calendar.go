// render-calendar writes a stored timeline snapshot as an iCalendar feed, for
// checking the feed in a calendar client without running a build.
//
//	go run ./scripts/render-calendar.go ~/.local/share/sdo-timeline > timeline.ics
package main

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/sdo-timeline/internal/calendar"
	"github.com/pfrederiksen/sdo-timeline/internal/storage"
)

func main() {
	dataDir := "~/.local/share/sdo-timeline"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	store, err := storage.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	snapshot, err := store.LoadSnapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		os.Exit(1)
	}
	if len(snapshot.Events) == 0 {
		fmt.Fprintf(os.Stderr, "No events in %s, run sdo-timeline build first\n", store.SnapshotPath())
		os.Exit(1)
	}

	fmt.Print(calendar.GenerateICS(snapshot.Events, calendar.DefaultName))
	fmt.Fprintf(os.Stderr, "Rendered %d events\n", len(snapshot.Events))
}
