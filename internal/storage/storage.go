package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

// SnapshotFile is the name of the timeline snapshot in the data directory
const SnapshotFile = "timeline.json"

// ErrEventNotFound is returned when no stored event has the requested ID
var ErrEventNotFound = errors.New("event not found")

// Storage handles persistence of timeline snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance, creating dataDir if needed
func New(dataDir string) (*Storage, error) {
	dir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dir,
	}, nil
}

// ExpandHome replaces a leading ~/ with the user's home directory
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// SnapshotPath returns the path to the snapshot file
func (s *Storage) SnapshotPath() string {
	return filepath.Join(s.dataDir, SnapshotFile)
}

// LoadSnapshot loads the last saved timeline. A missing file is an empty snapshot.
func (s *Storage) LoadSnapshot() (*event.Snapshot, error) {
	data, err := os.ReadFile(s.SnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	if snapshot.Events == nil {
		snapshot.Events = make([]*event.Event, 0)
	}
	return &snapshot, nil
}

// SaveSnapshot writes a snapshot atomically, stamping its update time
func (s *Storage) SaveSnapshot(snapshot *event.Snapshot) error {
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := s.SnapshotPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.SnapshotPath()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}

// SaveEvents stores a built timeline as the current snapshot
func (s *Storage) SaveEvents(events []*event.Event) error {
	snapshot := event.CreateSnapshot(events, time.Now().UTC().Format(time.RFC3339))
	return s.SaveSnapshot(snapshot)
}

// GetEventByID retrieves an event from the current snapshot
func (s *Storage) GetEventByID(eventID string) (*event.Event, error) {
	snapshot, err := s.LoadSnapshot()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	if evt, exists := snapshot.Index()[eventID]; exists {
		return evt, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
}
