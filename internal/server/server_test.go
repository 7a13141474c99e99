package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/logger"
	"github.com/pfrederiksen/sdo-timeline/internal/storage"
)

type staticSource struct {
	snapshot *event.Snapshot
	err      error
}

func (s staticSource) LoadSnapshot() (*event.Snapshot, error) {
	return s.snapshot, s.err
}

func (s staticSource) GetEventByID(id string) (*event.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	if evt, ok := s.snapshot.Index()[id]; ok {
		return evt, nil
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrEventNotFound, id)
}

func newTestServer(t *testing.T, src Source) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return New(src, logger.Nop()).Handler()
}

func sampleSnapshot() *event.Snapshot {
	events := []*event.Event{
		event.NewEvent(time.Date(2013, 12, 31, 23, 0, 0, 0, time.UTC), time.Time{}, event.InstrumentSDO, "Roll Maneuvers", "data_4.txt"),
		event.NewEvent(time.Date(2014, 3, 4, 18, 0, 0, 0, time.UTC), time.Time{}, event.InstrumentAIA, "AIA guide telescope calibration", "AIA_guide.txt"),
		event.NewEvent(time.Date(2014, 5, 1, 0, 0, 0, 0, time.UTC), time.Time{}, event.InstrumentHMI, "HMI flatfield", "jsocobs_info2014.html"),
	}
	return event.CreateSnapshot(events, "2024-01-01T00:00:00Z")
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, staticSource{snapshot: event.NewSnapshot()})

	rec := get(t, h, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEvents(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
		want     []string
	}{
		{"all", "/events", http.StatusOK, []string{"Roll Maneuvers", "AIA guide telescope calibration", "HMI flatfield"}},
		{"instrument", "/events?instrument=hmi", http.StatusOK, []string{"HMI flatfield"}},
		{"year", "/events?from=2014&to=2014", http.StatusOK, []string{"AIA guide telescope calibration", "HMI flatfield"}},
		{"month bounds", "/events?from=2014-03&to=2014-04", http.StatusOK, []string{"AIA guide telescope calibration"}},
		{"text", "/events?q=flat", http.StatusOK, []string{"HMI flatfield"}},
		{"repeated text", "/events?q=roll&q=guide", http.StatusOK, []string{"Roll Maneuvers", "AIA guide telescope calibration"}},
		{"bad instrument", "/events?instrument=EVE", http.StatusBadRequest, nil},
		{"bad period", "/events?from=March", http.StatusBadRequest, nil},
		{"inverted", "/events?from=2015&to=2014", http.StatusBadRequest, nil},
	}

	h := newTestServer(t, staticSource{snapshot: sampleSnapshot()})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.query)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp EventsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, len(tt.want), resp.Count)
			assert.Equal(t, "2024-01-01T00:00:00Z", resp.UpdatedAt)

			got := make([]string, 0, len(resp.Events))
			for _, evt := range resp.Events {
				got = append(got, evt.Comment)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvents_EmptyIsArray(t *testing.T) {
	h := newTestServer(t, staticSource{snapshot: sampleSnapshot()})

	rec := get(t, h, "/events?q=nothing-matches")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"events":[]`)
}

func TestEvents_SourceError(t *testing.T) {
	h := newTestServer(t, staticSource{err: errors.New("disk gone")})

	rec := get(t, h, "/events")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestEventByID(t *testing.T) {
	snapshot := sampleSnapshot()
	h := newTestServer(t, staticSource{snapshot: snapshot})
	want := snapshot.Events[1]

	rec := get(t, h, "/events/"+want.ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Comment, got.Comment)

	rec = get(t, h, "/events/deadbeef")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventByID_SourceError(t *testing.T) {
	h := newTestServer(t, staticSource{err: errors.New("disk gone")})

	rec := get(t, h, "/events/abc")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEventByID_FileStore(t *testing.T) {
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	snapshot := sampleSnapshot()
	require.NoError(t, store.SaveEvents(snapshot.Events))

	h := newTestServer(t, store)

	rec := get(t, h, "/events/"+snapshot.Events[0].ID)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = get(t, h, "/events/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
