package filter

import (
	"testing"
	"time"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input    string
		wantFrom *time.Time
		wantTo   *time.Time
		wantErr  bool
	}{
		{input: "2014", wantFrom: ptr(date(2014, 1, 1)), wantTo: ptr(date(2015, 1, 1))},
		{input: "2014-03", wantFrom: ptr(date(2014, 3, 1)), wantTo: ptr(date(2014, 4, 1))},
		{input: "2014-02-28", wantFrom: ptr(date(2014, 2, 28)), wantTo: ptr(date(2014, 3, 1))},
		{input: "2014-03..2014-05", wantFrom: ptr(date(2014, 3, 1)), wantTo: ptr(date(2014, 6, 1))},
		{input: "2014-03-04..", wantFrom: ptr(date(2014, 3, 4))},
		{input: "..2012", wantTo: ptr(date(2013, 1, 1))},
		{input: "", wantErr: true},
		{input: "..", wantErr: true},
		{input: "March", wantErr: true},
		{input: "2015..2014", wantErr: true},
		{input: "2014-13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			from, to, err := ParseRange(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !sameTime(from, tt.wantFrom) {
				t.Errorf("ParseRange(%q) from = %v, want %v", tt.input, from, tt.wantFrom)
			}
			if !sameTime(to, tt.wantTo) {
				t.Errorf("ParseRange(%q) to = %v, want %v", tt.input, to, tt.wantTo)
			}
		})
	}
}

func TestParseInstruments(t *testing.T) {
	tests := []struct {
		input   string
		want    []event.Instrument
		wantErr bool
	}{
		{"", nil, false},
		{"all", nil, false},
		{"aia", []event.Instrument{event.InstrumentAIA}, false},
		{"AIA, hmi", []event.Instrument{event.InstrumentAIA, event.InstrumentHMI}, false},
		{"EVE", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInstruments(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInstruments(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseInstruments(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseInstruments(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
