package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(LevelInfo, &buf)

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_JSONEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelDebug, &buf)

	logger.Error("fetch failed", Fields{"dataset": "jsocobs_info", "row": 3}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v, output %q", err, buf.String())
	}

	if entry["level"] != "error" {
		t.Errorf("level = %v, want error", entry["level"])
	}
	if entry["message"] != "fetch failed" {
		t.Errorf("message = %v, want fetch failed", entry["message"])
	}
	if entry["dataset"] != "jsocobs_info" {
		t.Errorf("dataset = %v, want jsocobs_info", entry["dataset"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			logged := buf.Len() > 0
			if logged != tt.shouldLog {
				t.Errorf("shouldLog = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestNewWithFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithFormat(LevelInfo, "console", &buf)
	if err != nil {
		t.Fatalf("NewWithFormat() error = %v", err)
	}

	logger.Info("hello", Fields{"k": "v"})
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("console output = %q, want it to contain message", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Errorf("console output should not be JSON: %q", buf.String())
	}

	if _, err := NewWithFormat(LevelInfo, "xml", &buf); err == nil {
		t.Error("NewWithFormat(xml) expected error")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("rows.parsed")
	m.IncrCounter("rows.parsed")
	m.AddCounter("rows.parsed", 3)

	snapshot := m.GetSnapshot()
	counters := snapshot["counters"].(map[string]int64)

	if counters["rows.parsed"] != 5 {
		t.Errorf("Counter = %v, want 5", counters["rows.parsed"])
	}
	if got := m.Counter("rows.parsed"); got != 5 {
		t.Errorf("Counter() = %v, want 5", got)
	}
	if got := m.Counter("missing"); got != 0 {
		t.Errorf("Counter(missing) = %v, want 0", got)
	}
}

func TestMetrics_CounterNames(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("b")
	m.IncrCounter("a")

	names := m.CounterNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("CounterNames() = %v, want [a b]", names)
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("events.final", 512)
	m.SetGauge("events.final", 1024)

	snapshot := m.GetSnapshot()
	gauges := snapshot["gauges"].(map[string]float64)

	if gauges["events.final"] != 1024 {
		t.Errorf("Gauge = %v, want 1024", gauges["events.final"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch", 100*time.Millisecond)
	m.RecordTiming("fetch", 200*time.Millisecond)
	m.RecordTiming("fetch", 150*time.Millisecond)

	snapshot := m.GetSnapshot()
	timings := snapshot["timings"].(map[string]map[string]interface{})

	fetch := timings["fetch"]
	if fetch["count"].(int) != 3 {
		t.Errorf("Timing count = %v, want 3", fetch["count"])
	}
	if fetch["min"].(string) != "100ms" {
		t.Errorf("Min timing = %v, want 100ms", fetch["min"])
	}
	if fetch["max"].(string) != "200ms" {
		t.Errorf("Max timing = %v, want 200ms", fetch["max"])
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	prev := Default()
	SetDefault(Nop())
	defer SetDefault(prev)

	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if GetMetricsSnapshot() == nil {
		t.Error("GetMetricsSnapshot() returned nil")
	}
	if DefaultMetrics().Counter("test") < 1 {
		t.Error("IncrCounter did not reach the default tracker")
	}
}
