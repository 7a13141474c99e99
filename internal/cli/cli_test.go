package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/sdo-timeline/internal/logger"
)

const calibrationLog = `AIA guide telescope calibrations
Start                End
01-May-10 06:00:00   01-May-10 06:30:00
01-May-10 06:02:00   01-May-10 06:40:00
02-May-10 07:00:00   08:15
`

// fixture writes a one-dataset catalogue over a local text log
func fixture(t *testing.T) (catalogue, dataDir string) {
	t.Helper()
	dir := t.TempDir()

	logPath := filepath.Join(dir, "AIA_cal.txt")
	require.NoError(t, os.WriteFile(logPath, []byte(calibrationLog), 0644))

	catalogue = filepath.Join(dir, "datasets.yaml")
	yaml := "datasets:\n  - name: calibrations\n    url: " + logPath + "\n    layout: text\n    skip_rows: 2\n"
	require.NoError(t, os.WriteFile(catalogue, []byte(yaml), 0644))

	dataDir = filepath.Join(dir, "data")
	return catalogue, dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuild(t *testing.T) {
	catalogue, dataDir := fixture(t)
	output := filepath.Join(t.TempDir(), "timeline.csv")

	_, err := run(t, "build",
		"--datasets-file", catalogue,
		"--data-dir", dataDir,
		"--log-level", "error",
		"--output", output,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Start Time,End Time,Instrument,Source,Comment", lines[0])
	assert.Equal(t, "2010-05-01T06:00:00.000000,2010-05-01T06:40:00.000000,AIA,AIA_cal.txt,AIA guide telescope calibrations", lines[1])
	assert.Equal(t, "2010-05-02T07:00:00.000000,2010-05-02T08:15:00.000000,AIA,AIA_cal.txt,AIA guide telescope calibrations", lines[2])

	_, err = os.Stat(filepath.Join(dataDir, "timeline.json"))
	assert.NoError(t, err, "snapshot should be saved")
}

func TestBuild_NewOnly(t *testing.T) {
	catalogue, dataDir := fixture(t)
	args := []string{"build",
		"--datasets-file", catalogue,
		"--data-dir", dataDir,
		"--log-level", "error",
		"--output", filepath.Join(t.TempDir(), "out.json"),
		"--format", "json",
		"--new-only",
	}

	_, err := run(t, args...)
	assert.True(t, errors.Is(err, errNewEvents), "first run reports new events, got %v", err)

	_, err = run(t, args...)
	assert.NoError(t, err, "second run has nothing new")
}

func TestBuild_InvalidFlags(t *testing.T) {
	catalogue, dataDir := fixture(t)
	base := []string{"build", "--datasets-file", catalogue, "--data-dir", dataDir, "--log-level", "error"}

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"--format", "xml"}},
		{"sort", []string{"--sort", "title"}},
		{"range", []string{"--range", "soon"}},
		{"instrument", []string{"--instrument", "EVE"}},
		{"dataset", []string{"--datasets", "nope"}},
		{"export without url", []string{"--export-db"}},
		{"log level", []string{"--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(append([]string{}, base...), tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestDatasetsCommand(t *testing.T) {
	out, err := run(t, "datasets", "--log-level", "error")
	require.NoError(t, err)

	for _, name := range []string{"spacecraft_night", "jsocobs_info", "jsocinst_calibrations", "hmi_obs_cov", "text_block_4"} {
		assert.Contains(t, out, name)
	}
}

func TestCodesCommand(t *testing.T) {
	out, err := run(t, "codes")
	require.NoError(t, err)

	assert.Contains(t, out, "Roll Maneuvers")
	assert.Contains(t, out, "Eclipse Season Begins")
}

func TestLogCounters(t *testing.T) {
	var buf bytes.Buffer
	metrics := logger.NewMetrics()
	metrics.AddCounter("rows.parsed", 3)
	metrics.IncrCounter("documents.missing")

	logCounters(logger.New(logger.LevelDebug, &buf), metrics)

	assert.Contains(t, buf.String(), `"rows.parsed":3`)
	assert.Contains(t, buf.String(), `"documents.missing":1`)
}
