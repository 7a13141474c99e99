package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollover(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		tod   string
		want  time.Time
	}{
		{
			name:  "crosses midnight",
			start: time.Date(2021, 3, 4, 23, 50, 0, 0, time.UTC),
			tod:   "00:10",
			want:  time.Date(2021, 3, 5, 0, 10, 0, 0, time.UTC),
		},
		{
			name:  "same day",
			start: time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC),
			tod:   "11:00",
			want:  time.Date(2021, 3, 4, 11, 0, 0, 0, time.UTC),
		},
		{
			name:  "equal time does not advance",
			start: time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC),
			tod:   "10:00:00",
			want:  time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "seconds decide",
			start: time.Date(2021, 3, 4, 10, 0, 30, 0, time.UTC),
			tod:   "10:00:10",
			want:  time.Date(2021, 3, 5, 10, 0, 10, 0, time.UTC),
		},
		{
			name:  "end of month",
			start: time.Date(2021, 2, 28, 22, 0, 0, 0, time.UTC),
			tod:   "01:30",
			want:  time.Date(2021, 3, 1, 1, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rollover(tt.start, tt.tod)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "Rollover(%v, %q) = %v, want %v", tt.start, tt.tod, got, tt.want)
			assert.False(t, got.Before(tt.start))
		})
	}
}

func TestRollover_Invalid(t *testing.T) {
	_, err := Rollover(time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC), "late")
	assert.ErrorIs(t, err, ErrUnparseableTimestamp)
}

func TestIsTimeOfDay(t *testing.T) {
	assert.True(t, IsTimeOfDay("18:15"))
	assert.True(t, IsTimeOfDay("18:15:30"))
	assert.False(t, IsTimeOfDay("1815"))
	assert.False(t, IsTimeOfDay("2010"))
	assert.False(t, IsTimeOfDay("11/2"))
	assert.False(t, IsTimeOfDay("2010.05.18"))
	assert.False(t, IsTimeOfDay("25:00"))
}
