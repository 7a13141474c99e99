package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpivot(t *testing.T) {
	rows, err := Unpivot([][]string{
		{"2010.05.01", "", "2010.05.03"},
		{"  Roll  maneuver "},
		{"Bakeout", "continued"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"2010.05.01", "Roll maneuver"}, rows[0].Cells)
	assert.Equal(t, []string{"2010.05.03", "Bakeout continued"}, rows[1].Cells)
	assert.Equal(t, 2, rows[1].Number)
}

func TestUnpivot_Mismatch(t *testing.T) {
	blocks := [][]string{
		{"2010.05.01", "2010.05.02"},
		{"only one comment"},
	}

	_, err := Unpivot(blocks)
	assert.ErrorIs(t, err, ErrUnexpectedRowShape)

	r, buf, metrics := newTestReshaper(t)
	rows := r.Unpivot(blocks, Context{Dataset: "text_block_1", Source: "data_1.txt"})
	require.Len(t, rows, 1)
	assert.Equal(t, "only one comment", rows[0].Cells[1])
	assert.Contains(t, buf.String(), "column blocks do not pair up")
	assert.EqualValues(t, 1, metrics.Counter("rows.recovered"))
}

func TestUnpivot_Empty(t *testing.T) {
	rows, err := Unpivot(nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
