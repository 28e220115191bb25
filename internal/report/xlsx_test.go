package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/siteiq/internal/scoring"
)

func TestWriteXLSX(t *testing.T) {
	records := []scoring.AnalysisRecord{
		{
			ID:           "an-1",
			Latitude:     41.0082,
			Longitude:    28.9784,
			Category:     "cafe",
			OverallScore: 7.5,
			Confidence:   0.85,
			Method:       "ml",
			CreatedAt:    time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:           "an-2",
			Latitude:     41.03,
			Longitude:    29.01,
			Category:     "restaurant",
			OverallScore: 4.2,
			Confidence:   0.6,
			Method:       "rule_based",
			CreatedAt:    time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		},
	}

	path := filepath.Join(t.TempDir(), "analyses.xlsx")
	require.NoError(t, WriteXLSX(path, records))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Analyses", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	var header []string
	for _, cell := range sheet.Rows[0].Cells {
		header = append(header, cell.String())
	}
	assert.Equal(t, exportHeader, header)

	first := sheet.Rows[1].Cells
	assert.Equal(t, "an-1", first[0].String())
	lat, err := first[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 41.0082, lat, 1e-9)
	assert.Equal(t, "cafe", first[3].String())
	score, err := first[4].Float()
	require.NoError(t, err)
	assert.InDelta(t, 7.5, score, 1e-9)
	assert.Equal(t, "ml", first[6].String())
	assert.Equal(t, "2026-03-02 10:30:00", first[7].String())

	second := sheet.Rows[2].Cells
	assert.Equal(t, "an-2", second[0].String())
	assert.Equal(t, "rule_based", second[6].String())
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Len(t, f.Sheets[0].Rows, 1)
}

func TestWriteXLSXBadPath(t *testing.T) {
	err := WriteXLSX(filepath.Join(t.TempDir(), "missing", "out.xlsx"), nil)
	assert.Error(t, err)
}
