package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bifacial-compare/internal/analysis"
	"bifacial-compare/internal/data"
	"bifacial-compare/internal/model"
	"bifacial-compare/internal/simulate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGridIndex(t *testing.T) {
	tests := []struct {
		i, rows  int
		col, row int
	}{
		{0, 4, 0, 0},
		{3, 4, 0, 3},
		{4, 4, 1, 0},
		{9, 4, 2, 1},
		{2, 0, 2, 0},
	}
	for _, tt := range tests {
		col, row := GridIndex(tt.i, tt.rows)
		assert.Equal(t, tt.col, col, "i=%d", tt.i)
		assert.Equal(t, tt.row, row, "i=%d", tt.i)
	}
}

func TestGridIndexUnique(t *testing.T) {
	seen := map[[2]int]bool{}
	for i := 0; i < 23; i++ {
		col, row := GridIndex(i, 4)
		key := [2]int{col, row}
		assert.False(t, seen[key], "slot reused at %d", i)
		seen[key] = true
	}
}

func TestGridShape(t *testing.T) {
	cols, rows := GridShape(9, 4)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 4, rows)

	cols, rows = GridShape(2, 4)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 2, rows)

	cols, rows = GridShape(0, 4)
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}

func sampleOutcomes() []simulate.Outcome {
	start := time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 25)
	bif := make([]float64, 25)
	mono := make([]float64, 25)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * time.Hour)
		v := 250 * math.Sin(math.Pi*float64(i-6)/12)
		if v <= 0 {
			bif[i], mono[i] = math.NaN(), math.NaN()
			continue
		}
		bif[i], mono[i] = v, v*0.9
	}
	mk := func(name string, albedo float64) simulate.Outcome {
		sc := model.Scenario{Name: name, Albedo: albedo}
		return simulate.Outcome{Scenario: sc, Curves: &model.RunCurves{
			Scenario: sc, Times: times,
			BifacialAC: bif, MonofacialAC: mono,
			BifacialDC: bif, MonofacialDC: mono,
		}}
	}
	return []simulate.Outcome{
		mk("Fresh snow", 0.8),
		{Scenario: model.Scenario{Name: "Water", Albedo: 0.06}, Err: errors.New("boom")},
		mk("Grass", 0.25),
		mk("Sand", 0.4),
		mk("Asphalt", 0.04),
	}
}

func TestRenderFigure(t *testing.T) {
	dir := t.TempDir()
	panels := PanelsFromOutcomes(model.ModeAlbedo, sampleOutcomes())
	assert.Equal(t, "Water: 0.06 (failed)", panels[1].Title)

	for _, kind := range []Kind{KindAC, KindDC} {
		path := filepath.Join(dir, "figs", kind.FigureName())
		require.NoError(t, RenderFigure(path, kind, panels, 4))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
	}

	assert.Error(t, RenderFigure(filepath.Join(dir, "x.png"), KindAC, nil, 4))
}

func TestPoints(t *testing.T) {
	pts := points([]float64{0, 1, 2}, []float64{math.NaN(), 5, math.Inf(1)})
	require.Len(t, pts, 1)
	assert.Equal(t, 1.0, pts[0].X)
}

func TestWriteResultsCSV(t *testing.T) {
	tbl := analysis.Aggregate(model.ModeAlbedo, sampleOutcomes())
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, WriteResultsCSV(path, tbl))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 6)
	assert.Equal(t, Headers(model.ModeAlbedo), records[0])
	assert.Equal(t, "Albedo", records[0][0])
	assert.Equal(t, "0.8", records[1][0])
	assert.Equal(t, "250.00", records[1][1])
	assert.Equal(t, "ok", records[1][7])
	assert.Equal(t, []string{"0.06", "", "", "", "", "", "", "failed"}, records[2])
}

func TestWriteResultsXLSX(t *testing.T) {
	tbl := analysis.Aggregate(model.ModeLocation, sampleOutcomes())
	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteResultsXLSX(path, tbl))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("location_results")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Site Location", rows[0][0])
	assert.Equal(t, "Percent Difference DC (%)", rows[0][6])
	assert.Equal(t, "Fresh snow", rows[1][0])
	assert.Equal(t, "250", rows[1][1])
	assert.Equal(t, "10", rows[1][3])

	status, err := f.GetCellValue("location_results", "H3")
	require.NoError(t, err)
	assert.Equal(t, "failed", status)
	blank, err := f.GetCellValue("location_results", "B3")
	require.NoError(t, err)
	assert.Empty(t, blank)
}

func TestPrintTables(t *testing.T) {
	tbl := analysis.Aggregate(model.ModeAlbedo, sampleOutcomes())
	input := &data.Table{
		Source:  "module_data.xlsx",
		Sheet:   "albedos",
		Headers: []string{"Substance or Surface", "Albedo"},
		Rows:    [][]string{{"Fresh snow", "0.8"}},
	}
	var buf bytes.Buffer
	require.NoError(t, PrintTables(&buf, input, tbl))

	out := buf.String()
	assert.Contains(t, out, "SIMULATION RESULTS")
	assert.Contains(t, out, "module_data.xlsx, sheet albedos")
	assert.Contains(t, out, "Max BPV Power AC (W)")
	assert.Contains(t, out, "5 scenarios, 4 ok, 1 failed")
	assert.Contains(t, out, "failed")
}
