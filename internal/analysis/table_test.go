package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"bifacial-compare/internal/model"
	"bifacial-compare/internal/simulate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curves(name string, albedo, bifPeak, monoPeak float64) *model.RunCurves {
	nan := math.NaN()
	start := time.Date(2021, 6, 21, 0, 0, 0, 0, time.UTC)
	return &model.RunCurves{
		Scenario:     model.Scenario{Name: name, Albedo: albedo},
		Times:        []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)},
		BifacialAC:   []float64{nan, bifPeak, bifPeak / 2},
		MonofacialAC: []float64{nan, monoPeak, monoPeak / 2},
		BifacialDC:   []float64{0, bifPeak * 1.1, 0},
		MonofacialDC: []float64{0, monoPeak * 1.1, 0},
	}
}

func TestTableAdd(t *testing.T) {
	tbl := NewTable(model.ModeAlbedo)
	require.NoError(t, tbl.Add(curves("Fresh snow", 0.8, 240, 200)))
	require.NoError(t, tbl.Add(curves("Grass", 0.25, 210, 200)))

	require.Equal(t, 2, tbl.Len())
	r := tbl.Rows[0]
	assert.Equal(t, 0, r.Position)
	assert.Equal(t, "0.8", r.Label)
	assert.Equal(t, 240.0, r.BifacialPeakAC)
	assert.Equal(t, 16.67, r.PercentDiffAC)
	assert.Equal(t, 264.0, r.BifacialPeakDC)
	assert.Equal(t, 16.67, r.PercentDiffDC)
	assert.True(t, r.Computed())
	assert.Equal(t, 1, tbl.Rows[1].Position)
}

func TestTableAddZeroPeak(t *testing.T) {
	tbl := NewTable(model.ModeAlbedo)
	err := tbl.Add(curves("Night", 0.2, 0, 0))
	var dz *DivisionByZeroError
	require.ErrorAs(t, err, &dz)
	assert.Equal(t, "AC", dz.Quantity)
	assert.Zero(t, tbl.Len())
}

func TestAggregate(t *testing.T) {
	outcomes := []simulate.Outcome{
		{Scenario: model.Scenario{Name: "A", Albedo: 0.1}, Curves: curves("A", 0.1, 220, 200)},
		{Scenario: model.Scenario{Name: "B", Albedo: 0.2}, Err: &simulate.ExternalModelError{Scenario: "B", Stage: simulate.StageTransposition, Err: errors.New("boom")}},
		{Scenario: model.Scenario{Name: "C", Albedo: 0.3}, Curves: curves("C", 0.3, 0, 0)},
		{Scenario: model.Scenario{Name: "D", Albedo: 0.4}, Curves: curves("D", 0.4, 200, 200)},
	}
	tbl := Aggregate(model.ModeAlbedo, outcomes)

	require.Equal(t, len(outcomes), tbl.Len())
	for i, r := range tbl.Rows {
		assert.Equal(t, i, r.Position)
	}
	assert.Equal(t, model.StatusFailed, tbl.Rows[1].Status)
	assert.Contains(t, tbl.Rows[1].Error, "boom")
	assert.Zero(t, tbl.Rows[1].BifacialPeakAC)
	assert.Equal(t, model.StatusFailed, tbl.Rows[2].Status)
	assert.Contains(t, tbl.Rows[2].Error, "bifacial peak is zero")
	assert.Zero(t, tbl.Rows[3].PercentDiffAC)

	s := tbl.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.OK)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, Round2(9.09/2), s.MeanPercentDiffAC)
	assert.Equal(t, "0.1", s.Best)
	assert.Equal(t, 9.09, s.BestPercentDiffAC)
}

func TestSummaryEmpty(t *testing.T) {
	s := NewTable(model.ModeLocation).Summary()
	assert.Zero(t, s.Total)
	assert.Empty(t, s.Best)
}

func TestRankByGainStable(t *testing.T) {
	rows := []model.RunResult{
		{Label: "a", PercentDiffAC: 5, Status: model.StatusOK},
		{Label: "b", PercentDiffAC: 9, Status: model.StatusOK},
		{Label: "c", Status: model.StatusFailed},
		{Label: "d", PercentDiffAC: 5, Status: model.StatusOK},
	}
	ranked := RankByGain(rows)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"b", "a", "d"}, []string{ranked[0].Label, ranked[1].Label, ranked[2].Label})
}

func TestComputeStats(t *testing.T) {
	s := ComputeStats([]float64{math.NaN(), 0, 100, 200, 300}, 30*time.Minute)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 0.0, s.Min)
	assert.Equal(t, 300.0, s.Max)
	assert.Equal(t, 150.0, s.Mean)
	assert.Equal(t, 300.0, s.EnergyWh)
	assert.InDelta(t, 15, s.P05, 1e-9)
	assert.InDelta(t, 285, s.P95, 1e-9)

	assert.Zero(t, ComputeStats(nil, time.Hour).Count)

	st := ComputeScenarioStats(curves("A", 0.1, 220, 200), model.ModeAlbedo)
	assert.Equal(t, "0.1", st.Label)
	assert.Equal(t, 330.0, st.BifacialAC.EnergyWh)
}
