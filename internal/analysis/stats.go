package analysis

import (
	"math"
	"sort"
	"time"

	"bifacial-compare/internal/model"

	"gonum.org/v1/gonum/floats"
)

// CurveStats summarizes one power curve. NaN samples are skipped.
type CurveStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	P05   float64 `json:"p05"`
	P95   float64 `json:"p95"`
	// EnergyWh integrates the curve over the sampling step.
	EnergyWh float64 `json:"energy_wh"`
}

// ScenarioStats holds the curve summaries of one scenario.
type ScenarioStats struct {
	Label        string     `json:"label"`
	BifacialAC   CurveStats `json:"bifacial_ac"`
	MonofacialAC CurveStats `json:"monofacial_ac"`
	BifacialDC   CurveStats `json:"bifacial_dc"`
	MonofacialDC CurveStats `json:"monofacial_dc"`
}

// ComputeScenarioStats summarizes all four curves of a run.
func ComputeScenarioStats(c *model.RunCurves, mode model.Mode) ScenarioStats {
	step := sampleStep(c.Times)
	return ScenarioStats{
		Label:        c.Scenario.Label(mode),
		BifacialAC:   ComputeStats(c.BifacialAC, step),
		MonofacialAC: ComputeStats(c.MonofacialAC, step),
		BifacialDC:   ComputeStats(c.BifacialDC, step),
		MonofacialDC: ComputeStats(c.MonofacialDC, step),
	}
}

func ComputeStats(curve []float64, step time.Duration) CurveStats {
	vals := make([]float64, 0, len(curve))
	for _, v := range curve {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	s := CurveStats{Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	sum := floats.Sum(vals)
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.Mean = sum / float64(len(vals))
	s.EnergyWh = sum * step.Hours()

	sort.Float64s(vals)
	s.P05 = percentileSorted(vals, 0.05)
	s.P95 = percentileSorted(vals, 0.95)
	return s
}

func sampleStep(times []time.Time) time.Duration {
	if len(times) < 2 {
		return 0
	}
	return times[1].Sub(times[0])
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
