package model

import "time"

// RunCurves are the four power curves (W) produced for one scenario.
type RunCurves struct {
	Scenario     Scenario
	Times        []time.Time
	BifacialAC   []float64
	MonofacialAC []float64
	BifacialDC   []float64
	MonofacialDC []float64

	BifacialEffective   []float64
	MonofacialEffective []float64
}

// Status marks whether a result row holds computed values.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// RunResult is one row of the result table. Values are derived once and never mutated.
// Powers are in W, percent differences in %.
type RunResult struct {
	Position int    `json:"position"`
	Label    string `json:"label"`
	Scenario string `json:"scenario"`

	BifacialPeakAC   float64 `json:"bifacial_peak_ac"`
	MonofacialPeakAC float64 `json:"monofacial_peak_ac"`
	PercentDiffAC    float64 `json:"percent_diff_ac"`

	BifacialPeakDC   float64 `json:"bifacial_peak_dc"`
	MonofacialPeakDC float64 `json:"monofacial_peak_dc"`
	PercentDiffDC    float64 `json:"percent_diff_dc"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Computed reports whether the row carries real values rather than a sentinel.
func (r RunResult) Computed() bool {
	return r.Status == StatusOK
}
