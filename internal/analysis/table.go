package analysis

import (
	"errors"

	"bifacial-compare/internal/model"
	"bifacial-compare/internal/simulate"
)

// Table is the ordered result table of a batch: one row per scenario.
type Table struct {
	Mode model.Mode
	Rows []model.RunResult
}

func NewTable(mode model.Mode) *Table {
	return &Table{Mode: mode}
}

func (t *Table) Len() int { return len(t.Rows) }

// Add appends the row derived from one scenario's curves. Nothing is appended
// when a percent difference cannot be formed.
func (t *Table) Add(c *model.RunCurves) error {
	if c == nil {
		return errors.New("curves are nil")
	}
	row := model.RunResult{
		Position:         len(t.Rows),
		Label:            c.Scenario.Label(t.Mode),
		Scenario:         c.Scenario.Name,
		BifacialPeakAC:   Peak(c.BifacialAC),
		MonofacialPeakAC: Peak(c.MonofacialAC),
		BifacialPeakDC:   Peak(c.BifacialDC),
		MonofacialPeakDC: Peak(c.MonofacialDC),
		Status:           model.StatusOK,
	}
	var err error
	if row.PercentDiffAC, err = percentDifference(row.BifacialPeakAC, row.MonofacialPeakAC, "AC"); err != nil {
		return err
	}
	if row.PercentDiffDC, err = percentDifference(row.BifacialPeakDC, row.MonofacialPeakDC, "DC"); err != nil {
		return err
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// AddFailure appends a sentinel row for a scenario that produced no values.
func (t *Table) AddFailure(sc model.Scenario, cause error) {
	row := model.RunResult{
		Position: len(t.Rows),
		Label:    sc.Label(t.Mode),
		Scenario: sc.Name,
		Status:   model.StatusFailed,
	}
	if cause != nil {
		row.Error = cause.Error()
	}
	t.Rows = append(t.Rows, row)
}

// Aggregate builds the table for a batch in outcome order. Failed scenarios and
// scenarios with a zero bifacial peak become sentinel rows.
func Aggregate(mode model.Mode, outcomes []simulate.Outcome) *Table {
	t := NewTable(mode)
	for _, o := range outcomes {
		if o.Err != nil || o.Curves == nil {
			t.AddFailure(o.Scenario, o.Err)
			continue
		}
		if err := t.Add(o.Curves); err != nil {
			t.AddFailure(o.Scenario, err)
		}
	}
	return t
}

// Summary describes a finished table.
type Summary struct {
	Total             int     `json:"total"`
	OK                int     `json:"ok"`
	Failed            int     `json:"failed"`
	MeanPercentDiffAC float64 `json:"mean_percent_diff_ac"`
	MeanPercentDiffDC float64 `json:"mean_percent_diff_dc"`
	Best              string  `json:"best,omitempty"`
	BestPercentDiffAC float64 `json:"best_percent_diff_ac"`
}

func (t *Table) Summary() Summary {
	s := Summary{Total: len(t.Rows)}
	var sumAC, sumDC float64
	for _, r := range t.Rows {
		if !r.Computed() {
			s.Failed++
			continue
		}
		s.OK++
		sumAC += r.PercentDiffAC
		sumDC += r.PercentDiffDC
	}
	if s.OK > 0 {
		s.MeanPercentDiffAC = Round2(sumAC / float64(s.OK))
		s.MeanPercentDiffDC = Round2(sumDC / float64(s.OK))
	}
	if ranked := RankByGain(t.Rows); len(ranked) > 0 {
		s.Best = ranked[0].Label
		s.BestPercentDiffAC = ranked[0].PercentDiffAC
	}
	return s
}
