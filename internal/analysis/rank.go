package analysis

import (
	"sort"

	"bifacial-compare/internal/model"
)

// RankByGain returns the computed rows sorted descending by AC percent
// difference. Ties keep table order.
func RankByGain(rows []model.RunResult) []model.RunResult {
	out := make([]model.RunResult, 0, len(rows))
	for _, r := range rows {
		if r.Computed() {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PercentDiffAC > out[j].PercentDiffAC
	})
	return out
}
