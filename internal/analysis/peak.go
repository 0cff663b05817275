package analysis

import (
	"fmt"
	"math"
)

// DivisionByZeroError is returned when a percent difference is taken against a
// zero bifacial peak.
type DivisionByZeroError struct {
	Quantity string // "AC" or "DC"
}

func (e *DivisionByZeroError) Error() string {
	if e.Quantity == "" {
		return "percent difference: bifacial peak is zero"
	}
	return fmt.Sprintf("percent difference %s: bifacial peak is zero", e.Quantity)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Peak is the maximum of a curve ignoring NaN, rounded to two decimals.
// An empty or all-NaN curve peaks at 0.
func Peak(curve []float64) float64 {
	best := math.Inf(-1)
	for _, v := range curve {
		if !math.IsNaN(v) && v > best {
			best = v
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return Round2(best)
}

// PercentDifference is |b - m| / b × 100 rounded to two decimals.
func PercentDifference(bifacial, monofacial float64) (float64, error) {
	return percentDifference(bifacial, monofacial, "")
}

func percentDifference(bifacial, monofacial float64, quantity string) (float64, error) {
	if bifacial == 0 {
		return 0, &DivisionByZeroError{Quantity: quantity}
	}
	return Round2(math.Abs(bifacial-monofacial) / bifacial * 100), nil
}
