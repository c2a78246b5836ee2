// Package numutil provides the numeric primitives shared by every
// calculator: safe division, currency rounding, weighted averaging and the
// audit-step trail.
package numutil

import "github.com/shopspring/decimal"

// SafeDiv returns numerator/denominator, or 0 when the denominator is 0.
func SafeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// RoundToUnit rounds to the nearest whole currency unit (half up).
func RoundToUnit(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(0).Float64()
	return f
}

// RoundToThousand rounds to the nearest thousand currency units (half up).
func RoundToThousand(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Div(decimal.NewFromInt(1000)).Round(0).Mul(decimal.NewFromInt(1000)).Float64()
	return f
}

// WeightedAverage returns sum(value*weight)/sum(weight). Mismatched lengths
// or a zero weight sum return 0.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) != len(weights) || len(values) == 0 {
		return 0
	}
	var weightedSum, weightSum float64
	for i, v := range values {
		weightedSum += v * weights[i]
		weightSum += weights[i]
	}
	return SafeDiv(weightedSum, weightSum)
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
