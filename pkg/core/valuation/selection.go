// Package valuation implements the three approach calculators (asset,
// income, market) and the multi-approach synthesis. Each calculator takes an
// input struct and the run's shared StepTrail and returns a result struct;
// none of them performs I/O.
package valuation

import (
	"errors"
	"fmt"
)

// Structured failures of the narrow "no safe default exists" cases. All
// other recoverable conditions produce warnings instead.
var (
	// ErrCustomMultipleMissing is returned when the custom multiple position
	// is selected without a custom value.
	ErrCustomMultipleMissing = errors.New("custom multiple position selected but no custom multiple supplied")

	// ErrRevenueRangeMissing is returned when the revenue-multiple fallback
	// fires but no revenue multiple range was supplied.
	ErrRevenueRangeMissing = errors.New("revenue multiple required but no revenue multiple range supplied")
)

// benefitSelection is the outcome of benefit-stream selection shared by the
// income and market approaches.
type benefitSelection struct {
	Stream string // "sde" or "ebitda"
	Value  float64
	Note   string
}

// selectBenefitStream picks SDE or EBITDA. An explicit preference wins;
// auto-selection uses the thresholds: SDE below sdeThreshold selects SDE,
// SDE at or above ebitdaThreshold selects EBITDA, and the band between uses
// SDE as the conservative default.
func selectBenefitStream(preference string, sde, ebitda, sdeThreshold, ebitdaThreshold float64) benefitSelection {
	switch preference {
	case "sde":
		return benefitSelection{Stream: "sde", Value: sde, Note: "SDE explicitly selected"}
	case "ebitda":
		return benefitSelection{Stream: "ebitda", Value: ebitda, Note: "EBITDA explicitly selected"}
	}

	switch {
	case sde < sdeThreshold:
		return benefitSelection{Stream: "sde", Value: sde,
			Note: fmt.Sprintf("SDE %.0f below %.0f threshold; SDE selected", sde, sdeThreshold)}
	case sde >= ebitdaThreshold:
		return benefitSelection{Stream: "ebitda", Value: ebitda,
			Note: fmt.Sprintf("SDE %.0f at or above %.0f threshold; EBITDA selected", sde, ebitdaThreshold)}
	default:
		return benefitSelection{Stream: "sde", Value: sde,
			Note: fmt.Sprintf("SDE %.0f in the %.0f-%.0f band; SDE kept as conservative default", sde, sdeThreshold, ebitdaThreshold)}
	}
}
