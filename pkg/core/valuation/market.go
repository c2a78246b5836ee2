package valuation

import (
	"fmt"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

const (
	multipleFloor        = 0.5
	genericCeilingFactor = 2.0
)

// MultipleAdjustment is a manual multiplicative tweak to the market multiple.
// Impact is a fraction, e.g. -0.05 reduces the multiple by 5%.
type MultipleAdjustment struct {
	Label  string
	Impact float64
}

// MarketInput carries everything the market approach needs.
type MarketInput struct {
	WeightedSDE    float64
	WeightedEBITDA float64
	Revenue        float64

	Industry models.IndustryData

	// Position is "low", "median", "high" or "custom".
	Position       string
	CustomMultiple *float64

	RiskFactors       []models.RiskFactor
	ManualAdjustments []MultipleAdjustment

	// BenefitStream is "auto", "sde" or "ebitda".
	BenefitStream   string
	SDEThreshold    float64
	EBITDAThreshold float64

	Weight float64
}

// CalculateMarketApproach values the business as benefit stream times an
// industry multiple, with risk- and manually-adjusted multiples clamped to a
// floor and ceiling.
func CalculateMarketApproach(in MarketInput, trail *numutil.StepTrail) (models.ApproachResult, error) {
	stepMark := trail.Len()
	warnMark := trail.WarningCount()

	sel := selectBenefitStream(in.BenefitStream, in.WeightedSDE, in.WeightedEBITDA, in.SDEThreshold, in.EBITDAThreshold)
	trail.Add(models.StepMarket, "Benefit stream selection", "",
		map[string]float64{"weighted_sde": in.WeightedSDE, "weighted_ebitda": in.WeightedEBITDA}, sel.Value).
		Note = sel.Note

	streamValue := sel.Value
	stream := sel.Stream
	var rng *models.MultipleRange
	switch stream {
	case models.StreamSDE:
		rng = &in.Industry.SDEMultiple
	case models.StreamEBITDA:
		rng = &in.Industry.EBITDAMultiple
	}

	// A non-positive benefit stream cannot carry a multiple; fall back to a
	// revenue multiple when industry data provides one.
	if streamValue <= 0 {
		trail.Warnf("Benefit stream %s is non-positive (%.0f); falling back to revenue multiple", stream, streamValue)
		if in.Industry.RevenueMultiple == nil {
			return models.ApproachResult{}, fmt.Errorf("market approach for %q: %w", in.Industry.NAICSCode, ErrRevenueRangeMissing)
		}
		stream = "revenue"
		streamValue = in.Revenue
		rng = in.Industry.RevenueMultiple
		trail.Add(models.StepMarket, "Revenue fallback", "",
			map[string]float64{"revenue": in.Revenue}, streamValue)
	}

	baseMultiple, err := baseMultipleForPosition(in.Position, in.CustomMultiple, rng)
	if err != nil {
		return models.ApproachResult{}, err
	}
	trail.Add(models.StepMarket, fmt.Sprintf("Base %s multiple (%s)", stream, in.Position), "",
		map[string]float64{"low": rng.Low, "median": rng.Median, "high": rng.High}, baseMultiple)

	multiple := baseMultiple
	for _, f := range in.RiskFactors {
		if f.MultipleImpact == 0 {
			continue
		}
		multiple *= 1 + f.MultipleImpact
		trail.Add(models.StepMarket, fmt.Sprintf("Risk adjustment: %s", f.Category),
			"multiple * (1 + impact)",
			map[string]float64{"impact": f.MultipleImpact}, multiple)
	}
	for _, adj := range in.ManualAdjustments {
		if adj.Impact == 0 {
			continue
		}
		multiple *= 1 + adj.Impact
		trail.Add(models.StepMarket, fmt.Sprintf("Manual adjustment: %s", adj.Label),
			"multiple * (1 + impact)",
			map[string]float64{"impact": adj.Impact}, multiple)
	}

	ceiling := rng.Ceiling
	if ceiling <= 0 {
		ceiling = baseMultiple * genericCeilingFactor
	}
	clamped := numutil.Clamp(multiple, multipleFloor, ceiling)
	clampStep := trail.Add(models.StepMarket, "Multiple clamp", "clamp(multiple, floor, ceiling)",
		map[string]float64{"multiple": multiple, "floor": multipleFloor, "ceiling": ceiling}, clamped)
	if clamped != multiple {
		trail.WarnStep(clampStep, fmt.Sprintf("Adjusted multiple %.2f clamped to %.2f", multiple, clamped))
	}
	multiple = clamped

	// SDE multiples get a second, stricter ceiling validation against the
	// industry ceiling even after the general clamp.
	if stream == models.StreamSDE && rng.Ceiling > 0 {
		capped, over := validateAgainstCeiling(multiple, rng.Ceiling)
		if over {
			step := trail.Add(models.StepMarket, "SDE ceiling validation", "min(multiple, ceiling)",
				map[string]float64{"multiple": multiple, "ceiling": rng.Ceiling}, capped)
			trail.WarnStep(step, fmt.Sprintf("CRITICAL: SDE multiple %.2f exceeded industry ceiling %.2f and was capped", multiple, rng.Ceiling))
			multiple = capped
		}
	}

	value := numutil.RoundToThousand(streamValue * multiple)
	trail.Add(models.StepMarket, "Indicated value (market approach)",
		"benefit stream * multiple",
		map[string]float64{"benefit_stream": streamValue, "multiple": multiple}, value)

	return models.ApproachResult{
		Approach: "market",
		Value:    value,
		Source:   stream,
		Weight:   in.Weight,
		Steps:    trail.SinceIndex(stepMark),
		Warnings: trail.WarningsSince(warnMark),
	}, nil
}

func baseMultipleForPosition(position string, custom *float64, rng *models.MultipleRange) (float64, error) {
	switch position {
	case models.PositionCustom:
		if custom == nil {
			return 0, ErrCustomMultipleMissing
		}
		return *custom, nil
	case models.PositionLow:
		return rng.Low, nil
	case models.PositionHigh:
		return rng.High, nil
	default:
		return rng.Median, nil
	}
}

func validateAgainstCeiling(multiple, ceiling float64) (capped float64, over bool) {
	if multiple > ceiling {
		return ceiling, true
	}
	return multiple, false
}
