package valuation

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

const weightSumTolerance = 0.001

// SynthesisInput bundles the three approach results with the run config.
type SynthesisInput struct {
	Asset  models.ApproachResult
	Income models.ApproachResult
	Market models.ApproachResult
	Config models.ValuationConfig
}

// Synthesize blends the approaches by weight, applies discounts, premiums and
// named adjustments, enforces the asset-value floor and produces the
// concluded value with its range.
func Synthesize(in SynthesisInput, trail *numutil.StepTrail) models.ValuationSynthesis {
	stepMark := trail.Len()
	warnMark := trail.WarningCount()

	approaches := []models.ApproachResult{in.Asset, in.Income, in.Market}
	weightSum := lo.SumBy(approaches, func(a models.ApproachResult) float64 { return a.Weight })
	if math.Abs(weightSum-1.0) > weightSumTolerance {
		trail.Warnf("Approach weights sum to %.4f, not 1.0; blended value is unnormalized", weightSum)
	}

	contributions := lo.Map(approaches, func(a models.ApproachResult, _ int) models.ApproachContribution {
		return models.ApproachContribution{
			Approach:     a.Approach,
			Value:        a.Value,
			Weight:       a.Weight,
			Contribution: a.Value * a.Weight,
		}
	})

	preliminary := lo.SumBy(contributions, func(c models.ApproachContribution) float64 { return c.Contribution })
	trail.Add(models.StepSynthesis, "Preliminary blended value",
		"sum(approach value * weight)",
		map[string]float64{
			"asset_value":   in.Asset.Value,
			"asset_weight":  in.Asset.Weight,
			"income_value":  in.Income.Value,
			"income_weight": in.Income.Weight,
			"market_value":  in.Market.Value,
			"market_weight": in.Market.Weight,
		}, preliminary)

	value := preliminary
	var adjustments []models.ValueAdjustment
	cfg := in.Config

	applyPct := func(label, kind string, pct float64, sign float64) {
		amount := value * pct * sign
		value += amount
		adjustments = append(adjustments, models.ValueAdjustment{Label: label, Kind: kind, Percentage: pct, Amount: amount})
		trail.Add(models.StepSynthesis, label, "value * (1 +/- percentage)",
			map[string]float64{"percentage": pct}, value)
	}

	if cfg.ApplyDLOM && cfg.DLOMPercentage > 0 {
		applyPct("Discount for lack of marketability", models.AdjustmentDLOM, cfg.DLOMPercentage, -1)
	}
	if cfg.ApplyDLOC && cfg.DLOCPercentage > 0 {
		applyPct("Discount for lack of control", models.AdjustmentDLOC, cfg.DLOCPercentage, -1)
	}
	if cfg.ControlPremium > 0 {
		applyPct("Control premium", models.AdjustmentControlPremium, cfg.ControlPremium, +1)
	}

	for _, adj := range cfg.OtherAdjustments {
		value += adj.Amount
		adjustments = append(adjustments, models.ValueAdjustment{Label: adj.Label, Kind: models.AdjustmentOther, Amount: adj.Amount})
		trail.Add(models.StepSynthesis, fmt.Sprintf("Adjustment: %s", adj.Label), "value + amount",
			map[string]float64{"amount": adj.Amount}, value)
	}

	floorApplied := false
	if value < in.Asset.Value {
		trail.Warnf("Blended value %.0f is below the asset approach value %.0f; floored at asset value", value, in.Asset.Value)
		value = in.Asset.Value
		floorApplied = true
		trail.Add(models.StepSynthesis, "Asset value floor applied", "max(value, asset value)",
			map[string]float64{"asset_value": in.Asset.Value}, value)
	}

	concluded := numutil.RoundToThousand(value)
	if concluded < in.Asset.Value {
		concluded = in.Asset.Value
		floorApplied = true
	}

	pct := cfg.ValueRangePercentage
	rng := models.ValueRange{
		Low:  numutil.RoundToThousand(concluded * (1 - pct)),
		High: numutil.RoundToThousand(concluded * (1 + pct)),
	}

	trail.Add(models.StepSynthesis, "Concluded value",
		"round(value, 1000)",
		map[string]float64{"preliminary": preliminary, "range_low": rng.Low, "range_high": rng.High}, concluded)

	return models.ValuationSynthesis{
		Contributions:    contributions,
		PreliminaryValue: preliminary,
		Adjustments:      adjustments,
		FloorApplied:     floorApplied,
		ConcludedValue:   concluded,
		Range:            rng,
		Steps:            trail.SinceIndex(stepMark),
		Warnings:         trail.WarningsSince(warnMark),
	}
}
