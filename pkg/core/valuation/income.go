package valuation

import (
	"fmt"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

// CapRateFloor is the minimum effective capitalization rate. Rates at or
// below zero would invert the model; rates above 50% imply inputs outside
// the model's domain. Both cases warn before flooring.
const (
	CapRateFloor   = 0.10
	capRateWarnMax = 0.50
)

// IncomeInput carries everything the income approach needs.
type IncomeInput struct {
	WeightedSDE    float64
	WeightedEBITDA float64

	Rates models.DiscountRateComponents

	// BenefitStream is "auto", "sde" or "ebitda".
	BenefitStream   string
	SDEThreshold    float64
	EBITDAThreshold float64

	Weight float64
}

// CalculateIncomeApproach computes the capitalization-of-earnings value via
// a build-up discount rate.
func CalculateIncomeApproach(in IncomeInput, trail *numutil.StepTrail) models.ApproachResult {
	stepMark := trail.Len()
	warnMark := trail.WarningCount()

	sel := selectBenefitStream(in.BenefitStream, in.WeightedSDE, in.WeightedEBITDA, in.SDEThreshold, in.EBITDAThreshold)
	trail.Add(models.StepIncome, "Benefit stream selection", "",
		map[string]float64{"weighted_sde": in.WeightedSDE, "weighted_ebitda": in.WeightedEBITDA}, sel.Value).
		Note = sel.Note

	// Build-up method: each component contributes additively.
	r := in.Rates
	discountRate := r.RiskFreeRate + r.EquityRiskPremium + r.SizePremium + r.IndustryRiskPremium + r.CompanyRiskPremium
	trail.Add(models.StepIncome, "Build-up discount rate",
		"risk-free + equity risk premium + size premium + industry risk premium + company-specific premium",
		map[string]float64{
			"risk_free_rate":        r.RiskFreeRate,
			"equity_risk_premium":   r.EquityRiskPremium,
			"size_premium":          r.SizePremium,
			"industry_risk_premium": r.IndustryRiskPremium,
			"company_risk_premium":  r.CompanyRiskPremium,
		}, discountRate)

	capRate := discountRate - r.LongTermGrowthRate
	capStep := trail.Add(models.StepIncome, "Capitalization rate",
		"discount rate - long-term growth rate",
		map[string]float64{"discount_rate": discountRate, "long_term_growth_rate": r.LongTermGrowthRate}, capRate)

	if capRate <= 0 {
		trail.WarnStep(capStep, fmt.Sprintf("Capitalization rate %.4f is non-positive; floored at %.0f%%", capRate, CapRateFloor*100))
	} else if capRate > capRateWarnMax {
		trail.WarnStep(capStep, fmt.Sprintf("Capitalization rate %.4f exceeds %.0f%%; review discount-rate inputs", capRate, capRateWarnMax*100))
	}
	effectiveCapRate := capRate
	if effectiveCapRate < CapRateFloor {
		effectiveCapRate = CapRateFloor
		trail.Add(models.StepIncome, "Capitalization rate floor applied", "max(cap rate, 10%)",
			map[string]float64{"cap_rate": capRate}, effectiveCapRate)
	}

	value := numutil.RoundToThousand(numutil.SafeDiv(sel.Value, effectiveCapRate))
	valueStep := trail.Add(models.StepIncome, "Indicated value (capitalized earnings)",
		"benefit stream / effective capitalization rate",
		map[string]float64{"benefit_stream": sel.Value, "effective_cap_rate": effectiveCapRate}, value)

	if value <= 0 {
		trail.WarnStep(valueStep, fmt.Sprintf("Income approach produced a non-positive value (%.0f); benefit stream is %.0f", value, sel.Value))
	}

	return models.ApproachResult{
		Approach: "income",
		Value:    value,
		Source:   sel.Stream,
		Weight:   in.Weight,
		Steps:    trail.SinceIndex(stepMark),
		Warnings: trail.WarningsSince(warnMark),
	}
}
