// Package earnings derives normalized benefit streams (SDE and EBITDA) from
// multi-year financials, then weights them most-recent-first.
package earnings

import (
	"fmt"

	"github.com/samber/lo"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

// DefaultFairMarketSalary substitutes for a non-positive replacement salary.
const DefaultFairMarketSalary = 75_000

// LowSDEThreshold marks SDE values low enough to warrant a data warning.
const LowSDEThreshold = 50_000

// Fractions applied to partially addable discretionary categories.
const (
	mealsAddBackPct     = 0.50
	ownerAutoAddBackPct = 0.50
)

// weightTables maps period count to most-recent-first weights.
var weightTables = map[int][]float64{
	1: {1},
	2: {2, 1},
	3: {3, 2, 1},
	4: {4, 3, 2, 1},
}

// AppliedAddBack records one add-back line as applied: the raw amount, the
// fraction added back and the resulting applied amount.
type AppliedAddBack struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Applied    float64 `json:"applied"`
}

// YearlyEarnings holds one fiscal year's derived SDE and EBITDA.
type YearlyEarnings struct {
	Year                   int              `json:"year"`
	NetIncome              float64          `json:"net_income"`
	SDE                    float64          `json:"sde"`
	EBITDA                 float64          `json:"ebitda"`
	AddBacks               []AppliedAddBack `json:"add_backs"`
	PandemicReliefExcluded float64          `json:"pandemic_relief_excluded"`
}

// NormalizedEarnings is the normalizer's output: per-year figures plus the
// multi-year weighted SDE and EBITDA.
type NormalizedEarnings struct {
	ByYear           []YearlyEarnings         `json:"by_year"`
	WeightedSDE      float64                  `json:"weighted_sde"`
	WeightedEBITDA   float64                  `json:"weighted_ebitda"`
	FairMarketSalary float64                  `json:"fair_market_salary"`
	Steps            []models.CalculationStep `json:"steps"`
	Warnings         []string                 `json:"warnings"`
}

// Normalize derives per-year SDE and EBITDA and the weighted multi-year
// figures. Zero periods yields zero figures and a warning, never an error.
func Normalize(fin models.MultiYearFinancials, fairMarketSalary float64, cfg models.ValuationConfig, trail *numutil.StepTrail) NormalizedEarnings {
	stepMark := trail.Len()
	warnMark := trail.WarningCount()

	if fairMarketSalary <= 0 {
		trail.Warnf("Fair market salary not provided; defaulting to %d", DefaultFairMarketSalary)
		fairMarketSalary = DefaultFairMarketSalary
	}

	result := NormalizedEarnings{FairMarketSalary: fairMarketSalary}

	periods := fin.SortedMostRecentFirst()
	if len(periods) == 0 {
		trail.Warn("No financial periods provided")
		result.Steps = trail.SinceIndex(stepMark)
		result.Warnings = trail.WarningsSince(warnMark)
		return result
	}

	reliefYears := make(map[int]bool, len(cfg.PandemicReliefYears))
	for _, y := range cfg.PandemicReliefYears {
		reliefYears[y] = true
	}

	if len(periods) > 4 {
		dropped := lo.Map(periods[4:], func(p models.FinancialPeriod, _ int) int { return p.Year })
		trail.Warnf("More than 4 financial periods supplied; weighting uses the 4 most recent, dropping years %v", dropped)
		periods = periods[:4]
	}

	for _, p := range periods {
		ye := normalizeYear(p, fairMarketSalary, reliefYears[p.Year], trail)
		result.ByYear = append(result.ByYear, ye)

		if ye.SDE < 0 {
			trail.Warnf("Year %d SDE is negative (%.0f)", ye.Year, ye.SDE)
		} else if ye.SDE < LowSDEThreshold {
			trail.Warnf("Year %d SDE is unusually low (%.0f, below %d)", ye.Year, ye.SDE, LowSDEThreshold)
		}
		if ye.EBITDA < 0 {
			trail.Warnf("Year %d EBITDA is negative (%.0f)", ye.Year, ye.EBITDA)
		}
	}

	weights := weightTables[len(result.ByYear)]

	sdeValues := lo.Map(result.ByYear, func(y YearlyEarnings, _ int) float64 { return y.SDE })
	ebitdaValues := lo.Map(result.ByYear, func(y YearlyEarnings, _ int) float64 { return y.EBITDA })

	result.WeightedSDE = numutil.RoundToUnit(numutil.WeightedAverage(sdeValues, weights))
	result.WeightedEBITDA = numutil.RoundToUnit(numutil.WeightedAverage(ebitdaValues, weights))

	trail.Add(models.StepEarnings,
		fmt.Sprintf("Weighted SDE over %d year(s)", len(result.ByYear)),
		"sum(SDE_i * w_i) / sum(w_i)",
		weightInputs(sdeValues, weights), result.WeightedSDE)
	trail.Add(models.StepEarnings,
		fmt.Sprintf("Weighted EBITDA over %d year(s)", len(result.ByYear)),
		"sum(EBITDA_i * w_i) / sum(w_i)",
		weightInputs(ebitdaValues, weights), result.WeightedEBITDA)

	result.Steps = trail.SinceIndex(stepMark)
	result.Warnings = trail.WarningsSince(warnMark)
	return result
}

// normalizeYear computes SDE and EBITDA for one fiscal year and logs one
// audit step per figure.
func normalizeYear(p models.FinancialPeriod, fairMarketSalary float64, reliefApplies bool, trail *numutil.StepTrail) YearlyEarnings {
	ye := YearlyEarnings{Year: p.Year, NetIncome: p.NetIncome}

	// --- SDE ---
	sde := p.NetIncome

	addStandard := func(name string, amount float64) {
		// Standard add-backs apply in full only when positive.
		if amount <= 0 {
			return
		}
		ye.AddBacks = append(ye.AddBacks, AppliedAddBack{Name: name, Amount: amount, Percentage: 1.0, Applied: amount})
		sde += amount
	}
	addPartial := func(name string, amount, pct float64) {
		if amount <= 0 {
			return
		}
		applied := amount * pct
		ye.AddBacks = append(ye.AddBacks, AppliedAddBack{Name: name, Amount: amount, Percentage: pct, Applied: applied})
		sde += applied
	}

	addStandard("Officer compensation", p.OfficerCompensation)
	addStandard("Interest expense", p.InterestExpense)
	addStandard("Depreciation", p.Depreciation)
	addStandard("Amortization", p.Amortization)

	addStandard("Non-recurring expenses", p.Discretionary.NonRecurringExpenses)
	addStandard("Personal expenses", p.Discretionary.PersonalExpenses)
	addStandard("Charitable contributions", p.Discretionary.CharitableContributions)
	addPartial("Meals and entertainment", p.Discretionary.MealsEntertainment, mealsAddBackPct)
	addPartial("Owner auto expenses", p.Discretionary.OwnerAutoExpenses, ownerAutoAddBackPct)

	for _, item := range p.CustomAddBacks {
		pct := item.Percentage
		if pct <= 0 {
			pct = 1.0
		}
		addPartial(item.Name, item.Amount, pct)
	}

	if reliefApplies {
		ye.PandemicReliefExcluded = p.PandemicRelief.Total()
		sde -= ye.PandemicReliefExcluded
	}
	ye.SDE = sde

	sdeStep := trail.Add(models.StepEarnings,
		fmt.Sprintf("SDE for year %d", p.Year),
		"net income + standard add-backs + discretionary add-backs - pandemic relief",
		map[string]float64{
			"net_income":      p.NetIncome,
			"add_backs":       sde - p.NetIncome + ye.PandemicReliefExcluded,
			"pandemic_relief": ye.PandemicReliefExcluded,
		}, ye.SDE)
	if ye.PandemicReliefExcluded > 0 {
		sdeStep.Note = fmt.Sprintf("One-time pandemic relief of %.0f excluded for year %d", ye.PandemicReliefExcluded, p.Year)
	}

	// --- EBITDA ---
	// Normalized for owner compensation: actual officer comp replaces the
	// fair-market salary, and non-recurring expenses are added back.
	compAdjustment := p.OfficerCompensation - fairMarketSalary
	ebitda := p.NetIncome + p.InterestExpense + p.Taxes + p.Depreciation + p.Amortization +
		compAdjustment + p.Discretionary.NonRecurringExpenses
	ye.EBITDA = ebitda

	trail.Add(models.StepEarnings,
		fmt.Sprintf("Adjusted EBITDA for year %d", p.Year),
		"net income + interest + taxes + depreciation + amortization + (officer comp - fair salary) + non-recurring",
		map[string]float64{
			"net_income":      p.NetIncome,
			"interest":        p.InterestExpense,
			"taxes":           p.Taxes,
			"depreciation":    p.Depreciation,
			"amortization":    p.Amortization,
			"comp_adjustment": compAdjustment,
			"non_recurring":   p.Discretionary.NonRecurringExpenses,
		}, ye.EBITDA)

	return ye
}

func weightInputs(values, weights []float64) map[string]float64 {
	inputs := make(map[string]float64, len(values)*2)
	for i, v := range values {
		inputs[fmt.Sprintf("value_%d", i+1)] = v
		inputs[fmt.Sprintf("weight_%d", i+1)] = weights[i]
	}
	return inputs
}
