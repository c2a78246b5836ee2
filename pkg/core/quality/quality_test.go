package quality

import (
	"math"
	"testing"

	"smb_valuation/pkg/models"
)

func TestAssessCompleteData(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2024, Revenue: 1_000_000, NetIncome: 100_000, OfficerCompensation: 90_000,
			InterestExpense: 5_000, Depreciation: 20_000, Taxes: 15_000},
		{Year: 2023, Revenue: 900_000, NetIncome: 90_000, OfficerCompensation: 85_000},
		{Year: 2022, Revenue: 850_000, NetIncome: 80_000, OfficerCompensation: 80_000},
	}}
	bs := &models.BalanceSheet{TotalAssets: 500_000, TotalLiabilities: 200_000, TotalEquity: 300_000}

	res := Assess(fin, bs, []string{"tax_return", "financial_statement", "balance_sheet"})

	if !res.CanProceed {
		t.Error("Expected complete data to clear the gate")
	}
	if res.CriticalScore != 1.0 {
		t.Errorf("Expected critical score 1.0, got %f", res.CriticalScore)
	}
	if res.CompletenessScore != 1.0 {
		t.Errorf("Expected completeness 1.0, got %f", res.CompletenessScore)
	}
	if res.DocumentCoverage != 1.0 {
		t.Errorf("Expected full document coverage, got %f", res.DocumentCoverage)
	}
}

func TestAssessGateBlocks(t *testing.T) {
	// All critical fields absent: score 0 < 0.6 gate.
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{Year: 2024}}}

	res := Assess(fin, nil, nil)

	if res.CanProceed {
		t.Error("Expected the gate to block on empty critical fields")
	}
	if res.CriticalScore != 0 {
		t.Errorf("Expected critical score 0, got %f", res.CriticalScore)
	}
	if len(res.Warnings) == 0 {
		t.Error("Expected blocking warnings")
	}
}

func TestAssessGateAllowsPartialCritical(t *testing.T) {
	// Revenue present covers the revenue and net-income checks: 2/3 = 0.67
	// clears the 0.6 gate despite missing officer compensation.
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2024, Revenue: 500_000},
	}}

	res := Assess(fin, nil, nil)

	if math.Abs(res.CriticalScore-2.0/3.0) > 0.0001 {
		t.Errorf("Expected critical score 0.667, got %f", res.CriticalScore)
	}
	if !res.CanProceed {
		t.Error("Expected 0.67 to clear the 0.6 gate")
	}
}

func TestAssessNoPeriods(t *testing.T) {
	res := Assess(models.MultiYearFinancials{}, nil, nil)

	if res.CanProceed {
		t.Error("Expected no periods to block")
	}
}

func TestAssessMissingBalanceSheetLowersScore(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2024, Revenue: 1_000_000, NetIncome: 100_000, OfficerCompensation: 90_000},
	}}

	with := Assess(fin, &models.BalanceSheet{TotalAssets: 1, TotalLiabilities: 1, TotalEquity: 1}, nil)
	without := Assess(fin, nil, nil)

	if without.CompletenessScore >= with.CompletenessScore {
		t.Errorf("Expected a lower score without a balance sheet: %f vs %f",
			without.CompletenessScore, with.CompletenessScore)
	}
}
