package analysis

import (
	"math"
	"testing"

	"smb_valuation/pkg/models"
)

func sampleFinancials() models.MultiYearFinancials {
	return models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2024, Revenue: 1_000_000, GrossProfit: 400_000, NetIncome: 80_000},
		{Year: 2023, Revenue: 950_000, GrossProfit: 380_000, NetIncome: 70_000},
	}}
}

func sampleBalanceSheet() *models.BalanceSheet {
	return &models.BalanceSheet{
		CurrentAssets:      models.CurrentAssetDetail{Cash: 50_000, AccountsReceivable: 100_000, Inventory: 60_000, Total: 300_000},
		CurrentLiabilities: models.CurrentLiabilityDetail{ShortTermDebt: 30_000, Total: 150_000},
		TotalAssets:        600_000,
		TotalLiabilities:   250_000,
		TotalEquity:        350_000,
	}
}

func TestScoreKPIsBenchmarkAnchors(t *testing.T) {
	res := ScoreKPIs(sampleFinancials(), sampleBalanceSheet(), 150_000)

	byKey := make(map[string]RatioScore)
	for _, r := range res.Ratios {
		byKey[r.Key] = r
	}

	// Gross margin 0.40 sits exactly at the p50 anchor -> score 50.
	gm, ok := byKey["gross_margin"]
	if !ok {
		t.Fatal("gross_margin not scored")
	}
	if math.Abs(gm.Value-0.40) > 0.0001 {
		t.Errorf("Expected gross margin 0.40, got %f", gm.Value)
	}
	if math.Abs(gm.Score-50) > 0.0001 {
		t.Errorf("Expected score 50 at p50, got %f", gm.Score)
	}
	if gm.Rating != RatingMeeting {
		t.Errorf("Expected rating %q, got %q", RatingMeeting, gm.Rating)
	}

	// Current ratio 2.0 is halfway between p50 (1.5) and p75 (2.5) -> 62.5.
	cr := byKey["current_ratio"]
	if math.Abs(cr.Score-62.5) > 0.0001 {
		t.Errorf("Expected current ratio score 62.5, got %f", cr.Score)
	}

	if res.HealthScore <= 0 || res.HealthScore > 100 {
		t.Errorf("Health score %f outside (0, 100]", res.HealthScore)
	}
}

func TestScoreKPIsLowerIsBetter(t *testing.T) {
	// Debt-to-equity landing on its p50 must still score 50 despite the
	// mirrored direction.
	bs := sampleBalanceSheet()
	bs.TotalLiabilities = 420_000
	bs.TotalEquity = 350_000 // D/E = 1.2 = p50

	res := ScoreKPIs(sampleFinancials(), bs, 0)

	for _, r := range res.Ratios {
		if r.Key == "debt_to_equity" {
			if math.Abs(r.Score-50) > 0.0001 {
				t.Errorf("Expected D/E score 50 at p50, got %f", r.Score)
			}
			return
		}
	}
	t.Fatal("debt_to_equity not scored")
}

func TestScoreKPIsNoBalanceSheet(t *testing.T) {
	res := ScoreKPIs(sampleFinancials(), nil, 0)

	for _, r := range res.Ratios {
		if r.Key == "current_ratio" || r.Key == "debt_to_equity" {
			t.Errorf("Ratio %s should be skipped without a balance sheet", r.Key)
		}
	}
	if len(res.Warnings) == 0 {
		t.Error("Expected a warning about the missing balance sheet")
	}
}

func TestScoreRiskFactorScores(t *testing.T) {
	metrics := RiskMetrics{
		TopCustomerRevenueShare: 0.40, // band (0.35, 0.50] -> 8
		OwnerWeeklyHours:        55,   // band (50, 60] -> 8
		YearsInBusiness:         12,   // band (10, 20] -> 4
		AvgRevenueGrowth:        0.06, // band (0.02, 0.10] -> 4
		NetMarginChange:         0.00, // band (-0.01, 0.01] -> 6
		IndustryOutlookGrade:    7,    // band (6, 8] -> 4
		CompetitionGrade:        7,    // band (6, 8] -> 8
		LeaseYearsRemaining:     4,    // band (3, 5] -> 6
		NonOwnerManagers:        2,    // band (1, 2] -> 6
		DataCompletenessScore:   0.9,  // band (0.8, 0.95] -> 4
	}

	res := ScoreRisk(metrics)

	expected := map[string]float64{
		"Customer Concentration":    8,
		"Owner Dependence":          8,
		"Years in Business":         4,
		"Revenue Trend":             4,
		"Profitability Trend":       6,
		"Industry Outlook":          4,
		"Competitive Pressure":      8,
		"Location and Lease":        6,
		"Management Depth":          6,
		"Financial Records Quality": 4,
	}
	for _, f := range res.Factors {
		want, ok := expected[f.Category]
		if !ok {
			continue
		}
		if f.Score != want {
			t.Errorf("%s: expected score %.0f, got %.0f", f.Category, want, f.Score)
		}
	}

	// Aggregate = sum(score * weight)
	// = 8*.15 + 8*.15 + 4*.10 + 4*.10 + 6*.10 + 4*.10 + 8*.08 + 6*.07 + 6*.08 + 4*.07
	// = 1.2 + 1.2 + 0.4 + 0.4 + 0.6 + 0.4 + 0.64 + 0.42 + 0.48 + 0.28 = 6.02
	if math.Abs(res.AggregateScore-6.02) > 0.0001 {
		t.Errorf("Expected aggregate 6.02, got %f", res.AggregateScore)
	}
	if res.OverallRating != RiskElevated {
		t.Errorf("Expected rating %q, got %q", RiskElevated, res.OverallRating)
	}

	// Premium = 0.01 + (6.02 - 1)/9 * 0.09 = 0.0602
	if math.Abs(res.CompanyRiskPremium-0.0602) > 0.0001 {
		t.Errorf("Expected premium 0.0602, got %f", res.CompanyRiskPremium)
	}
}

func TestScoreRiskCombinedFactor(t *testing.T) {
	res := ScoreRisk(RiskMetrics{})

	var combined *models.RiskFactor
	var impactSum float64
	for i := range res.Factors {
		if res.Factors[i].Category == "Combined" {
			combined = &res.Factors[i]
			continue
		}
		impactSum += res.Factors[i].MultipleImpact
	}
	if combined == nil {
		t.Fatal("Expected a Combined factor")
	}
	if math.Abs(combined.MultipleImpact-impactSum) > 0.0001 {
		t.Errorf("Combined impact %f does not equal factor sum %f", combined.MultipleImpact, impactSum)
	}
}

func TestAnalyzeWorkingCapitalSurplus(t *testing.T) {
	bs := *sampleBalanceSheet()

	// Operating WC = (300000 - 50000) - (150000 - 30000) = 130000
	// NAICS 72 target = 5% of 1M = 50000 -> surplus 80000 -> seller credit
	res := AnalyzeWorkingCapital(bs, 1_000_000, "722110")

	if res.OperatingWorkingCapital != 130_000 {
		t.Errorf("Expected operating WC 130000, got %f", res.OperatingWorkingCapital)
	}
	if res.BenchmarkPctOfRevenue != 0.05 {
		t.Errorf("Expected sector pct 0.05, got %f", res.BenchmarkPctOfRevenue)
	}
	if res.AdjustmentDirection != AdjustmentSellerCredit || res.Adjustment != 80_000 {
		t.Errorf("Expected seller credit 80000, got %q %f", res.AdjustmentDirection, res.Adjustment)
	}
}

func TestAnalyzeWorkingCapitalDeficitAndDefault(t *testing.T) {
	bs := *sampleBalanceSheet()

	// Unknown sector uses the 12.5% default: target = 250000 on 2M revenue,
	// operating WC is 130000 -> 120000 deficit -> buyer credit.
	res := AnalyzeWorkingCapital(bs, 2_000_000, "999999")

	if res.BenchmarkPctOfRevenue != 0.125 {
		t.Errorf("Expected default pct 0.125, got %f", res.BenchmarkPctOfRevenue)
	}
	if res.AdjustmentDirection != AdjustmentBuyerCredit || res.Adjustment != 120_000 {
		t.Errorf("Expected buyer credit 120000, got %q %f", res.AdjustmentDirection, res.Adjustment)
	}
}
