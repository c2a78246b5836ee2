package earnings

import (
	"math"
	"strings"
	"testing"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

func defaultCfg() models.ValuationConfig {
	return models.DefaultValuationConfig()
}

func TestNormalizeSingleYearSDE(t *testing.T) {
	// SDE = 200000 (NI) + 100000 (officer comp) + 10000 (interest)
	//     + 20000 (depreciation) + 5000 (50% of 10000 meals)
	//     = 335000
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year:                2023,
		Revenue:             1_000_000,
		NetIncome:           200_000,
		OfficerCompensation: 100_000,
		InterestExpense:     10_000,
		Depreciation:        20_000,
		Taxes:               15_000,
		Discretionary:       models.DiscretionaryExpenses{MealsEntertainment: 10_000},
	}}}

	trail := numutil.NewStepTrail()
	res := Normalize(fin, 75_000, defaultCfg(), trail)

	if len(res.ByYear) != 1 {
		t.Fatalf("Expected 1 year, got %d", len(res.ByYear))
	}
	if res.ByYear[0].SDE != 335_000 {
		t.Errorf("Expected SDE 335000, got %f", res.ByYear[0].SDE)
	}

	// EBITDA = 200000 + 10000 (interest) + 15000 (taxes) + 20000 (depr)
	//        + (100000 - 75000) comp adjustment = 270000
	if res.ByYear[0].EBITDA != 270_000 {
		t.Errorf("Expected EBITDA 270000, got %f", res.ByYear[0].EBITDA)
	}

	// Single year: weighted equals the year itself.
	if res.WeightedSDE != 335_000 {
		t.Errorf("Expected weighted SDE 335000, got %f", res.WeightedSDE)
	}
}

func TestNormalizeTwoYearWeighting(t *testing.T) {
	// 2023 SDE = 150000 + 90000 = 240000
	// 2024 SDE = 200000 + 135000 = 335000
	// Weighted = (2*335000 + 1*240000) / 3 = 910000 / 3 = 303333.33 -> 303333
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2023, NetIncome: 150_000, OfficerCompensation: 90_000},
		{Year: 2024, NetIncome: 200_000, OfficerCompensation: 135_000},
	}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.ByYear[0].Year != 2024 {
		t.Errorf("Expected most recent year first, got %d", res.ByYear[0].Year)
	}
	if math.Abs(res.WeightedSDE-303_333) > 0.5 {
		t.Errorf("Expected weighted SDE 303333, got %f", res.WeightedSDE)
	}
}

func TestNormalizeThreeYearWeighting(t *testing.T) {
	// SDE per year equals net income here (no add-backs).
	// Weighted = (3*300000 + 2*200000 + 1*100000) / 6 = 1400000 / 6
	//          = 233333.33 -> 233333
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2022, NetIncome: 100_000},
		{Year: 2023, NetIncome: 200_000},
		{Year: 2024, NetIncome: 300_000},
	}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.WeightedSDE != 233_333 {
		t.Errorf("Expected weighted SDE 233333, got %f", res.WeightedSDE)
	}
}

func TestNormalizeFourYearWeighting(t *testing.T) {
	// Weighted = (4*300000 + 3*240000 + 2*180000 + 1*120000) / 10
	//          = 2400000 / 10 = 240000
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{
		{Year: 2021, NetIncome: 120_000},
		{Year: 2022, NetIncome: 180_000},
		{Year: 2023, NetIncome: 240_000},
		{Year: 2024, NetIncome: 300_000},
	}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.WeightedSDE != 240_000 {
		t.Errorf("Expected weighted SDE 240000, got %f", res.WeightedSDE)
	}
}

func TestNormalizePandemicReliefExclusion(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year:           2021,
		NetIncome:      300_000,
		PandemicRelief: models.PandemicRelief{PPPForgiveness: 50_000},
	}}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.ByYear[0].PandemicReliefExcluded != 50_000 {
		t.Errorf("Expected relief 50000 excluded, got %f", res.ByYear[0].PandemicReliefExcluded)
	}
	if res.ByYear[0].SDE != 250_000 {
		t.Errorf("Expected SDE 250000 after relief exclusion, got %f", res.ByYear[0].SDE)
	}

	// A year outside the relief window keeps the relief in earnings.
	fin.Periods[0].Year = 2023
	res = Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())
	if res.ByYear[0].SDE != 300_000 {
		t.Errorf("Expected SDE 300000 outside relief years, got %f", res.ByYear[0].SDE)
	}
}

func TestNormalizeCustomAddBacks(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year:      2023,
		NetIncome: 100_000,
		CustomAddBacks: []models.AddBackItem{
			{Name: "Legal settlement", Amount: 20_000},                  // pct <= 0 means 100%
			{Name: "Family cell plan", Amount: 4_000, Percentage: 0.5}, // 2000 applied
		},
	}}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.ByYear[0].SDE != 122_000 {
		t.Errorf("Expected SDE 122000, got %f", res.ByYear[0].SDE)
	}
}

func TestNormalizeNoPeriods(t *testing.T) {
	res := Normalize(models.MultiYearFinancials{}, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.WeightedSDE != 0 || res.WeightedEBITDA != 0 {
		t.Errorf("Expected zero figures, got SDE %f EBITDA %f", res.WeightedSDE, res.WeightedEBITDA)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "No financial periods") {
		t.Errorf("Expected the no-periods warning, got %v", res.Warnings)
	}
}

func TestNormalizeSalaryDefault(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year: 2023, NetIncome: 100_000, OfficerCompensation: 75_000,
	}}}

	res := Normalize(fin, 0, defaultCfg(), numutil.NewStepTrail())

	if res.FairMarketSalary != DefaultFairMarketSalary {
		t.Errorf("Expected default salary %d, got %f", DefaultFairMarketSalary, res.FairMarketSalary)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "Fair market salary") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a salary-default warning, got %v", res.Warnings)
	}
}

func TestNormalizeTruncatesToFourYears(t *testing.T) {
	var periods []models.FinancialPeriod
	for y := 2019; y <= 2024; y++ {
		periods = append(periods, models.FinancialPeriod{Year: y, NetIncome: 100_000})
	}
	fin := models.MultiYearFinancials{Periods: periods}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if len(res.ByYear) != 4 {
		t.Fatalf("Expected 4 weighted years, got %d", len(res.ByYear))
	}
	if res.ByYear[0].Year != 2024 || res.ByYear[3].Year != 2021 {
		t.Errorf("Expected years 2024..2021, got %d..%d", res.ByYear[0].Year, res.ByYear[3].Year)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "More than 4") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a truncation warning, got %v", res.Warnings)
	}
}

func TestNormalizeNegativeSDEWarning(t *testing.T) {
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year: 2023, NetIncome: -80_000,
	}}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "SDE is negative") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a negative-SDE warning, got %v", res.Warnings)
	}
}

func TestNormalizeNegativeAddBacksIgnored(t *testing.T) {
	// A negative depreciation line must not reduce SDE.
	fin := models.MultiYearFinancials{Periods: []models.FinancialPeriod{{
		Year: 2023, NetIncome: 100_000, Depreciation: -5_000,
	}}}

	res := Normalize(fin, 75_000, defaultCfg(), numutil.NewStepTrail())

	if res.ByYear[0].SDE != 100_000 {
		t.Errorf("Expected SDE 100000, got %f", res.ByYear[0].SDE)
	}
}
