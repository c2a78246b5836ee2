package analysis

import (
	"fmt"
	"math"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

const (
	RatingOutperforming   = "outperforming"
	RatingMeeting         = "meeting"
	RatingUnderperforming = "underperforming"
)

// RatioScore is one computed ratio with its benchmark score.
type RatioScore struct {
	Key    string
	Label  string
	Value  float64
	Score  float64
	Rating string
}

// CategoryScore aggregates the ratios of one health dimension.
type CategoryScore struct {
	Key    string
	Label  string
	Weight float64
	Score  float64
	Ratios []RatioScore
}

// KPIResult is the full KPI scorecard.
type KPIResult struct {
	Ratios      []RatioScore
	Categories  []CategoryScore
	HealthScore float64
	Warnings    []string
}

// ScoreKPIs computes the standard ratio set from financials and balance
// sheet, scores each against its benchmark and rolls up a 0-100 health score.
func ScoreKPIs(fin models.MultiYearFinancials, bs *models.BalanceSheet, weightedSDE float64) KPIResult {
	var result KPIResult

	values := ratioValues(fin, bs, weightedSDE, &result.Warnings)

	var weightedTotal, weightTotal float64
	for _, cat := range benchmarks.Categories {
		cs := CategoryScore{Key: cat.Key, Label: cat.Label, Weight: cat.Weight}
		var sum float64
		var n int
		for _, b := range cat.Ratios {
			v, ok := values[b.Key]
			if !ok {
				continue
			}
			score := scoreAgainstBenchmark(v, b)
			rs := RatioScore{
				Key:    b.Key,
				Label:  b.Label,
				Value:  v,
				Score:  score,
				Rating: rateAgainstBenchmark(score),
			}
			cs.Ratios = append(cs.Ratios, rs)
			result.Ratios = append(result.Ratios, rs)
			sum += score
			n++
		}
		if n == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("No data available to score the %s category", cat.Label))
			continue
		}
		cs.Score = sum / float64(n)
		result.Categories = append(result.Categories, cs)
		weightedTotal += cs.Score * cat.Weight
		weightTotal += cat.Weight
	}

	result.HealthScore = numutil.SafeDiv(weightedTotal, weightTotal)
	return result
}

func ratioValues(fin models.MultiYearFinancials, bs *models.BalanceSheet, weightedSDE float64, warnings *[]string) map[string]float64 {
	values := make(map[string]float64)

	periods := fin.SortedMostRecentFirst()
	if len(periods) == 0 {
		*warnings = append(*warnings, "No financial periods available for ratio analysis")
		return values
	}
	latest := periods[0]

	if latest.Revenue != 0 {
		values["gross_margin"] = numutil.SafeDiv(latest.GrossProfit, latest.Revenue)
		values["net_margin"] = numutil.SafeDiv(latest.NetIncome, latest.Revenue)
		if weightedSDE != 0 {
			values["sde_margin"] = numutil.SafeDiv(weightedSDE, latest.Revenue)
		}
	}

	if bs != nil {
		ca := bs.CurrentAssets.Total
		cl := bs.CurrentLiabilities.Total
		if cl != 0 {
			values["current_ratio"] = numutil.SafeDiv(ca, cl)
			values["quick_ratio"] = numutil.SafeDiv(ca-bs.CurrentAssets.Inventory, cl)
		}
		if bs.TotalAssets != 0 {
			values["asset_turnover"] = numutil.SafeDiv(latest.Revenue, bs.TotalAssets)
			values["debt_to_assets"] = numutil.SafeDiv(bs.TotalLiabilities, bs.TotalAssets)
		}
		if bs.TotalEquity != 0 {
			values["debt_to_equity"] = numutil.SafeDiv(bs.TotalLiabilities, bs.TotalEquity)
		}
		if latest.Revenue != 0 && bs.CurrentAssets.AccountsReceivable > 0 {
			values["receivable_days"] = numutil.SafeDiv(bs.CurrentAssets.AccountsReceivable, latest.Revenue) * 365
		}
	} else {
		*warnings = append(*warnings, "No balance sheet provided; liquidity and leverage ratios skipped")
	}

	if len(periods) >= 2 && periods[1].Revenue != 0 {
		values["revenue_growth"] = numutil.SafeDiv(latest.Revenue-periods[1].Revenue, periods[1].Revenue)
	}
	if len(periods) >= 3 {
		oldest := periods[len(periods)-1]
		years := float64(latest.Year - oldest.Year)
		if oldest.Revenue > 0 && latest.Revenue > 0 && years > 0 {
			values["revenue_cagr"] = math.Pow(latest.Revenue/oldest.Revenue, 1/years) - 1
		}
	}

	return values
}

// scoreAgainstBenchmark maps a ratio onto a 0-100 score: 25 at p25, 50 at
// p50, 75 at p75, interpolating linearly between anchors and extrapolating
// at the same slope beyond them before clamping.
func scoreAgainstBenchmark(v float64, b RatioBenchmark) float64 {
	p25, p50, p75 := b.P25, b.P50, b.P75
	if !b.HigherIsBetter {
		// Mirror so higher transformed values are always better.
		v, p25, p50, p75 = -v, -p25, -p50, -p75
	}

	var score float64
	switch {
	case v <= p50:
		score = 25 + 25*numutil.SafeDiv(v-p25, p50-p25)
	default:
		score = 50 + 25*numutil.SafeDiv(v-p50, p75-p50)
	}
	return numutil.Clamp(score, 0, 100)
}

func rateAgainstBenchmark(score float64) string {
	switch {
	case score >= 65:
		return RatingOutperforming
	case score >= 40:
		return RatingMeeting
	default:
		return RatingUnderperforming
	}
}
