package pipeline

import (
	"fmt"

	"github.com/samber/lo"

	"smb_valuation/pkg/core/earnings"
	"smb_valuation/pkg/models"
)

func money(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// buildSummaries renders the fixed report tables from a finished run.
func buildSummaries(r *FullCalculationResult) []models.SummaryTable {
	tables := []models.SummaryTable{
		earningsSummary(r.Earnings),
		approachSummary(r),
		synthesisSummary(r.Synthesis),
	}
	if len(r.Warnings) > 0 {
		tables = append(tables, warningsSummary(r.Warnings))
	}
	return tables
}

func earningsSummary(e earnings.NormalizedEarnings) models.SummaryTable {
	rows := lo.Map(e.ByYear, func(y earnings.YearlyEarnings, _ int) []string {
		return []string{
			fmt.Sprintf("%d", y.Year),
			money(y.NetIncome),
			money(y.SDE),
			money(y.EBITDA),
		}
	})
	rows = append(rows, []string{"Weighted", "", money(e.WeightedSDE), money(e.WeightedEBITDA)})
	return models.SummaryTable{
		Title:   "Normalized Earnings",
		Headers: []string{"Year", "Net Income", "SDE", "EBITDA"},
		Rows:    rows,
	}
}

func approachSummary(r *FullCalculationResult) models.SummaryTable {
	rows := lo.Map([]models.ApproachResult{r.Asset, r.Income, r.Market},
		func(a models.ApproachResult, _ int) []string {
			return []string{a.Approach, money(a.Value), a.Source, pct(a.Weight), money(a.Value * a.Weight)}
		})
	return models.SummaryTable{
		Title:   "Valuation Approaches",
		Headers: []string{"Approach", "Indicated Value", "Basis", "Weight", "Weighted Value"},
		Rows:    rows,
	}
}

func synthesisSummary(s models.ValuationSynthesis) models.SummaryTable {
	rows := [][]string{
		{"Preliminary blended value", money(s.PreliminaryValue)},
	}
	for _, adj := range s.Adjustments {
		label := adj.Label
		if adj.Percentage > 0 {
			label = fmt.Sprintf("%s (%s)", adj.Label, pct(adj.Percentage))
		}
		rows = append(rows, []string{label, money(adj.Amount)})
	}
	if s.FloorApplied {
		rows = append(rows, []string{"Asset value floor", "applied"})
	}
	rows = append(rows,
		[]string{"Concluded value", money(s.ConcludedValue)},
		[]string{"Value range", fmt.Sprintf("%s - %s", money(s.Range.Low), money(s.Range.High))},
	)
	return models.SummaryTable{
		Title:   "Valuation Synthesis",
		Headers: []string{"Item", "Amount"},
		Rows:    rows,
	}
}

func warningsSummary(warnings []string) models.SummaryTable {
	rows := lo.Map(warnings, func(w string, i int) []string {
		return []string{fmt.Sprintf("%d", i+1), w}
	})
	return models.SummaryTable{
		Title:   "Warnings",
		Headers: []string{"#", "Warning"},
		Rows:    rows,
	}
}
