// Package quality scores data completeness over the supplied financial
// records and gates whether valuation may proceed.
package quality

import (
	"fmt"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

// CriticalGateThreshold is the minimum critical-field score for a valuation
// to proceed.
const CriticalGateThreshold = 0.6

// Field-group weights of the completeness score.
const (
	weightCritical     = 0.50
	weightImportant    = 0.20
	weightBalanceSheet = 0.15
	weightMultiYear    = 0.15
)

// expectedDocumentKinds is the document set a complete submission covers.
var expectedDocumentKinds = 3 // tax return, financial statement, balance sheet

// GroupScore is one field group's presence ratio.
type GroupScore struct {
	Name    string   `json:"name"`
	Weight  float64  `json:"weight"`
	Present int      `json:"present"`
	Total   int      `json:"total"`
	Score   float64  `json:"score"`
	Missing []string `json:"missing,omitempty"`
}

// Result is the completeness assessment consumed by the orchestrator gate.
type Result struct {
	Groups            []GroupScore `json:"groups"`
	CompletenessScore float64      `json:"completeness_score"` // 0-1 weighted
	DocumentCoverage  float64      `json:"document_coverage"`  // 0-1
	CriticalScore     float64      `json:"critical_score"`
	CanProceed        bool         `json:"can_proceed"`
	Warnings          []string     `json:"warnings"`
}

// Assess scores field presence across the critical, important,
// balance-sheet and multi-year groups plus document coverage.
// documentKinds are provenance strings from the extraction collaborator.
func Assess(fin models.MultiYearFinancials, bs *models.BalanceSheet, documentKinds []string) Result {
	var result Result

	current, ok := fin.MostRecent()
	if !ok {
		result.Warnings = append(result.Warnings, "No financial periods provided")
		result.CanProceed = false
		return result
	}

	critical := scoreGroup("critical", weightCritical, []fieldCheck{
		{"revenue", current.Revenue != 0},
		{"net_income", current.NetIncome != 0 || current.Revenue != 0},
		{"officer_compensation", current.OfficerCompensation != 0},
	})
	important := scoreGroup("important", weightImportant, []fieldCheck{
		{"interest_expense", current.InterestExpense != 0},
		{"depreciation", current.Depreciation != 0},
		{"taxes", current.Taxes != 0},
	})

	var balanceChecks []fieldCheck
	if bs == nil {
		balanceChecks = []fieldCheck{{"balance_sheet", false}}
	} else {
		balanceChecks = []fieldCheck{
			{"total_assets", bs.TotalAssets != 0},
			{"total_liabilities", bs.TotalLiabilities != 0},
			{"total_equity", bs.TotalEquity != 0},
		}
	}
	balance := scoreGroup("balance_sheet", weightBalanceSheet, balanceChecks)

	periods := fin.SortedMostRecentFirst()
	multiYear := scoreGroup("multi_year", weightMultiYear, []fieldCheck{
		{"second_year", len(periods) >= 2},
		{"third_year", len(periods) >= 3},
	})

	result.Groups = []GroupScore{critical, important, balance, multiYear}

	var weighted, weightSum float64
	for _, g := range result.Groups {
		weighted += g.Score * g.Weight
		weightSum += g.Weight
	}
	result.CompletenessScore = numutil.SafeDiv(weighted, weightSum)
	result.DocumentCoverage = numutil.Clamp(float64(len(documentKinds))/float64(expectedDocumentKinds), 0, 1)
	result.CriticalScore = critical.Score
	result.CanProceed = result.CriticalScore >= CriticalGateThreshold

	if !result.CanProceed {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Critical-field score %.2f is below the %.1f gate; valuation blocked", result.CriticalScore, CriticalGateThreshold))
	}
	for _, g := range result.Groups {
		if len(g.Missing) > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Missing %s fields: %v", g.Name, g.Missing))
		}
	}
	if result.DocumentCoverage < 1 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"Document coverage %.2f: %d of %d expected document kinds supplied", result.DocumentCoverage, len(documentKinds), expectedDocumentKinds))
	}

	return result
}

type fieldCheck struct {
	name    string
	present bool
}

func scoreGroup(name string, weight float64, checks []fieldCheck) GroupScore {
	g := GroupScore{Name: name, Weight: weight, Total: len(checks)}
	for _, c := range checks {
		if c.present {
			g.Present++
		} else {
			g.Missing = append(g.Missing, c.name)
		}
	}
	g.Score = numutil.SafeDiv(float64(g.Present), float64(g.Total))
	return g
}
