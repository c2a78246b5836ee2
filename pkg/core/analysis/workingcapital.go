package analysis

import (
	"fmt"

	"smb_valuation/pkg/models"
)

const (
	AdjustmentSellerCredit = "seller_credit"
	AdjustmentBuyerCredit  = "buyer_credit"
	AdjustmentNone         = "none"
)

// WorkingCapitalResult compares operating working capital against the sector
// target and quantifies the deal adjustment either side would claim.
type WorkingCapitalResult struct {
	OperatingWorkingCapital float64
	BenchmarkPctOfRevenue   float64
	TargetWorkingCapital    float64
	Surplus                 float64
	AdjustmentDirection     string
	Adjustment              float64
	Warnings                []string
}

// AnalyzeWorkingCapital measures operating working capital, excluding cash
// and short-term debt, against the sector benchmark for the NAICS code.
func AnalyzeWorkingCapital(bs models.BalanceSheet, revenue float64, naicsCode string) WorkingCapitalResult {
	opWC := (bs.CurrentAssets.Total - bs.CurrentAssets.Cash) -
		(bs.CurrentLiabilities.Total - bs.CurrentLiabilities.ShortTermDebt)

	pct := wcTargets.DefaultPctOfRevenue
	if len(naicsCode) >= 2 {
		if sectorPct, ok := wcTargets.Sectors[naicsCode[:2]]; ok {
			pct = sectorPct
		}
	}

	target := revenue * pct
	surplus := opWC - target

	result := WorkingCapitalResult{
		OperatingWorkingCapital: opWC,
		BenchmarkPctOfRevenue:   pct,
		TargetWorkingCapital:    target,
		Surplus:                 surplus,
		AdjustmentDirection:     AdjustmentNone,
	}

	switch {
	case surplus > 0:
		result.AdjustmentDirection = AdjustmentSellerCredit
		result.Adjustment = surplus
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Working capital exceeds the sector target by %.0f; sellers typically negotiate a credit", surplus))
	case surplus < 0:
		result.AdjustmentDirection = AdjustmentBuyerCredit
		result.Adjustment = -surplus
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Working capital falls %.0f short of the sector target; buyers typically negotiate a credit", -surplus))
	}

	return result
}
