package valuation

import (
	"fmt"
	"math"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

// Auto-generated adjustment percentages applied when the caller supplies no
// manual adjustments, and the dollar tolerance of the balance check.
const (
	receivablesHaircutPct = 0.05
	inventoryObsoletePct  = 0.10
	balanceTolerance      = 1.0
)

// AssetAdjustment is one caller-supplied book-to-fair-value restatement.
// IsLiability entries accumulate into the liability adjustment total.
type AssetAdjustment struct {
	Description string  `json:"description"`
	BookValue   float64 `json:"book_value"`
	FairValue   float64 `json:"fair_value"`
	IsLiability bool    `json:"is_liability"`
	Rationale   string  `json:"rationale,omitempty"`
}

// AssetInput carries everything the asset approach needs.
type AssetInput struct {
	BalanceSheet models.BalanceSheet
	Adjustments  []AssetAdjustment
	// PriorStageNetAssets is an externally supplied net-asset figure used as
	// the second fallback tier when the computed adjusted NAV is non-positive.
	PriorStageNetAssets float64
	Weight              float64
}

// CalculateAssetApproach computes the adjusted net-asset value with the
// three-tier fallback policy. The asset value anchors the synthesis floor,
// so it must never spuriously report zero while assets exist.
func CalculateAssetApproach(in AssetInput, trail *numutil.StepTrail) models.ApproachResult {
	stepMark := trail.Len()
	warnMark := trail.WarningCount()

	bs := in.BalanceSheet
	bookEquity := bs.TotalAssets - bs.TotalLiabilities

	step := trail.Add(models.StepAsset, "Book equity", "total assets - total liabilities",
		map[string]float64{"total_assets": bs.TotalAssets, "total_liabilities": bs.TotalLiabilities}, bookEquity)
	if imbalance := math.Abs(bookEquity - bs.TotalEquity); bs.TotalEquity != 0 && imbalance > balanceTolerance {
		trail.WarnStep(step, fmt.Sprintf(
			"Balance sheet does not balance: assets - liabilities (%.2f) differs from stated equity (%.2f) by %.2f",
			bookEquity, bs.TotalEquity, imbalance))
	}

	var assetAdj, liabAdj float64
	if len(in.Adjustments) > 0 {
		for _, adj := range in.Adjustments {
			delta := adj.FairValue - adj.BookValue
			if adj.IsLiability {
				liabAdj += delta
			} else {
				assetAdj += delta
			}
			s := trail.Add(models.StepAsset,
				fmt.Sprintf("Adjustment: %s", adj.Description), "fair value - book value",
				map[string]float64{"book_value": adj.BookValue, "fair_value": adj.FairValue}, delta)
			s.Note = adj.Rationale
		}
	} else {
		// No manual adjustments: apply the standard haircuts.
		if bs.CurrentAssets.AccountsReceivable > 0 && bs.CurrentAssets.BadDebtAllowance == 0 {
			haircut := -bs.CurrentAssets.AccountsReceivable * receivablesHaircutPct
			assetAdj += haircut
			trail.Add(models.StepAsset, "Auto adjustment: receivables collectibility",
				"accounts receivable * -5%",
				map[string]float64{"accounts_receivable": bs.CurrentAssets.AccountsReceivable}, haircut).
				Note = "No bad-debt allowance recorded; standard 5% haircut applied"
		}
		if bs.CurrentAssets.Inventory > 0 {
			haircut := -bs.CurrentAssets.Inventory * inventoryObsoletePct
			assetAdj += haircut
			trail.Add(models.StepAsset, "Auto adjustment: inventory obsolescence",
				"inventory * -10%",
				map[string]float64{"inventory": bs.CurrentAssets.Inventory}, haircut).
				Note = "Standard 10% obsolescence reserve applied"
		}
	}

	adjustedNAV := bookEquity + assetAdj - liabAdj
	trail.Add(models.StepAsset, "Adjusted net asset value",
		"book equity + asset adjustments - liability adjustments",
		map[string]float64{"book_equity": bookEquity, "asset_adjustments": assetAdj, "liability_adjustments": liabAdj},
		adjustedNAV)

	// Three-tier fallback: first positive value wins.
	value := adjustedNAV
	source := models.SourceBalanceSheet

	if value <= 0 && in.PriorStageNetAssets > 0 {
		trail.Warnf("Adjusted NAV is non-positive (%.0f); using prior-stage net asset figure %.0f instead",
			value, in.PriorStageNetAssets)
		value = in.PriorStageNetAssets
		source = models.SourceStageFallback
		trail.Add(models.StepAsset, "Fallback: prior-stage net assets", "prior-stage net asset figure",
			map[string]float64{"prior_stage_net_assets": in.PriorStageNetAssets}, value)
	}
	if value <= 0 && bs.TotalAssets > 0 {
		estimated := bs.TotalAssets * 0.5
		trail.Warnf("No positive net asset figure available; estimating asset value as 50%% of total assets (%.0f)", estimated)
		value = estimated
		source = models.SourceEstimated
		trail.Add(models.StepAsset, "Fallback: estimated from total assets", "total assets * 50%",
			map[string]float64{"total_assets": bs.TotalAssets}, value)
	}

	value = numutil.RoundToUnit(value)

	return models.ApproachResult{
		Approach: "asset",
		Value:    value,
		Source:   source,
		Weight:   in.Weight,
		Steps:    trail.SinceIndex(stepMark),
		Warnings: trail.WarningsSince(warnMark),
	}
}
