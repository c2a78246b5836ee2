package models

// Step category tags used across the calculators.
const (
	StepEarnings  = "earnings"
	StepAsset     = "asset_approach"
	StepIncome    = "income_approach"
	StepMarket    = "market_approach"
	StepSynthesis = "synthesis"
	StepAnalysis  = "analysis"
)

// CalculationStep is one append-only audit record. Sequence numbers come
// from the run's StepTrail and are unique and ordered within a run.
type CalculationStep struct {
	Sequence    int                `json:"sequence"`
	Category    string             `json:"category"`
	Description string             `json:"description"`
	Formula     string             `json:"formula"`
	Inputs      map[string]float64 `json:"inputs,omitempty"`
	Result      float64            `json:"result"`
	Note        string             `json:"note,omitempty"`
}

// Asset-approach value provenance tags, in fallback order.
const (
	SourceBalanceSheet  = "balance_sheet"
	SourceStageFallback = "stage-fallback"
	SourceEstimated     = "estimated"
)

// ApproachResult is the output of one valuation approach.
type ApproachResult struct {
	Approach string            `json:"approach"`
	Value    float64           `json:"value"`
	Source   string            `json:"source,omitempty"`
	Weight   float64           `json:"weight"`
	Steps    []CalculationStep `json:"steps"`
	Warnings []string          `json:"warnings"`
}

// ApproachContribution records one approach's share of the weighted
// preliminary value.
type ApproachContribution struct {
	Approach     string  `json:"approach"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Adjustment kinds in the synthesis discount/premium ledger.
const (
	AdjustmentDLOM           = "marketability_discount"
	AdjustmentDLOC           = "control_discount"
	AdjustmentControlPremium = "control_premium"
	AdjustmentOther          = "other"
)

// ValueAdjustment is one entry of the synthesis discount/premium ledger.
// Amount is signed: discounts are negative, premiums positive.
type ValueAdjustment struct {
	Label      string  `json:"label"`
	Kind       string  `json:"kind"`
	Percentage float64 `json:"percentage,omitempty"`
	Amount     float64 `json:"amount"`
}

// ValueRange is the symmetric range derived around the concluded value.
type ValueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationSynthesis is the terminal artifact of one run: the reconciled
// value after weighting, discounts and the asset-value floor test.
type ValuationSynthesis struct {
	Contributions    []ApproachContribution `json:"contributions"`
	PreliminaryValue float64                `json:"preliminary_value"`
	Adjustments      []ValueAdjustment      `json:"adjustments"`
	FloorApplied     bool                   `json:"floor_applied"`
	ConcludedValue   float64                `json:"concluded_value"`
	Range            ValueRange             `json:"range"`
	Steps            []CalculationStep      `json:"steps"`
	Warnings         []string               `json:"warnings"`
}

// SummaryTable is a pre-rendered tabular view of one result section,
// consumed verbatim by the narrative/report collaborator.
type SummaryTable struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
