// Package pipeline orchestrates the valuation run: earnings normalization,
// the three approaches, synthesis and the analytical satellites, all feeding
// one ordered audit trail per run.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smb_valuation/pkg/core/earnings"
	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/core/valuation"
	"smb_valuation/pkg/models"
)

// Calculator runs the deterministic valuation pipeline.
type Calculator struct {
	log zerolog.Logger
}

func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{log: log}
}

// FullCalculationRequest is the complete input for one valuation run.
type FullCalculationRequest struct {
	CompanyID   string
	CompanyName string

	Financials   models.MultiYearFinancials
	BalanceSheet models.BalanceSheet
	Industry     models.IndustryData

	FairMarketSalary float64
	RiskAssessment   *models.RiskAssessmentData

	AssetAdjustments    []valuation.AssetAdjustment
	PriorStageNetAssets float64
	MultipleAdjustments []valuation.MultipleAdjustment

	Config *models.ValuationConfig
}

// FullCalculationResult is the complete output of one valuation run.
type FullCalculationResult struct {
	RunID       string
	CompanyID   string
	CompanyName string

	Earnings  earnings.NormalizedEarnings
	Asset     models.ApproachResult
	Income    models.ApproachResult
	Market    models.ApproachResult
	Synthesis models.ValuationSynthesis

	Steps    []models.CalculationStep
	Warnings []string

	Summaries []models.SummaryTable
}

// RunFullCalculation executes the whole pipeline. Given identical inputs it
// produces an identical result, run ID aside.
func (c *Calculator) RunFullCalculation(req FullCalculationRequest) (*FullCalculationResult, error) {
	runID := uuid.New().String()
	log := c.log.With().Str("run_id", runID).Str("company", req.CompanyName).Logger()
	log.Info().Msg("starting full valuation calculation")

	cfg := models.DefaultValuationConfig()
	if req.Config != nil {
		cfg = req.Config.ApplyDefaults()
	}
	if req.RiskAssessment != nil && req.RiskAssessment.CompanyRiskPremium > 0 {
		cfg.DiscountRates.CompanyRiskPremium = req.RiskAssessment.CompanyRiskPremium
	}

	trail := numutil.NewStepTrail()

	normalized := earnings.Normalize(req.Financials, req.FairMarketSalary, cfg, trail)
	log.Info().
		Float64("weighted_sde", normalized.WeightedSDE).
		Float64("weighted_ebitda", normalized.WeightedEBITDA).
		Msg("earnings normalized")

	asset := valuation.CalculateAssetApproach(valuation.AssetInput{
		BalanceSheet:        req.BalanceSheet,
		Adjustments:         req.AssetAdjustments,
		PriorStageNetAssets: req.PriorStageNetAssets,
		Weight:              cfg.AssetWeight,
	}, trail)

	income := valuation.CalculateIncomeApproach(valuation.IncomeInput{
		WeightedSDE:     normalized.WeightedSDE,
		WeightedEBITDA:  normalized.WeightedEBITDA,
		Rates:           cfg.DiscountRates,
		BenefitStream:   cfg.BenefitStream,
		SDEThreshold:    cfg.SDEThreshold,
		EBITDAThreshold: cfg.EBITDAThreshold,
		Weight:          cfg.IncomeWeight,
	}, trail)

	latestRevenue := 0.0
	if latest, ok := req.Financials.MostRecent(); ok {
		latestRevenue = latest.Revenue
	}
	market, err := valuation.CalculateMarketApproach(valuation.MarketInput{
		WeightedSDE:       normalized.WeightedSDE,
		WeightedEBITDA:    normalized.WeightedEBITDA,
		Revenue:           latestRevenue,
		Industry:          req.Industry,
		Position:          cfg.MultiplePosition,
		CustomMultiple:    cfg.CustomMultiple,
		RiskFactors:       adjustableFactors(req.RiskAssessment),
		ManualAdjustments: req.MultipleAdjustments,
		BenefitStream:     cfg.BenefitStream,
		SDEThreshold:      cfg.SDEThreshold,
		EBITDAThreshold:   cfg.EBITDAThreshold,
		Weight:            cfg.MarketWeight,
	}, trail)
	if err != nil {
		log.Error().Err(err).Msg("market approach failed")
		return nil, fmt.Errorf("market approach: %w", err)
	}

	synthesis := valuation.Synthesize(valuation.SynthesisInput{
		Asset:  asset,
		Income: income,
		Market: market,
		Config: cfg,
	}, trail)

	result := &FullCalculationResult{
		RunID:       runID,
		CompanyID:   req.CompanyID,
		CompanyName: req.CompanyName,
		Earnings:    normalized,
		Asset:       asset,
		Income:      income,
		Market:      market,
		Synthesis:   synthesis,
		Steps:       trail.Steps(),
		Warnings:    trail.Warnings(),
	}
	result.Summaries = buildSummaries(result)

	log.Info().
		Float64("concluded_value", synthesis.ConcludedValue).
		Int("steps", len(result.Steps)).
		Int("warnings", len(result.Warnings)).
		Msg("valuation complete")

	return result, nil
}

// adjustableFactors strips the synthetic combined factor so its impact is not
// applied twice in the market approach.
func adjustableFactors(ra *models.RiskAssessmentData) []models.RiskFactor {
	if ra == nil {
		return nil
	}
	var out []models.RiskFactor
	for _, f := range ra.Factors {
		if f.Category == "Combined" {
			continue
		}
		out = append(out, f)
	}
	return out
}
