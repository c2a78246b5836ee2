package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smb_valuation/pkg/core/analysis"
	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/core/quality"
	"smb_valuation/pkg/core/taxforms"
	"smb_valuation/pkg/models"
)

// Orchestrator runs the pre-valuation checks and analytical satellites.
// Quality gating blocks the satellites; individual satellite failures are
// recorded without failing the run.
type Orchestrator struct {
	log zerolog.Logger
}

func NewOrchestrator(log zerolog.Logger) *Orchestrator {
	return &Orchestrator{log: log}
}

// AnalysisRequest is the input for the analytical pass.
type AnalysisRequest struct {
	CompanyName  string
	Financials   models.MultiYearFinancials
	BalanceSheet *models.BalanceSheet
	Industry     models.IndustryData

	// TaxForm is the return type the financials were keyed from, e.g. "1120S".
	TaxForm   string
	Documents []string

	RiskMetrics analysis.RiskMetrics
	WeightedSDE float64
}

// AnalysisResult collects every satellite's output. Pointers are nil when the
// component was blocked or failed; ComponentErrors records failures by name.
type AnalysisResult struct {
	RunID string

	Quality        quality.Result
	TaxValidation  taxforms.Result
	KPI            *analysis.KPIResult
	Risk           *models.RiskAssessmentData
	WorkingCapital *analysis.WorkingCapitalResult

	ComponentErrors map[string]string
}

// RunOrchestratedAnalysis assesses data quality, validates against the tax
// form ruleset, then runs the satellites when quality clears the gate.
func (o *Orchestrator) RunOrchestratedAnalysis(req AnalysisRequest) *AnalysisResult {
	runID := uuid.New().String()
	log := o.log.With().Str("run_id", runID).Str("company", req.CompanyName).Logger()
	log.Info().Msg("starting orchestrated analysis")

	result := &AnalysisResult{
		RunID:           runID,
		ComponentErrors: make(map[string]string),
	}

	result.Quality = quality.Assess(req.Financials, req.BalanceSheet, req.Documents)

	if latest, ok := req.Financials.MostRecent(); ok {
		result.TaxValidation = taxforms.Validate(req.TaxForm, latest, req.BalanceSheet)
	} else {
		result.TaxValidation = taxforms.Result{
			Form:     req.TaxForm,
			Valid:    true,
			Warnings: []string{"No financial periods available; tax form validation skipped"},
		}
	}

	if !result.Quality.CanProceed {
		log.Warn().
			Float64("critical_score", result.Quality.CriticalScore).
			Msg("data quality below gate; skipping analytical components")
		return result
	}

	runComponent(log, result, "kpi", func() {
		kpi := analysis.ScoreKPIs(req.Financials, req.BalanceSheet, req.WeightedSDE)
		result.KPI = &kpi
	})

	runComponent(log, result, "risk", func() {
		metrics := deriveRiskMetrics(req, result.Quality)
		risk := analysis.ScoreRisk(metrics)
		result.Risk = &risk
	})

	runComponent(log, result, "working_capital", func() {
		if req.BalanceSheet == nil {
			result.ComponentErrors["working_capital"] = "no balance sheet provided"
			return
		}
		revenue := 0.0
		if latest, ok := req.Financials.MostRecent(); ok {
			revenue = latest.Revenue
		}
		wc := analysis.AnalyzeWorkingCapital(*req.BalanceSheet, revenue, req.Industry.NAICSCode)
		result.WorkingCapital = &wc
	})

	log.Info().
		Int("component_errors", len(result.ComponentErrors)).
		Msg("orchestrated analysis complete")
	return result
}

// runComponent isolates one satellite so a panic inside it degrades to a
// recorded component error instead of failing the run.
func runComponent(log zerolog.Logger, result *AnalysisResult, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", name).Interface("panic", r).Msg("component panicked")
			result.ComponentErrors[name] = fmt.Sprintf("panic: %v", r)
		}
	}()
	fn()
}

// deriveRiskMetrics backfills metrics the caller left zero from data already
// in the request.
func deriveRiskMetrics(req AnalysisRequest, q quality.Result) analysis.RiskMetrics {
	m := req.RiskMetrics

	if m.DataCompletenessScore == 0 {
		m.DataCompletenessScore = q.CompletenessScore
	}

	periods := req.Financials.SortedMostRecentFirst()
	if m.AvgRevenueGrowth == 0 && len(periods) >= 2 {
		var sum float64
		var n int
		for i := 0; i < len(periods)-1; i++ {
			if periods[i+1].Revenue != 0 {
				sum += numutil.SafeDiv(periods[i].Revenue-periods[i+1].Revenue, periods[i+1].Revenue)
				n++
			}
		}
		if n > 0 {
			m.AvgRevenueGrowth = sum / float64(n)
		}
	}

	if m.NetMarginChange == 0 && len(periods) >= 2 {
		latest, prior := periods[0], periods[1]
		if latest.Revenue != 0 && prior.Revenue != 0 {
			m.NetMarginChange = numutil.SafeDiv(latest.NetIncome, latest.Revenue) -
				numutil.SafeDiv(prior.NetIncome, prior.Revenue)
		}
	}

	return m
}
