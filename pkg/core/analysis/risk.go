package analysis

import (
	"fmt"

	"smb_valuation/pkg/core/numutil"
	"smb_valuation/pkg/models"
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskElevated = "elevated"
	RiskHigh     = "high"

	// Scores above the neutral midpoint raise risk, below it reduce risk.
	neutralRiskScore = 5.5
)

// RiskMetrics are the raw company observations fed into the rubric.
type RiskMetrics struct {
	TopCustomerRevenueShare float64
	OwnerWeeklyHours        float64
	YearsInBusiness         float64
	AvgRevenueGrowth        float64
	NetMarginChange         float64
	IndustryOutlookGrade    float64
	CompetitionGrade        float64
	LeaseYearsRemaining     float64
	NonOwnerManagers        float64
	DataCompletenessScore   float64
}

func (m RiskMetrics) metricFor(key string) float64 {
	switch key {
	case "customer_concentration":
		return m.TopCustomerRevenueShare
	case "owner_dependence":
		return m.OwnerWeeklyHours
	case "years_in_business":
		return m.YearsInBusiness
	case "revenue_trend":
		return m.AvgRevenueGrowth
	case "profitability_trend":
		return m.NetMarginChange
	case "industry_outlook":
		if m.IndustryOutlookGrade == 0 {
			return 5
		}
		return m.IndustryOutlookGrade
	case "competition":
		if m.CompetitionGrade == 0 {
			return 5
		}
		return m.CompetitionGrade
	case "location_lease":
		return m.LeaseYearsRemaining
	case "management_depth":
		return m.NonOwnerManagers
	case "financial_records":
		return m.DataCompletenessScore
	}
	return 0
}

// ScoreRisk scores each rubric factor, derives its multiple impact and rolls
// up the weighted aggregate score, overall rating and company risk premium.
// A synthetic "Combined" factor carries the summed multiple impact so callers
// that apply factor impacts individually must filter it out.
func ScoreRisk(metrics RiskMetrics) models.RiskAssessmentData {
	var factors []models.RiskFactor
	var aggregate, totalImpact float64

	for _, f := range rubric.Factors {
		metric := metrics.metricFor(f.Key)
		score := scoreInBands(metric, f.Bands)
		impact := (neutralRiskScore - score) * rubric.ImpactPerPoint * numutil.SafeDiv(f.Weight, 0.10)
		factors = append(factors, models.RiskFactor{
			Category:       f.Label,
			Score:          score,
			Rating:         ratingForScore(score),
			MultipleImpact: impact,
			Rationale:      fmt.Sprintf("%s scored %.0f/10 at metric %.2f", f.Label, score, metric),
		})
		aggregate += score * f.Weight
		totalImpact += impact
	}

	factors = append(factors, models.RiskFactor{
		Category:       "Combined",
		Score:          aggregate,
		Rating:         ratingForScore(aggregate),
		MultipleImpact: totalImpact,
		Rationale:      "Weighted combination of all risk factors",
	})

	return models.RiskAssessmentData{
		Factors:            factors,
		AggregateScore:     aggregate,
		OverallRating:      ratingForScore(aggregate),
		CompanyRiskPremium: 0.01 + (aggregate-1)/9*0.09,
	}
}

func ratingForScore(score float64) string {
	switch {
	case score <= 3:
		return RiskLow
	case score <= 5:
		return RiskModerate
	case score <= 7:
		return RiskElevated
	default:
		return RiskHigh
	}
}
