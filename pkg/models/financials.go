// Package models defines the data model shared by every calculator in the
// valuation core. All currency figures are whole units; all percentages are
// decimals (0.15, not 15). Entities are created fresh per run by the
// extraction/mapping collaborator and never mutated by the core after return.
package models

import "sort"

// AddBackItem is one caller-supplied discretionary add-back line.
// Percentage is the fraction added back; values <= 0 mean 100%.
type AddBackItem struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Rationale  string  `json:"rationale,omitempty"`
}

// PandemicRelief holds one-time government relief amounts excluded from
// normalized earnings for applicable years (default 2020-2021).
type PandemicRelief struct {
	PPPForgiveness          float64 `json:"ppp_forgiveness"`
	EIDLAdvance             float64 `json:"eidl_advance"`
	EmployeeRetentionCredit float64 `json:"employee_retention_credit"`
}

// Total returns the sum of all relief components.
func (p PandemicRelief) Total() float64 {
	return p.PPPForgiveness + p.EIDLAdvance + p.EmployeeRetentionCredit
}

// DiscretionaryExpenses are owner-benefit expense categories subject to
// add-back treatment. Meals/entertainment and owner auto are added back at
// 50%; the rest in full.
type DiscretionaryExpenses struct {
	NonRecurringExpenses    float64 `json:"non_recurring_expenses"`
	PersonalExpenses        float64 `json:"personal_expenses"`
	CharitableContributions float64 `json:"charitable_contributions"`
	MealsEntertainment      float64 `json:"meals_entertainment"`
	OwnerAutoExpenses       float64 `json:"owner_auto_expenses"`
}

// FinancialPeriod is one fiscal year's income-statement facts.
// Immutable once constructed; produced by the extraction collaborator with
// zero defaults for absent fields.
type FinancialPeriod struct {
	Year                int     `json:"year"`
	Revenue             float64 `json:"revenue"`
	COGS                float64 `json:"cogs"`
	GrossProfit         float64 `json:"gross_profit"`
	OperatingExpenses   float64 `json:"operating_expenses"`
	NetIncome           float64 `json:"net_income"`
	OfficerCompensation float64 `json:"officer_compensation"`
	InterestExpense     float64 `json:"interest_expense"`
	Depreciation        float64 `json:"depreciation"`
	Amortization        float64 `json:"amortization"`
	Taxes               float64 `json:"taxes"`
	Rent                float64 `json:"rent"`

	Discretionary  DiscretionaryExpenses `json:"discretionary"`
	CustomAddBacks []AddBackItem         `json:"custom_add_backs,omitempty"`
	PandemicRelief PandemicRelief        `json:"pandemic_relief"`
}

// MultiYearFinancials is an ordered collection of periods plus the most
// recent fiscal year. Calculators always re-sort most-recent-first and
// de-duplicate by year before use.
type MultiYearFinancials struct {
	Periods        []FinancialPeriod `json:"periods"`
	MostRecentYear int               `json:"most_recent_year"`
}

// SortedMostRecentFirst returns the periods unique by year, newest first.
// When the same year appears twice the first occurrence wins.
func (m MultiYearFinancials) SortedMostRecentFirst() []FinancialPeriod {
	seen := make(map[int]bool, len(m.Periods))
	out := make([]FinancialPeriod, 0, len(m.Periods))
	for _, p := range m.Periods {
		if seen[p.Year] {
			continue
		}
		seen[p.Year] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out
}

// MostRecent returns the newest period, or false when none exist.
func (m MultiYearFinancials) MostRecent() (FinancialPeriod, bool) {
	sorted := m.SortedMostRecentFirst()
	if len(sorted) == 0 {
		return FinancialPeriod{}, false
	}
	return sorted[0], true
}

// CurrentAssetDetail breaks down the current-asset section of a balance sheet.
type CurrentAssetDetail struct {
	Cash               float64 `json:"cash"`
	AccountsReceivable float64 `json:"accounts_receivable"`
	BadDebtAllowance   float64 `json:"bad_debt_allowance"`
	Inventory          float64 `json:"inventory"`
	PrepaidExpenses    float64 `json:"prepaid_expenses"`
	Other              float64 `json:"other"`
	Total              float64 `json:"total"`
}

// FixedAssetDetail breaks down the fixed-asset section.
type FixedAssetDetail struct {
	Equipment               float64 `json:"equipment"`
	Vehicles                float64 `json:"vehicles"`
	RealEstate              float64 `json:"real_estate"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	Other                   float64 `json:"other"`
	Total                   float64 `json:"total"`
}

// OtherAssetDetail breaks down intangibles and remaining assets.
type OtherAssetDetail struct {
	Intangibles float64 `json:"intangibles"`
	Deposits    float64 `json:"deposits"`
	Other       float64 `json:"other"`
	Total       float64 `json:"total"`
}

// CurrentLiabilityDetail breaks down the current-liability section.
type CurrentLiabilityDetail struct {
	AccountsPayable float64 `json:"accounts_payable"`
	ShortTermDebt   float64 `json:"short_term_debt"`
	AccruedExpenses float64 `json:"accrued_expenses"`
	Other           float64 `json:"other"`
	Total           float64 `json:"total"`
}

// LongTermLiabilityDetail breaks down the long-term-liability section.
type LongTermLiabilityDetail struct {
	NotesPayable float64 `json:"notes_payable"`
	LoansFromOwner float64 `json:"loans_from_owner"`
	Other        float64 `json:"other"`
	Total        float64 `json:"total"`
}

// BalanceSheet is one as-of-date snapshot. The accounting identity
// TotalAssets - TotalLiabilities = TotalEquity is checked within $1 and a
// violation produces a warning, not a failure.
type BalanceSheet struct {
	AsOfDate string `json:"as_of_date"`

	CurrentAssets       CurrentAssetDetail      `json:"current_assets"`
	FixedAssets         FixedAssetDetail        `json:"fixed_assets"`
	OtherAssets         OtherAssetDetail        `json:"other_assets"`
	CurrentLiabilities  CurrentLiabilityDetail  `json:"current_liabilities"`
	LongTermLiabilities LongTermLiabilityDetail `json:"long_term_liabilities"`

	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	TotalEquity      float64 `json:"total_equity"`
}

// MultipleRange holds industry comparable-multiple bounds. Owned by the
// industry-data collaborator, read-only to the core. Ceiling of 0 means no
// industry ceiling is known.
type MultipleRange struct {
	Low     float64 `json:"low"`
	Median  float64 `json:"median"`
	High    float64 `json:"high"`
	Source  string  `json:"source"`
	Ceiling float64 `json:"ceiling,omitempty"`
}

// IndustryData identifies the subject industry and its guideline multiples.
type IndustryData struct {
	NAICSCode       string         `json:"naics_code"`
	Name            string         `json:"name"`
	SDEMultiple     MultipleRange  `json:"sde_multiple"`
	EBITDAMultiple  MultipleRange  `json:"ebitda_multiple"`
	RevenueMultiple *MultipleRange `json:"revenue_multiple,omitempty"`
}

// RiskFactor is one category of a risk assessment. Score is 1 (lowest risk)
// to 10 (highest). MultipleImpact is the signed percentage applied to the
// guideline multiple (e.g. -0.05 reduces the multiple 5%).
type RiskFactor struct {
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	Rating         string  `json:"rating"`
	MultipleImpact float64 `json:"multiple_impact"`
	Rationale      string  `json:"rationale,omitempty"`
}

// RiskAssessmentData aggregates the factor set with a derived
// company-specific risk premium used by the income approach build-up.
type RiskAssessmentData struct {
	Factors            []RiskFactor `json:"factors"`
	AggregateScore     float64      `json:"aggregate_score"`
	OverallRating      string       `json:"overall_rating"`
	CompanyRiskPremium float64      `json:"company_risk_premium"`
}
