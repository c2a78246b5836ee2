// Package taxforms cross-validates extracted financials against
// form-specific rule sets. Findings are advisory: a failed rule never blocks
// a valuation, it informs the data-quality narrative.
package taxforms

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v2"

	"smb_valuation/pkg/models"
)

// derivedFieldTolerance is the relative tolerance on derived-field (sum)
// checks.
const derivedFieldTolerance = 0.01

// balanceTolerance is the absolute dollar tolerance on the accounting
// identity.
const balanceTolerance = 1.0

// Finding severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

//go:embed rules.yaml
var rulesYAML []byte

// Rule is one declarative validation rule.
type Rule struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"` // sum | balance | range | nonneg
	Target     string   `yaml:"target,omitempty"`
	Components []string `yaml:"components,omitempty"`
	Field      string   `yaml:"field,omitempty"`
	Min        *float64 `yaml:"min,omitempty"`
	Max        *float64 `yaml:"max,omitempty"`
	MaxField   string   `yaml:"max_field,omitempty"`
	Severity   string   `yaml:"severity"`
}

type ruleTable struct {
	Forms map[string][]Rule `yaml:"forms"`
}

var rules ruleTable

func init() {
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		panic(fmt.Sprintf("taxforms: invalid embedded rules.yaml: %v", err))
	}
}

// Finding is one rule's outcome.
type Finding struct {
	Rule     string  `json:"rule"`
	Severity string  `json:"severity"`
	Passed   bool    `json:"passed"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Message  string  `json:"message"`
}

// Result is the validation outcome for one form.
type Result struct {
	Form     string    `json:"form"`
	Findings []Finding `json:"findings"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Valid    bool      `json:"valid"` // no error-severity failures
	Warnings []string  `json:"warnings"`
}

// Validate runs the rule set for the given form tag against one period and
// optional balance sheet. An unknown form tag yields an empty result with a
// warning, never a failure.
func Validate(form string, period models.FinancialPeriod, bs *models.BalanceSheet) Result {
	result := Result{Form: form, Valid: true}

	ruleSet, ok := rules.Forms[strings.ToUpper(form)]
	if !ok {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No validation rule set for tax form %q; validation skipped", form))
		return result
	}

	fields := fieldMap(period, bs)

	for _, r := range ruleSet {
		f := evaluate(r, fields, bs)
		result.Findings = append(result.Findings, f)
		if f.Passed {
			result.Passed++
			continue
		}
		result.Failed++
		result.Warnings = append(result.Warnings, f.Message)
		if f.Severity == SeverityError {
			result.Valid = false
		}
	}

	return result
}

func evaluate(r Rule, fields map[string]float64, bs *models.BalanceSheet) Finding {
	f := Finding{Rule: r.Name, Severity: r.Severity, Passed: true}

	switch r.Kind {
	case "sum":
		var expected float64
		for _, comp := range r.Components {
			name := comp
			sign := 1.0
			if strings.HasPrefix(comp, "-") {
				name = comp[1:]
				sign = -1
			}
			expected += sign * fields[name]
		}
		actual := fields[r.Target]
		f.Expected, f.Actual = expected, actual
		if actual == 0 && expected != 0 {
			// Derived field absent: informational, not a mismatch.
			f.Message = fmt.Sprintf("%s: %s not reported, derived value would be %.0f", r.Name, r.Target, expected)
			return f
		}
		tolerance := math.Abs(expected) * derivedFieldTolerance
		if diff := math.Abs(actual - expected); diff > tolerance && diff > balanceTolerance {
			f.Passed = false
			f.Message = fmt.Sprintf("%s: %s is %.0f but components sum to %.0f (diff %.0f exceeds 1%% tolerance)",
				r.Name, r.Target, actual, expected, diff)
		}

	case "balance":
		if bs == nil {
			f.Message = fmt.Sprintf("%s: no balance sheet supplied, identity check skipped", r.Name)
			return f
		}
		computed := bs.TotalAssets - bs.TotalLiabilities
		f.Expected, f.Actual = bs.TotalEquity, computed
		if diff := math.Abs(computed - bs.TotalEquity); diff > balanceTolerance {
			f.Passed = false
			f.Message = fmt.Sprintf("%s: assets - liabilities (%.0f) differs from equity (%.0f) by %.0f",
				r.Name, computed, bs.TotalEquity, diff)
		}

	case "range":
		v := fields[r.Field]
		f.Actual = v
		min := math.Inf(-1)
		max := math.Inf(1)
		if r.Min != nil {
			min = *r.Min
		}
		if r.Max != nil {
			max = *r.Max
		}
		if r.MaxField != "" {
			max = fields[r.MaxField]
		}
		if v < min || v > max {
			f.Passed = false
			f.Message = fmt.Sprintf("%s: %s (%.0f) outside expected range [%.0f, %.0f]", r.Name, r.Field, v, min, max)
		}

	case "nonneg":
		v := fields[r.Field]
		f.Actual = v
		if v < 0 {
			f.Passed = false
			f.Message = fmt.Sprintf("%s: %s is negative (%.0f)", r.Name, r.Field, v)
		}

	default:
		f.Message = fmt.Sprintf("%s: unknown rule kind %q, skipped", r.Name, r.Kind)
	}

	return f
}

// fieldMap flattens the period and balance sheet into the rule namespace.
func fieldMap(p models.FinancialPeriod, bs *models.BalanceSheet) map[string]float64 {
	fields := map[string]float64{
		"revenue":              p.Revenue,
		"cogs":                 p.COGS,
		"gross_profit":         p.GrossProfit,
		"operating_expenses":   p.OperatingExpenses,
		"net_income":           p.NetIncome,
		"officer_compensation": p.OfficerCompensation,
		"interest_expense":     p.InterestExpense,
		"depreciation":         p.Depreciation,
		"amortization":         p.Amortization,
		"taxes":                p.Taxes,
		"rent":                 p.Rent,
	}
	if bs != nil {
		fields["total_assets"] = bs.TotalAssets
		fields["total_liabilities"] = bs.TotalLiabilities
		fields["total_equity"] = bs.TotalEquity
	}
	return fields
}

// KnownForms lists the form tags with rule sets, for collaborator input
// validation.
func KnownForms() []string {
	forms := make([]string, 0, len(rules.Forms))
	for f := range rules.Forms {
		forms = append(forms, f)
	}
	return forms
}
