package models

// Benefit-stream selection modes.
const (
	StreamAuto   = "auto"
	StreamSDE    = "sde"
	StreamEBITDA = "ebitda"
)

// Multiple positions within a MultipleRange.
const (
	PositionLow    = "low"
	PositionMedian = "median"
	PositionHigh   = "high"
	PositionCustom = "custom"
)

// DiscountRateComponents are the build-up components of the income-approach
// discount rate. Each is independently overridable; zero values fall back to
// the default rate table.
type DiscountRateComponents struct {
	RiskFreeRate        float64 `json:"risk_free_rate"`
	EquityRiskPremium   float64 `json:"equity_risk_premium"`
	SizePremium         float64 `json:"size_premium"`
	IndustryRiskPremium float64 `json:"industry_risk_premium"`
	CompanyRiskPremium  float64 `json:"company_risk_premium"`
	LongTermGrowthRate  float64 `json:"long_term_growth_rate"`
}

// NamedAdjustment is a caller-supplied synthesis adjustment. Amount is
// signed; negative entries reduce the preliminary value.
type NamedAdjustment struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// ValuationConfig carries every overridable policy knob of a run.
// DefaultValuationConfig supplies the standard values; collaborators may
// override any subset (zero weights mean "use defaults").
type ValuationConfig struct {
	AssetWeight  float64 `json:"asset_weight"`
	IncomeWeight float64 `json:"income_weight"`
	MarketWeight float64 `json:"market_weight"`

	DiscountRates DiscountRateComponents `json:"discount_rates"`

	// Benefit-stream auto-selection thresholds (SDE below the first selects
	// SDE, at or above the second selects EBITDA, the band between stays SDE).
	SDEThreshold    float64 `json:"sde_threshold"`
	EBITDAThreshold float64 `json:"ebitda_threshold"`

	BenefitStream string `json:"benefit_stream"`

	MultiplePosition string   `json:"multiple_position"`
	CustomMultiple   *float64 `json:"custom_multiple,omitempty"`

	ApplyDLOM      bool    `json:"apply_dlom"`
	DLOMPercentage float64 `json:"dlom_percentage"`
	ApplyDLOC      bool    `json:"apply_dloc"`
	DLOCPercentage float64 `json:"dloc_percentage"`
	ControlPremium float64 `json:"control_premium"`

	OtherAdjustments []NamedAdjustment `json:"other_adjustments,omitempty"`

	ValueRangePercentage float64 `json:"value_range_percentage"`

	PandemicReliefYears []int `json:"pandemic_relief_years,omitempty"`
}

// DefaultValuationConfig returns the standard policy set: 20/40/40 approach
// weights, the fixed build-up rate table, a 15% value range and pandemic
// relief exclusion for 2020-2021.
func DefaultValuationConfig() ValuationConfig {
	return ValuationConfig{
		AssetWeight:  0.2,
		IncomeWeight: 0.4,
		MarketWeight: 0.4,
		DiscountRates: DiscountRateComponents{
			RiskFreeRate:        0.045,
			EquityRiskPremium:   0.055,
			SizePremium:         0.038,
			IndustryRiskPremium: 0.020,
			CompanyRiskPremium:  0.025,
			LongTermGrowthRate:  0.030,
		},
		SDEThreshold:         500_000,
		EBITDAThreshold:      1_000_000,
		BenefitStream:        StreamAuto,
		MultiplePosition:     PositionMedian,
		DLOMPercentage:       0.15,
		DLOCPercentage:       0.10,
		ValueRangePercentage: 0.15,
		PandemicReliefYears:  []int{2020, 2021},
	}
}

// ApplyDefaults fills zero-valued fields with the defaults so partially
// populated overrides behave predictably.
func (c ValuationConfig) ApplyDefaults() ValuationConfig {
	def := DefaultValuationConfig()
	if c.AssetWeight == 0 && c.IncomeWeight == 0 && c.MarketWeight == 0 {
		c.AssetWeight, c.IncomeWeight, c.MarketWeight = def.AssetWeight, def.IncomeWeight, def.MarketWeight
	}
	if c.DiscountRates.RiskFreeRate == 0 {
		c.DiscountRates.RiskFreeRate = def.DiscountRates.RiskFreeRate
	}
	if c.DiscountRates.EquityRiskPremium == 0 {
		c.DiscountRates.EquityRiskPremium = def.DiscountRates.EquityRiskPremium
	}
	if c.DiscountRates.SizePremium == 0 {
		c.DiscountRates.SizePremium = def.DiscountRates.SizePremium
	}
	if c.DiscountRates.IndustryRiskPremium == 0 {
		c.DiscountRates.IndustryRiskPremium = def.DiscountRates.IndustryRiskPremium
	}
	if c.DiscountRates.CompanyRiskPremium == 0 {
		c.DiscountRates.CompanyRiskPremium = def.DiscountRates.CompanyRiskPremium
	}
	if c.DiscountRates.LongTermGrowthRate == 0 {
		c.DiscountRates.LongTermGrowthRate = def.DiscountRates.LongTermGrowthRate
	}
	if c.SDEThreshold == 0 {
		c.SDEThreshold = def.SDEThreshold
	}
	if c.EBITDAThreshold == 0 {
		c.EBITDAThreshold = def.EBITDAThreshold
	}
	if c.BenefitStream == "" {
		c.BenefitStream = def.BenefitStream
	}
	if c.MultiplePosition == "" {
		c.MultiplePosition = def.MultiplePosition
	}
	if c.DLOMPercentage == 0 {
		c.DLOMPercentage = def.DLOMPercentage
	}
	if c.DLOCPercentage == 0 {
		c.DLOCPercentage = def.DLOCPercentage
	}
	if c.ValueRangePercentage == 0 {
		c.ValueRangePercentage = def.ValueRangePercentage
	}
	if len(c.PandemicReliefYears) == 0 {
		c.PandemicReliefYears = def.PandemicReliefYears
	}
	return c
}
