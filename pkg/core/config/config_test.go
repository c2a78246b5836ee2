package config

import (
	"os"
	"path/filepath"
	"testing"

	"smb_valuation/pkg/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valuation.hjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValuationConfigDefaults(t *testing.T) {
	cfg, err := LoadValuationConfig("")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	def := models.DefaultValuationConfig()
	if cfg.AssetWeight != def.AssetWeight || cfg.ValueRangePercentage != def.ValueRangePercentage {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadValuationConfigOverrides(t *testing.T) {
	// Hjson: comments and unquoted keys are part of the format.
	path := writeConfig(t, `{
  // analyst override for a marketability-constrained deal
  apply_dlom: true
  dlom_percentage: 0.20
  benefit_stream: sde
  asset_weight: 0.3
  income_weight: 0.3
  market_weight: 0.4
}`)

	cfg, err := LoadValuationConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !cfg.ApplyDLOM || cfg.DLOMPercentage != 0.20 {
		t.Errorf("Expected DLOM override, got %+v", cfg)
	}
	if cfg.AssetWeight != 0.3 {
		t.Errorf("Expected asset weight 0.3, got %f", cfg.AssetWeight)
	}
	// Untouched knobs keep their defaults.
	if cfg.SDEThreshold != 500_000 {
		t.Errorf("Expected default SDE threshold, got %f", cfg.SDEThreshold)
	}
	if cfg.MultiplePosition != models.PositionMedian {
		t.Errorf("Expected default position, got %q", cfg.MultiplePosition)
	}
}

func TestLoadValuationConfigRejectsBadStream(t *testing.T) {
	path := writeConfig(t, `{benefit_stream: gross_revenue}`)

	if _, err := LoadValuationConfig(path); err == nil {
		t.Error("Expected an error for an unknown benefit stream")
	}
}

func TestLoadValuationConfigMissingFile(t *testing.T) {
	if _, err := LoadValuationConfig("/nonexistent/valuation.hjson"); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestParseHJSONToStruct(t *testing.T) {
	var cfg models.ValuationConfig
	err := ParseHJSONToStruct([]byte(`{
  control_premium: 0.1
  other_adjustments: [
    {label: "Excess cash", amount: 50000}
  ]
}`), &cfg)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.ControlPremium != 0.1 {
		t.Errorf("Expected control premium 0.1, got %f", cfg.ControlPremium)
	}
	if len(cfg.OtherAdjustments) != 1 || cfg.OtherAdjustments[0].Amount != 50_000 {
		t.Errorf("Expected one adjustment of 50000, got %v", cfg.OtherAdjustments)
	}
}
