// Package config loads run configuration and input payloads. Config files
// are Hjson so analysts can comment their overrides; input payloads are
// plain JSON produced by the intake collaborator.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"

	"smb_valuation/pkg/models"
)

// LoadValuationConfig reads an Hjson config file and fills the gaps with
// defaults. An empty path returns the defaults untouched.
func LoadValuationConfig(path string) (models.ValuationConfig, error) {
	if path == "" {
		return models.DefaultValuationConfig(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return models.ValuationConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg models.ValuationConfig
	if err := ParseHJSONToStruct(raw, &cfg); err != nil {
		return models.ValuationConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg = cfg.ApplyDefaults()
	if err := validate(cfg); err != nil {
		return models.ValuationConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseHJSONToStruct parses Hjson directly into a Go struct.
func ParseHJSONToStruct(raw []byte, schema interface{}) error {
	// hjson-go resolves an Hjson document into map[string]interface{}; a
	// JSON round-trip applies the struct's json tags consistently.
	var intermediate interface{}
	if err := hjson.Unmarshal(raw, &intermediate); err != nil {
		return fmt.Errorf("hjson unmarshal: %w", err)
	}
	jsonBytes, err := json.Marshal(intermediate)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := json.Unmarshal(jsonBytes, schema); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func validate(cfg models.ValuationConfig) error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"asset_weight", cfg.AssetWeight},
		{"income_weight", cfg.IncomeWeight},
		{"market_weight", cfg.MarketWeight},
	} {
		if w.value < 0 || w.value > 1 {
			return fmt.Errorf("%s %.4f is outside [0, 1]", w.name, w.value)
		}
	}
	if cfg.ValueRangePercentage < 0 || cfg.ValueRangePercentage >= 1 {
		return fmt.Errorf("value_range_percentage %.4f is outside [0, 1)", cfg.ValueRangePercentage)
	}
	switch cfg.BenefitStream {
	case models.StreamAuto, models.StreamSDE, models.StreamEBITDA:
	default:
		return fmt.Errorf("unknown benefit_stream %q", cfg.BenefitStream)
	}
	switch cfg.MultiplePosition {
	case models.PositionLow, models.PositionMedian, models.PositionHigh, models.PositionCustom:
	default:
		return fmt.Errorf("unknown multiple_position %q", cfg.MultiplePosition)
	}
	return nil
}
