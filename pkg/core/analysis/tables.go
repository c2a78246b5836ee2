// Package analysis provides the analytical satellites: KPI ratio scoring
// against industry benchmarks, rubric-based risk scoring and working-capital
// sufficiency analysis. The reference tables are embedded YAML parsed once at
// package init.
package analysis

import (
	"fmt"

	_ "embed"

	"gopkg.in/yaml.v2"
)

//go:embed benchmarks.yaml
var benchmarksYAML []byte

//go:embed risk_rubric.yaml
var riskRubricYAML []byte

//go:embed working_capital.yaml
var workingCapitalYAML []byte

// RatioBenchmark anchors one ratio's score at the 25th, 50th and 75th
// percentile of comparable small businesses.
type RatioBenchmark struct {
	Key            string  `yaml:"key"`
	Label          string  `yaml:"label"`
	P25            float64 `yaml:"p25"`
	P50            float64 `yaml:"p50"`
	P75            float64 `yaml:"p75"`
	HigherIsBetter bool    `yaml:"higher_is_better"`
}

// BenchmarkCategory groups ratios that contribute to one health dimension.
type BenchmarkCategory struct {
	Key    string           `yaml:"key"`
	Label  string           `yaml:"label"`
	Weight float64          `yaml:"weight"`
	Ratios []RatioBenchmark `yaml:"ratios"`
}

type benchmarkTable struct {
	Categories []BenchmarkCategory `yaml:"categories"`
}

// RiskBand maps a metric range (up to Max inclusive) to a 1-10 score.
type RiskBand struct {
	Max   float64 `yaml:"max"`
	Score float64 `yaml:"score"`
}

// RiskRubricFactor is one scored dimension of the risk assessment.
type RiskRubricFactor struct {
	Key    string     `yaml:"key"`
	Label  string     `yaml:"label"`
	Weight float64    `yaml:"weight"`
	Bands  []RiskBand `yaml:"bands"`
}

type riskRubric struct {
	ImpactPerPoint float64            `yaml:"impact_per_point"`
	Factors        []RiskRubricFactor `yaml:"factors"`
}

type workingCapitalTable struct {
	DefaultPctOfRevenue float64            `yaml:"default_pct_of_revenue"`
	Sectors             map[string]float64 `yaml:"sectors"`
}

var (
	benchmarks benchmarkTable
	rubric     riskRubric
	wcTargets  workingCapitalTable
)

func init() {
	mustParse(benchmarksYAML, &benchmarks, "benchmarks")
	mustParse(riskRubricYAML, &rubric, "risk rubric")
	mustParse(workingCapitalYAML, &wcTargets, "working capital targets")
}

func mustParse(raw []byte, out interface{}, name string) {
	if err := yaml.Unmarshal(raw, out); err != nil {
		panic(fmt.Sprintf("analysis: embedded %s table is invalid: %v", name, err))
	}
}

// scoreInBands returns the first band whose max covers the metric. The last
// band acts as catch-all for metrics beyond every max.
func scoreInBands(metric float64, bands []RiskBand) float64 {
	for _, b := range bands {
		if metric <= b.Max {
			return b.Score
		}
	}
	if len(bands) == 0 {
		return 0
	}
	return bands[len(bands)-1].Score
}
