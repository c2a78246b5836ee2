package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"smb_valuation/pkg/core/config"
	"smb_valuation/pkg/core/pipeline"
	"smb_valuation/pkg/export"
)

func main() {
	// Optional .env for local overrides; absence is not an error.
	_ = godotenv.Load()

	log := newLogger()

	app := &cli.App{
		Name:  "valuation",
		Usage: "deterministic small-business valuation engine",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a full valuation from a JSON input payload",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input payload (JSON)", Required: true},
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config overrides (Hjson)"},
					&cli.StringFlag{Name: "xlsx", Usage: "write the workbook to this path"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the full result JSON to this path (default stdout)"},
				},
				Action: func(c *cli.Context) error {
					return runValuation(c, log)
				},
			},
			{
				Name:  "analyze",
				Usage: "run the pre-valuation quality gate and analytical satellites",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input payload (JSON)", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the result JSON to this path (default stdout)"},
				},
				Action: func(c *cli.Context) error {
					return runAnalysis(c, log)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && os.Getenv("LOG_LEVEL") != "" {
		level = lvl
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func runValuation(c *cli.Context, log zerolog.Logger) error {
	var req pipeline.FullCalculationRequest
	if err := readJSON(c.String("input"), &req); err != nil {
		return err
	}

	cfg, err := config.LoadValuationConfig(c.String("config"))
	if err != nil {
		return err
	}
	req.Config = &cfg

	result, err := pipeline.NewCalculator(log).RunFullCalculation(req)
	if err != nil {
		return err
	}

	if path := c.String("xlsx"); path != "" {
		if err := export.WriteWorkbook(result, path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("workbook written")
	}

	return writeJSON(c.String("out"), result)
}

func runAnalysis(c *cli.Context, log zerolog.Logger) error {
	var req pipeline.AnalysisRequest
	if err := readJSON(c.String("input"), &req); err != nil {
		return err
	}

	result := pipeline.NewOrchestrator(log).RunOrchestratedAnalysis(req)
	return writeJSON(c.String("out"), result)
}

func readJSON(path string, out interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse input %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result %s: %w", path, err)
	}
	return nil
}
