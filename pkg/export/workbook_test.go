package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"smb_valuation/pkg/core/pipeline"
	"smb_valuation/pkg/models"
)

func TestWriteWorkbook(t *testing.T) {
	calc := pipeline.NewCalculator(zerolog.Nop())
	result, err := calc.RunFullCalculation(pipeline.FullCalculationRequest{
		CompanyName: "Test Co",
		Financials: models.MultiYearFinancials{Periods: []models.FinancialPeriod{
			{Year: 2024, Revenue: 1_000_000, NetIncome: 150_000, OfficerCompensation: 100_000},
		}},
		BalanceSheet: models.BalanceSheet{TotalAssets: 400_000, TotalLiabilities: 150_000, TotalEquity: 250_000},
		Industry: models.IndustryData{
			SDEMultiple:    models.MultipleRange{Low: 2.0, Median: 2.5, High: 3.0},
			EBITDAMultiple: models.MultipleRange{Low: 3.0, Median: 4.0, High: 5.0},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "valuation.xlsx")
	if err := WriteWorkbook(result, path); err != nil {
		t.Fatalf("WriteWorkbook failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Workbook not written: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Workbook unreadable: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != len(result.Summaries)+1 {
		t.Errorf("Expected %d sheets, got %v", len(result.Summaries)+1, sheets)
	}

	// The audit trail sheet carries every step.
	rows, err := f.GetRows(auditSheetName)
	if err != nil {
		t.Fatalf("No audit sheet: %v", err)
	}
	if len(rows) != len(result.Steps)+1 {
		t.Errorf("Expected %d audit rows, got %d", len(result.Steps)+1, len(rows))
	}
}

func TestFormatInputsDeterministic(t *testing.T) {
	inputs := map[string]float64{"b_second": 2, "a_first": 1}
	got := formatInputs(inputs)
	want := "a_first=1.00, b_second=2.00"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSheetName(t *testing.T) {
	if got := sheetName("Ratios: Liquidity/Leverage"); got != "Ratios- Liquidity-Leverage" {
		t.Errorf("Unexpected sheet name %q", got)
	}
	long := sheetName("An Extremely Long Valuation Summary Title")
	if len(long) > 31 {
		t.Errorf("Sheet name not truncated: %q", long)
	}
}
