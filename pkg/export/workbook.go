// Package export renders a finished valuation run into an xlsx workbook:
// one sheet per summary table plus the full audit trail.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"smb_valuation/pkg/core/pipeline"
	"smb_valuation/pkg/models"
)

const auditSheetName = "Audit Trail"

// WriteWorkbook writes the run's summary tables and audit trail to path.
func WriteWorkbook(result *pipeline.FullCalculationResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range result.Summaries {
		name := sheetName(table.Title)
		if i == 0 {
			// Reuse the default sheet instead of leaving an empty one behind.
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename default sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
		if err := writeTable(f, name, table); err != nil {
			return err
		}
	}

	if err := writeAuditTrail(f, result.Steps); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, table models.SummaryTable) error {
	if err := setRow(f, sheet, 1, table.Headers); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAuditTrail(f *excelize.File, steps []models.CalculationStep) error {
	if _, err := f.NewSheet(auditSheetName); err != nil {
		return fmt.Errorf("create sheet %s: %w", auditSheetName, err)
	}
	headers := []string{"Seq", "Category", "Description", "Formula", "Inputs", "Result", "Note"}
	if err := setRow(f, auditSheetName, 1, headers); err != nil {
		return err
	}
	for i, s := range steps {
		row := []string{
			fmt.Sprintf("%d", s.Sequence),
			s.Category,
			s.Description,
			s.Formula,
			formatInputs(s.Inputs),
			fmt.Sprintf("%.2f", s.Result),
			s.Note,
		}
		if err := setRow(f, auditSheetName, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell coordinates (%d,%d): %w", col+1, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// formatInputs renders a step's inputs deterministically by key.
func formatInputs(inputs map[string]float64) string {
	if len(inputs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, inputs[k]))
	}
	return strings.Join(parts, ", ")
}

// Excel sheet names cap at 31 chars and reject a handful of characters.
func sheetName(title string) string {
	name := strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-").Replace(title)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
