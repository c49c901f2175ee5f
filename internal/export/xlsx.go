package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	sheetSummary = "Summary"
	sheetCutPlan = "Cut Plan"
	sheetStairs  = "Stairs"
)

// ExportXLSX writes the estimate to an Excel workbook: a summary sheet, plus
// cut plan and stair sheets when the report carries them.
func ExportXLSX(path string, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summary := [][]interface{}{{"Item", "Value"}}
	for _, kv := range SummaryLines(r) {
		summary = append(summary, []interface{}{kv.Label, kv.Value})
	}
	for _, w := range r.Quantities.Warnings {
		summary = append(summary, []interface{}{"Warning", w.Message})
	}
	if err := writeRows(f, sheetSummary, summary, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetSummary, "A", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if cp := r.Quantities.CutPlan; cp != nil {
		rows := [][]interface{}{{"Row", "Length (mm)", "Source", "From", "Stock board", "Remainder (mm)"}}
		for _, c := range cp.Rows {
			rows = append(rows, []interface{}{c.RowID, c.RequiredLengthMm, string(c.SourceKind), c.SourceID, c.StockID, c.RemainderMm})
		}
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Stock boards", cp.StockPieces},
			[]interface{}{"Required (mm)", cp.TotalRequiredMm},
			[]interface{}{"Waste (mm)", cp.WasteMm},
			[]interface{}{"Leftover (mm)", cp.LeftoverMm},
		)
		if err := addSheet(f, sheetCutPlan, rows, bold); err != nil {
			return err
		}
	}

	if st := r.Quantities.Stairs; st != nil {
		rows := [][]interface{}{{"Stair", "Steps", "Width (mm)", "Unit rise (mm)", "Unit run (mm)"}}
		for _, it := range st.Items {
			rows = append(rows, []interface{}{it.ID, it.StepCount, it.WidthMm, it.UnitRiseMm, it.UnitRunMm})
		}
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Tread area (m²)", st.TreadAreaM2},
			[]interface{}{"Riser area (m²)", st.RiserAreaM2},
			[]interface{}{"Total area (m²)", st.TotalAreaM2},
		)
		if err := addSheet(f, sheetStairs, rows, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows, headerStyle)
}

// writeRows fills a sheet from A1 and bolds the first row.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("style header of %s: %w", sheet, err)
		}
	}
	return nil
}
