package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"lisflood-diag/internal/model"
)

const defaultSheet = "Sheet1"

// WriteXLSX writes f to a single-sheet workbook. Time indexes are stored as
// date cells; missing values are left blank.
func WriteXLSX(path string, f model.Frame, sheet string) error {
	book := excelize.NewFile()
	defer book.Close()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := book.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}

	header := []interface{}{IndexHeader(f)}
	for _, name := range f.Names() {
		header = append(header, name)
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	ix := f.RowIndex()
	for i := 0; i < f.Len(); i++ {
		row := make([]interface{}, 0, len(header))
		if ix.IsTime() {
			row = append(row, ix.Times[i])
		} else {
			row = append(row, ix.Steps[i])
		}
		for _, v := range model.Row(f, i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if ix.IsTime() && f.Len() > 0 {
		style, err := book.NewStyle(&excelize.Style{NumFmt: 22})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(1, f.Len()+1)
		if err != nil {
			return err
		}
		if err := book.SetCellStyle(sheet, "A2", last, style); err != nil {
			return err
		}
		if err := book.SetColWidth(sheet, "A", "A", 18); err != nil {
			return err
		}
	}

	return book.SaveAs(path)
}
