package report

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"custombudget/internal/core"
)

// XLSXSink writes the report to a single-sheet workbook on disk, replacing
// any previous file.
type XLSXSink struct {
	Path string
}

func (s XLSXSink) Name() string { return "xlsx" }

func (s XLSXSink) Write(ctx context.Context, cityID string, rows []core.LineSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Budget"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "City"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheetName, "B1", cityID); err != nil {
		return err
	}

	for i, header := range Header {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for i, r := range rows {
		for j, v := range Values(r) {
			cell, err := excelize.CoordinatesToCellName(j+1, i+3)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.Path, err)
	}
	return nil
}
