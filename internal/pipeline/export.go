package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ballotmap/internal"
)

func ExportRowsToXLSX(rows []internal.CandidateExportRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "candidates"); err != nil {
		return err
	}
	sheet = "candidates"

	headers := []string{
		"position_key", "office_title", "scope", "county", "bucket", "ordinal",
		"name", "party", "year", "election_type", "election_name",
		"contact_url", "finance_url", "photo_url",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.PositionKey)
		set(2, row.OfficeTitle)
		set(3, row.Scope)
		set(4, row.County)
		set(5, row.Bucket)
		set(6, row.Ordinal)
		set(7, row.Name)
		set(8, row.Party)
		set(9, row.Year)
		set(10, row.ElectionType)
		set(11, row.ElectionName)
		set(12, row.ContactURL)
		set(13, row.FinanceURL)
		set(14, row.PhotoURL)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
