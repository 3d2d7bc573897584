package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"faopulse/internal/dataprocessing"
)

// WriteActivityWorkbook writes the bought/sold activity narrative and the
// overall trend to an xlsx workbook at path. One row per participant and
// instrument bucket, with the overall read in a summary block at the top.
func WriteActivityWorkbook(dash dataprocessing.Dashboard, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Activity"
	f.SetSheetName("Sheet1", sheet)

	// Summary block.
	f.SetCellValue(sheet, "A1", "Participant Activity")
	f.SetCellValue(sheet, "B1", dash.Date.Format("02/01/2006"))
	f.SetCellValue(sheet, "A2", "Overall Trend")
	f.SetCellValue(sheet, "B2", string(dash.Overall.Label))
	f.SetCellValue(sheet, "C2", dash.Overall.Score)

	// Table header.
	headers := []string{"Participant", "Instrument", "Change", "Activity", "Signal"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	for i, row := range dash.Activity {
		r := i + 5
		f.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.DisplayName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", r), string(row.Bucket))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Change)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.Activity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", r), string(row.Signal))
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "E", 16)

	return f.SaveAs(path)
}
