// Package export renders soil history as spreadsheets.
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/xuri/excelize/v2"
)

const historySheet = "Soil History"

var historyHeader = []any{
	"Date", "Crop", "Nitrogen", "Phosphorus", "Potassium", "pH", "Moisture (%)", "Temperature (°C)", "Location",
}

// WorkbookExporter writes readings into an xlsx workbook
type WorkbookExporter struct {
	location *time.Location
}

// NewWorkbookExporter creates an exporter that prints dates in loc (UTC when nil)
func NewWorkbookExporter(loc *time.Location) *WorkbookExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkbookExporter{location: loc}
}

// SoilHistoryWorkbook returns one header row followed by one row per reading, in the given order
func (e *WorkbookExporter) SoilHistoryWorkbook(_ context.Context, readings []*soil.SoilReading) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9EAD3"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(historyHeader))
	if err := f.SetCellStyle(historySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range readings {
		row := []any{
			r.CreatedAt.In(e.location).Format("2006-01-02 15:04"),
			r.CropType.String(),
			r.Nitrogen,
			r.Phosphorus,
			r.Potassium,
			r.PH,
			r.Moisture,
			r.Temperature,
			r.Location,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(historySheet, "A", "A", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(historySheet, "I", "I", 32); err != nil {
		return nil, err
	}
	if err := f.SetPanes(historySheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
