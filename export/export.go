package export

import (
	"bytes"
	"fmt"
	"time"

	"shop_return_desk/models"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of Workbook output.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename is <collection>_<YYYY-MM-DD>.xlsx for the given day.
func Filename(coll models.Collection, now time.Time) string {
	return fmt.Sprintf("%s_%s.xlsx", coll.Name, now.Format(models.DateLayout))
}

// Workbook writes one sheet named after the collection: a styled header row
// from coll.ExportColumns, then one row per record.
func Workbook(coll models.Collection, rows []models.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := coll.Title
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(coll.ExportColumns))
	for i, h := range coll.ExportColumns {
		header[i] = h
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("set header style: %w", err)
	}

	widths := make([]int, len(header))
	for i, h := range coll.ExportColumns {
		widths[i] = len(h)
	}
	for i, rec := range rows {
		cells := rec.ExportRow()
		if err := writeRow(f, sheet, i+2, cells); err != nil {
			return nil, err
		}
		for j, c := range cells {
			if n := len(fmt.Sprint(c)); j < len(widths) && n > widths[j] {
				widths[j] = n
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, 60))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
