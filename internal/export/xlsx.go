package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zapponejosh/wareki-api/internal/calendar"
)

// Sheet names of the reference workbook.
const (
	SheetJapanese = "和暦"
	SheetMinguo   = "民國"
)

// ReferenceWorkbook writes the Japanese era and Minguo reference tables to an
// xlsx workbook with one sheet each. Rows keep the order they are given in.
func ReferenceWorkbook(japanese, minguo []calendar.YearRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the first table.
	if err := f.SetSheetName("Sheet1", SheetJapanese); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetMinguo); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", SheetMinguo, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	sheets := []struct {
		name   string
		header []any
		rows   []calendar.YearRow
		label  func(calendar.YearRow) any
	}{
		{SheetJapanese, []any{"西暦", "和暦", "年齢"}, japanese, func(r calendar.YearRow) any { return r.Label }},
		{SheetMinguo, []any{"西元", "民國", "年齡"}, minguo, func(r calendar.YearRow) any { return r.EraYear }},
	}

	for _, s := range sheets {
		if err := writeTable(f, s.name, s.header, s.rows, s.label, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows []calendar.YearRow, label func(calendar.YearRow) any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", "C", 12); err != nil {
		return fmt.Errorf("%s column width: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("%s freeze header: %w", sheet, err)
	}

	for i, r := range rows {
		var age any = "—"
		if r.Age != nil {
			age = *r.Age
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.Year, label(r), age}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r.Year, err)
		}
	}
	return nil
}
