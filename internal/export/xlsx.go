package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// GenerateXLSX builds a workbook with the quote on its first sheet and, when
// withCosts is set, the internal figures on a second sheet.
func GenerateXLSX(d Data, withCosts bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(d.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	lastCol, err := excelize.ColumnNumberToName(len(ItemHeaders))
	if err != nil {
		return nil, fmt.Errorf("last column: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	setCell(f, sheet, "A1", sanitizeCell(d.Title), styles.title)

	row := 2
	for _, line := range []string{d.Customer.Address, d.Customer.Phone, d.Customer.Email, dated("Quote date", d.Customer.QuoteDate), dated("Due date", d.Customer.DueDate)} {
		if line == "" {
			continue
		}
		setCell(f, sheet, fmt.Sprintf("A%d", row), sanitizeCell(line), 0)
		row++
	}

	row++
	for i, h := range ItemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		setCell(f, sheet, cell, h, styles.header)
	}
	row++

	for i, item := range d.Items {
		values := itemRow(i, item)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			setCell(f, sheet, cell, sanitizeCell(v), styles.item)
		}
		if item.Price != nil {
			cell, _ := excelize.CoordinatesToCellName(len(values), row)
			f.SetCellValue(sheet, cell, *item.Price)
		}
		row++
	}

	row++
	labelCol, _ := excelize.ColumnNumberToName(len(ItemHeaders) - 1)
	row = writeTotals(f, sheet, row, labelCol, lastCol, Totals(d.Result), styles)

	if withCosts {
		costs := "Costs"
		if _, err := f.NewSheet(costs); err != nil {
			return nil, fmt.Errorf("create costs sheet: %w", err)
		}
		if err := f.SetColWidth(costs, "A", "A", 24); err != nil {
			return nil, fmt.Errorf("set col width: %w", err)
		}
		writeTotals(f, costs, 1, "A", "B", CostLines(d.Result), styles)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type styleSet struct {
	title, header, item, label, value int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, fmt.Errorf("create title style: %w", err)
	}
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return s, fmt.Errorf("create header style: %w", err)
	}
	if s.item, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}); err != nil {
		return s, fmt.Errorf("create item style: %w", err)
	}
	s.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return s, fmt.Errorf("create label style: %w", err)
	}
	moneyFormat := "$#,##0.00"
	s.value, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, CustomNumFmt: &moneyFormat})
	if err != nil {
		return s, fmt.Errorf("create value style: %w", err)
	}
	return s, nil
}

func writeTotals(f *excelize.File, sheet string, row int, labelCol, valueCol string, lines []TotalLine, styles styleSet) int {
	for _, line := range lines {
		setCell(f, sheet, fmt.Sprintf("%s%d", labelCol, row), line.Label, styles.label)
		cell := fmt.Sprintf("%s%d", valueCol, row)
		f.SetCellValue(sheet, cell, line.Value)
		f.SetCellStyle(sheet, cell, cell, styles.value)
		row++
	}
	return row
}

func setCell(f *excelize.File, sheet, cell string, value interface{}, style int) {
	f.SetCellValue(sheet, cell, value)
	if style != 0 {
		f.SetCellStyle(sheet, cell, cell, style)
	}
}

func sheetName(title string) string {
	name := []rune(title)
	for i, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			name[i] = '_'
		}
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if len(name) == 0 {
		return "Quote"
	}
	return string(name)
}

func dated(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

// sanitizeCell prefixes leading formula characters so user text is never
// evaluated by a spreadsheet.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
