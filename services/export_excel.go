package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "G702"
	continuationSheet = "G703"
	currencyFormat    = `$#,##0.00;($#,##0.00)`
	percentFormat     = `0.0%`
)

// excelStyles holds the style ids shared by both sheets.
type excelStyles struct {
	title     int
	subtitle  int
	header    int
	text      int
	money     int
	percent   int
	totalText int
	totalNum  int
	totalPct  int
	label     int
	due       int
}

// GenerateExcel creates a workbook with the G702 summary on the first sheet
// and the G703 continuation sheet on the second, and returns its bytes.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(continuationSheet); err != nil {
		return nil, fmt.Errorf("create continuation sheet: %w", err)
	}

	styles, err := newExcelStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, styles, data); err != nil {
		return nil, err
	}
	if err := writeContinuationSheet(f, styles, data); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func newExcelStyles(f *excelize.File) (excelStyles, error) {
	money := currencyFormat
	pct := percentFormat
	defs := []struct {
		name  string
		style *excelize.Style
	}{
		{"title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}},
		{"subtitle", &excelize.Style{Font: &excelize.Font{Size: 10, Color: "#555555"}}},
		{"header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 10},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
			Border:    thinBorders(),
		}},
		{"text", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{"money", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), CustomNumFmt: &money}},
		{"percent", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), CustomNumFmt: &pct}},
		{"totalText", &excelize.Style{
			Font:   &excelize.Font{Bold: true, Size: 10},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
			Border: thinBorders(),
		}},
		{"totalNum", &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 10},
			Fill:         excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
			Border:       thinBorders(),
			CustomNumFmt: &money,
		}},
		{"totalPct", &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 10},
			Fill:         excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
			Border:       thinBorders(),
			CustomNumFmt: &pct,
		}},
		{"label", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 10}}},
		{"due", &excelize.Style{
			Font:         &excelize.Font{Bold: true, Size: 11},
			Fill:         excelize.Fill{Type: "pattern", Color: []string{"#FFF3CD"}, Pattern: 1},
			Border:       thinBorders(),
			CustomNumFmt: &money,
		}},
	}

	var s excelStyles
	targets := []*int{&s.title, &s.subtitle, &s.header, &s.text, &s.money, &s.percent, &s.totalText, &s.totalNum, &s.totalPct, &s.label, &s.due}
	for i, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return excelStyles{}, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*targets[i] = id
	}
	return s, nil
}

func writeSummarySheet(f *excelize.File, s excelStyles, data ExportData) error {
	sh := summarySheet
	for colName, w := range map[string]float64{"A": 4, "B": 50, "C": 4, "D": 20} {
		if err := f.SetColWidth(sh, colName, colName, w); err != nil {
			return fmt.Errorf("set col width %s: %w", colName, err)
		}
	}

	if err := f.MergeCell(sh, "A1", "D1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sh, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sh, "A1", "D1", s.title)

	info := [][2]string{
		{"Contractor", data.CompanyName},
		{"Project", data.ProjectName},
		{"Owner", data.OwnerName},
		{"Architect", data.ArchitectName},
		{"Period", fmt.Sprintf("%s - %s", data.PeriodFrom, data.PeriodTo)},
		{"Status", data.Status},
	}
	row := 2
	for _, kv := range info {
		r := fmt.Sprint(row)
		f.SetCellValue(sh, "A"+r, kv[0])
		f.SetCellStyle(sh, "A"+r, "A"+r, s.label)
		f.SetCellValue(sh, "B"+r, sanitizeExcelCell(kv[1]))
		f.SetCellStyle(sh, "B"+r, "B"+r, s.subtitle)
		row++
	}
	row++

	for _, line := range data.Summary {
		r := fmt.Sprint(row)
		labelCell := "A" + r
		if line.Indent {
			labelCell = "B" + r
		}
		if err := f.MergeCell(sh, labelCell, "C"+r); err != nil {
			return fmt.Errorf("merge summary label: %w", err)
		}
		f.SetCellValue(sh, labelCell, line.Label)
		labelStyle := s.text
		if line.Bold {
			labelStyle = s.totalText
		}
		f.SetCellStyle(sh, labelCell, "C"+r, labelStyle)

		if line.HasValue {
			f.SetCellValue(sh, "D"+r, line.Value)
			valueStyle := s.money
			switch {
			case line.Highlight:
				valueStyle = s.due
			case line.Bold:
				valueStyle = s.totalNum
			}
			f.SetCellStyle(sh, "D"+r, "D"+r, valueStyle)
		}
		row++
	}

	if len(data.ChangeOrders) == 0 {
		return nil
	}

	row++
	r := fmt.Sprint(row)
	f.SetCellValue(sh, "A"+r, "Change Order Summary")
	f.SetCellStyle(sh, "A"+r, "A"+r, s.label)
	row++

	r = fmt.Sprint(row)
	for i, h := range []string{"No.", "Description", "", "Amount"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sh, cell, h)
	}
	f.SetCellStyle(sh, "A"+r, "D"+r, s.header)
	row++

	for _, co := range data.ChangeOrders {
		r = fmt.Sprint(row)
		f.SetCellValue(sh, "A"+r, co.Number)
		f.SetCellValue(sh, "B"+r, sanitizeExcelCell(co.Description))
		f.SetCellValue(sh, "C"+r, co.Approved)
		f.SetCellStyle(sh, "A"+r, "C"+r, s.text)
		f.SetCellValue(sh, "D"+r, co.Amount)
		f.SetCellStyle(sh, "D"+r, "D"+r, s.money)
		row++
	}
	return nil
}

// g703Headers are the continuation sheet columns in order; the first row
// carries the AIA column letters.
var g703Headers = []struct {
	letter string
	title  string
	width  float64
}{
	{"A", "Item No.", 8},
	{"B", "Description of Work", 40},
	{"C", "Scheduled Value", 16},
	{"D", "Work Completed Previous", 16},
	{"E", "Work Completed This Period", 16},
	{"F", "Materials Presently Stored", 16},
	{"G", "Total Completed & Stored", 16},
	{"H", "% (G / C)", 9},
	{"I", "Balance to Finish (C - G)", 16},
	{"", "Retainage", 14},
}

func writeContinuationSheet(f *excelize.File, s excelStyles, data ExportData) error {
	sh := continuationSheet
	lastCol, _ := excelize.ColumnNumberToName(len(g703Headers))

	for i, h := range g703Headers {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sh, name, name, h.width); err != nil {
			return fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	if err := f.MergeCell(sh, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sh, "A1", "Continuation Sheet")
	f.SetCellStyle(sh, "A1", lastCol+"1", s.title)

	if err := f.MergeCell(sh, "A2", lastCol+"2"); err != nil {
		return fmt.Errorf("merge subtitle: %w", err)
	}
	f.SetCellValue(sh, "A2", sanitizeExcelCell(fmt.Sprintf("%s | Application No. %d | Period To %s",
		data.ProjectName, data.ApplicationNumber, data.PeriodTo)))
	f.SetCellStyle(sh, "A2", lastCol+"2", s.subtitle)

	for i, h := range g703Headers {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sh, name+"4", h.letter)
		f.SetCellValue(sh, name+"5", h.title)
	}
	f.SetCellStyle(sh, "A4", lastCol+"5", s.header)
	f.SetRowHeight(sh, 5, 30)

	row := 6
	for _, r := range data.Rows {
		writeContinuationRow(f, s, row, r, false)
		row++
	}
	writeContinuationRow(f, s, row, data.Totals, true)

	return f.SetPanes(sh, &excelize.Panes{
		Freeze:      true,
		YSplit:      5,
		TopLeftCell: "A6",
		ActivePane:  "bottomLeft",
	})
}

func writeContinuationRow(f *excelize.File, s excelStyles, row int, r ExportRow, total bool) {
	sh := continuationSheet
	n := fmt.Sprint(row)

	textStyle, numStyle, pctStyle := s.text, s.money, s.percent
	if total {
		textStyle, numStyle, pctStyle = s.totalText, s.totalNum, s.totalPct
	}

	f.SetCellValue(sh, "A"+n, sanitizeExcelCell(r.ItemNumber))
	f.SetCellValue(sh, "B"+n, sanitizeExcelCell(r.Description))
	f.SetCellStyle(sh, "A"+n, "B"+n, textStyle)

	amounts := []float64{
		r.ScheduledValue,
		r.WorkCompletedPrevious,
		r.WorkCompletedThisPeriod,
		r.MaterialsStored,
		r.TotalCompletedAndStored,
	}
	for i, v := range amounts {
		cell, _ := excelize.CoordinatesToCellName(3+i, row)
		f.SetCellValue(sh, cell, v)
	}
	f.SetCellStyle(sh, "C"+n, "G"+n, numStyle)

	f.SetCellValue(sh, "H"+n, r.PercentComplete)
	f.SetCellStyle(sh, "H"+n, "H"+n, pctStyle)

	f.SetCellValue(sh, "I"+n, r.BalanceToFinish)
	f.SetCellValue(sh, "J"+n, r.Retainage)
	f.SetCellStyle(sh, "I"+n, "J"+n, numStyle)
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
