package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/th3mailmann/bildpro/billing"
)

// ErrScheduleLocked is returned when replacing the SOV of a project that has
// already billed against it.
var ErrScheduleLocked = errors.New("schedule of values is locked once a pay application exists")

// ImportError is a single field-level problem on one uploaded row.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ScheduleImport is the outcome of parsing an uploaded schedule of values.
type ScheduleImport struct {
	FileName    string         `json:"file_name"`
	TotalRows   int            `json:"total_rows"`
	ValidRows   int            `json:"valid_rows"`
	ErrorRows   int            `json:"error_rows"`
	Errors      []ImportError  `json:"errors,omitempty"`
	Unmapped    []string       `json:"unmapped_columns,omitempty"`
	Items       []SOVItemInput `json:"items"`
	Total       float64        `json:"total"`
	ContractSum float64        `json:"contract_sum"`
	Difference  float64        `json:"difference"`
}

// Valid reports whether every row parsed and the rows total the contract sum.
func (s *ScheduleImport) Valid() bool {
	return len(s.Errors) == 0 && billing.WithinTolerance(s.Total, s.ContractSum)
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to TemplateField keys.
// Returns ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string, fields []TemplateField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields)+len(headerAliases))
	for alias, key := range headerAliases {
		labelToKey[alias] = key
	}
	for _, f := range fields {
		labelToKey[strings.ToLower(strings.TrimSpace(f.Label))] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that the template adds for required fields
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
		} else if h != "" {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// parseImportAmount accepts "$1,234.56", "1234.56" and accounting negatives
// "(1,234.56)". Unlike form input, anything else is rejected.
func parseImportAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	if negative {
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	if negative {
		d = d.Neg()
	}
	return d.Round(2).InexactFloat64(), true
}

// ParseScheduleFile parses an uploaded .csv or .xlsx schedule of values and
// validates each row. contractSum is the amount the rows must total.
func ParseScheduleFile(file io.Reader, fileName string, contractSum float64) (*ScheduleImport, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	fields := ScheduleTemplateFields()
	columnKeys, unmapped := mapHeadersToFields(headers, fields)
	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	result := &ScheduleImport{
		FileName:    fileName,
		Unmapped:    unmapped,
		ContractSum: billing.RoundCurrency(contractSum),
	}
	seen := make(map[string]int)
	var total decimal.Decimal

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		data := make(map[string]string)
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" || colIdx >= len(row) {
				continue
			}
			data[key] = strings.TrimSpace(row[colIdx])
			if data[key] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		result.TotalRows++

		var rowErrors []ImportError
		for _, f := range fields {
			if f.Required && data[f.Key] == "" {
				rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: f.Label, Message: fmt.Sprintf("%s is required", f.Label)})
			}
		}

		item := SOVItemInput{ItemNumber: data["item_number"], Description: data["description"]}
		if raw := data["scheduled_value"]; raw != "" {
			amount, ok := parseImportAmount(raw)
			if !ok {
				rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: keyToLabel["scheduled_value"], Message: fmt.Sprintf("%q is not an amount", raw)})
			}
			item.ScheduledValue = amount
		}
		if item.ItemNumber != "" {
			if first, dup := seen[item.ItemNumber]; dup {
				rowErrors = append(rowErrors, ImportError{Row: rowNum, Field: keyToLabel["item_number"], Message: fmt.Sprintf("Item %s already used on row %d", item.ItemNumber, first)})
			} else {
				seen[item.ItemNumber] = rowNum
			}
		}
		if len(rowErrors) == 0 {
			if err := item.Validate(); err != nil {
				rowErrors = append(rowErrors, ImportError{Row: rowNum, Message: err.Error()})
			}
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			continue
		}
		result.Items = append(result.Items, item)
		total = total.Add(decimal.NewFromFloat(item.ScheduledValue))
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows
	result.Total = total.Round(2).InexactFloat64()
	result.Difference = billing.RoundCurrency(result.Total - result.ContractSum)
	return result, nil
}

// ReplaceScheduleOfValues swaps the contract SOV lines of a project for the
// given items in one transaction. Change order lines are kept. The project
// must not have any pay application yet.
func ReplaceScheduleOfValues(app core.App, projectID string, items []SOVItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrEmptySchedule)
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", item.ItemNumber, err)
		}
	}

	return app.RunInTransaction(func(txApp core.App) error {
		ledger, err := LoadProjectLedger(txApp, projectID)
		if err != nil {
			return err
		}
		if len(ledger.History) > 0 {
			return fmt.Errorf("project %s: %w", projectID, ErrScheduleLocked)
		}

		existing, err := txApp.FindRecordsByFilter("schedule_of_values",
			"project = {:project} && is_from_change_order = false", "", 0, 0,
			dbx.Params{"project": projectID})
		if err != nil {
			return fmt.Errorf("load schedule of values: %w", err)
		}
		for _, rec := range existing {
			if err := txApp.Delete(rec); err != nil {
				return fmt.Errorf("delete SOV item %s: %w", rec.GetString("item_number"), err)
			}
		}

		col, err := txApp.FindCollectionByNameOrId("schedule_of_values")
		if err != nil {
			return fmt.Errorf("find schedule_of_values collection: %w", err)
		}
		for i, item := range items {
			r := core.NewRecord(col)
			r.Set("project", projectID)
			r.Set("item_number", item.ItemNumber)
			r.Set("description", item.Description)
			r.Set("scheduled_value", billing.RoundCurrency(item.ScheduledValue))
			r.Set("sort_order", i+1)
			if err := txApp.Save(r); err != nil {
				return fmt.Errorf("save SOV item %s: %w", item.ItemNumber, err)
			}
		}

		slog.Info("sov_import: schedule replaced", "project", projectID, "items", len(items))
		return nil
	})
}

// GenerateErrorReport creates a downloadable .xlsx file from import errors.
func GenerateErrorReport(issues []ImportError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range issues {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
