package services

// TemplateField describes one column in the schedule of values import template.
type TemplateField struct {
	Key          string // internal name, matches the PocketBase field name
	Label        string // header shown in the spreadsheet
	Description  string // shown on the Instructions sheet
	FormatRule   string
	ExampleValue string
	Required     bool
}

// ScheduleTemplateFields returns the ordered import columns.
func ScheduleTemplateFields() []TemplateField {
	return []TemplateField{
		{Key: "item_number", Label: "Item Number", Description: "Line number printed in G703 column A", FormatRule: "Up to 20 characters, unique", ExampleValue: "3", Required: true},
		{Key: "description", Label: "Description of Work", Description: "G703 column B", ExampleValue: "Concrete & Foundations", Required: true},
		{Key: "scheduled_value", Label: "Scheduled Value", Description: "G703 column C; the rows must total the original contract sum", FormatRule: "Amount, $ and commas allowed", ExampleValue: "$185,000.00", Required: true},
	}
}

// headerAliases lets common spreadsheet headings map onto template keys.
var headerAliases = map[string]string{
	"item":            "item_number",
	"item no.":        "item_number",
	"item #":          "item_number",
	"#":               "item_number",
	"description":     "description",
	"scheduled value": "scheduled_value",
	"value":           "scheduled_value",
	"amount":          "scheduled_value",
}
