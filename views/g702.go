// Package views prepares pay application data for the HTMX templates.
package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/services"
	"github.com/th3mailmann/bildpro/templates"
)

// G702Summary renders the nine-line summary card with validation findings.
// Values come from the view as computed or frozen; nothing is recalculated.
func G702Summary(view services.PayAppView) templ.Component {
	return templates.G702Summary(G702SummaryData(view))
}

// G702SummaryData formats a pay application view for the summary template.
func G702SummaryData(view services.PayAppView) templates.G702SummaryData {
	a := view.Application
	data := templates.G702SummaryData{
		ApplicationNumber:  a.ApplicationNumber,
		Status:             string(a.Status),
		StatusLabel:        strings.ToUpper(string(a.Status)),
		Errors:             validationItems(view.Validation.Errors),
		Warnings:           validationItems(view.Validation.Warnings),
		RetainageDrift:     !view.Retainage.Reconciled,
		PerItemRetainage:   billing.FormatUSD(view.Retainage.PerItemSum),
		AggregateRetainage: billing.FormatUSD(view.Retainage.Aggregate),
	}
	for _, line := range a.Summary.Lines() {
		data.Lines = append(data.Lines, summaryLine(line))
	}
	return data
}

func summaryLine(line billing.SummaryLine) templates.G702Line {
	var classes []string
	if line.Bold {
		classes = append(classes, "bold")
	}
	if line.Highlight {
		classes = append(classes, "highlight")
	}
	if line.Indent {
		classes = append(classes, "indent")
	}

	out := templates.G702Line{Label: line.Label, Class: strings.Join(classes, " ")}
	if line.HasValue {
		out.Value = billing.FormatUSD(line.Value)
	}
	return out
}

func validationItems(issues []billing.ValidationIssue) []templates.ValidationItem {
	items := make([]templates.ValidationItem, 0, len(issues))
	for _, issue := range issues {
		items = append(items, templates.ValidationItem{
			Rule:     string(issue.Rule),
			LineItem: issue.LineItem,
			Message:  issue.Message,
		})
	}
	return items
}
