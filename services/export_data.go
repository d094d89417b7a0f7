package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/config"
)

// ExportRow is one G703 continuation sheet row (columns A through I).
type ExportRow struct {
	ItemNumber              string
	Description             string
	ScheduledValue          float64
	WorkCompletedPrevious   float64
	WorkCompletedThisPeriod float64
	MaterialsStored         float64
	TotalCompletedAndStored float64
	PercentComplete         float64
	BalanceToFinish         float64
	Retainage               float64
}

// ExportChangeOrder is one approved change order listed on the G702.
type ExportChangeOrder struct {
	Number      int
	Description string
	Amount      float64
	Approved    string
}

// ExportData holds everything a G702/G703 document prints. It is built
// from a PayAppView and never recomputes figures.
type ExportData struct {
	Title             string
	CompanyName       string
	CompanyAddress    string
	ProjectName       string
	ProjectNumber     string
	ProjectAddress    string
	OwnerName         string
	ArchitectName     string
	GCName            string
	ApplicationNumber int
	Status            string
	PeriodTo          string
	PeriodFrom        string
	ContractDate      string
	CreatedDate       string
	WorkRetainage     float64
	StoredRetainage   float64
	Summary           []billing.SummaryLine
	Rows              []ExportRow
	Totals            ExportRow
	ChangeOrders      []ExportChangeOrder
	PaymentDue        float64
}

const exportDateLayout = "01/02/2006"

func exportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}

// BuildExportData converts a pay application view into printable data.
func BuildExportData(view PayAppView, cfg config.Config, now time.Time) ExportData {
	p := view.Project
	a := view.Application

	data := ExportData{
		Title:             fmt.Sprintf("Application and Certificate for Payment #%d", a.ApplicationNumber),
		CompanyName:       cfg.CompanyName,
		CompanyAddress:    cfg.CompanyAddress,
		ProjectName:       p.Name,
		ProjectNumber:     p.ProjectNumber,
		ProjectAddress:    p.Address,
		OwnerName:         p.OwnerName,
		ArchitectName:     p.ArchitectName,
		GCName:            p.GCName,
		ApplicationNumber: a.ApplicationNumber,
		Status:            strings.ToUpper(string(a.Status)),
		PeriodFrom:        exportDate(a.PeriodFrom),
		PeriodTo:          exportDate(a.PeriodTo),
		ContractDate:      exportDate(p.ContractDate),
		CreatedDate:       now.Format(exportDateLayout),
		WorkRetainage:     p.Retainage.Work,
		StoredRetainage:   p.Retainage.Stored,
		Summary:           a.Summary.Lines(),
		PaymentDue:        a.Summary.CurrentPaymentDue,
	}

	for _, item := range view.LineItems {
		data.Rows = append(data.Rows, ExportRow{
			ItemNumber:              item.ItemNumber,
			Description:             item.Description,
			ScheduledValue:          item.ScheduledValue,
			WorkCompletedPrevious:   item.WorkCompletedPrevious,
			WorkCompletedThisPeriod: item.WorkCompletedThisPeriod,
			MaterialsStored:         item.MaterialsStored,
			TotalCompletedAndStored: item.TotalCompletedAndStored,
			PercentComplete:         item.PercentComplete,
			BalanceToFinish:         item.BalanceToFinish,
			Retainage:               item.Retainage,
		})
	}

	t := view.Totals
	data.Totals = ExportRow{
		Description:             "GRAND TOTAL",
		ScheduledValue:          t.ScheduledValue,
		WorkCompletedPrevious:   t.WorkCompletedPrevious,
		WorkCompletedThisPeriod: t.WorkCompletedThisPeriod,
		MaterialsStored:         t.MaterialsStored,
		TotalCompletedAndStored: t.TotalCompletedAndStored,
		PercentComplete:         billing.PercentComplete(t.TotalCompletedAndStored, t.ScheduledValue),
		BalanceToFinish:         t.BalanceToFinish,
		Retainage:               view.Retainage.PerItemSum,
	}

	for _, co := range view.ChangeOrders {
		data.ChangeOrders = append(data.ChangeOrders, ExportChangeOrder{
			Number:      co.Number,
			Description: co.Description,
			Amount:      co.Amount,
			Approved:    exportDate(co.DateApproved),
		})
	}
	return data
}

// ExportFilename names a downloaded pay application document.
func ExportFilename(data ExportData, ext string) string {
	name := data.ProjectNumber
	if name == "" {
		name = data.ProjectName
	}
	return fmt.Sprintf("%s_PayApp_%d.%s", name, data.ApplicationNumber, ext)
}
