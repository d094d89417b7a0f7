package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/th3mailmann/bildpro/billing"
)

var (
	pdfGray      = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfLightGray = &props.Color{Red: 140, Green: 140, Blue: 140}
	pdfHeaderBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfTotalBg   = &props.Color{Red: 240, Green: 240, Blue: 240}
	pdfDueBg     = &props.Color{Red: 255, Green: 243, Blue: 205}
)

// GeneratePDF renders the G702 summary followed by the G703 continuation
// sheet using maroto/v2. It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.Letter).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   pdfLightGray,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, data)
	addProjectBlock(m, data)
	addSummary(m, data)
	addChangeOrders(m, data)

	m.AddRows(row.New(8))
	addSectionTitle(m, "CONTINUATION SHEET (G703)")
	addTableHeader(m)
	for _, r := range data.Rows {
		addTableRow(m, r, false)
	}
	addTableRow(m, data.Totals, true)

	addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, data ExportData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.Title, props.Text{
					Size:  15,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(7).Add(
			col.New(6).Add(
				text.New(data.CompanyName, props.Text{Size: 10, Style: fontstyle.Bold}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Status: %s", data.Status), props.Text{
					Size:  9,
					Align: align.Right,
					Color: pdfGray,
				}),
			),
		),
	)
	if data.CompanyAddress != "" {
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(
					text.New(data.CompanyAddress, props.Text{Size: 8, Color: pdfGray}),
				),
			),
		)
	}
	m.AddRows(row.New(4))
}

// addProjectBlock prints the project parties on the left and the
// application period on the right.
func addProjectBlock(m core.Maroto, data ExportData) {
	left := [][2]string{
		{"Project", data.ProjectName},
		{"Address", data.ProjectAddress},
		{"Owner", data.OwnerName},
		{"Architect", data.ArchitectName},
		{"General Contractor", data.GCName},
	}
	right := [][2]string{
		{"Application No.", fmt.Sprintf("%d", data.ApplicationNumber)},
		{"Period From", data.PeriodFrom},
		{"Period To", data.PeriodTo},
		{"Contract Date", data.ContractDate},
		{"Project No.", data.ProjectNumber},
	}

	label := props.Text{Size: 8, Style: fontstyle.Bold, Color: pdfGray}
	value := props.Text{Size: 8}
	for i := range left {
		m.AddRows(
			row.New(5).Add(
				col.New(2).Add(text.New(left[i][0], label)),
				col.New(5).Add(text.New(left[i][1], value)),
				col.New(2).Add(text.New(right[i][0], label)),
				col.New(3).Add(text.New(right[i][1], value)),
			),
		)
	}
	m.AddRows(
		row.New(5).Add(
			col.New(12).Add(
				text.New(fmt.Sprintf("Retainage: %s on completed work, %s on stored materials",
					billing.FormatPercent(data.WorkRetainage, 0),
					billing.FormatPercent(data.StoredRetainage, 0)),
					props.Text{Size: 8, Color: pdfGray}),
			),
		),
	)
	m.AddRows(row.New(4))
}

func addSectionTitle(m core.Maroto, title string) {
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(
				text.New(title, props.Text{Size: 10, Style: fontstyle.Bold}),
			),
		),
	)
}

// addSummary prints the nine G702 lines.
func addSummary(m core.Maroto, data ExportData) {
	addSectionTitle(m, "CONTRACTOR'S APPLICATION FOR PAYMENT (G702)")

	for _, line := range data.Summary {
		labelStyle := props.Text{Size: 9, Align: align.Left}
		valueStyle := props.Text{Size: 9, Align: align.Right}
		if line.Bold {
			labelStyle.Style = fontstyle.Bold
			valueStyle.Style = fontstyle.Bold
		}
		value := ""
		if line.HasValue {
			value = billing.FormatUSD(line.Value)
		}

		labelWidth := 8
		cols := []core.Col{}
		if line.Indent {
			cols = append(cols, col.New(1))
			labelWidth = 7
		}
		labelCell := col.New(labelWidth).Add(text.New(line.Label, labelStyle))
		valueCell := col.New(4).Add(text.New(value, valueStyle))
		if line.Highlight {
			style := &props.Cell{BackgroundColor: pdfDueBg}
			labelCell = labelCell.WithStyle(style)
			valueCell = valueCell.WithStyle(style)
		}
		cols = append(cols, labelCell, valueCell)

		m.AddRows(row.New(6).Add(cols...))
	}
}

func addChangeOrders(m core.Maroto, data ExportData) {
	if len(data.ChangeOrders) == 0 {
		return
	}
	m.AddRows(row.New(4))
	addSectionTitle(m, "CHANGE ORDER SUMMARY")

	head := props.Text{Size: 8, Style: fontstyle.Bold, Color: pdfGray}
	m.AddRows(
		row.New(5).Add(
			col.New(1).Add(text.New("No.", head)),
			col.New(7).Add(text.New("Description", head)),
			col.New(2).Add(text.New("Approved", head)),
			col.New(2).Add(text.New("Amount", props.Text{Size: 8, Style: fontstyle.Bold, Color: pdfGray, Align: align.Right})),
		),
	)

	var net float64
	for _, co := range data.ChangeOrders {
		m.AddRows(
			row.New(5).Add(
				col.New(1).Add(text.New(fmt.Sprintf("%d", co.Number), props.Text{Size: 8})),
				col.New(7).Add(text.New(co.Description, props.Text{Size: 8})),
				col.New(2).Add(text.New(co.Approved, props.Text{Size: 8})),
				col.New(2).Add(text.New(billing.FormatUSD(co.Amount), props.Text{Size: 8, Align: align.Right})),
			),
		)
		net += co.Amount
	}
	bold := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(5).Add(
			col.New(10).Add(text.New("Net change by change orders", bold)),
			col.New(2).Add(text.New(billing.FormatUSD(billing.RoundCurrency(net)), bold)),
		),
	)
}

// g703Columns are the continuation sheet headings and their grid widths.
var g703Columns = []struct {
	title string
	width int
}{
	{"A\nItem", 1},
	{"B\nDescription of Work", 3},
	{"C\nScheduled Value", 1},
	{"D\nPrevious", 1},
	{"E\nThis Period", 1},
	{"F\nStored", 1},
	{"G\nCompleted & Stored", 1},
	{"H\n%", 1},
	{"I\nBalance", 1},
	{"Retainage", 1},
}

func addTableHeader(m core.Maroto) {
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := &props.Cell{BackgroundColor: pdfHeaderBg}

	cols := make([]core.Col, 0, len(g703Columns))
	for _, c := range g703Columns {
		cols = append(cols, col.New(c.width).Add(text.New(c.title, headerText)).WithStyle(headerCell))
	}
	m.AddRows(row.New(10).Add(cols...))
}

// addTableRow adds one G703 row. The totals row is bold on a gray band.
func addTableRow(m core.Maroto, r ExportRow, total bool) {
	base := props.Text{Size: 7, Align: align.Center}
	if total {
		base.Style = fontstyle.Bold
	}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	cols := []core.Col{
		col.New(1).Add(text.New(r.ItemNumber, base)),
		col.New(3).Add(text.New(r.Description, left)),
		col.New(1).Add(text.New(billing.FormatUSD(r.ScheduledValue), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.WorkCompletedPrevious), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.WorkCompletedThisPeriod), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.MaterialsStored), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.TotalCompletedAndStored), right)),
		col.New(1).Add(text.New(billing.FormatPercent(r.PercentComplete, 1), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.BalanceToFinish), right)),
		col.New(1).Add(text.New(billing.FormatUSD(r.Retainage), right)),
	}
	if total {
		style := &props.Cell{BackgroundColor: pdfTotalBg}
		for i, c := range cols {
			cols[i] = c.WithStyle(style)
		}
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addFooter(m core.Maroto, data ExportData) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", data.CreatedDate),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: pdfLightGray,
					},
				),
			),
		),
	)
}
