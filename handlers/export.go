package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/config"
	"github.com/th3mailmann/bildpro/services"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func sendFile(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sanitizeFilename(filename)))
	_, err := e.Response.Write(body)
	return err
}

func loadExportData(app *pocketbase.PocketBase, e *core.RequestEvent, cfg config.Config) (services.ExportData, error) {
	view, err := services.LoadPayApplication(app, e.Request.PathValue("projectId"), e.Request.PathValue("payAppId"))
	if err != nil {
		return services.ExportData{}, err
	}
	return services.BuildExportData(view, cfg, now()), nil
}

// HandlePayAppExportPDF downloads a pay application as a G702/G703 PDF.
// Route: GET /api/projects/{projectId}/pay-apps/{payAppId}/export.pdf
func HandlePayAppExportPDF(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := loadExportData(app, e, cfg)
		if err != nil {
			return respondError(e, err)
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			slog.Error("export_pdf: failed to generate", "application", data.ApplicationNumber, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}
		return sendFile(e, contentTypePDF, services.ExportFilename(data, "pdf"), pdfBytes)
	}
}

// HandlePayAppExportExcel downloads a pay application as a workbook with
// G702 and G703 sheets.
// Route: GET /api/projects/{projectId}/pay-apps/{payAppId}/export.xlsx
func HandlePayAppExportExcel(app *pocketbase.PocketBase, cfg config.Config) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := loadExportData(app, e, cfg)
		if err != nil {
			return respondError(e, err)
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			slog.Error("export_excel: failed to generate", "application", data.ApplicationNumber, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}
		return sendFile(e, contentTypeXLSX, services.ExportFilename(data, "xlsx"), xlsxBytes)
	}
}
