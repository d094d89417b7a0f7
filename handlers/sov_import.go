package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/services"
)

// HandleScheduleTemplate downloads the blank schedule of values workbook.
// Route: GET /api/sov/template
func HandleScheduleTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GenerateScheduleTemplate()
		if err != nil {
			slog.Error("sov_template: failed to generate", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return sendFile(e, contentTypeXLSX, "Schedule_of_Values_Template.xlsx", xlsxBytes)
	}
}

// HandleScheduleImport validates an uploaded .csv or .xlsx schedule of
// values against the project's contract sum. When the form field commit is
// "true" and every row is valid, the project's schedule is replaced.
// Route: POST /api/projects/{projectId}/sov/import
func HandleScheduleImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		ledger, err := services.LoadProjectLedger(app, projectID)
		if err != nil {
			return respondError(e, err)
		}

		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ParseScheduleFile(file, header.Filename, ledger.Project.OriginalContractSum)
		if err != nil {
			slog.Warn("sov_import: unreadable upload", "project", projectID, "file", header.Filename, "error", err)
			return ErrorToast(e, http.StatusBadRequest, err.Error())
		}

		committed := false
		if e.Request.FormValue("commit") == "true" && result.Valid() {
			if err := services.ReplaceScheduleOfValues(app, projectID, result.Items); err != nil {
				return respondError(e, err)
			}
			committed = true
			if isHTMX(e) {
				SetToast(e, "success", fmt.Sprintf("%d schedule lines imported", len(result.Items)))
			}
		}

		return e.JSON(http.StatusOK, map[string]any{
			"import":    result,
			"valid":     result.Valid(),
			"committed": committed,
		})
	}
}

// HandleScheduleErrorReport turns posted import errors into a workbook.
// Route: POST /api/sov/import/errors
func HandleScheduleErrorReport() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var issues []services.ImportError
		if err := e.BindBody(&issues); err != nil {
			return respondError(e, fmt.Errorf("import errors: %w", errBadBody))
		}

		xlsxBytes, err := services.GenerateErrorReport(issues)
		if err != nil {
			slog.Error("sov_error_report: failed to generate", "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		filename := fmt.Sprintf("SOV_Errors_%s.xlsx", now().Format("2006-01-02"))
		return sendFile(e, contentTypeXLSX, filename, xlsxBytes)
	}
}
