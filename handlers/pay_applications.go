package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/services"
	"github.com/th3mailmann/bildpro/views"
)

// amountPattern accepts what users type into a currency cell: optional
// sign and dollar sign, thousands separators, cents.
var amountPattern = regexp.MustCompile(`^\s*-?\$?[0-9,]*(\.[0-9]+)?\s*$`)

// lineItemUpdate is the body of a line item edit.
type lineItemUpdate struct {
	Field string `json:"field" form:"field"`
	Value string `json:"value" form:"value"`
}

func (u lineItemUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Field, validation.Required,
			validation.In(services.FieldWorkCompletedThisPeriod, services.FieldMaterialsStored)),
		validation.Field(&u.Value, validation.Required,
			validation.Match(amountPattern).Error("must be a dollar amount")),
	)
}

// renderView answers with the G702 summary fragment for HTMX requests and
// the full view as JSON otherwise.
func renderView(e *core.RequestEvent, status int, view services.PayAppView) error {
	if isHTMX(e) {
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		e.Response.WriteHeader(status)
		return views.G702Summary(view).Render(e.Request.Context(), e.Response)
	}
	return e.JSON(status, view)
}

// HandlePayAppPreview computes the next application without saving it.
// Route: GET /api/projects/{projectId}/pay-apps/new
func HandlePayAppPreview(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.PreviewDraft(app, e.Request.PathValue("projectId"), now())
		if err != nil {
			return respondError(e, err)
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandlePayAppCreate saves the next application as a draft.
// Route: POST /api/projects/{projectId}/pay-apps
func HandlePayAppCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.CreateDraft(app, e.Request.PathValue("projectId"), now())
		if err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Draft application #%d created", view.Application.ApplicationNumber))
		}
		return renderView(e, http.StatusCreated, view)
	}
}

// HandlePayAppView returns a draft recomputed from current inputs or the
// frozen figures of a submitted or paid application.
// Route: GET /api/projects/{projectId}/pay-apps/{payAppId}
func HandlePayAppView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.LoadPayApplication(app, e.Request.PathValue("projectId"), e.Request.PathValue("payAppId"))
		if err != nil {
			return respondError(e, err)
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandleLineItemUpdate sets this-period work or stored materials on one
// draft line item.
// Route: PATCH /api/projects/{projectId}/pay-apps/{payAppId}/line-items/{sovItemId}
func HandleLineItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body lineItemUpdate
		if err := e.BindBody(&body); err != nil {
			return respondError(e, fmt.Errorf("line item: %w", errBadBody))
		}
		if err := body.Validate(); err != nil {
			return respondError(e, err)
		}

		view, err := services.UpdateDraftLineItem(app,
			e.Request.PathValue("projectId"),
			e.Request.PathValue("payAppId"),
			e.Request.PathValue("sovItemId"),
			body.Field,
			billing.ParseCurrencyInput(body.Value),
		)
		if err != nil {
			return respondError(e, err)
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandleLineItemComplete bills the remaining balance of one line item.
// Route: POST /api/projects/{projectId}/pay-apps/{payAppId}/line-items/{sovItemId}/complete
func HandleLineItemComplete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.MarkLineItemComplete(app,
			e.Request.PathValue("projectId"),
			e.Request.PathValue("payAppId"),
			e.Request.PathValue("sovItemId"),
		)
		if err != nil {
			return respondError(e, err)
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandleBillRemaining bills the remaining balance of every line item.
// Route: POST /api/projects/{projectId}/pay-apps/{payAppId}/bill-remaining
func HandleBillRemaining(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.BillRemaining(app, e.Request.PathValue("projectId"), e.Request.PathValue("payAppId"))
		if err != nil {
			return respondError(e, err)
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandlePayAppSubmit validates and freezes a draft. A failed validation
// answers 422 with every finding so the client can show them all at once.
// Route: POST /api/projects/{projectId}/pay-apps/{payAppId}/submit
func HandlePayAppSubmit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.SubmitPayApplication(app, e.Request.PathValue("projectId"), e.Request.PathValue("payAppId"), now())
		if errors.Is(err, services.ErrValidationFailed) {
			if isHTMX(e) {
				return ErrorToast(e, http.StatusUnprocessableEntity, submitFailureMessage(view.Validation))
			}
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":       err.Error(),
				"validation":  view.Validation,
				"application": view,
			})
		}
		if err != nil {
			return respondError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Application #%d submitted for %s",
				view.Application.ApplicationNumber, billing.FormatUSD(view.Application.Summary.CurrentPaymentDue)))
		}
		return renderView(e, http.StatusOK, view)
	}
}

func submitFailureMessage(r billing.ValidationResult) string {
	if len(r.Errors) == 0 {
		return "Application failed validation"
	}
	msg := "Cannot submit: " + r.Errors[0].Message
	if n := len(r.Errors) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// HandlePayAppPaid records payment of a submitted application.
// Route: POST /api/projects/{projectId}/pay-apps/{payAppId}/paid
func HandlePayAppPaid(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		view, err := services.MarkPayApplicationPaid(app, e.Request.PathValue("projectId"), e.Request.PathValue("payAppId"), now())
		if err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Application #%d marked paid", view.Application.ApplicationNumber))
		}
		return renderView(e, http.StatusOK, view)
	}
}

// HandlePayAppDelete removes a draft application.
// Route: DELETE /api/projects/{projectId}/pay-apps/{payAppId}
func HandlePayAppDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if err := services.DeleteDraft(app, projectID, e.Request.PathValue("payAppId")); err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "success", "Draft deleted")
			e.Response.Header().Set("HX-Redirect", "/projects/"+projectID)
			return e.NoContent(http.StatusOK)
		}
		return e.NoContent(http.StatusNoContent)
	}
}
