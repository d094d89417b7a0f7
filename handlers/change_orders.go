package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/services"
)

type approveRequest struct {
	AddToSOV bool `json:"add_to_sov" form:"add_to_sov"`
}

// HandleChangeOrderCreate adds a pending change order.
// Route: POST /api/projects/{projectId}/change-orders
func HandleChangeOrderCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.ChangeOrderInput
		if err := e.BindBody(&in); err != nil {
			return respondError(e, fmt.Errorf("change order: %w", errBadBody))
		}

		co, err := services.CreateChangeOrder(app, e.Request.PathValue("projectId"), in)
		if err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Change order #%d added", co.Number))
		}
		return e.JSON(http.StatusCreated, co)
	}
}

// HandleChangeOrderApprove approves a pending change order, optionally
// adding it to the schedule of values. The approval date is today.
// Route: POST /api/projects/{projectId}/change-orders/{coId}/approve
func HandleChangeOrderApprove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req approveRequest
		if e.Request.ContentLength != 0 {
			if err := e.BindBody(&req); err != nil {
				return respondError(e, fmt.Errorf("approve change order: %w", errBadBody))
			}
		}

		co, err := services.ApproveChangeOrder(app,
			e.Request.PathValue("projectId"),
			e.Request.PathValue("coId"),
			now(),
			req.AddToSOV,
		)
		if err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Change order #%d approved", co.Number))
		}
		return e.JSON(http.StatusOK, co)
	}
}

// HandleChangeOrderReject rejects a pending change order.
// Route: POST /api/projects/{projectId}/change-orders/{coId}/reject
func HandleChangeOrderReject(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		co, err := services.RejectChangeOrder(app, e.Request.PathValue("projectId"), e.Request.PathValue("coId"))
		if err != nil {
			return respondError(e, err)
		}
		if isHTMX(e) {
			SetToast(e, "info", fmt.Sprintf("Change order #%d rejected", co.Number))
		}
		return e.JSON(http.StatusOK, co)
	}
}
