package handlers

import (
	"net/http"
	"testing"

	"github.com/th3mailmann/bildpro/billing"
	"github.com/th3mailmann/bildpro/services"
)

func (p billingProject) coPaths(coID string) map[string]string {
	return map[string]string{"projectId": p.projectID, "coId": coID}
}

func (p billingProject) createChangeOrder(t *testing.T, body string) billing.ChangeOrder {
	t.Helper()
	req := jsonRequest(http.MethodPost, "/change-orders", body, map[string]string{"projectId": p.projectID})
	rec := serve(t, p.app, HandleChangeOrderCreate(p.app), req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create change order: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var co billing.ChangeOrder
	decodeJSON(t, rec, &co)
	return co
}

func TestHandleChangeOrder_ApproveAddsToSchedule(t *testing.T) {
	p := newBillingProject(t)
	co := p.createChangeOrder(t, `{"description":"Added retaining wall","amount":7500}`)

	if co.Number != 1 || co.Status != billing.ChangeOrderPending {
		t.Fatalf("created = #%d %s", co.Number, co.Status)
	}

	rec := serve(t, p.app, HandleChangeOrderApprove(p.app),
		jsonRequest(http.MethodPost, "/approve", `{"add_to_sov":true}`, p.coPaths(co.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var approved billing.ChangeOrder
	decodeJSON(t, rec, &approved)
	if approved.Status != billing.ChangeOrderApproved || !approved.DateApproved.Equal(march20) {
		t.Errorf("approved = %+v", approved)
	}

	ledger, err := services.LoadProjectLedger(p.app, p.projectID)
	if err != nil {
		t.Fatalf("LoadProjectLedger: %v", err)
	}
	if ledger.ContractSumToDate() != 107500 {
		t.Errorf("contract sum to date = %v, want 107500", ledger.ContractSumToDate())
	}
	if len(ledger.ScheduleOfValues) != 3 {
		t.Errorf("SOV items = %d, want 3", len(ledger.ScheduleOfValues))
	}

	rec = serve(t, p.app, HandleChangeOrderReject(p.app), jsonRequest(http.MethodPost, "/reject", "", p.coPaths(co.ID)))
	if rec.Code != http.StatusConflict {
		t.Errorf("reject after approve: status = %d, want 409", rec.Code)
	}
}

func TestHandleChangeOrderApprove_WithoutBody(t *testing.T) {
	p := newBillingProject(t)
	co := p.createChangeOrder(t, `{"description":"Owner credit","amount":-1200}`)

	rec := serve(t, p.app, HandleChangeOrderApprove(p.app), jsonRequest(http.MethodPost, "/approve", "", p.coPaths(co.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	ledger, err := services.LoadProjectLedger(p.app, p.projectID)
	if err != nil {
		t.Fatalf("LoadProjectLedger: %v", err)
	}
	if len(ledger.ScheduleOfValues) != 2 {
		t.Errorf("SOV items = %d, want 2 when add_to_sov is not set", len(ledger.ScheduleOfValues))
	}
}

func TestHandleChangeOrderReject(t *testing.T) {
	p := newBillingProject(t)
	co := p.createChangeOrder(t, `{"co_number":4,"description":"Upgrade fixtures","amount":3000}`)

	rec := serve(t, p.app, HandleChangeOrderReject(p.app), jsonRequest(http.MethodPost, "/reject", "", p.coPaths(co.ID)))
	if rec.Code != http.StatusOK {
		t.Fatalf("reject: status = %d", rec.Code)
	}
	var rejected billing.ChangeOrder
	decodeJSON(t, rec, &rejected)
	if rejected.Number != 4 || rejected.Status != billing.ChangeOrderRejected {
		t.Errorf("rejected = %+v", rejected)
	}
}

func TestHandleChangeOrderCreate_Errors(t *testing.T) {
	p := newBillingProject(t)

	tests := []struct {
		name      string
		projectID string
		body      string
		want      int
	}{
		{"missing description", p.projectID, `{"amount":100}`, http.StatusBadRequest},
		{"zero amount", p.projectID, `{"description":"Nothing","amount":0}`, http.StatusBadRequest},
		{"malformed", p.projectID, `{"description":`, http.StatusBadRequest},
		{"unknown project", "missing", `{"description":"Extra","amount":100}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/change-orders", tt.body, map[string]string{"projectId": tt.projectID})
			rec := serve(t, p.app, HandleChangeOrderCreate(p.app), req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
