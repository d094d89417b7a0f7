package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

var march20 = time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

// freezeClock pins the handler clock for the duration of a test.
func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// jsonRequest builds a request with a JSON body and the given path values.
func jsonRequest(method, target, body string, pathValues map[string]string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	return req
}

// serve runs handler against req and returns the recorded response.
func serve(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
}

// billingProject is a 100,000 contract with sitework and framing lines,
// billing on the 25th with 10% retainage.
type billingProject struct {
	app       *pocketbase.PocketBase
	projectID string
	sitework  string
	framing   string
}

func newBillingProject(t *testing.T) billingProject {
	t.Helper()
	freezeClock(t, march20)

	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Lakeview Townhomes", 100000)
	s1 := testhelpers.CreateTestSOVItem(t, app, proj.Id, "1", "Sitework", 40000, 1)
	s2 := testhelpers.CreateTestSOVItem(t, app, proj.Id, "2", "Framing", 60000, 2)
	return billingProject{app: app, projectID: proj.Id, sitework: s1.Id, framing: s2.Id}
}
