package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/th3mailmann/bildpro/services"
)

// now is the clock handlers pass to the services. Tests replace it.
var now = time.Now

// HandleProjectCreate creates a project and its schedule of values.
// Route: POST /api/projects
func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.ProjectInput
		if err := e.BindBody(&in); err != nil {
			return respondError(e, fmt.Errorf("project: %w", errBadBody))
		}

		project, err := services.CreateProject(app, in)
		if err != nil {
			return respondError(e, err)
		}

		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Project %q created", project.Name))
			e.Response.Header().Set("HX-Redirect", "/projects/"+project.ID)
		}
		return e.JSON(http.StatusCreated, project)
	}
}

// HandleProjectOverview returns a project's contract, billing and change
// order position.
// Route: GET /api/projects/{projectId}
func HandleProjectOverview(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		overview, err := services.LoadProjectOverview(app, e.Request.PathValue("projectId"), now())
		if err != nil {
			return respondError(e, err)
		}
		return e.JSON(http.StatusOK, overview)
	}
}

// HandleDashboard returns billing totals across all projects.
// Route: GET /api/dashboard
func HandleDashboard(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		stats, err := services.Dashboard(app, now())
		if err != nil {
			return respondError(e, err)
		}
		return e.JSON(http.StatusOK, stats)
	}
}

// HandleVerifyHistory re-derives line 7 for each application of a project
// and reports where stored figures disagree.
// Route: GET /api/projects/{projectId}/verify
func HandleVerifyHistory(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		breaks, err := services.VerifyProjectHistory(app, e.Request.PathValue("projectId"))
		if err != nil {
			return respondError(e, err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"consistent": len(breaks) == 0,
			"breaks":     breaks,
		})
	}
}
