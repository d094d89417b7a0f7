package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"github.com/th3mailmann/bildpro/collections"
	"github.com/th3mailmann/bildpro/config"
	"github.com/th3mailmann/bildpro/handlers"
	"github.com/th3mailmann/bildpro/logging"
	"github.com/th3mailmann/bildpro/metrics"
	"github.com/th3mailmann/bildpro/services"
)

func main() {
	cfg := config.Load()
	logging.SetupWithLevel(cfg.LogLevel)

	app := pocketbase.New()
	app.RootCmd.AddCommand(verifyChainCmd(app))

	// Create collections, backfill and optionally seed on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app); err != nil {
			return fmt.Errorf("setup collections: %w", err)
		}
		if err := collections.MigrateSubmittedTimestamps(app); err != nil {
			slog.Warn("submitted_at backfill failed", "error", err)
		}
		if cfg.SeedDemo {
			if err := collections.Seed(app); err != nil {
				slog.Warn("seed data failed", "error", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Projects ─────────────────────────────────────────────
		se.Router.GET("/api/dashboard", handlers.HandleDashboard(app))
		se.Router.POST("/api/projects", handlers.HandleProjectCreate(app))
		se.Router.GET("/api/projects/{projectId}", handlers.HandleProjectOverview(app))
		se.Router.GET("/api/projects/{projectId}/verify", handlers.HandleVerifyHistory(app))

		// ── Schedule of values import ────────────────────────────
		se.Router.GET("/api/sov/template", handlers.HandleScheduleTemplate())
		se.Router.POST("/api/sov/import/errors", handlers.HandleScheduleErrorReport())
		se.Router.POST("/api/projects/{projectId}/sov/import", handlers.HandleScheduleImport(app))

		// ── Change orders ────────────────────────────────────────
		se.Router.POST("/api/projects/{projectId}/change-orders", handlers.HandleChangeOrderCreate(app))
		se.Router.POST("/api/projects/{projectId}/change-orders/{coId}/approve", handlers.HandleChangeOrderApprove(app))
		se.Router.POST("/api/projects/{projectId}/change-orders/{coId}/reject", handlers.HandleChangeOrderReject(app))

		// ── Pay applications ─────────────────────────────────────
		payApps := "/api/projects/{projectId}/pay-apps"
		se.Router.GET(payApps+"/new", handlers.HandlePayAppPreview(app))
		se.Router.POST(payApps, handlers.HandlePayAppCreate(app))
		se.Router.GET(payApps+"/{payAppId}", handlers.HandlePayAppView(app))
		se.Router.DELETE(payApps+"/{payAppId}", handlers.HandlePayAppDelete(app))
		se.Router.PATCH(payApps+"/{payAppId}/line-items/{sovItemId}", handlers.HandleLineItemUpdate(app))
		se.Router.POST(payApps+"/{payAppId}/line-items/{sovItemId}/complete", handlers.HandleLineItemComplete(app))
		se.Router.POST(payApps+"/{payAppId}/bill-remaining", handlers.HandleBillRemaining(app))
		se.Router.POST(payApps+"/{payAppId}/submit", handlers.HandlePayAppSubmit(app))
		se.Router.POST(payApps+"/{payAppId}/paid", handlers.HandlePayAppPaid(app))
		se.Router.GET(payApps+"/{payAppId}/export.pdf", handlers.HandlePayAppExportPDF(app, cfg))
		se.Router.GET(payApps+"/{payAppId}/export.xlsx", handlers.HandlePayAppExportExcel(app, cfg))

		se.Router.GET("/metrics", apis.WrapStdHandler(metrics.Handler()))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		slog.Error("bildpro exited", "error", err)
		os.Exit(1)
	}
}

// verifyChainCmd checks every project's line 7 against its history and
// exits non-zero when any application disagrees.
func verifyChainCmd(app *pocketbase.PocketBase) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-chain",
		Short: "Check previous-certificate totals of every pay application",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.IsBootstrapped() {
				if err := app.Bootstrap(); err != nil {
					return err
				}
			}
			if err := collections.Setup(app); err != nil {
				return err
			}

			broken, err := services.VerifyAllProjects(app)
			if err != nil {
				return err
			}
			if len(broken) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "all pay application histories are consistent")
				return nil
			}

			ids := make([]string, 0, len(broken))
			for id := range broken {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				for _, b := range broken[id] {
					fmt.Fprintf(cmd.OutOrStdout(), "project %s application #%d: line 7 is %.2f, expected %.2f\n",
						id, b.ApplicationNumber, b.Actual, b.Expected)
				}
			}
			return fmt.Errorf("%d project(s) with inconsistent history", len(broken))
		},
	}
}
