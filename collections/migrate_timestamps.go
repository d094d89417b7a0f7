package collections

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase/core"
)

// MigrateSubmittedTimestamps backfills submitted_at on submitted or paid
// pay applications that lack one, using the record's last update time.
// Safe to call on every startup.
func MigrateSubmittedTimestamps(app core.App) error {
	payAppsCol, err := app.FindCollectionByNameOrId("pay_applications")
	if err != nil {
		return fmt.Errorf("migrate: could not find pay_applications collection: %w", err)
	}

	missing, err := app.FindRecordsByFilter(
		payAppsCol,
		"status != 'draft' && submitted_at = ''",
		"",
		0,
		0,
		nil,
	)
	if err != nil {
		return fmt.Errorf("migrate: could not query pay applications: %w", err)
	}

	if len(missing) == 0 {
		return nil
	}

	slog.Info("migrate: backfilling submitted_at", "count", len(missing))

	for _, r := range missing {
		r.Set("submitted_at", r.GetDateTime("updated"))
		if err := app.Save(r); err != nil {
			slog.Warn("migrate: failed to backfill submitted_at", "pay_application", r.Id, "error", err)
			continue
		}
	}

	return nil
}
