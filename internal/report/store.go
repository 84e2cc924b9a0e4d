package report

import "context"

// ReportStore is the persistence boundary the engine writes through. The
// db package implements it; tests substitute a mock.
type ReportStore interface {
	// HasReportToday reports whether the user already submitted today.
	HasReportToday(ctx context.Context, userID int64) (bool, error)

	// GetReportToday returns today's stored field values for the edit
	// flow. Returns db.ErrNoReportToday when the row vanished.
	GetReportToday(ctx context.Context, userID int64) (map[string]any, error)

	// UpsertToday inserts today's report or updates it in place, keeping
	// at most one row per (user, day).
	UpsertToday(ctx context.Context, userID int64, values map[string]any) error
}
