package bot

import (
	"context"
	"time"

	"github.com/user/report-bot/internal/db"
)

type Store interface {
	// Methods needed for the my-reports view and admin stats
	GetLatestReport(ctx context.Context, userID int64) (time.Time, map[string]any, error)
	CountReportsFor(ctx context.Context, userID int64) (int, error)
	UserIDsSubmittedToday(ctx context.Context) ([]int64, error)

	// Methods needed for the CSV export
	ExportAll(ctx context.Context) ([]string, [][]string, error)

	// Methods needed for registration and user management
	UserExists(ctx context.Context, userID int64) (bool, error)
	GetUser(ctx context.Context, userID int64) (*db.User, error)
	GetUserByEmployeeID(ctx context.Context, employeeID string) (*db.User, error)
	ListUsers(ctx context.Context) ([]db.User, error)
	DeleteUser(ctx context.Context, userID int64) error

	// Methods needed for the approval flow
	AddPending(ctx context.Context, u db.PendingUser) error
	IsPending(ctx context.Context, userID int64) (bool, error)
	RemovePending(ctx context.Context, userID int64) error
	PromoteUser(ctx context.Context, userID int64) (*db.User, error)
}
