package bot

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/user/report-bot/internal/db"
)

// MockStore is a testify mock for the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetLatestReport(ctx context.Context, userID int64) (time.Time, map[string]any, error) {
	args := m.Called(ctx, userID)
	var values map[string]any
	if args.Get(1) != nil {
		values = args.Get(1).(map[string]any)
	}
	return args.Get(0).(time.Time), values, args.Error(2)
}

func (m *MockStore) CountReportsFor(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UserIDsSubmittedToday(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	var ids []int64
	if args.Get(0) != nil {
		ids = args.Get(0).([]int64)
	}
	return ids, args.Error(1)
}

func (m *MockStore) ExportAll(ctx context.Context) ([]string, [][]string, error) {
	args := m.Called(ctx)
	var headers []string
	var rows [][]string
	if args.Get(0) != nil {
		headers = args.Get(0).([]string)
	}
	if args.Get(1) != nil {
		rows = args.Get(1).([][]string)
	}
	return headers, rows, args.Error(2)
}

func (m *MockStore) UserExists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, userID int64) (*db.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}

func (m *MockStore) GetUserByEmployeeID(ctx context.Context, employeeID string) (*db.User, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}

func (m *MockStore) ListUsers(ctx context.Context) ([]db.User, error) {
	args := m.Called(ctx)
	var users []db.User
	if args.Get(0) != nil {
		users = args.Get(0).([]db.User)
	}
	return users, args.Error(1)
}

func (m *MockStore) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) AddPending(ctx context.Context, u db.PendingUser) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockStore) IsPending(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RemovePending(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStore) PromoteUser(ctx context.Context, userID int64) (*db.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}
