package report

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/user/report-bot/internal/chat"
)

// MockReportStore is a testify mock for the ReportStore interface.
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) HasReportToday(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportStore) GetReportToday(ctx context.Context, userID int64) (map[string]any, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockReportStore) UpsertToday(ctx context.Context, userID int64, values map[string]any) error {
	args := m.Called(ctx, userID, values)
	return args.Error(0)
}

// ConfigureStore provides a fluent interface for common store expectations.
func ConfigureStore(m *MockReportStore) *MockStoreHelper {
	return &MockStoreHelper{mock: m}
}

type MockStoreHelper struct {
	mock *MockReportStore
}

// WithReportToday sets up the HasReportToday answer.
func (h *MockStoreHelper) WithReportToday(userID int64, has bool, err error) *MockStoreHelper {
	h.mock.On("HasReportToday", mock.Anything, userID).Return(has, err)
	return h
}

// WithStoredValues sets up the GetReportToday answer.
func (h *MockStoreHelper) WithStoredValues(userID int64, values map[string]any, err error) *MockStoreHelper {
	h.mock.On("GetReportToday", mock.Anything, userID).Return(values, err)
	return h
}

// WithUpsert sets up the UpsertToday answer for any value map.
func (h *MockStoreHelper) WithUpsert(userID int64, err error) *MockStoreHelper {
	h.mock.On("UpsertToday", mock.Anything, userID, mock.Anything).Return(err)
	return h
}

// MockMessenger is a testify mock for chat.Messenger. Scheduled actions run
// immediately so tests observe the full cleanup behavior synchronously.
type MockMessenger struct {
	mock.Mock

	// RunScheduled controls whether ScheduleDelayed fires fn inline.
	RunScheduled bool
}

func NewMockMessenger() *MockMessenger {
	return &MockMessenger{RunScheduled: true}
}

func (m *MockMessenger) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	args := m.Called(ctx, chatID, text)
	return args.Int(0), args.Error(1)
}

func (m *MockMessenger) SendChoices(ctx context.Context, chatID int64, text string, choices [][]chat.Choice) (int, error) {
	args := m.Called(ctx, chatID, text, choices)
	return args.Int(0), args.Error(1)
}

func (m *MockMessenger) EditChoices(ctx context.Context, chatID int64, messageID int, text string, choices [][]chat.Choice) error {
	args := m.Called(ctx, chatID, messageID, text, choices)
	return args.Error(0)
}

func (m *MockMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockMessenger) ScheduleDelayed(d time.Duration, fn func()) {
	m.Called(d)
	if m.RunScheduled {
		fn()
	}
}
