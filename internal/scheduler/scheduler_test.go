package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopReminder struct{}

func (noopReminder) SendReminders(ctx context.Context) (int, error) { return 0, nil }

func TestStart_RegistersWeekdayJob(t *testing.T) {
	s, err := Start(noopReminder{}, time.UTC, 16, 0)
	require.NoError(t, err)
	defer func() { _ = s.Shutdown() }()

	assert.Len(t, s.Jobs(), 1)
}
