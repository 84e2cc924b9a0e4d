package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:token")
	t.Setenv("DATABASE_URL", "postgres://localhost/reports")
	t.Setenv("ADMIN_IDS", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("REMINDER_AT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123456:token", cfg.TelegramToken)
	assert.Equal(t, "postgres://localhost/reports", cfg.DatabaseURL)
	assert.Empty(t, cfg.AdminIDs)
	assert.Equal(t, "Europe/Moscow", cfg.Location.String())
	assert.Equal(t, 16, cfg.ReminderHour)
	assert.Equal(t, 0, cfg.ReminderMinute)
}

func TestLoad_MissingToken(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_AdminIDs(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_IDS", "100, 200 ,300")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200, 300}, cfg.AdminIDs)

	assert.True(t, cfg.IsAdmin(200))
	assert.False(t, cfg.IsAdmin(400))
}

func TestLoad_BadAdminID(t *testing.T) {
	setRequired(t)
	t.Setenv("ADMIN_IDS", "100,abc")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_IDS")
}

func TestLoad_Timezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Asia/Yekaterinburg")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Yekaterinburg", cfg.Location.String())
}

func TestLoad_BadTimezone(t *testing.T) {
	setRequired(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestLoad_ReminderAt(t *testing.T) {
	setRequired(t)
	t.Setenv("REMINDER_AT", "09:30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.ReminderHour)
	assert.Equal(t, 30, cfg.ReminderMinute)
}

func TestLoad_BadReminderAt(t *testing.T) {
	setRequired(t)
	t.Setenv("REMINDER_AT", "25:99")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_AT")
}
