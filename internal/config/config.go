// Package config reads and validates startup configuration from the
// environment. A broken configuration stops the process before any update
// is consumed.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimezone   = "Europe/Moscow"
	defaultReminderAt = "16:00"
)

type Config struct {
	TelegramToken string
	DatabaseURL   string

	// AdminIDs is the allowlist of Telegram user IDs with admin access.
	AdminIDs []int64

	// Location decides report-day boundaries and reminder wall time.
	Location *time.Location

	// ReminderHour/ReminderMinute is the weekday reminder wall time.
	ReminderHour   int
	ReminderMinute int
}

// Load reads the environment and validates every setting.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	adminIDs, err := parseAdminIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, err
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	reminderAt := os.Getenv("REMINDER_AT")
	if reminderAt == "" {
		reminderAt = defaultReminderAt
	}
	hour, minute, err := parseWallTime(reminderAt)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_AT %q: %w", reminderAt, err)
	}

	return &Config{
		TelegramToken:  token,
		DatabaseURL:    databaseURL,
		AdminIDs:       adminIDs,
		Location:       loc,
		ReminderHour:   hour,
		ReminderMinute: minute,
	}, nil
}

// IsAdmin checks the user against the allowlist.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseWallTime(raw string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
