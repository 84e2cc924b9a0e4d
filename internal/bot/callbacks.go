package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Admin callback payloads: "approve|<id>" and "reject|<id>" on registration
// requests, "deluser_yes|<id>" and "deluser_no" on the delete confirmation.
// The prefixes are distinct from the report-menu wire format, so the two
// routing layers never collide.
const (
	cbApprove   = "approve"
	cbReject    = "reject"
	cbDeleteYes = "deluser_yes"
	cbDeleteNo  = "deluser_no"
)

func encodeUserCallback(prefix string, userID int64) string {
	return prefix + "|" + strconv.FormatInt(userID, 10)
}

// parseUserCallback splits an admin payload into its prefix and user ID.
func parseUserCallback(data string) (prefix string, userID int64, err error) {
	prefix, rest, ok := strings.Cut(data, "|")
	if !ok {
		return data, 0, nil
	}
	userID, err = strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed user callback %q: %w", data, err)
	}
	return prefix, userID, nil
}

func approvalKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Одобрить", encodeUserCallback(cbApprove, userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отклонить", encodeUserCallback(cbReject, userID)),
		),
	)
}

func deleteConfirmKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Да, удалить", encodeUserCallback(cbDeleteYes, userID)),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", cbDeleteNo),
		),
	)
}
