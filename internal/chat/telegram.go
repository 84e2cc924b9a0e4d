package chat

import (
	"context"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram implements Messenger over the Telegram Bot API.
type Telegram struct {
	api *tgbotapi.BotAPI
}

// NewTelegram wraps an authorized bot API client.
func NewTelegram(api *tgbotapi.BotAPI) *Telegram {
	return &Telegram{api: api}
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) SendChoices(ctx context.Context, chatID int64, text string, choices [][]Choice) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = toInlineKeyboard(choices)
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (t *Telegram) EditChoices(ctx context.Context, chatID int64, messageID int, text string, choices [][]Choice) error {
	markup := toInlineKeyboard(choices)
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err := t.api.Send(edit)
	return err
}

func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	if err != nil && isMessageGone(err) {
		return nil
	}
	return err
}

func (t *Telegram) ScheduleDelayed(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

func toInlineKeyboard(choices [][]Choice) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(choices))
	for _, row := range choices {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, c := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// isMessageGone reports whether err means the target message no longer
// exists, which delete treats as success.
func isMessageGone(err error) bool {
	s := err.Error()
	return strings.Contains(s, "message to delete not found") ||
		strings.Contains(s, "message can't be deleted") ||
		strings.Contains(s, "MESSAGE_ID_INVALID")
}

// AnswerCallback acknowledges a callback query so the client stops showing
// the loading spinner. Errors are logged, not propagated: a stale callback
// must not disturb the conversation.
func (t *Telegram) AnswerCallback(callbackID, text string) {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}
