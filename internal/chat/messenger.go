// Package chat abstracts the messaging transport: sending and editing text
// with optional inline choices, idempotent deletion, and fire-and-forget
// delayed actions. The conversation engine depends only on this interface.
package chat

import (
	"context"
	"time"
)

// Choice is one inline button: a visible label and the callback payload
// delivered back when it is pressed.
type Choice struct {
	Label string
	Data  string
}

// Row builds a keyboard row from choices.
func Row(choices ...Choice) []Choice {
	return choices
}

// Messenger is the chat-I/O capability consumed by the bot core.
type Messenger interface {
	// SendText sends a plain message and returns its message ID.
	SendText(ctx context.Context, chatID int64, text string) (int, error)

	// SendChoices sends a message with an inline keyboard and returns its
	// message ID.
	SendChoices(ctx context.Context, chatID int64, text string, choices [][]Choice) (int, error)

	// EditChoices replaces the text and keyboard of an existing message.
	EditChoices(ctx context.Context, chatID int64, messageID int, text string, choices [][]Choice) error

	// DeleteMessage removes a message. Deleting an already-gone message is
	// not an error.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// ScheduleDelayed runs fn once after d. Fire-and-forget: the action is
	// not cancelable and must be safe to run regardless of later state.
	ScheduleDelayed(d time.Duration, fn func())
}
