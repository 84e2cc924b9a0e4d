package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/report-bot/internal/db"
	"github.com/user/report-bot/internal/export"
)

// handleApprove promotes a pending registration. ErrNotPending means
// another admin pressed one of the buttons first.
func (b *Bot) handleApprove(ctx context.Context, callback *tgbotapi.CallbackQuery, targetID int64) {
	u, err := b.store.PromoteUser(ctx, targetID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotPending):
			b.editCallbackMessage(callback, "Заявка уже обработана.")
		case errors.Is(err, db.ErrEmployeeIDTaken):
			b.editCallbackMessage(callback, "❌ Табельный номер уже занят, заявка отклонена.")
			if err := b.store.RemovePending(ctx, targetID); err != nil && !errors.Is(err, db.ErrNotPending) {
				log.Printf("Error removing conflicting request for user %d: %v", targetID, err)
			}
			b.sendMessage(targetID, "Ваша заявка отклонена: табельный номер уже зарегистрирован. Отправьте /start и проверьте данные.")
		default:
			log.Printf("Error approving user %d: %v", targetID, err)
			b.editCallbackMessage(callback, textGenericError)
		}
		return
	}

	b.editCallbackMessage(callback, fmt.Sprintf("✅ %s зарегистрирован.", u.FullName()))
	b.sendWithKeyboard(targetID, "✅ Ваша регистрация подтверждена! Теперь вы можете отправлять отчеты.", employeeKeyboard())
}

// handleReject drops a pending registration.
func (b *Bot) handleReject(ctx context.Context, callback *tgbotapi.CallbackQuery, targetID int64) {
	if err := b.store.RemovePending(ctx, targetID); err != nil {
		if errors.Is(err, db.ErrNotPending) {
			b.editCallbackMessage(callback, "Заявка уже обработана.")
			return
		}
		log.Printf("Error rejecting user %d: %v", targetID, err)
		b.editCallbackMessage(callback, textGenericError)
		return
	}

	b.editCallbackMessage(callback, "❌ Заявка отклонена.")
	b.sendMessage(targetID, "К сожалению, ваша заявка на регистрацию отклонена.")
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		b.sendMessage(chatID, textGenericError)
		return
	}

	submitted, err := b.store.UserIDsSubmittedToday(ctx)
	if err != nil {
		log.Printf("Error listing today's submissions: %v", err)
		b.sendMessage(chatID, textGenericError)
		return
	}

	b.sendMessage(chatID, formatStats(users, submitted, b.cfg.IsAdmin))
}

func (b *Bot) handleListUsers(ctx context.Context, chatID int64) {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	b.sendMessage(chatID, formatUserList(users))
}

func (b *Bot) handleManualReminder(ctx context.Context, chatID int64) {
	sent, err := b.SendReminders(ctx)
	if err != nil {
		log.Printf("Error broadcasting reminder: %v", err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🔔 Напоминание отправлено %d сотрудникам.", sent))
}

// SendReminders nudges every registered employee who has not submitted
// today. Admins are skipped, and one failed delivery never stops the rest.
// The scheduler calls this on weekday afternoons.
func (b *Bot) SendReminders(ctx context.Context) (int, error) {
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	submitted, err := b.store.UserIDsSubmittedToday(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list today's submissions: %w", err)
	}
	submittedSet := make(map[int64]bool, len(submitted))
	for _, id := range submitted {
		submittedSet[id] = true
	}

	sent := 0
	for _, u := range users {
		if b.cfg.IsAdmin(u.ID) || submittedSet[u.ID] {
			continue
		}
		msg := tgbotapi.NewMessage(u.ID, textReminder)
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Error sending reminder to user %d: %v", u.ID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) {
	headers, rows, err := b.store.ExportAll(ctx)
	if err != nil {
		log.Printf("Error exporting reports: %v", err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if len(rows) == 0 {
		b.sendMessage(chatID, textNoExportData)
		return
	}

	file := tgbotapi.FileBytes{
		Name:  export.Filename(time.Now().In(b.cfg.Location)),
		Bytes: export.CSV(headers, rows),
	}
	doc := tgbotapi.NewDocument(chatID, file)
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending export document: %v", err)
		b.sendMessage(chatID, textGenericError)
	}
}

func (b *Bot) startDeleteDialog(userID, chatID int64) {
	b.delMutex.Lock()
	b.deleting[userID] = true
	b.delMutex.Unlock()
	b.sendMessage(chatID, "Введите табельный номер сотрудника, которого нужно удалить (или /cancel):")
}

func (b *Bot) isDeleting(userID int64) bool {
	b.delMutex.RLock()
	defer b.delMutex.RUnlock()
	return b.deleting[userID]
}

// stopDeleting closes the dialog, reporting whether one was open.
func (b *Bot) stopDeleting(userID int64) bool {
	b.delMutex.Lock()
	defer b.delMutex.Unlock()
	open := b.deleting[userID]
	delete(b.deleting, userID)
	return open
}

// handleDeleteInput resolves the entered employee number and asks for
// confirmation before anything is removed.
func (b *Bot) handleDeleteInput(ctx context.Context, userID, chatID int64, text string) {
	u, err := b.store.GetUserByEmployeeID(ctx, text)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			b.sendMessage(chatID, "Сотрудник с таким табельным номером не найден. Попробуйте ещё раз или /cancel.")
			return
		}
		log.Printf("Error looking up employee %q: %v", text, err)
		b.sendMessage(chatID, textGenericError)
		return
	}

	b.stopDeleting(userID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Удалить сотрудника %s (таб. № %s)? Все его отчеты будут удалены.",
		u.FullName(), u.EmployeeID))
	msg.ReplyMarkup = deleteConfirmKeyboard(u.ID)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending delete confirmation: %v", err)
	}
}

func (b *Bot) handleDeleteConfirmed(ctx context.Context, callback *tgbotapi.CallbackQuery, targetID int64) {
	u, err := b.store.GetUser(ctx, targetID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			b.editCallbackMessage(callback, "Сотрудник уже удалён.")
			return
		}
		log.Printf("Error loading user %d: %v", targetID, err)
		b.editCallbackMessage(callback, textGenericError)
		return
	}

	if err := b.store.DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			b.editCallbackMessage(callback, "Сотрудник уже удалён.")
			return
		}
		log.Printf("Error deleting user %d: %v", targetID, err)
		b.editCallbackMessage(callback, textGenericError)
		return
	}

	b.editCallbackMessage(callback, fmt.Sprintf("🗑 Сотрудник %s удалён вместе с отчетами.", u.FullName()))
}
