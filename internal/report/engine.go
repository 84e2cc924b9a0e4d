package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/user/report-bot/internal/chat"
	"github.com/user/report-bot/internal/schema"
)

// ErrNoReportToday is returned by ReportStore.GetReportToday when the row
// the edit flow expected is gone. Declared here so the engine does not
// depend on the db package; db re-exports it.
var ErrNoReportToday = errors.New("no report stored for today")

// Cleanup delays for ephemeral messages.
const (
	// captureCleanupDelay removes the prompt, the user's raw input and the
	// saved-confirmation after a field value is captured.
	captureCleanupDelay = 3 * time.Second
	// finalCleanupDelay removes the submit/cancel confirmation.
	finalCleanupDelay = 5 * time.Second
)

const (
	textConfirmEdit    = "Вы уже отправляли отчет сегодня. Хотите его отредактировать?"
	textReportGone     = "Ваш сегодняшний отчет не найден. Создайте новый."
	textCancelled      = "Действие отменено. Отчёт не был отправлен."
	textSubmitted      = "✅ Отчёт успешно отправлен. Спасибо!"
	textUpdated        = "✅ Ваш сегодняшний отчёт успешно обновлён."
	textSaveFailed     = "❌ Произошла ошибка при сохранении отчёта. Попробуйте позже."
	textBadNumber      = "Пожалуйста, введите корректное целое число (>=0) или используйте /skip."
	textFieldSkipped   = "Поле пропущено и установлено по умолчанию."
	textTextSaved      = "Сохранено текстовое поле."
	textNoActiveField  = "Нет активного поля для пропуска."
	textFinishField    = "Сначала введите значение для выбранного поля или отправьте /skip."
	textNoOpenReport   = "Нет открытого отчёта. Нажмите «📝 Отправить отчет», чтобы начать."
	textDialogOpen     = "У вас уже есть открытый отчёт. Используйте кнопки меню отчёта или /cancel, чтобы выйти."
	textStartFailed    = "❌ Не удалось открыть отчёт. Попробуйте позже."
)

// Engine drives the report-filling conversation: one state machine instance
// per user, with per-user state kept in the session store. Events arrive
// already decoded; every transition turns into chat intents (send, edit,
// delete, delayed cleanup).
type Engine struct {
	schema   *schema.Schema
	store    ReportStore
	chat     chat.Messenger
	sessions SessionStore
}

func NewEngine(s *schema.Schema, store ReportStore, messenger chat.Messenger, sessions SessionStore) *Engine {
	return &Engine{
		schema:   s,
		store:    store,
		chat:     messenger,
		sessions: sessions,
	}
}

// InDialog reports whether the user has an open report conversation.
func (e *Engine) InDialog(userID int64) bool {
	_, ok := e.sessions.Get(userID)
	return ok
}

// AwaitingValue reports whether the user is expected to type a field value.
func (e *Engine) AwaitingValue(userID int64) bool {
	s, ok := e.sessions.Get(userID)
	return ok && s.Phase == PhaseAwaitingValue
}

// Start opens a report dialog: a fresh draft menu when nothing was
// submitted today, otherwise the edit-existing confirmation prompt. A
// repeat press while a dialog is open leaves it untouched.
func (e *Engine) Start(ctx context.Context, userID, chatID int64) error {
	if sess, ok := e.sessions.Get(userID); ok {
		e.notify(ctx, sess.ChatID, textDialogOpen)
		return nil
	}

	has, err := e.store.HasReportToday(ctx, userID)
	if err != nil {
		e.notify(ctx, chatID, textStartFailed)
		return fmt.Errorf("failed to check today's report: %w", err)
	}

	if has {
		msgID, err := e.chat.SendChoices(ctx, chatID, textConfirmEdit, confirmEditKeyboard())
		if err != nil {
			return fmt.Errorf("failed to send edit confirmation: %w", err)
		}
		e.sessions.Put(userID, &Session{
			ChatID:           chatID,
			Phase:            PhaseConfirmEdit,
			ConfirmMessageID: msgID,
		})
		return nil
	}

	draft := NewDraft(e.schema)
	return e.openMenu(ctx, userID, chatID, draft, menuTextNew)
}

func (e *Engine) openMenu(ctx context.Context, userID, chatID int64, draft *Draft, text string) error {
	msgID, err := e.chat.SendChoices(ctx, chatID, text, buildMenuKeyboard(e.schema, draft))
	if err != nil {
		return fmt.Errorf("failed to send report menu: %w", err)
	}
	draft.MenuMessageID = msgID
	e.sessions.Put(userID, &Session{ChatID: chatID, Phase: PhaseMenu, Draft: draft})
	return nil
}

// HandleEvent applies one decoded menu event to the user's session.
func (e *Engine) HandleEvent(ctx context.Context, userID, chatID int64, ev Event) error {
	sess, ok := e.sessions.Get(userID)
	if !ok {
		// Stale button press from a finished dialog.
		e.notify(ctx, chatID, textNoOpenReport)
		return nil
	}

	switch sess.Phase {
	case PhaseConfirmEdit:
		return e.handleConfirmEdit(ctx, userID, sess, ev)
	case PhaseAwaitingValue:
		// The menu keyboard is still live while a value is awaited; keep
		// the entry state untouched and remind the user to finish.
		e.notify(ctx, sess.ChatID, textFinishField)
		return nil
	case PhaseMenu:
		return e.handleMenuEvent(ctx, userID, sess, ev)
	}
	return fmt.Errorf("session for user %d is in unknown phase %d", userID, sess.Phase)
}

func (e *Engine) handleConfirmEdit(ctx context.Context, userID int64, sess *Session, ev Event) error {
	switch ev.(type) {
	case EditToday:
		values, err := e.store.GetReportToday(ctx, userID)
		if err != nil {
			e.discardConfirm(ctx, userID, sess)
			if errors.Is(err, ErrNoReportToday) {
				e.notify(ctx, sess.ChatID, textReportGone)
				return nil
			}
			e.notify(ctx, sess.ChatID, textStartFailed)
			return fmt.Errorf("failed to load today's report: %w", err)
		}
		e.deleteNow(sess.ChatID, sess.ConfirmMessageID)
		return e.openMenu(ctx, userID, sess.ChatID, DraftFrom(e.schema, values), menuTextLoaded)

	case Cancel:
		e.discardConfirm(ctx, userID, sess)
		e.sendEphemeral(ctx, sess.ChatID, textCancelled, finalCleanupDelay)
		return nil

	default:
		e.notify(ctx, sess.ChatID, textNoOpenReport)
		return nil
	}
}

func (e *Engine) discardConfirm(ctx context.Context, userID int64, sess *Session) {
	e.deleteNow(sess.ChatID, sess.ConfirmMessageID)
	e.sessions.Delete(userID)
}

func (e *Engine) handleMenuEvent(ctx context.Context, userID int64, sess *Session, ev Event) error {
	draft := sess.Draft

	switch ev := ev.(type) {
	case SelectField:
		f := e.schema.MustLookup(ev.Key)
		promptID, err := e.chat.SendText(ctx, sess.ChatID, promptText(f))
		if err != nil {
			return fmt.Errorf("failed to send value prompt: %w", err)
		}
		draft.AwaitingField = f.Key
		draft.PromptMessageID = promptID
		sess.Phase = PhaseAwaitingValue
		e.sessions.Put(userID, sess)
		return nil

	case Reset:
		draft.ClearAll()
		return e.refreshMenu(ctx, sess, menuTextReset)

	case Submit:
		return e.submit(ctx, userID, sess)

	case Cancel:
		e.sessions.Delete(userID)
		e.deleteNow(sess.ChatID, draft.MenuMessageID)
		e.sendEphemeral(ctx, sess.ChatID, textCancelled, finalCleanupDelay)
		return nil

	case EditToday:
		// Only meaningful from the confirmation prompt.
		e.notify(ctx, sess.ChatID, textNoOpenReport)
		return nil
	}
	return fmt.Errorf("unhandled menu event %T", ev)
}

func (e *Engine) submit(ctx context.Context, userID int64, sess *Session) error {
	updating, err := e.store.HasReportToday(ctx, userID)
	if err != nil {
		e.notify(ctx, sess.ChatID, textSaveFailed)
		return fmt.Errorf("failed to check today's report: %w", err)
	}

	if err := e.store.UpsertToday(ctx, userID, sess.Draft.Materialize()); err != nil {
		// The draft survives: the user may press submit again.
		e.notify(ctx, sess.ChatID, textSaveFailed)
		return fmt.Errorf("failed to save report: %w", err)
	}

	e.deleteNow(sess.ChatID, sess.Draft.MenuMessageID)
	e.sessions.Delete(userID)

	confirmation := textSubmitted
	if updating {
		confirmation = textUpdated
	}
	e.sendEphemeral(ctx, sess.ChatID, confirmation, finalCleanupDelay)
	return nil
}

// CancelDialog force-closes the user's report dialog regardless of phase,
// backing the /cancel command. Reports whether a dialog was open.
func (e *Engine) CancelDialog(ctx context.Context, userID int64) bool {
	sess, ok := e.sessions.Get(userID)
	if !ok {
		return false
	}
	e.sessions.Delete(userID)

	e.deleteNow(sess.ChatID, sess.ConfirmMessageID)
	if sess.Draft != nil {
		e.deleteNow(sess.ChatID, sess.Draft.MenuMessageID)
		e.deleteNow(sess.ChatID, sess.Draft.PromptMessageID)
	}
	e.sendEphemeral(ctx, sess.ChatID, textCancelled, finalCleanupDelay)
	return true
}

// HandleValue consumes a text message as the value for the awaited field.
// Returns false when the user is not in the value-entry step, so the bot
// can route the message elsewhere.
func (e *Engine) HandleValue(ctx context.Context, userID int64, messageID int, text string) (bool, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Phase != PhaseAwaitingValue || sess.Draft.AwaitingField == "" {
		return false, nil
	}

	draft := sess.Draft
	f := e.schema.MustLookup(draft.AwaitingField)
	text = strings.TrimSpace(text)

	var confirmation string
	if f.Kind == schema.Numeric {
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			// Bad value: re-prompt and keep awaiting the same field.
			e.notify(ctx, sess.ChatID, textBadNumber)
			return true, nil
		}
		draft.SetValue(f.Key, NumericValue(n))
		confirmation = fmt.Sprintf("Сохранено: %s = %d", f.FullLabel, n)
	} else {
		draft.SetValue(f.Key, TextValue(text))
		confirmation = textTextSaved
	}

	return true, e.finishCapture(ctx, userID, sess, messageID, confirmation)
}

// HandleSkip stores the kind default for the awaited field. Returns false
// when no field is awaited.
func (e *Engine) HandleSkip(ctx context.Context, userID int64, messageID int) (bool, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok {
		return false, nil
	}
	if sess.Phase != PhaseAwaitingValue || sess.Draft.AwaitingField == "" {
		e.notify(ctx, sess.ChatID, textNoActiveField)
		return true, nil
	}

	sess.Draft.SetDefault(sess.Draft.AwaitingField)
	return true, e.finishCapture(ctx, userID, sess, messageID, textFieldSkipped)
}

// finishCapture runs the shared tail of a successful value capture: post a
// short-lived confirmation, schedule cleanup of the prompt and the user's
// input, and refresh the menu in place.
func (e *Engine) finishCapture(ctx context.Context, userID int64, sess *Session, userMessageID int, confirmation string) error {
	draft := sess.Draft

	confirmID, err := e.chat.SendText(ctx, sess.ChatID, confirmation)
	if err != nil {
		log.Printf("Error sending capture confirmation: %v", err)
	}

	chatID := sess.ChatID
	promptID := draft.PromptMessageID
	e.chat.ScheduleDelayed(captureCleanupDelay, func() {
		e.deleteNow(chatID, promptID)
		e.deleteNow(chatID, userMessageID)
		e.deleteNow(chatID, confirmID)
	})

	draft.AwaitingField = ""
	draft.PromptMessageID = 0
	sess.Phase = PhaseMenu
	e.sessions.Put(userID, sess)

	return e.refreshMenu(ctx, sess, menuTextUpdated)
}

func (e *Engine) refreshMenu(ctx context.Context, sess *Session, text string) error {
	err := e.chat.EditChoices(ctx, sess.ChatID, sess.Draft.MenuMessageID, text,
		buildMenuKeyboard(e.schema, sess.Draft))
	if err != nil {
		// The dialog stays usable even if the keyboard refresh failed.
		log.Printf("Error refreshing report menu: %v", err)
	}
	return nil
}

// sendEphemeral posts a message and schedules its deletion.
func (e *Engine) sendEphemeral(ctx context.Context, chatID int64, text string, after time.Duration) {
	msgID, err := e.chat.SendText(ctx, chatID, text)
	if err != nil {
		log.Printf("Error sending confirmation: %v", err)
		return
	}
	e.chat.ScheduleDelayed(after, func() {
		e.deleteNow(chatID, msgID)
	})
}

// notify sends a plain user-facing message, logging delivery failures.
func (e *Engine) notify(ctx context.Context, chatID int64, text string) {
	if _, err := e.chat.SendText(ctx, chatID, text); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// deleteNow removes a message, tolerating already-deleted handles.
func (e *Engine) deleteNow(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := e.chat.DeleteMessage(context.Background(), chatID, messageID); err != nil {
		log.Printf("Error deleting message %d: %v", messageID, err)
	}
}
