// Package bot is the Telegram front: the update loop, command routing,
// the registration/approval flow and the admin features. Report filling
// itself is delegated to the report engine.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/report-bot/internal/chat"
	"github.com/user/report-bot/internal/config"
	"github.com/user/report-bot/internal/db"
	"github.com/user/report-bot/internal/report"
	"github.com/user/report-bot/internal/schema"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	messenger *chat.Telegram
	cfg       *config.Config
	store     Store
	schema    *schema.Schema
	engine    *report.Engine
	reg       *registrar

	// Track admins mid delete-user dialog
	deleting map[int64]bool
	delMutex sync.RWMutex

	wg     sync.WaitGroup
	stopCh chan struct{}
}

func New(cfg *config.Config, store Store, reports report.ReportStore, s *schema.Schema) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}

	messenger := chat.NewTelegram(api)
	engine := report.NewEngine(s, reports, messenger, report.NewMemorySessionStore())

	return &Bot{
		api:       api,
		messenger: messenger,
		cfg:       cfg,
		store:     store,
		schema:    s,
		engine:    engine,
		reg:       newRegistrar(),
		deleting:  make(map[int64]bool),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins listening for updates from Telegram
func (b *Bot) Start() error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.handleUpdates(updates)
	}()

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() {
	close(b.stopCh)
	b.api.StopReceivingUpdates()
	b.wg.Wait()
}

func (b *Bot) handleUpdates(updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-b.stopCh:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
		return
	}

	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
}

// handleMessage routes one incoming message: commands first, then the open
// dialogs (registration, delete-user, value entry), then the reply-keyboard
// buttons.
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	log.Printf("[%s] %s", message.From.UserName, message.Text)

	ctx := context.Background()
	userID := message.From.ID
	chatID := message.Chat.ID

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	if message.Text == "" {
		return
	}

	if b.reg.active(userID) {
		b.handleRegistrationInput(ctx, userID, chatID, message.Text)
		return
	}

	if b.isDeleting(userID) {
		b.handleDeleteInput(ctx, userID, chatID, message.Text)
		return
	}

	handled, err := b.engine.HandleValue(ctx, userID, message.MessageID, message.Text)
	if err != nil {
		log.Printf("Error handling field value: %v", err)
	}
	if handled {
		return
	}

	switch message.Text {
	case btnSubmitReport:
		b.handleSubmitReport(ctx, userID, chatID)
	case btnMyReports:
		b.handleMyReports(ctx, userID, chatID)
	case btnStats:
		b.adminOnly(userID, chatID, func() { b.handleStats(ctx, chatID) })
	case btnRemind:
		b.adminOnly(userID, chatID, func() { b.handleManualReminder(ctx, chatID) })
	case btnExport:
		b.adminOnly(userID, chatID, func() { b.handleExport(ctx, chatID) })
	case btnListUsers:
		b.adminOnly(userID, chatID, func() { b.handleListUsers(ctx, chatID) })
	case btnDeleteUser:
		b.adminOnly(userID, chatID, func() { b.startDeleteDialog(userID, chatID) })
	default:
		if b.engine.InDialog(userID) {
			b.sendMessage(chatID, textUseReportMenu)
			return
		}
		b.sendMessage(chatID, textUnknownInput)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	commandName := message.Command()
	log.Printf("[COMMAND] %s: %s", message.From.UserName, commandName)

	switch commandName {
	case "start":
		b.handleStart(ctx, userID, chatID)
	case "help":
		b.handleHelp(ctx, userID, chatID)
	case "menu":
		b.sendMainMenu(ctx, userID, chatID)
	case "cancel":
		b.handleCancel(ctx, userID, chatID)
	case "skip":
		handled, err := b.engine.HandleSkip(ctx, userID, message.MessageID)
		if err != nil {
			log.Printf("Error handling skip: %v", err)
		}
		if !handled {
			b.sendMessage(chatID, textUnknownInput)
		}
	default:
		b.sendMessage(chatID, "Неизвестная команда. Отправьте /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, userID, chatID int64) {
	if b.cfg.IsAdmin(userID) {
		b.sendWithKeyboard(chatID, textGreetingAdmin, adminKeyboard())
		return
	}

	registered, err := b.store.UserExists(ctx, userID)
	if err != nil {
		log.Printf("Error checking user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if registered {
		b.sendWithKeyboard(chatID, textGreetingEmployee, employeeKeyboard())
		return
	}

	pending, err := b.store.IsPending(ctx, userID)
	if err != nil {
		log.Printf("Error checking pending user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if pending {
		b.sendMessage(chatID, textPendingReview)
		return
	}

	b.sendMessage(chatID, b.reg.begin(userID))
}

func (b *Bot) handleHelp(ctx context.Context, userID, chatID int64) {
	if b.cfg.IsAdmin(userID) {
		b.sendMessage(chatID, helpAdmin)
		return
	}
	b.sendMessage(chatID, helpEmployee)
}

func (b *Bot) sendMainMenu(ctx context.Context, userID, chatID int64) {
	if b.cfg.IsAdmin(userID) {
		b.sendWithKeyboard(chatID, "Меню администратора:", adminKeyboard())
		return
	}

	registered, err := b.store.UserExists(ctx, userID)
	if err != nil {
		log.Printf("Error checking user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if !registered {
		b.sendMessage(chatID, textNotRegistered)
		return
	}
	b.sendWithKeyboard(chatID, "Главное меню:", employeeKeyboard())
}

func (b *Bot) handleCancel(ctx context.Context, userID, chatID int64) {
	cancelled := b.engine.CancelDialog(ctx, userID)
	if b.reg.cancel(userID) {
		b.sendMessage(chatID, "Регистрация прервана. Отправьте /start, чтобы начать заново.")
		cancelled = true
	}
	if b.stopDeleting(userID) {
		b.sendMessage(chatID, "Удаление отменено.")
		cancelled = true
	}
	if !cancelled {
		b.sendMessage(chatID, textNothingToCancel)
	}
}

func (b *Bot) handleSubmitReport(ctx context.Context, userID, chatID int64) {
	if b.cfg.IsAdmin(userID) {
		b.sendMessage(chatID, "Администраторы не сдают отчеты.")
		return
	}

	registered, err := b.store.UserExists(ctx, userID)
	if err != nil {
		log.Printf("Error checking user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if !registered {
		b.sendMessage(chatID, textNotRegistered)
		return
	}

	if err := b.engine.Start(ctx, userID, chatID); err != nil {
		log.Printf("Error starting report dialog for user %d: %v", userID, err)
	}
}

func (b *Bot) handleMyReports(ctx context.Context, userID, chatID int64) {
	registered, err := b.store.UserExists(ctx, userID)
	if err != nil {
		log.Printf("Error checking user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	if !registered {
		b.sendMessage(chatID, textNotRegistered)
		return
	}

	date, values, err := b.store.GetLatestReport(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNoReports) {
			b.sendMessage(chatID, textNoReportsYet)
			return
		}
		log.Printf("Error loading latest report for user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}

	text := renderReport(b.schema, date, values)
	if count, err := b.store.CountReportsFor(ctx, userID); err == nil {
		text += fmt.Sprintf("\n\nВсего отчетов: %d", count)
	} else {
		log.Printf("Error counting reports for user %d: %v", userID, err)
	}
	b.sendMessage(chatID, text)
}

func (b *Bot) handleRegistrationInput(ctx context.Context, userID, chatID int64, text string) {
	reply, completed, err := b.reg.handleInput(ctx, b.store, userID, text)
	if err != nil {
		log.Printf("Error in registration dialog for user %d: %v", userID, err)
	}
	if reply != "" {
		b.sendMessage(chatID, reply)
	}
	if completed == nil {
		return
	}

	if err := b.store.AddPending(ctx, *completed); err != nil {
		log.Printf("Error storing registration request for user %d: %v", userID, err)
		b.sendMessage(chatID, textGenericError)
		return
	}
	b.notifyAdmins(*completed)
}

// notifyAdmins forwards a registration request to every admin with the
// approve/reject keyboard. One failed delivery does not stop the rest.
func (b *Bot) notifyAdmins(u db.PendingUser) {
	text := formatPendingRequest(u)
	for _, adminID := range b.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(adminID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = approvalKeyboard(u.ID)
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Error notifying admin %d: %v", adminID, err)
		}
	}
}

// handleCallback routes inline-button presses: report-menu events go to the
// engine, everything else is an admin action.
func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	log.Printf("[CALLBACK] %s: %s", callback.From.UserName, callback.Data)

	b.messenger.AnswerCallback(callback.ID, "")
	if callback.Message == nil {
		return
	}

	ctx := context.Background()
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	if ev, err := report.ParseEvent(b.schema, callback.Data); err == nil {
		if err := b.engine.HandleEvent(ctx, userID, chatID, ev); err != nil {
			log.Printf("Error handling report event for user %d: %v", userID, err)
		}
		return
	}

	if !b.cfg.IsAdmin(userID) {
		log.Printf("Ignoring callback %q from non-admin %d", callback.Data, userID)
		return
	}

	prefix, targetID, err := parseUserCallback(callback.Data)
	if err != nil {
		log.Printf("Error parsing callback: %v", err)
		return
	}

	switch prefix {
	case cbApprove:
		b.handleApprove(ctx, callback, targetID)
	case cbReject:
		b.handleReject(ctx, callback, targetID)
	case cbDeleteYes:
		b.handleDeleteConfirmed(ctx, callback, targetID)
	case cbDeleteNo:
		b.editCallbackMessage(callback, "Удаление отменено.")
	default:
		log.Printf("Unknown callback data: %s", callback.Data)
	}
}

// editCallbackMessage replaces the message the button lived on, which also
// drops its inline keyboard so the action cannot be repeated.
func (b *Bot) editCallbackMessage(callback *tgbotapi.CallbackQuery, text string) {
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Error editing callback message: %v", err)
	}
}

func (b *Bot) adminOnly(userID, chatID int64, fn func()) {
	if !b.cfg.IsAdmin(userID) {
		b.sendMessage(chatID, textUnknownInput)
		return
	}
	fn()
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
