package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply-keyboard button labels. Incoming text is matched against these, so
// they double as routing keys.
const (
	btnSubmitReport = "📝 Отправить отчет"
	btnMyReports    = "📄 Мои отчеты"

	btnStats      = "📊 Статистика за сегодня"
	btnRemind     = "🔔 Напомнить об отчете"
	btnExport     = "📥 Выгрузить отчеты (CSV)"
	btnListUsers  = "👥 Список сотрудников"
	btnDeleteUser = "🗑 Удалить сотрудника"
)

const (
	textGreetingAdmin    = "Добро пожаловать, администратор!"
	textGreetingEmployee = "Добро пожаловать! Используйте кнопки меню."
	textPendingReview    = "Ваша заявка на регистрацию находится на рассмотрении. Ожидайте подтверждения администратора."
	textNotRegistered    = "Вы не зарегистрированы. Отправьте /start, чтобы подать заявку."
	textUnknownInput     = "Я вас не понял. Используйте кнопки меню или /help."
	textUseReportMenu    = "Используйте кнопки меню отчёта или /cancel, чтобы выйти."
	textNothingToCancel  = "Нечего отменять."
	textGenericError     = "❌ Произошла ошибка. Попробуйте позже."
	textNoReportsYet     = "У вас пока нет сохранённых отчетов."
	textNoExportData     = "Отчетов пока нет, выгружать нечего."
	textReminder         = "🔔 Напоминание: не забудьте отправить ежедневный отчет!"

	helpEmployee = "Доступные действия:\n" +
		"📝 Отправить отчет — заполнить отчет за сегодня\n" +
		"📄 Мои отчеты — посмотреть последний отчет\n\n" +
		"Команды:\n" +
		"/menu — показать меню\n" +
		"/cancel — прервать текущее действие\n" +
		"/skip — пропустить поле при заполнении"

	helpAdmin = "Доступные действия:\n" +
		"📊 Статистика за сегодня — кто сдал отчет\n" +
		"🔔 Напомнить об отчете — разослать напоминание\n" +
		"📥 Выгрузить отчеты (CSV) — файл со всеми отчетами\n" +
		"👥 Список сотрудников — все зарегистрированные\n" +
		"🗑 Удалить сотрудника — удалить по табельному номеру\n\n" +
		"Команды:\n" +
		"/menu — показать меню\n" +
		"/cancel — прервать текущее действие"
)

func employeeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSubmitReport),
			tgbotapi.NewKeyboardButton(btnMyReports),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnRemind),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExport),
			tgbotapi.NewKeyboardButton(btnListUsers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDeleteUser),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}
