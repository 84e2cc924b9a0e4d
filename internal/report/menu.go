package report

import (
	"github.com/user/report-bot/internal/chat"
	"github.com/user/report-bot/internal/schema"
)

// Menu texts. The menu message itself is reused and edited in place, only
// its caption changes between states.
const (
	menuTextNew     = "Пожалуйста, заполните отчёт. Нажмите на нужное поле:"
	menuTextLoaded  = "Загружен ваш сегодняшний отчет. Внесите необходимые правки."
	menuTextUpdated = "Отчет обновлен. Нажмите на следующее поле или отправьте отчет."
	menuTextReset   = "Значения сброшены. Заполните отчет заново:"
)

// fieldsPerRow is how many field buttons share a keyboard row.
const fieldsPerRow = 2

// buildMenuKeyboard renders the field menu for the draft: numeric fields
// first, then text fields, two per row, each button showing the current
// value or a placeholder, followed by the submit/cancel and reset rows.
func buildMenuKeyboard(s *schema.Schema, d *Draft) [][]chat.Choice {
	var rows [][]chat.Choice
	rows = appendFieldRows(rows, s.Numeric(), d)
	rows = appendFieldRows(rows, s.Text(), d)

	rows = append(rows, chat.Row(
		chat.Choice{Label: "✅ Отправить отчёт", Data: EncodeAction(Submit{})},
		chat.Choice{Label: "❌ Отменить", Data: EncodeAction(Cancel{})},
	))
	rows = append(rows, chat.Row(
		chat.Choice{Label: "🔄 Сбросить все введённые значения", Data: EncodeAction(Reset{})},
	))
	return rows
}

func appendFieldRows(rows [][]chat.Choice, fields []schema.FieldDefinition, d *Draft) [][]chat.Choice {
	for i := 0; i < len(fields); i += fieldsPerRow {
		end := i + fieldsPerRow
		if end > len(fields) {
			end = len(fields)
		}
		row := make([]chat.Choice, 0, fieldsPerRow)
		for _, f := range fields[i:end] {
			row = append(row, chat.Choice{
				Label: f.Label + " — " + d.DisplayValue(f),
				Data:  EncodeSelectField(f.Key),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// confirmEditKeyboard asks whether to edit today's existing report.
func confirmEditKeyboard() [][]chat.Choice {
	return [][]chat.Choice{
		chat.Row(chat.Choice{Label: "Да, редактировать", Data: EncodeAction(EditToday{})}),
		chat.Row(chat.Choice{Label: "Нет, вернуться в меню", Data: EncodeAction(Cancel{})}),
	}
}

// promptText builds the value prompt for a field, with skip instructions
// appropriate to its kind.
func promptText(f schema.FieldDefinition) string {
	if f.Kind == schema.Numeric {
		return "Пожалуйста, введите <b>число</b> для поля:\n<b>" + f.FullLabel +
			"</b>\n\n<i>Если значение отсутствует, отправьте 0 или /skip.</i>"
	}
	return "Пожалуйста, введите <b>текст</b> для поля:\n<b>" + f.FullLabel +
		"</b>\n\n<i>Если информации нет, отправьте /skip.</i>"
}
