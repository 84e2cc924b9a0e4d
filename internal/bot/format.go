package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/user/report-bot/internal/db"
	"github.com/user/report-bot/internal/schema"
)

// renderReport formats one stored report field by field with full labels.
func renderReport(s *schema.Schema, date time.Time, values map[string]any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📄 <b>Ваш отчет за %s</b>\n", date.Format("02.01.2006"))

	for _, f := range s.Fields() {
		sb.WriteString("\n<b>")
		sb.WriteString(f.FullLabel)
		sb.WriteString(":</b> ")

		switch v := values[f.Key].(type) {
		case int64:
			fmt.Fprintf(&sb, "%d", v)
		case int:
			fmt.Fprintf(&sb, "%d", v)
		case string:
			if v == "" {
				sb.WriteString("—")
			} else {
				sb.WriteString(v)
			}
		default:
			sb.WriteString("—")
		}
	}

	return sb.String()
}

// formatStats renders today's submission numbers for the admin. Admins are
// not expected to report and are excluded from the totals.
func formatStats(users []db.User, submitted []int64, isAdmin func(int64) bool) string {
	submittedSet := make(map[int64]bool, len(submitted))
	for _, id := range submitted {
		submittedSet[id] = true
	}

	var total, done int
	var missing []string
	for _, u := range users {
		if isAdmin(u.ID) {
			continue
		}
		total++
		if submittedSet[u.ID] {
			done++
		} else {
			missing = append(missing, u.FullName())
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Статистика за сегодня</b>\n\nОтчет сдали: %d из %d", done, total)
	if len(missing) > 0 {
		sb.WriteString("\n\nНе сдали отчет:")
		for _, name := range missing {
			sb.WriteString("\n— ")
			sb.WriteString(name)
		}
	}
	return sb.String()
}

// formatUserList renders the registered employees for the admin.
func formatUserList(users []db.User) string {
	if len(users) == 0 {
		return "Зарегистрированных сотрудников пока нет."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>Сотрудники (%d)</b>\n", len(users))
	for _, u := range users {
		fmt.Fprintf(&sb, "\n%s — таб. № %s, %s", u.FullName(), u.EmployeeID, u.Position)
	}
	return sb.String()
}

// formatPendingRequest renders a registration request for admin review.
func formatPendingRequest(u db.PendingUser) string {
	return "📋 <b>Новая заявка на регистрацию</b>\n\n" +
		"Имя: " + u.FirstName + "\n" +
		"Фамилия: " + u.LastName + "\n" +
		"Табельный номер: " + u.EmployeeID + "\n" +
		"Должность: " + u.Position
}
