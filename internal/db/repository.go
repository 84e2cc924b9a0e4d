package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/user/report-bot/internal/report"
	"github.com/user/report-bot/internal/schema"
)

// ErrNoReportToday mirrors the engine's sentinel so callers can test with
// errors.Is regardless of which package they import.
var ErrNoReportToday = report.ErrNoReportToday

var ErrNoReports = errors.New("no reports stored for user")
var ErrEmployeeIDTaken = errors.New("employee id already registered")
var ErrUserNotFound = errors.New("user not found")
var ErrNotPending = errors.New("no pending registration for user")

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// valueColumns renders the report value column list in schema order.
func valueColumns(s *schema.Schema) string {
	return strings.Join(s.Keys(), ", ")
}

// upsertReportQuery builds the atomic write for one user-day: insert the
// full value set, or overwrite it when the day's row already exists.
func upsertReportQuery(s *schema.Schema) string {
	keys := s.Keys()

	placeholders := make([]string, len(keys))
	updates := make([]string, len(keys))
	for i, key := range keys {
		placeholders[i] = "$" + strconv.Itoa(i+3)
		updates[i] = key + " = EXCLUDED." + key
	}

	return "INSERT INTO reports (user_id, report_date, " + strings.Join(keys, ", ") + ")\n" +
		"VALUES ($1, $2, " + strings.Join(placeholders, ", ") + ")\n" +
		"ON CONFLICT (user_id, report_date) DO UPDATE\n" +
		"SET " + strings.Join(updates, ", ") + ", updated_at = now()"
}

// valueDest allocates scan targets for the value columns and a closure that
// collects them into a map once the row was read.
func valueDest(s *schema.Schema) ([]any, func() map[string]any) {
	fields := s.Fields()
	dest := make([]any, len(fields))
	for i, f := range fields {
		if f.Kind == schema.Numeric {
			dest[i] = new(int64)
		} else {
			dest[i] = new(string)
		}
	}
	collect := func() map[string]any {
		values := make(map[string]any, len(fields))
		for i, f := range fields {
			if f.Kind == schema.Numeric {
				values[f.Key] = *dest[i].(*int64)
			} else {
				values[f.Key] = *dest[i].(*string)
			}
		}
		return values
	}
	return dest, collect
}

// HasReportToday checks whether the user already submitted for the current
// report day.
func (m *Manager) HasReportToday(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM reports
			WHERE user_id = $1 AND report_date = $2
		)
	`
	var exists bool
	err := m.db.QueryRowContext(ctx, query, userID, m.today()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check today's report: %w", err)
	}

	return exists, nil
}

// GetReportToday returns today's stored values for the user.
func (m *Manager) GetReportToday(ctx context.Context, userID int64) (map[string]any, error) {
	query := "SELECT " + valueColumns(m.schema) + " FROM reports WHERE user_id = $1 AND report_date = $2"

	dest, collect := valueDest(m.schema)
	err := m.db.QueryRowContext(ctx, query, userID, m.today()).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoReportToday
		}
		return nil, fmt.Errorf("failed to get today's report: %w", err)
	}

	return collect(), nil
}

// GetLatestReport returns the user's most recent report and its date.
func (m *Manager) GetLatestReport(ctx context.Context, userID int64) (time.Time, map[string]any, error) {
	query := "SELECT report_date, " + valueColumns(m.schema) + `
		FROM reports
		WHERE user_id = $1
		ORDER BY report_date DESC
		LIMIT 1`

	var reportDate time.Time
	dest, collect := valueDest(m.schema)
	err := m.db.QueryRowContext(ctx, query, userID).Scan(append([]any{&reportDate}, dest...)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil, ErrNoReports
		}
		return time.Time{}, nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	return reportDate, collect(), nil
}

// UpsertToday writes the complete value set for the user's current report
// day in one statement. A second submit the same day overwrites the first.
func (m *Manager) UpsertToday(ctx context.Context, userID int64, values map[string]any) error {
	args := make([]any, 0, len(m.schema.Fields())+2)
	args = append(args, userID, m.today())
	for _, key := range m.schema.Keys() {
		v, ok := values[key]
		if !ok {
			return fmt.Errorf("report values missing field %s", key)
		}
		args = append(args, v)
	}

	_, err := m.db.ExecContext(ctx, upsertReportQuery(m.schema), args...)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// CountReportsFor returns how many report days the user has stored.
func (m *Manager) CountReportsFor(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM reports
		WHERE user_id = $1
	`
	var count int
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return count, nil
}

// UserIDsSubmittedToday lists users who already reported today, for the
// daily stats and for skipping them in reminder broadcasts.
func (m *Manager) UserIDsSubmittedToday(ctx context.Context) ([]int64, error) {
	query := `
		SELECT user_id
		FROM reports
		WHERE report_date = $1
	`
	rows, err := m.db.QueryContext(ctx, query, m.today())
	if err != nil {
		return nil, fmt.Errorf("failed to list today's submissions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return ids, nil
}

// exportHeaders is the CSV header row: identity columns followed by the
// full field labels in schema order.
func exportHeaders(s *schema.Schema) []string {
	headers := []string{"Дата", "Табельный номер", "Сотрудник", "Должность"}
	for _, f := range s.Fields() {
		headers = append(headers, f.FullLabel)
	}
	return headers
}

// ExportAll returns every stored report joined with the author's identity,
// newest day first, ready for the CSV writer.
func (m *Manager) ExportAll(ctx context.Context) ([]string, [][]string, error) {
	query := "SELECT r.report_date, u.employee_id, u.last_name, u.first_name, u.position, r." +
		strings.Join(m.schema.Keys(), ", r.") + `
		FROM reports r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.report_date DESC, u.last_name, u.first_name`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export reports: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var (
			reportDate time.Time
			employeeID string
			lastName   string
			firstName  string
			position   string
		)
		dest, collect := valueDest(m.schema)
		all := append([]any{&reportDate, &employeeID, &lastName, &firstName, &position}, dest...)
		if err := rows.Scan(all...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan export row: %w", err)
		}

		values := collect()
		row := []string{
			reportDate.Format("02.01.2006"),
			employeeID,
			lastName + " " + firstName,
			position,
		}
		for _, f := range m.schema.Fields() {
			if f.Kind == schema.Numeric {
				row = append(row, strconv.FormatInt(values[f.Key].(int64), 10))
			} else {
				row = append(row, values[f.Key].(string))
			}
		}
		out = append(out, row)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating export rows: %w", err)
	}

	return exportHeaders(m.schema), out, nil
}

// UserExists checks whether the user completed registration.
func (m *Manager) UserExists(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM users
			WHERE id = $1
		)
	`
	var exists bool
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	return exists, nil
}

// GetUser returns a registered user by Telegram ID.
func (m *Manager) GetUser(ctx context.Context, userID int64) (*User, error) {
	query := `
		SELECT id, employee_id, first_name, last_name, position, registered_at
		FROM users
		WHERE id = $1
	`
	var u User
	err := m.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.EmployeeID,
		&u.FirstName,
		&u.LastName,
		&u.Position,
		&u.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// GetUserByEmployeeID looks a registered user up by employee number.
func (m *Manager) GetUserByEmployeeID(ctx context.Context, employeeID string) (*User, error) {
	query := `
		SELECT id, employee_id, first_name, last_name, position, registered_at
		FROM users
		WHERE employee_id = $1
	`
	var u User
	err := m.db.QueryRowContext(ctx, query, employeeID).Scan(
		&u.ID,
		&u.EmployeeID,
		&u.FirstName,
		&u.LastName,
		&u.Position,
		&u.RegisteredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by employee id: %w", err)
	}

	return &u, nil
}

// ListUsers returns every registered user ordered by name.
func (m *Manager) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, employee_id, first_name, last_name, position, registered_at
		FROM users
		ORDER BY last_name, first_name
	`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		err := rows.Scan(
			&u.ID,
			&u.EmployeeID,
			&u.FirstName,
			&u.LastName,
			&u.Position,
			&u.RegisteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// DeleteUser removes a registered user; their reports cascade.
func (m *Manager) DeleteUser(ctx context.Context, userID int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// AddPending stores a registration request awaiting admin review. A repeat
// request from the same user overwrites the previous one.
func (m *Manager) AddPending(ctx context.Context, u PendingUser) error {
	query := `
		INSERT INTO pending_users (id, employee_id, first_name, last_name, position, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET employee_id = $2, first_name = $3, last_name = $4, position = $5, requested_at = $6
	`
	_, err := m.db.ExecContext(ctx, query,
		u.ID, u.EmployeeID, u.FirstName, u.LastName, u.Position, time.Now())
	if err != nil {
		return fmt.Errorf("failed to add pending user: %w", err)
	}

	return nil
}

// IsPending checks whether the user has a registration request under review.
func (m *Manager) IsPending(ctx context.Context, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM pending_users
			WHERE id = $1
		)
	`
	var exists bool
	err := m.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending user: %w", err)
	}

	return exists, nil
}

// RemovePending drops a registration request. ErrNotPending means another
// admin already handled the same request.
func (m *Manager) RemovePending(ctx context.Context, userID int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM pending_users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to remove pending user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotPending
	}

	return nil
}

// PromoteUser turns a pending request into a registered user in one
// transaction. The delete-then-insert ordering makes a second approval of
// the same request fail with ErrNotPending instead of a duplicate insert.
func (m *Manager) PromoteUser(ctx context.Context, userID int64) (*User, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		DELETE FROM pending_users
		WHERE id = $1
		RETURNING id, employee_id, first_name, last_name, position
	`
	var u User
	err = tx.QueryRowContext(ctx, query, userID).Scan(
		&u.ID,
		&u.EmployeeID,
		&u.FirstName,
		&u.LastName,
		&u.Position,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotPending
		}
		return nil, fmt.Errorf("failed to claim pending user: %w", err)
	}

	insert := `
		INSERT INTO users (id, employee_id, first_name, last_name, position)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.ExecContext(ctx, insert, u.ID, u.EmployeeID, u.FirstName, u.LastName, u.Position)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrEmployeeIDTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return &u, nil
}
