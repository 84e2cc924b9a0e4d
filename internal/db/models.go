package db

import (
	"time"
)

type User struct {
	ID           int64     `db:"id"`
	EmployeeID   string    `db:"employee_id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Position     string    `db:"position"`
	RegisteredAt time.Time `db:"registered_at"`
}

// FullName is the display form used in admin lists and the CSV export.
func (u User) FullName() string {
	return u.LastName + " " + u.FirstName
}

type PendingUser struct {
	ID          int64     `db:"id"`
	EmployeeID  string    `db:"employee_id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Position    string    `db:"position"`
	RequestedAt time.Time `db:"requested_at"`
}

func (u PendingUser) FullName() string {
	return u.LastName + " " + u.FirstName
}
