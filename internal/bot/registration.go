package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/user/report-bot/internal/db"
)

type regStep int

const (
	regFirstName regStep = iota + 1
	regLastName
	regEmployeeID
	regPosition
)

type regSession struct {
	Step       regStep
	FirstName  string
	LastName   string
	EmployeeID string
	Position   string
}

const (
	regPromptFirstName  = "Добро пожаловать! Для подачи заявки на регистрацию введите ваше имя:"
	regPromptLastName   = "Введите вашу фамилию:"
	regPromptEmployeeID = "Введите ваш табельный номер:"
	regPromptPosition   = "Введите вашу должность:"
	regPromptEmpty      = "Значение не может быть пустым. Попробуйте ещё раз:"
	regPromptIDTaken    = "Этот табельный номер уже зарегистрирован. Проверьте номер и введите ещё раз:"
	regDone             = "Заявка на регистрацию отправлена администратору. Ожидайте подтверждения."
)

// registrar tracks in-progress registration dialogs per user.
type registrar struct {
	mu       sync.RWMutex
	sessions map[int64]*regSession
}

func newRegistrar() *registrar {
	return &registrar{sessions: make(map[int64]*regSession)}
}

// begin opens a registration dialog and returns the first prompt.
func (r *registrar) begin(userID int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = &regSession{Step: regFirstName}
	return regPromptFirstName
}

func (r *registrar) active(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[userID]
	return ok
}

// cancel drops the dialog, reporting whether one was open.
func (r *registrar) cancel(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// handleInput advances the dialog with one message. When the last step is
// answered the dialog closes and the completed request is returned for the
// caller to store and forward to the admins.
func (r *registrar) handleInput(ctx context.Context, store Store, userID int64, text string) (string, *db.PendingUser, error) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	r.mu.Unlock()
	if !ok {
		return "", nil, fmt.Errorf("no registration dialog for user %d", userID)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return regPromptEmpty, nil, nil
	}

	switch sess.Step {
	case regFirstName:
		sess.FirstName = text
		sess.Step = regLastName
		return regPromptLastName, nil, nil

	case regLastName:
		sess.LastName = text
		sess.Step = regEmployeeID
		return regPromptEmployeeID, nil, nil

	case regEmployeeID:
		_, err := store.GetUserByEmployeeID(ctx, text)
		if err == nil {
			return regPromptIDTaken, nil, nil
		}
		if !errors.Is(err, db.ErrUserNotFound) {
			return textGenericError, nil, fmt.Errorf("failed to check employee id: %w", err)
		}
		sess.EmployeeID = text
		sess.Step = regPosition
		return regPromptPosition, nil, nil

	case regPosition:
		sess.Position = text
		r.mu.Lock()
		delete(r.sessions, userID)
		r.mu.Unlock()
		return regDone, &db.PendingUser{
			ID:         userID,
			EmployeeID: sess.EmployeeID,
			FirstName:  sess.FirstName,
			LastName:   sess.LastName,
			Position:   sess.Position,
		}, nil
	}

	return "", nil, fmt.Errorf("registration dialog for user %d is in unknown step %d", userID, sess.Step)
}
