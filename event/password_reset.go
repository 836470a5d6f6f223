package event

import (
	gevent "github.com/gookit/event"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db/models"
)

const (
	EVENT_PASSWORD_RESET_REQUESTED = "user.password_reset_requested"
)

func init() {
	core.RegisterEvent(EVENT_PASSWORD_RESET_REQUESTED, &PasswordResetRequestedEvent{})
}

// PasswordResetRequestedEvent fires after a recovery code was mailed. It
// never carries the code.
type PasswordResetRequestedEvent struct {
	core.Event
}

func (e *PasswordResetRequestedEvent) SetUser(user *models.User) {
	e.Set("user", user)
}

func (e *PasswordResetRequestedEvent) User() *models.User {
	user, _ := e.Get("user").(*models.User)
	return user
}

func FirePasswordResetRequestedEvent(em *gevent.Manager, user *models.User) error {
	return Fire[PasswordResetRequestedEvent](em, EVENT_PASSWORD_RESET_REQUESTED, func(evt *PasswordResetRequestedEvent) error {
		evt.SetUser(user)
		return nil
	})
}

func ListenPasswordResetRequested(em *gevent.Manager, handler func(user *models.User) error) {
	Listen[PasswordResetRequestedEvent](em, EVENT_PASSWORD_RESET_REQUESTED, func(evt *PasswordResetRequestedEvent) error {
		return handler(evt.User())
	})
}
