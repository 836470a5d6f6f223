package event

import (
	gevent "github.com/gookit/event"
	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db/models"
)

const (
	EVENT_USER_CREATED = "user.created"
)

func init() {
	core.RegisterEvent(EVENT_USER_CREATED, &UserCreatedEvent{})
}

type UserCreatedEvent struct {
	core.Event
}

func (e *UserCreatedEvent) SetUser(user *models.User) {
	e.Set("user", user)
}

func (e *UserCreatedEvent) User() *models.User {
	user, _ := e.Get("user").(*models.User)
	return user
}

func FireUserCreatedEvent(em *gevent.Manager, user *models.User) error {
	return Fire[UserCreatedEvent](em, EVENT_USER_CREATED, func(evt *UserCreatedEvent) error {
		evt.SetUser(user)
		return nil
	})
}

func ListenUserCreated(em *gevent.Manager, handler func(user *models.User) error) {
	Listen[UserCreatedEvent](em, EVENT_USER_CREATED, func(evt *UserCreatedEvent) error {
		return handler(evt.User())
	})
}
