package event

import (
	"fmt"

	gevent "github.com/gookit/event"
	"go.lumeweb.com/accountd/core"
)

// Fire builds a fresh event of type T, lets fill populate it and fires it on
// em. A nil manager is a no-op.
func Fire[T any, PT interface {
	*T
	core.Eventer
}](em *gevent.Manager, name string, fill func(evt PT) error) error {
	if em == nil {
		return nil
	}

	evt := PT(new(T))
	evt.SetName(name)

	if fill != nil {
		if err := fill(evt); err != nil {
			return err
		}
	}

	if err := em.FireEvent(evt); err != nil {
		return fmt.Errorf("fire %s: %w", name, err)
	}

	return nil
}

// Listen subscribes handler to events named name that are of type T.
func Listen[T any, PT interface {
	*T
	core.Eventer
}](em *gevent.Manager, name string, handler func(evt PT) error) {
	em.On(name, gevent.ListenerFunc(func(e gevent.Event) error {
		typed, ok := e.(PT)
		if !ok {
			return fmt.Errorf("event %s is not of expected type", name)
		}

		return handler(typed)
	}))
}
