package event

import (
	gevent "github.com/gookit/event"
	"go.lumeweb.com/accountd/db/models"
	"go.uber.org/zap"
)

// RegisterLogListeners logs account lifecycle events at info.
func RegisterLogListeners(em *gevent.Manager, logger *zap.Logger) {
	ListenUserCreated(em, func(user *models.User) error {
		logger.Info("user registered", zap.String("user_id", user.ID))
		return nil
	})

	ListenPasswordResetRequested(em, func(user *models.User) error {
		logger.Info("password reset requested", zap.String("user_id", user.ID))
		return nil
	})
}
