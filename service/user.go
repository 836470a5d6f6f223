package service

import (
	"context"

	"go.lumeweb.com/accountd/core"
	"go.lumeweb.com/accountd/db"
	"go.lumeweb.com/accountd/db/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var _ core.UserService = (*UserServiceDefault)(nil)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.USER_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			svc := &UserServiceDefault{logger: core.NewNopLogger()}

			opts := core.ContextOptions(
				core.ContextWithStartupFunc(func(ctx core.Context) error {
					svc.db = ctx.DB()
					svc.logger = ctx.ServiceLogger(svc)
					return nil
				}),
			)

			return svc, opts, nil
		},
	})
}

type UserServiceDefault struct {
	db     *gorm.DB
	logger *core.Logger
}

func NewUserService(db *gorm.DB, logger *core.Logger) *UserServiceDefault {
	if logger == nil {
		logger = core.NewNopLogger()
	}

	return &UserServiceDefault{db: db, logger: logger}
}

func (u *UserServiceDefault) ID() string {
	return core.USER_SERVICE
}

func (u *UserServiceDefault) CreateUser(ctx context.Context, username string, email string, passwordHash string) (*models.User, error) {
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := db.RetryOnLock(u.db.WithContext(ctx), func(tx *gorm.DB) *gorm.DB {
		return tx.Create(user)
	})

	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return nil, core.NewAccountError(core.ErrKeyEmailAlreadyExists, nil)
		}

		u.logger.Error("failed to create user", zap.Error(err))
		return nil, core.NewAccountError(core.ErrKeyAccountCreationFailed, err)
	}

	return user, nil
}

func (u *UserServiceDefault) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := db.RetryOnLock(u.db.WithContext(ctx), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("email = ?", email).First(&user)
	})

	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, core.NewAccountError(core.ErrKeyUserNotFound, nil)
		}

		u.logger.Error("failed to look up user", zap.Error(err))
		return nil, core.NewAccountError(core.ErrKeyDatabaseOperationFailed, err)
	}

	return &user, nil
}
