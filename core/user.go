package core

import (
	"context"

	"go.lumeweb.com/accountd/db/models"
)

const USER_SERVICE = "user"

type UserService interface {
	// CreateUser stores a new user. A taken email yields ErrKeyEmailAlreadyExists.
	CreateUser(ctx context.Context, username string, email string, passwordHash string) (*models.User, error)

	// UserByEmail looks a user up by exact email. A miss yields ErrKeyUserNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	Service
}
