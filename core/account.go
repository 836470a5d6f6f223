package core

import (
	"context"

	"go.lumeweb.com/accountd/db/models"
)

const ACCOUNT_SERVICE = "account"

type AccountService interface {
	// Register validates the input, hashes the password and stores the user.
	Register(ctx context.Context, username string, email string, password string) (*models.User, error)

	// Login verifies credentials and returns a signed token with the user.
	Login(ctx context.Context, email string, password string) (string, *models.User, error)

	// ForgotPassword mails a fresh recovery code to a known user.
	ForgotPassword(ctx context.Context, email string) error

	Service
}
