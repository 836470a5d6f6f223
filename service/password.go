package service

import (
	"go.lumeweb.com/accountd/core"
	"golang.org/x/crypto/bcrypt"
)

var _ core.PasswordService = (*PasswordServiceDefault)(nil)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.PASSWORD_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			svc := NewPasswordService(bcrypt.DefaultCost)

			opts := core.ContextOptions(
				core.ContextWithStartupFunc(func(ctx core.Context) error {
					svc.cost = clampCost(ctx.Config().Config().Core.Auth.BcryptCost)
					return nil
				}),
			)

			return svc, opts, nil
		},
	})
}

type PasswordServiceDefault struct {
	cost int
}

func NewPasswordService(cost int) *PasswordServiceDefault {
	return &PasswordServiceDefault{cost: clampCost(cost)}
}

func (p *PasswordServiceDefault) ID() string {
	return core.PASSWORD_SERVICE
}

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

func (p *PasswordServiceDefault) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(passwordInput(password), p.cost)
	if err != nil {
		return "", core.NewAccountError(core.ErrKeyHashingFailed, err)
	}

	return string(bytes), nil
}

func (p *PasswordServiceDefault) VerifyPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordInput(password)) == nil
}

// passwordInput truncates to what bcrypt hashes, so long passwords are
// accepted and still verify.
func passwordInput(password string) []byte {
	input := []byte(password)
	if len(input) > maxPasswordBytes {
		input = input[:maxPasswordBytes]
	}

	return input
}

func clampCost(cost int) int {
	switch {
	case cost == 0:
		return bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}

	return cost
}
