package service

import (
	"errors"
	"time"

	"go.lumeweb.com/accountd/core"
)

var _ core.TokenService = (*TokenServiceDefault)(nil)

func init() {
	core.RegisterService(core.ServiceInfo{
		ID: core.TOKEN_SERVICE,
		Factory: func() (core.Service, []core.ContextBuilderOption, error) {
			svc := &TokenServiceDefault{now: time.Now}

			opts := core.ContextOptions(
				core.ContextWithStartupFunc(func(ctx core.Context) error {
					auth := ctx.Config().Config().Core.Auth
					svc.secret = []byte(auth.JWTSecret)
					svc.expiry = auth.JWTExpiresIn
					return svc.validate()
				}),
			)

			return svc, opts, nil
		},
	})
}

type TokenServiceDefault struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, expiry time.Duration) (*TokenServiceDefault, error) {
	svc := &TokenServiceDefault{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}

	if err := svc.validate(); err != nil {
		return nil, err
	}

	return svc, nil
}

func (t *TokenServiceDefault) ID() string {
	return core.TOKEN_SERVICE
}

func (t *TokenServiceDefault) validate() error {
	if len(t.secret) == 0 {
		return core.ErrJWTEmptySecret
	}

	if t.expiry <= 0 {
		return errors.New("jwt expiry must be positive")
	}

	return nil
}

func (t *TokenServiceDefault) IssueToken(userID string) (string, error) {
	token, err := core.JWTGenerateTokenAt(t.secret, userID, t.expiry, t.now())
	if err != nil {
		return "", core.NewAccountError(core.ErrKeyJWTGenerationFailed, err)
	}

	return token, nil
}

func (t *TokenServiceDefault) VerifyToken(token string) (*core.TokenClaims, error) {
	return core.JWTVerifyToken(token, t.secret)
}
