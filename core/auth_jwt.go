package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const AUTH_HEADER_NAME = "Authorization"

var (
	ErrJWTUnexpectedClaimsType = errors.New("unexpected claims type")
	ErrJWTInvalid              = errors.New("invalid JWT")
	ErrJWTEmptySecret          = errors.New("jwt secret is empty")
)

// TokenClaims carries the user ID under the "userId" claim alongside the
// registered claims.
type TokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func JWTGenerateToken(secret []byte, userID string, duration time.Duration) (string, error) {
	return JWTGenerateTokenAt(secret, userID, duration, time.Now())
}

// JWTGenerateTokenAt signs an HS256 token issued at now.
func JWTGenerateTokenAt(secret []byte, userID string, duration time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrJWTEmptySecret
	}

	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func JWTVerifyToken(token string, secret []byte) (*TokenClaims, error) {
	validatedToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJWTInvalid, err)
	}

	claim, ok := validatedToken.Claims.(*TokenClaims)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJWTUnexpectedClaimsType, validatedToken.Claims)
	}

	return claim, nil
}

// BearerToken formats a token for the Authorization header.
func BearerToken(token string) string {
	return "Bearer " + token
}
