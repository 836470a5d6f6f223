package core

const PASSWORD_SERVICE = "password"

type PasswordService interface {
	// HashPassword returns a salted one-way hash of the plaintext.
	HashPassword(password string) (string, error)

	// VerifyPassword reports whether password matches hash. A malformed hash
	// never matches.
	VerifyPassword(password string, hash string) bool

	Service
}
