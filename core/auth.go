package core

const TOKEN_SERVICE = "token"

type TokenService interface {
	// IssueToken signs a bearer token for the given user ID.
	IssueToken(userID string) (string, error)

	// VerifyToken parses and validates a token issued by IssueToken.
	VerifyToken(token string) (*TokenClaims, error)

	Service
}
