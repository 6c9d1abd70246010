package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrTokenExpired = errors.New("token_expired")
)

// Claims is the payload of an action token sent by email (registration and
// password reset links).
type Claims struct {
	Email           string `json:"email"`
	Action          string `json:"action"`
	CertificationID string `json:"certificationId,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs claims as an HS256 JWT with the session secret. ttl sets
// the expiry.
func IssueToken(c Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(Secret()))
}

// ParseToken checks the signature and expiry of a token produced by IssueToken.
func ParseToken(token string) (Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return []byte(Secret()), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return c, ErrTokenExpired
	default:
		return c, ErrInvalidToken
	}
}
