// Package auth binds a connection to a verified identity. The userId
// is always derived server-side from the token, never taken from a
// client-supplied field.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/Ring/internal/domain"
)

var (
	ErrNoToken      = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

type claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens issued by the account service.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and returns the identity it carries.
func (v *Verifier) Verify(token string) (domain.UserID, error) {
	if token == "" {
		return "", ErrNoToken
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	uid := domain.UserID(c.UserID)
	if err := uid.Validate(); err != nil {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// Issue mints a token for uid. The account service normally does this;
// it lives here so tests and local setups can mint their own.
func (v *Verifier) Issue(uid domain.UserID, ttl time.Duration) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: string(uid),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})
	return t.SignedString(v.secret)
}
