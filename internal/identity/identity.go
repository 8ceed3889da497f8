// Package identity resolves inbound bearer credentials to user identities.
// Token issuance lives elsewhere; this adapter only verifies.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrUnauthenticated = errors.New("invalid credential")
	ErrTokenExpired    = errors.New("credential expired")
)

// Claims is the token payload carried by wallet credentials.
type Claims struct {
	UserId string `json:"user_id"`
	jwt.RegisteredClaims
}

// Resolver verifies HS256 tokens against a shared secret.
type Resolver struct {
	secret []byte
}

func NewResolver(secret string) (*Resolver, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	return &Resolver{secret: []byte(secret)}, nil
}

// Resolve maps a credential to a userId, failing with ErrTokenExpired for
// stale tokens and ErrUnauthenticated for everything else.
func (r *Resolver) Resolve(credential string) (string, error) {
	token, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserId == "" {
		return "", ErrUnauthenticated
	}
	return claims.UserId, nil
}

// IssueToken signs a credential for a user. Used by tooling and tests.
func (r *Resolver) IssueToken(userId string, lifetime time.Duration) (string, error) {
	claims := Claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign credential: %w", err)
	}
	return signed, nil
}
