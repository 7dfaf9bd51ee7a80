// Package auth implements the authentication gate live connections pass
// through before they are allowed anywhere near the registry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredential means no credential was presented at all.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential means verification failed or the resolved
	// identity no longer exists.
	ErrInvalidCredential = errors.New("invalid credential")
)

// IdentityStore confirms a resolved identity still exists. Signature
// and expiry verification belong to the token itself; existence belongs
// to the identity service.
type IdentityStore interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// Gate validates a presented bearer credential and resolves it to an
// identity, or refuses the connection. A refused connection must never
// appear in the registry.
type Gate struct {
	jwtSecret string
	users     IdentityStore
}

func NewGate(jwtSecret string, users IdentityStore) *Gate {
	return &Gate{jwtSecret: jwtSecret, users: users}
}

// ExtractCredential picks the bearer credential from the handshake: the
// dedicated auth field wins when both it and the Authorization header
// are present. Returns "" when neither carries one.
func ExtractCredential(authField, authHeader string) string {
	if authField != "" {
		return strings.TrimPrefix(authField, "Bearer ")
	}
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Authenticate resolves the credential to a user identity.
func (g *Gate) Authenticate(ctx context.Context, credential string) (uint, error) {
	if credential == "" {
		return 0, ErrMissingCredential
	}

	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidCredential
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, ErrInvalidCredential
	}
	userID := uint(rawID)

	exists, err := g.users.Exists(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("identity lookup: %w", err)
	}
	if !exists {
		return 0, ErrInvalidCredential
	}

	return userID, nil
}
