package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeStore struct {
	known map[uint]bool
	err   error
}

func (f *fakeStore) Exists(_ context.Context, userID uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[userID], nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(userID uint) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
}

func TestExtractCredential(t *testing.T) {
	tests := []struct {
		name       string
		authField  string
		authHeader string
		want       string
	}{
		{"field only", "abc", "", "abc"},
		{"header only", "", "Bearer xyz", "xyz"},
		{"field wins over header", "abc", "Bearer xyz", "abc"},
		{"bearer prefix stripped from field", "Bearer abc", "", "abc"},
		{"header without prefix", "", "raw", "raw"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractCredential(tt.authField, tt.authHeader); got != tt.want {
				t.Errorf("ExtractCredential() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthenticateValid(t *testing.T) {
	gate := NewGate(testSecret, &fakeStore{known: map[uint]bool{42: true}})
	token := signToken(t, testSecret, validClaims(42))

	userID, err := gate.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Authenticate() = %d, want 42", userID)
	}
}

func TestAuthenticateMissing(t *testing.T) {
	gate := NewGate(testSecret, &fakeStore{})

	if _, err := gate.Authenticate(context.Background(), ""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("Authenticate() error = %v, want ErrMissingCredential", err)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	store := &fakeStore{known: map[uint]bool{42: true}}
	gate := NewGate(testSecret, store)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "other-secret", validClaims(42))},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"user_id": 42,
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})},
		{"no user_id claim", signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"unknown user", signToken(t, testSecret, validClaims(99))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gate.Authenticate(context.Background(), tt.token); !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredential", err)
			}
		})
	}
}

func TestAuthenticateStoreFailure(t *testing.T) {
	storeErr := errors.New("db down")
	gate := NewGate(testSecret, &fakeStore{err: storeErr})
	token := signToken(t, testSecret, validClaims(42))

	_, err := gate.Authenticate(context.Background(), token)
	if !errors.Is(err, storeErr) {
		t.Errorf("Authenticate() error = %v, want wrapped store error", err)
	}
	if errors.Is(err, ErrInvalidCredential) {
		t.Error("store failure was collapsed into ErrInvalidCredential")
	}
}
