package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingScope = errors.New("token has no subject")
)

// TokenValidator verifies HS256 tokens whose subject names a scope
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator creates a validator for the shared secret. An empty
// secret rejects every token.
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Enabled reports whether a secret is configured
func (v *TokenValidator) Enabled() bool {
	return len(v.secret) > 0
}

// ValidateToken verifies the token and returns its subject
func (v *TokenValidator) ValidateToken(tokenString string) (string, error) {
	if !v.Enabled() {
		return "", fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrMissingScope
	}
	return claims.Subject, nil
}

// IssueToken signs a token for scope. Used by tooling and tests.
func (v *TokenValidator) IssueToken(scope string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = scope
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
