// Package auth verifies identity tokens issued by the external identity
// provider. Only verification lives here; login flows are out of scope.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken indicates the request carried no bearer token.
	ErrNoToken = errors.New("auth: missing bearer token")
	// ErrInvalidToken indicates the token failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Claims is the subset of token claims the service uses.
type Claims struct {
	UserID      string
	DisplayName string
}

// Verifier checks HMAC-signed tokens from the identity provider.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a raw token string.
func (v *Verifier) Verify(raw string) (Claims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mapClaims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return Claims{}, ErrInvalidToken
	}
	name, _ := mapClaims["name"].(string)

	return Claims{UserID: sub, DisplayName: name}, nil
}

// FromRequest extracts and verifies the bearer token of an HTTP request.
func (v *Verifier) FromRequest(r *http.Request) (Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Claims{}, ErrNoToken
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Claims{}, ErrNoToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if raw == "" {
		return Claims{}, ErrNoToken
	}
	return v.Verify(raw)
}
