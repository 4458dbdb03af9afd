package auth

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

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

func TestVerify_Valid(t *testing.T) {
	verifier := NewVerifier(testSecret)
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-1",
		"name": "Ada",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verifier.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("UserID = %s, want user-1", claims.UserID)
	}
	if claims.DisplayName != "Ada" {
		t.Fatalf("DisplayName = %s, want Ada", claims.DisplayName)
	}
}

func TestVerify_Failures(t *testing.T) {
	verifier := NewVerifier(testSecret)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{
			"wrong secret",
			signToken(t, "other-secret", jwt.MapClaims{"sub": "user-1"}),
		},
		{
			"expired",
			signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
		},
		{
			"missing subject",
			signToken(t, testSecret, jwt.MapClaims{"name": "Ada"}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := verifier.Verify(tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	verifier := NewVerifier(testSecret)
	raw := signToken(t, testSecret, jwt.MapClaims{"sub": "user-1"})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	claims, err := verifier.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("UserID = %s, want user-1", claims.UserID)
	}

	bare, _ := http.NewRequest(http.MethodGet, "/", nil)
	if _, err := verifier.FromRequest(bare); !errors.Is(err, ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}

	malformed, _ := http.NewRequest(http.MethodGet, "/", nil)
	malformed.Header.Set("Authorization", "Token abc")
	if _, err := verifier.FromRequest(malformed); !errors.Is(err, ErrNoToken) {
		t.Fatalf("error = %v, want ErrNoToken", err)
	}
}
