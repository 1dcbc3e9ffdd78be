package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.Generate(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", claims.UserID)
	}
	if claims.Email != "u1@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Subject != "u1" {
		t.Errorf("Subject = %q, want u1", claims.Subject)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.Generate(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expired := NewJWTManager("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name    string
		manager *JWTManager
		token   string
	}{
		{name: "garbage", manager: m, token: "not-a-token"},
		{name: "wrong secret", manager: NewJWTManager("other-secret", time.Hour), token: token},
		{name: "expired", manager: expired, token: token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Validate(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
