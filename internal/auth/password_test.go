package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/seetoh/bagelfunds/internal/models"
	"github.com/seetoh/bagelfunds/internal/storage/sqlite"
)

func newTestAuthenticator(t *testing.T) *PasswordAuthenticator {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "bagelfunds-auth-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewPasswordAuthenticator(store)
}

func TestRegister(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	user, err := a.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be set")
	}

	t.Run("stored credential verifies the password and nothing else", func(t *testing.T) {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse battery")); err != nil {
			t.Errorf("hash does not verify the password: %v", err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("wrong password")); err == nil {
			t.Error("hash verified a wrong password")
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "alice", "other@example.com", "another password")
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "alice2", "alice@example.com", "another password")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		_, err := a.Register(ctx, "bob", "bob@example.com", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	ctx := context.Background()

	registered, err := a.Register(ctx, "carol", "carol@example.com", "a decent password")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := a.Authenticate(ctx, "carol", "a decent password")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("identity: expected %s, got %s", registered.ID, user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "carol", "not the password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "nobody", "a decent password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-test-secret-32-bytes", time.Hour)
	user := &models.User{ID: "user-1", Username: "alice"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Errorf("claims: got %+v", claims)
	}

	t.Run("tampered token rejected", func(t *testing.T) {
		if _, err := m.Validate(token + "x"); err == nil {
			t.Error("expected tampered token to fail validation")
		}
	})

	t.Run("token signed with another key rejected", func(t *testing.T) {
		other := NewJWTManager("another-secret-entirely-32-bytes", time.Hour)
		forged, err := other.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(forged); err == nil {
			t.Error("expected foreign-signed token to fail validation")
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret-test-secret-32-bytes", -time.Minute)
		token, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(token); err == nil {
			t.Error("expected expired token to fail validation")
		}
	})
}
