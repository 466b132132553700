package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"talkcoach/internal/database"
	"talkcoach/internal/repository"
	"talkcoach/internal/security"
	"talkcoach/internal/validation"
)

func newAuthTestService(t *testing.T) (*AuthService, *security.TokenIssuer) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	tokens := security.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(repository.NewUserRepository(db), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthTestService(t)

	user, err := svc.Register("learner@example.com", "password123", "Learner")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected a user id")
	}

	token, loggedIn, err := svc.Login("learner@example.com", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("expected user %d, got %d", user.ID, loggedIn.ID)
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("issued token failed to parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("expected claim uid %d, got %d", user.ID, claims.UserID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthTestService(t)

	if _, err := svc.Register("learner@example.com", "password123", "Learner"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register("learner@example.com", "password456", "Other"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		field    string
	}{
		{"bad email", "not-an-email", "password123", "Learner", "email"},
		{"short password", "a@example.com", "short", "Learner", "password"},
		{"missing name", "a@example.com", "password123", "", "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.email, tt.password, tt.userName)
			var vErr validation.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, vErr.Field)
			}
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthTestService(t)

	if _, err := svc.Register("learner@example.com", "password123", "Learner"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login("learner@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login("nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newAuthTestService(t)

	user, err := svc.Register("learner@example.com", "password123", "Learner")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_ = user

	// Unknown emails are silently accepted
	if err := svc.RequestPasswordReset(context.Background(), nil, "nobody@example.com"); err != nil {
		t.Errorf("reset request for unknown email should not error, got %v", err)
	}

	if err := svc.ResetPassword("bogus-token", "newpassword1"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expected ErrInvalidResetToken, got %v", err)
	}
}
