package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"alcyxob/workout-tracker/internal/repository/postgres"
	"alcyxob/workout-tracker/internal/repository/testutil"
)

const testJWTSecret = "test-secret"

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	userRepo := postgres.NewUserRepository(tx, log)
	return NewAuthService(userRepo, testJWTSecret, time.Hour, "test-client-id", log)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Carol", "carol@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("user id not assigned")
	}
	if user.PasswordHash != nil {
		t.Fatalf("password hash leaked from Register")
	}

	if _, err := svc.Register(ctx, "Other Carol", "carol@example.com", "different password"); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("duplicate email: expected ErrUserAlreadyExists, got %v", err)
	}

	token, loggedIn, err := svc.Login(ctx, "carol@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("login returned a different user")
	}

	// The token must carry the user id and verify against the secret.
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected uid %d in claims, got %d", user.ID, claims.UserID)
	}

	if _, _, err := svc.Login(ctx, "carol@example.com", "wrong password"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("wrong password: expected ErrAuthenticationFailed, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("unknown email: expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestLoginWithGoogle(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	impl := svc.(*authService)
	impl.verifyGoogle = func(ctx context.Context, rawToken, audience string) (string, string, string, error) {
		if rawToken != "good-token" {
			return "", "", "", errors.New("bad token")
		}
		return "google-sub-1", "dave@example.com", "Dave", nil
	}

	if _, _, err := svc.LoginWithGoogle(ctx, "bad-token"); !errors.Is(err, ErrGoogleTokenInvalid) {
		t.Fatalf("bad token: expected ErrGoogleTokenInvalid, got %v", err)
	}

	// First sign-in provisions a password-less account.
	_, user, err := svc.LoginWithGoogle(ctx, "good-token")
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if user.Email != "dave@example.com" || user.Name != "Dave" {
		t.Fatalf("unexpected provisioned user: %+v", user)
	}

	// Password login is impossible for a Google-only account.
	if _, _, err := svc.Login(ctx, "dave@example.com", "anything"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("password login on google account: expected ErrAuthenticationFailed, got %v", err)
	}

	// Subsequent sign-ins hit the same account.
	_, again, err := svc.LoginWithGoogle(ctx, "good-token")
	if err != nil {
		t.Fatalf("second LoginWithGoogle: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user id %d, got %d", user.ID, again.ID)
	}
}

func TestLoginWithGoogleLinksExistingEmail(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Erin", "erin@example.com", "a long password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	impl := svc.(*authService)
	impl.verifyGoogle = func(ctx context.Context, rawToken, audience string) (string, string, string, error) {
		return "google-sub-erin", "erin@example.com", "Erin G", nil
	}

	_, linked, err := svc.LoginWithGoogle(ctx, "any")
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if linked.ID != registered.ID {
		t.Fatalf("expected linking to existing account %d, got %d", registered.ID, linked.ID)
	}

	// Both credentials now work.
	if _, _, err := svc.Login(ctx, "erin@example.com", "a long password"); err != nil {
		t.Fatalf("password login after linking: %v", err)
	}
}
