package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/logger"
	"alcyxob/workout-tracker/internal/repository"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrGoogleTokenInvalid   = errors.New("google id token is invalid")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// LoginWithGoogle verifies a Google ID token, provisions the account on
	// first sign-in, and issues the same JWT as a password login.
	LoginWithGoogle(ctx context.Context, googleIDToken string) (token string, user *domain.User, err error)
	GetJWTSecret() string
}

// googleTokenVerifier validates a Google ID token against an audience and
// returns (subject, email, name). Swappable in tests.
type googleTokenVerifier func(ctx context.Context, rawToken, audience string) (sub, email, name string, err error)

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
	googleAud     string
	verifyGoogle  googleTokenVerifier
	log           *logger.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration, googleOAuthClientID string, baseLog *logger.Logger) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		googleAud:     googleOAuthClientID,
		verifyGoogle:  verifyGoogleIDToken,
		log:           baseLog.With("service", "AuthService"),
	}
}

// Register handles new user registration with email and password.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrValidationFailed
	}

	_, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	hash := string(hashed)

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: &hash,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		// The unique index catches the race between the existence check and
		// the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = nil
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}
	if !user.HasPassword() {
		// Google-only account; no password to compare against.
		return "", nil, ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = nil
	return token, user, nil
}

// LoginWithGoogle verifies the ID token and signs the user in, creating the
// account keyed by the Google subject on first sign-in.
func (s *authService) LoginWithGoogle(ctx context.Context, googleIDToken string) (string, *domain.User, error) {
	if googleIDToken == "" {
		return "", nil, ErrGoogleTokenInvalid
	}

	sub, email, name, err := s.verifyGoogle(ctx, googleIDToken, s.googleAud)
	if err != nil {
		s.log.Warn("google id token rejected", "error", err)
		return "", nil, ErrGoogleTokenInvalid
	}

	user, err := s.userRepo.GetByGoogleSub(ctx, nil, sub)
	switch {
	case err == nil:
		// Existing Google account.
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.provisionGoogleUser(ctx, sub, email, name)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = nil
	return token, user, nil
}

// provisionGoogleUser links the Google subject to an existing account with
// the same email, or creates a fresh password-less account.
func (s *authService) provisionGoogleUser(ctx context.Context, sub, email, name string) (*domain.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, nil, email)
	if err == nil {
		existing.GoogleSub = &sub
		if err := s.userRepo.Update(ctx, nil, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		Name:      name,
		Email:     email,
		GoogleSub: &sub,
	}
	if err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, err
	}
	s.log.Info("provisioned user from google sign-in", "userId", user.ID)
	return user, nil
}

// --- JWT Helpers ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "workout-tracker",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication.
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// verifyGoogleIDToken is the production googleTokenVerifier.
func verifyGoogleIDToken(ctx context.Context, rawToken, audience string) (string, string, string, error) {
	payload, err := idtoken.Validate(ctx, rawToken, audience)
	if err != nil {
		return "", "", "", err
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return "", "", "", errors.New("google id token is missing the email claim")
	}
	if name == "" {
		name = email
	}
	return payload.Subject, email, name, nil
}
