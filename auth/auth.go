package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/l1emant/insidex-web/models"
	"github.com/l1emant/insidex-web/observability"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrNotAuthenticated signals a missing or expired session. It is a distinct
// error kind so the HTTP boundary can answer with a sign-in redirect instead
// of treating it as a data-fetch failure.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrInvalidCredentials signals a failed sign-in attempt
var ErrInvalidCredentials = errors.New("invalid email or password")

// SessionRepo is the subset of repository operations the auth service needs
type SessionRepo interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service issues and resolves sessions backed by the repository
type Service struct {
	repo       SessionRepo
	sessionTTL time.Duration
	cookieName string
}

// NewService creates a new auth Service
func NewService(repo SessionRepo, sessionTTL time.Duration, cookieName string) *Service {
	return &Service{
		repo:       repo,
		sessionTTL: sessionTTL,
		cookieName: cookieName,
	}
}

// CookieName returns the session cookie name
func (s *Service) CookieName() string {
	return s.cookieName
}

// SignUp registers a new user and signs them in, returning the session token
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required")
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	observability.WithUser(user.ID).Info("user signed up", "email", email)
	return user, token, nil
}

// SignIn verifies credentials and issues a new session token
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// SignOut invalidates the session for the given token. Unknown tokens are
// not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(ctx, token)
}

// SessionFromRequest resolves the current user from the request's session
// cookie or bearer token. Returns ErrNotAuthenticated when no valid session
// is present.
func (s *Service) SessionFromRequest(r *http.Request) (*models.User, error) {
	token := s.tokenFromRequest(r)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.repo.GetSession(r.Context(), token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	if session == nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.repo.GetUserByID(r.Context(), session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

func (s *Service) tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

func (s *Service) createSession(ctx context.Context, userID string) (string, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return session.Token, nil
}
