package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/models"
)

// UserStore is the credential storage used by Service.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.Identity `json:"user"`
}

// Service registers users and opens sessions.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
}

func NewService(users UserStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. Every field is required and the email must be new.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperr.ErrValidation)
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, apperr.ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	// CreateUser maps a unique violation to ErrEmailTaken for concurrent registrations.
	user, err := s.users.CreateUser(ctx, name, email, hash)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		CheckPasswordHash(password, string(dummyHash))
		return nil, apperr.ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, user.Password) {
		return nil, apperr.ErrInvalidCredentials
	}

	identity := user.Identity()
	token, expiresAt, err := s.tokens.Generate(identity)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expiresAt, User: identity}, nil
}
