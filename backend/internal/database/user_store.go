package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/models"
)

const uniqueViolation = "23505"

// UserStore persists user accounts.
type UserStore struct {
	db PgxQuerier
}

func NewUserStore(db PgxQuerier) *UserStore {
	return &UserStore{db: db}
}

// CreateUser inserts a new user into the database.
func (s *UserStore) CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: passwordHash, // This is the hash
	}

	query := `INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3)
			  RETURNING id, created_at`

	err := s.db.QueryRow(ctx, query, name, email, passwordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user %s: %w", email, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when there is none.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

	err := s.db.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("error getting user %s: %w", email, err)
	}

	return user, nil
}
