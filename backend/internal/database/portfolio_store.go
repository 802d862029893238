package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/models"
)

// PortfolioStore persists user holdings.
type PortfolioStore struct {
	db PgxPool
}

func NewPortfolioStore(db PgxPool) *PortfolioStore {
	return &PortfolioStore{db: db}
}

// ListHoldings retrieves all holdings of a user, in insertion order.
func (s *PortfolioStore) ListHoldings(ctx context.Context, userID uuid.UUID) ([]models.Holding, error) {
	holdings := make([]models.Holding, 0)
	query := `SELECT item_id, symbol, amount FROM portfolios WHERE user_id = $1 ORDER BY id`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.Symbol, &h.Amount); err != nil {
			return nil, fmt.Errorf("error scanning holding for user %s: %w", userID, err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings for user %s: %w", userID, err)
	}

	return holdings, nil
}

// ReplaceHoldings swaps the whole holding set of a user for items in one
// transaction. The user row is locked first so concurrent saves serialize.
func (s *PortfolioStore) ReplaceHoldings(ctx context.Context, userID uuid.UUID, items []models.Holding) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after Commit

	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", userID, apperr.ErrUnauthorized)
		}
		return fmt.Errorf("error locking user %s: %w", userID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM portfolios WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting holdings for user %s: %w", userID, err)
	}

	insert := `INSERT INTO portfolios (user_id, item_id, symbol, amount) VALUES ($1, $2, $3, $4)`
	for _, item := range items {
		if _, err := tx.Exec(ctx, insert, userID, item.ID, item.Symbol, item.Amount); err != nil {
			return fmt.Errorf("error inserting holding %s for user %s: %w", item.Symbol, userID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit holdings for user %s: %w", userID, err)
	}
	return nil
}
