package database

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/database/migrations"
	"github.com/user/carbontracker/backend/internal/models"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestUserStore_CreateUser(t *testing.T) {
	mock := newMock(t)
	store := NewUserStore(mock)

	id := uuid.New()
	created := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "ada@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id, created))

	user, err := store.CreateUser(context.Background(), "Ada", "ada@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "hash", user.Password)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_CreateUserDuplicate(t *testing.T) {
	mock := newMock(t)
	store := NewUserStore(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("Ada", "ada@example.com", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.CreateUser(context.Background(), "Ada", "ada@example.com", "hash")
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetUserByEmail(t *testing.T) {
	mock := newMock(t)
	store := NewUserStore(mock)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, name, email, password_hash, created_at FROM users WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(id, "Ada", "ada@example.com", "hash", time.Now()))

	user, err := store.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "Ada", user.Name)

	mock.ExpectQuery(`FROM users WHERE email`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	user, err = store.GetUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioStore_ListHoldings(t *testing.T) {
	mock := newMock(t)
	store := NewPortfolioStore(mock)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT item_id, symbol, amount FROM portfolios WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "symbol", "amount"}).
			AddRow("BTC-1", "BTC", 2.0).
			AddRow("ETH-2", "ETH", 0.5))

	holdings, err := store.ListHoldings(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []models.Holding{
		{ID: "BTC-1", Symbol: "BTC", Amount: 2},
		{ID: "ETH-2", Symbol: "ETH", Amount: 0.5},
	}, holdings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioStore_ListHoldingsEmpty(t *testing.T) {
	mock := newMock(t)
	store := NewPortfolioStore(mock)
	userID := uuid.New()

	mock.ExpectQuery(`FROM portfolios`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"item_id", "symbol", "amount"}))

	holdings, err := store.ListHoldings(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestPortfolioStore_ReplaceHoldings(t *testing.T) {
	mock := newMock(t)
	store := NewPortfolioStore(mock)
	userID := uuid.New()

	items := []models.Holding{
		{ID: "BTC-1", Symbol: "BTC", Amount: 2},
		{ID: "SOL-2", Symbol: "SOL", Amount: 10},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(userID))
	mock.ExpectExec(`DELETE FROM portfolios WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	for _, item := range items {
		mock.ExpectExec(`INSERT INTO portfolios`).
			WithArgs(userID, item.ID, item.Symbol, item.Amount).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.ReplaceHoldings(context.Background(), userID, items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioStore_ReplaceHoldingsRollsBack(t *testing.T) {
	mock := newMock(t)
	store := NewPortfolioStore(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(userID))
	mock.ExpectExec(`DELETE FROM portfolios`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO portfolios`).
		WithArgs(userID, "BTC-1", "BTC", 1.0).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.ReplaceHoldings(context.Background(), userID, []models.Holding{{ID: "BTC-1", Symbol: "BTC", Amount: 1}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPortfolioStore_ReplaceHoldingsUnknownUser(t *testing.T) {
	mock := newMock(t)
	store := NewPortfolioStore(mock)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := store.ReplaceHoldings(context.Background(), userID, nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_portfolios.sql"}, names)
}
