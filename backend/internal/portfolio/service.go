// Package portfolio reads and replaces the holdings of a user.
package portfolio

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/carbontracker/backend/internal/apperr"
	"github.com/user/carbontracker/backend/internal/models"
)

// Store is the holding storage used by Service.
type Store interface {
	ListHoldings(ctx context.Context, userID uuid.UUID) ([]models.Holding, error)
	ReplaceHoldings(ctx context.Context, userID uuid.UUID, items []models.Holding) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns all holdings of userID, never nil.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) ([]models.Holding, error) {
	holdings, err := s.store.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if holdings == nil {
		holdings = make([]models.Holding, 0)
	}
	return holdings, nil
}

// Replace validates items and swaps them in for the whole holding set of
// userID.
func (s *Service) Replace(ctx context.Context, userID uuid.UUID, items []models.Holding) error {
	clean, err := s.normalize(items)
	if err != nil {
		return err
	}
	return s.store.ReplaceHoldings(ctx, userID, clean)
}

// normalize validates items and fills in missing ids into a new slice.
func (s *Service) normalize(items []models.Holding) ([]models.Holding, error) {
	out := make([]models.Holding, 0, len(items))
	for i, item := range items {
		item.Symbol = strings.TrimSpace(item.Symbol)
		if item.Symbol == "" {
			return nil, fmt.Errorf("%w: item %d has no symbol", apperr.ErrValidation, i)
		}
		if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) || item.Amount < 0 {
			return nil, fmt.Errorf("%w: item %d (%s) has an invalid amount", apperr.ErrValidation, i, item.Symbol)
		}
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			item.ID = NewItemID(item.Symbol, s.now())
		}
		out = append(out, item)
	}
	return out, nil
}

// NewItemID builds a holding id from the symbol and the time in unix millis.
func NewItemID(symbol string, at time.Time) string {
	return symbol + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}
