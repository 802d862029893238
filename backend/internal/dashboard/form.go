package dashboard

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/user/carbontracker/backend/internal/models"
	"github.com/user/carbontracker/backend/internal/portfolio"
)

var (
	ErrNoSymbol      = errors.New("select a cryptocurrency")
	ErrBadAmount     = errors.New("amount must be a positive number")
	ErrUnknownSymbol = errors.New("symbol is not in the current market list")
)

// Form is the editable portfolio. Changes stay local until the holdings are
// saved as a whole.
type Form struct {
	Items []models.Holding
}

// Add appends a holding for symbol after checking it against the snapshot.
func (f *Form) Add(symbol string, amount float64, list []models.Crypto, now time.Time) (models.Holding, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return models.Holding{}, ErrNoSymbol
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return models.Holding{}, ErrBadAmount
	}
	if !contains(list, symbol) {
		return models.Holding{}, ErrUnknownSymbol
	}

	item := models.Holding{ID: portfolio.NewItemID(symbol, now), Symbol: symbol, Amount: amount}
	f.Items = append(f.Items, item)
	return item, nil
}

// Remove drops the holding with id and reports whether it was present.
func (f *Form) Remove(id string) bool {
	kept := f.Items[:0]
	removed := false
	for _, item := range f.Items {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	f.Items = kept
	return removed
}

func contains(list []models.Crypto, symbol string) bool {
	for _, c := range list {
		if c.Symbol == symbol {
			return true
		}
	}
	return false
}
