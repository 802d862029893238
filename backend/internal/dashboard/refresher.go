package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/carbontracker/backend/internal/models"
)

const DefaultRefreshInterval = 60 * time.Second

var ErrEmptySnapshot = errors.New("no market data received")

// FetchFunc loads one market snapshot.
type FetchFunc func(ctx context.Context) ([]models.Crypto, error)

// Refresher reloads the market list periodically. The last successful fetch
// wins; a failed fetch leaves the previous list in place.
type Refresher struct {
	fetch    FetchFunc
	interval time.Duration

	// OnUpdate and OnError are called from the Run goroutine.
	OnUpdate func(list []models.Crypto)
	OnError  func(err error)

	mu      sync.RWMutex
	current []models.Crypto
}

func NewRefresher(fetch FetchFunc, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{fetch: fetch, interval: interval}
}

// Run fetches immediately and then on every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	tick := time.NewTicker(r.interval)
	defer tick.Stop()

	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh fetches once. It may be called alongside Run for a manual reload.
func (r *Refresher) Refresh(ctx context.Context) error {
	list, err := r.fetch(ctx)
	if err == nil && len(list) == 0 {
		err = ErrEmptySnapshot
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if r.OnError != nil {
			r.OnError(err)
		}
		return err
	}

	r.mu.Lock()
	r.current = list
	r.mu.Unlock()

	if r.OnUpdate != nil {
		r.OnUpdate(list)
	}
	return nil
}

// Current returns the last good list, nil before the first success.
func (r *Refresher) Current() []models.Crypto {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
