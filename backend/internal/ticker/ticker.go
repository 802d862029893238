package ticker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/user/carbontracker/backend/internal/market"
	"github.com/user/carbontracker/backend/internal/models"
)

// Snapshot is one market refresh as pushed to subscribers.
type Snapshot struct {
	Source  string          `json:"source"`
	Ts      int64           `json:"ts"` // Unix timestamp milliseconds
	Cryptos []models.Crypto `json:"cryptos"`
}

// Ticker refreshes a market source periodically and publishes each refresh
// on Updates.
type Ticker struct {
	source   market.Source
	interval time.Duration
	log      *zap.Logger

	// Updates receives every refresh. Refreshes are dropped when nobody reads.
	Updates chan Snapshot
	now     func() time.Time
}

func New(source market.Source, interval time.Duration, log *zap.Logger) *Ticker {
	return &Ticker{
		source:   source,
		interval: interval,
		log:      log.Named("ticker"),
		Updates:  make(chan Snapshot, 16),
		now:      time.Now,
	}
}

// Run refreshes immediately and then on every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	t.log.Info("starting market ticker", zap.String("source", t.source.Name()), zap.Duration("interval", t.interval))

	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	t.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			t.log.Info("market ticker stopped")
			return
		case <-tick.C:
			t.refresh(ctx)
		}
	}
}

func (t *Ticker) refresh(ctx context.Context) {
	snap := Snapshot{
		Source:  t.source.Name(),
		Cryptos: t.source.Snapshot(ctx),
		Ts:      t.now().UnixMilli(),
	}

	// Non-blocking send to avoid blocking the ticker if the channel is full
	select {
	case t.Updates <- snap:
	default:
		t.log.Warn("market update channel full, dropping update")
	}
}
