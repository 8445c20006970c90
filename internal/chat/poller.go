package chat

import (
	"context"
	"time"
)

const DefaultPollInterval = 3000 * time.Millisecond

// Poller refreshes a Store on a fixed interval.
type Poller struct {
	store    *Store
	interval time.Duration
}

func NewPoller(store *Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{store: store, interval: interval}
}

// Run polls until ctx is cancelled. Failed polls are logged by the store
// and do not stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = p.store.Poll(ctx)
		}
	}
}
