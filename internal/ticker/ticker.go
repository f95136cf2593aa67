package ticker

import (
	"context"
	"time"

	"github.com/callvox/painel/backend/internal/metadata"
	"github.com/rs/zerolog"
)

// Refresher periodically reloads queue metadata so renamed or newly
// registered queues show up without a manual refresh call.
type Refresher struct {
	meta     *metadata.Store
	interval time.Duration
	logger   zerolog.Logger
}

// NewRefresher creates a new Refresher
func NewRefresher(meta *metadata.Store, interval time.Duration, logger zerolog.Logger) *Refresher {
	return &Refresher{
		meta:     meta,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the periodic refresh loop
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("metadata refresher started")

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("metadata refresher stopped")
			return

		case <-ticker.C:
			r.meta.Refresh(ctx)
			r.logger.Debug().
				Int("queues", len(r.meta.Queues())).
				Str("error", r.meta.Err()).
				Msg("queue metadata refresh tick")
		}
	}
}
