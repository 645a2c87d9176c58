// Package worker runs marketd's background jobs.
package worker

import (
	"context"
	"time"

	"github.com/dmitrijs2005/datamarket/internal/logging"
)

// Settler completes transfers whose stream has run its course.
type Settler interface {
	SettleExpired(ctx context.Context) (int, error)
}

// Settlement calls Settler on a fixed interval.
type Settlement struct {
	settler  Settler
	interval time.Duration
	logger   logging.Logger
}

func NewSettlement(s Settler, interval time.Duration, l logging.Logger) *Settlement {
	return &Settlement{
		settler:  s,
		interval: interval,
		logger:   l.With("module", "settlement"),
	}
}

// Run settles once right away and then on every tick until ctx is done.
// A failed round is logged and retried on the next tick.
func (w *Settlement) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info(ctx, "settlement worker started", "interval", w.interval)
	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "settlement worker stopped")
			return nil
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single settlement round and returns how many
// transfers were completed.
func (w *Settlement) RunOnce(ctx context.Context) int {
	start := time.Now()

	n, err := w.settler.SettleExpired(ctx)
	if err != nil {
		w.logger.Error(ctx, "settlement round failed", "error", err, "settled", n)
		return n
	}
	if n > 0 {
		w.logger.Debug(ctx, "settlement round done", "settled", n, "duration", time.Since(start))
	}
	return n
}
