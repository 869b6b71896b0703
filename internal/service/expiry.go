package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Janitor periodically releases slots held by sessions past their TTL so an
// abandoned swap can never starve a pillar.
type Janitor struct {
	coordinator *SwapCoordinator
	interval    time.Duration
	logger      *zap.Logger
}

// NewJanitor builds the janitor.
func NewJanitor(coordinator *SwapCoordinator, interval time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Janitor{coordinator: coordinator, interval: interval, logger: logger}
}

// Run sweeps until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.coordinator.ExpireStale(ctx, timeNow()); n > 0 {
				j.logger.Info("expired stale swap sessions", zap.Int("count", n))
			}
		}
	}
}
