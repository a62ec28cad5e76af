package background

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired entries from a limiter store and reports how many
// were removed.
type Sweeper interface {
	Sweep() int
}

// CleanupManager periodically sweeps expired records out of the in-memory
// limiter stores, which otherwise only reclaim entries lazily on access.
type CleanupManager struct {
	stores   []Sweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(logger *slog.Logger, interval time.Duration, stores ...Sweeper) *CleanupManager {
	return &CleanupManager{
		stores:   stores,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// Stop signals the cleanup task to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

func (cm *CleanupManager) runCleanup() {
	total := 0
	for _, store := range cm.stores {
		total += store.Sweep()
	}
	if total > 0 {
		cm.logger.Debug("swept expired limiter records", "removed", total)
	}
}
