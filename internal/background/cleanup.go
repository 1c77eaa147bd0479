package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredArtifactPurger removes artifacts past their lifetime.
type ExpiredArtifactPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// HistoryTrimmer drops login records older than a cutoff.
type HistoryTrimmer interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupManager periodically purges expired recovery codes and reset tokens
// and trims old login history. Expiry is enforced at read time regardless;
// the sweep just keeps the tables from growing without bound.
type CleanupManager struct {
	codes     ExpiredArtifactPurger
	tokens    ExpiredArtifactPurger
	history   HistoryTrimmer
	logger    *slog.Logger
	interval  time.Duration
	retention time.Duration
	stopCh    chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	codes ExpiredArtifactPurger,
	tokens ExpiredArtifactPurger,
	history HistoryTrimmer,
	logger *slog.Logger,
	interval time.Duration,
	retention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		codes:     codes,
		tokens:    tokens,
		history:   history,
		logger:    logger,
		interval:  interval,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	codes, err := cm.codes.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to purge expired recovery codes", slog.Any("error", err))
	}

	tokens, err := cm.tokens.DeleteExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to purge expired reset tokens", slog.Any("error", err))
	}

	var trimmed int64
	if cm.retention > 0 {
		trimmed, err = cm.history.DeleteOlderThan(cleanupCtx, time.Now().Add(-cm.retention))
		if err != nil {
			cm.logger.Error("failed to trim login history", slog.Any("error", err))
		}
	}

	if codes > 0 || tokens > 0 || trimmed > 0 {
		cm.logger.Info("cleanup completed",
			slog.Int64("recovery_codes", codes),
			slog.Int64("reset_tokens", tokens),
			slog.Int64("login_records", trimmed))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
