package db

import (
	"context"
	"fmt"
	"time"
)

// CleanupResult contains statistics about a cleanup run.
type CleanupResult struct {
	// HistoryDeleted is the number of image_history rows removed
	HistoryDeleted int64
	// Duration is how long the cleanup took
	Duration time.Duration
}

// Cleanup deletes history rows older than retentionDays and runs VACUUM if
// anything was removed. Accounts are never removed.
func (d *Database) Cleanup(ctx context.Context, retentionDays int) (CleanupResult, error) {
	start := time.Now()
	var result CleanupResult

	if retentionDays <= 0 {
		return result, fmt.Errorf("retentionDays must be positive, got %d", retentionDays)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	res, err := d.ExecContext(ctx,
		`DELETE FROM image_history WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", retentionDays))
	if err != nil {
		return result, fmt.Errorf("failed to delete from image_history: %w", err)
	}
	if result.HistoryDeleted, err = res.RowsAffected(); err != nil {
		return result, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if result.HistoryDeleted > 0 {
		if _, err := d.ExecContext(ctx, "VACUUM"); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("cleanup succeeded but VACUUM failed: %w", err)
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// CleanupSchedulerConfig holds configuration for the cleanup scheduler.
type CleanupSchedulerConfig struct {
	// RetentionDays is the number of days to retain history
	RetentionDays int
	// Interval is how often to run cleanup
	Interval time.Duration
	// OnCleanup is called after each run (optional)
	OnCleanup func(result CleanupResult, err error)
}

// StartCleanupScheduler runs Cleanup immediately and then every
// config.Interval until ctx is cancelled.
func (d *Database) StartCleanupScheduler(ctx context.Context, config CleanupSchedulerConfig) {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}

	run := func() {
		result, err := d.Cleanup(ctx, config.RetentionDays)
		if config.OnCleanup != nil {
			config.OnCleanup(result, err)
		}
	}

	go func() {
		run()

		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
