package shutdown

import (
	"context"
	"errors"
	"io"
	"net/http"
	"syscall"
	"time"

	"github.com/KK-2k06/DreamInk/core"
	"go.uber.org/zap"
)

// StopHTTPServer stops srv from accepting connections and waits for active
// requests until the shutdown context expires.
func StopHTTPServer(logger *zap.Logger, srv *http.Server) core.ShutdownFunc {
	return func(ctx context.Context) error {
		logger.Info("Stopping HTTP server", zap.String("addr", srv.Addr))
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Drainer is a background writer that can flush its queue.
// *db.AsyncWriter satisfies it.
type Drainer interface {
	Stop(timeout time.Duration) bool
	Pending() int
}

// DrainWriter stops w and waits for queued writes, bounded by the shutdown
// context. Writes still queued at the deadline are lost and logged.
func DrainWriter(logger *zap.Logger, name string, w Drainer) core.ShutdownFunc {
	return func(ctx context.Context) error {
		timeout := time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = max(time.Until(deadline), 0)
		}

		pending := w.Pending()
		if !w.Stop(timeout) {
			logger.Warn("Writer did not drain before deadline",
				zap.String("name", name),
				zap.Int("pending", w.Pending()))
			return nil
		}
		logger.Info("Writer drained", zap.String("name", name), zap.Int("flushed", pending))
		return nil
	}
}

// CloseResource closes c, e.g. the model cache or the database.
func CloseResource(logger *zap.Logger, name string, c io.Closer) core.ShutdownFunc {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			logger.Warn("Shutdown deadline passed, closing anyway", zap.String("name", name))
		}
		if err := c.Close(); err != nil {
			return err
		}
		logger.Info("Closed", zap.String("name", name))
		return nil
	}
}

// Func adapts a plain cleanup function.
func Func(fn func() error) core.ShutdownFunc {
	return func(context.Context) error { return fn() }
}

// SyncLogger flushes buffered log entries. Sync on a terminal returns
// EINVAL or ENOTTY on some platforms; those are ignored.
func SyncLogger(logger *zap.Logger) core.ShutdownFunc {
	return func(context.Context) error {
		err := logger.Sync()
		if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
			return nil
		}
		return err
	}
}
