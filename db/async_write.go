package db

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultChannelCapacity is the default buffer size for queued writes.
const DefaultChannelCapacity = 100

// DefaultDrainTimeout bounds how long Stop waits for queued writes.
const DefaultDrainTimeout = 30 * time.Second

// WriteOperation is one queued write.
type WriteOperation struct {
	// Label names the write in logs, e.g. "insert image_history".
	Label string
	// Exec performs the write.
	Exec func(ctx context.Context) error
	// Queued is when the operation entered the buffer.
	Queued time.Time
}

// AsyncWriter runs writes on a background goroutine so request handlers do
// not wait for SQLite. Failed writes are logged and dropped.
type AsyncWriter struct {
	ops    chan WriteOperation
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// AsyncWriterConfig holds configuration for the async writer.
type AsyncWriterConfig struct {
	// ChannelCapacity is the buffer size for pending writes
	ChannelCapacity int
	// DrainTimeout is the maximum wait time during shutdown
	DrainTimeout time.Duration
}

// DefaultAsyncWriterConfig returns the default configuration.
func DefaultAsyncWriterConfig() AsyncWriterConfig {
	return AsyncWriterConfig{
		ChannelCapacity: DefaultChannelCapacity,
		DrainTimeout:    DefaultDrainTimeout,
	}
}

// NewAsyncWriter creates a stopped writer. Call Start before queueing.
func NewAsyncWriter(config AsyncWriterConfig, logger *zap.Logger) *AsyncWriter {
	if config.ChannelCapacity <= 0 {
		config.ChannelCapacity = DefaultChannelCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncWriter{
		ops:    make(chan WriteOperation, config.ChannelCapacity),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the background goroutine. Calling it twice is a no-op.
func (w *AsyncWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
}

func (w *AsyncWriter) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case op := <-w.ops:
			w.exec(op)
		}
	}
}

func (w *AsyncWriter) drain() {
	for {
		select {
		case op := <-w.ops:
			w.exec(op)
		default:
			return
		}
	}
}

func (w *AsyncWriter) exec(op WriteOperation) {
	// Queued writes still complete during shutdown, so they get a fresh context.
	ctx, cancel := context.WithTimeout(context.Background(), DefaultDrainTimeout)
	defer cancel()

	if err := op.Exec(ctx); err != nil {
		w.logger.Warn("async write failed",
			zap.String("op", op.Label),
			zap.Duration("queued_for", time.Since(op.Queued)),
			zap.Error(err))
	}
}

// Write queues fn without blocking. It reports false when the writer is not
// running or the buffer is full; the caller decides whether to write inline.
func (w *AsyncWriter) Write(label string, fn func(ctx context.Context) error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started || w.stopped {
		return false
	}

	select {
	case w.ops <- WriteOperation{Label: label, Exec: fn, Queued: time.Now()}:
		return true
	default:
		return false
	}
}

// Pending returns the number of queued writes.
func (w *AsyncWriter) Pending() int {
	return len(w.ops)
}

// IsStarted reports whether the writer is accepting writes.
func (w *AsyncWriter) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && !w.stopped
}

// Stop stops accepting writes and waits up to timeout for queued writes to
// finish. It reports whether the drain completed in time.
func (w *AsyncWriter) Stop(timeout time.Duration) bool {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		w.logger.Warn("async writer drain timed out", zap.Int("pending", w.Pending()))
		return false
	}
}
