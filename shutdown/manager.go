package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KK-2k06/DreamInk/core"
	"go.uber.org/zap"
)

// Manager ties the tracker, the cleanup registry and signal handling together.
//
//	mgr := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.ShutdownTimeout()))
//	mgr.Register("http", shutdown.PriorityHTTP, shutdown.StopHTTPServer(logger, srv))
//	mgr.Register("database", shutdown.PriorityStorage, shutdown.CloseResource(logger, "database", store))
//	mgr.Start()
//	mgr.Wait()
//	err := mgr.Shutdown()
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	started  bool
	shutdown bool

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *OperationTracker
	registry *ShutdownRegistry
	signals  *SignalCounter
	sigChan  chan os.Signal
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithTimeout bounds the whole shutdown sequence. Default 60s.
func WithTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// NewManager creates a Manager. A second signal calls os.Exit(core.ExitCodeError).
func NewManager(logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		logger:   logger,
		timeout:  60 * time.Second,
		ctx:      ctx,
		cancel:   cancel,
		tracker:  NewOperationTracker(),
		registry: NewShutdownRegistry(),
		sigChan:  make(chan os.Signal, 1),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.signals = NewSignalCounter(2, func() {
		m.logger.Warn("Received second signal, forcing exit")
		os.Exit(core.ExitCodeError)
	})
	return m
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Register adds a cleanup function. See the Priority constants.
func (m *Manager) Register(name string, priority int, fn core.ShutdownFunc) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("Registered shutdown handler",
		zap.String("name", name),
		zap.Int("priority", priority))
}

// Start listens for SIGINT and SIGTERM. The first signal cancels Context;
// the second forces an exit. Calling Start again is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range m.sigChan {
			if m.signals.Increment() == 1 {
				m.logger.Info("Received shutdown signal, draining",
					zap.String("signal", sig.String()))
				m.cancel()
			}
		}
	}()
}

// Trigger begins shutdown without a signal, e.g. from a service stop request.
func (m *Manager) Trigger() {
	m.cancel()
}

// Wait blocks until Context is cancelled.
func (m *Manager) Wait() {
	<-m.ctx.Done()
}

// Shutdown rejects new operations, waits for running ones and then runs the
// cleanup functions with whatever time remains (at least one second).
// Only the first call does anything.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	started := m.started
	m.mu.Unlock()

	m.cancel()
	if started {
		signal.Stop(m.sigChan)
		close(m.sigChan)
	}

	begin := time.Now()
	m.logger.Info("Initiating graceful shutdown",
		zap.Duration("timeout", m.timeout),
		zap.Int64("in_flight", m.tracker.ActiveCount()))

	m.tracker.Close()
	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("Timed out waiting for in-flight requests",
			zap.Int64("remaining", m.tracker.ActiveCount()))
	}

	remaining := max(m.timeout-time.Since(begin), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	errs := m.registry.Shutdown(ctx)
	for _, err := range errs {
		m.logger.Error("Cleanup failed", zap.Error(err))
	}

	m.logger.Info("Shutdown complete",
		zap.Duration("duration", time.Since(begin)),
		zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// WrapOperation runs fn as a tracked operation. Once shutdown has begun it
// returns ErrTrackerClosed without calling fn.
func (m *Manager) WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	if !m.tracker.Start() {
		m.logger.Debug("Operation rejected, shutting down", zap.String("operation", name))
		return ErrTrackerClosed
	}
	defer m.tracker.Done()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// ActiveOperations returns the number of running tracked operations.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.ActiveCount()
}

// IsShuttingDown reports whether Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdown
}

// RegisteredHandlers returns cleanup names in execution order.
func (m *Manager) RegisteredHandlers() []string {
	return m.registry.Names()
}
