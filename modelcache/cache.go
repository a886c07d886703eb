// Package modelcache is the process-wide registry of loaded style backends.
//
// Each style maps to at most one handle for the lifetime of the process.
// The first caller for a style constructs it; concurrent first callers share
// that one construction. Handles are never evicted and are released only by
// Close at shutdown.
package modelcache

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KK-2k06/DreamInk/styles"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("modelcache: cache is closed")

// Handle is a loaded backend (diffusion pipeline or style network session).
type Handle interface {
	Close() error
}

// Loader constructs the handle for a style.
type Loader func(styles.Style) (Handle, error)

// Cache maps style to handle.
type Cache struct {
	load   Loader
	logger *zap.Logger

	mu      sync.RWMutex
	handles map[styles.Style]Handle
	closed  bool

	group singleflight.Group
	loads atomic.Int64
}

// New creates an empty cache that constructs handles with load.
func New(load Loader, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		load:    load,
		logger:  logger,
		handles: make(map[styles.Style]Handle),
	}
}

// Acquire returns the handle for style, constructing it on first use.
// A failed construction is not remembered; the next call tries again.
func (c *Cache) Acquire(style styles.Style) (Handle, error) {
	if h, ok, err := c.lookup(style); ok || err != nil {
		return h, err
	}

	v, err, _ := c.group.Do(string(style), func() (any, error) {
		// Another flight may have finished between lookup and Do.
		if h, ok, err := c.lookup(style); ok || err != nil {
			return h, err
		}

		start := time.Now()
		c.loads.Add(1)
		h, err := c.load(style)
		if err != nil {
			c.logger.Error("model load failed",
				zap.String("style", string(style)),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return nil, fmt.Errorf("load %s: %w", style, err)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			_ = h.Close()
			return nil, ErrClosed
		}
		c.handles[style] = h

		c.logger.Info("model loaded",
			zap.String("style", string(style)),
			zap.Duration("elapsed", time.Since(start)))
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Handle), nil
}

func (c *Cache) lookup(style styles.Style) (Handle, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false, ErrClosed
	}
	h, ok := c.handles[style]
	return h, ok, nil
}

// Loaded lists the styles with a constructed handle, sorted.
func (c *Cache) Loaded() []styles.Style {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]styles.Style, 0, len(c.handles))
	for s := range c.handles {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Loads counts constructions attempted, successful or not.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

// Close releases every handle. Further Acquire calls fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error
	for s, h := range c.handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s, err))
		}
	}
	clear(c.handles)
	return errors.Join(errs...)
}
