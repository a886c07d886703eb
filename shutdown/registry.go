package shutdown

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/KK-2k06/DreamInk/core"
)

// Cleanup priorities used by the server. Lower runs first.
const (
	PriorityHTTP    = 10 // stop accepting connections
	PriorityWorkers = 20 // drain background writers and schedulers
	PriorityModels  = 30 // release model handles and runtimes
	PriorityStorage = 40 // close the database
	PriorityLogs    = 90 // flush logs last
)

type shutdownEntry struct {
	name     string
	fn       core.ShutdownFunc
	priority int
}

// ShutdownRegistry holds cleanup functions ordered by priority. Entries with
// equal priority run in registration order.
type ShutdownRegistry struct {
	mu      sync.Mutex
	entries []shutdownEntry
	closed  bool
}

// NewShutdownRegistry creates an empty registry.
func NewShutdownRegistry() *ShutdownRegistry {
	return &ShutdownRegistry{}
}

// Register adds fn under name. Registration after Shutdown is ignored.
func (r *ShutdownRegistry) Register(name string, priority int, fn core.ShutdownFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.entries = append(r.entries, shutdownEntry{name: name, fn: fn, priority: priority})
}

func (r *ShutdownRegistry) sorted() []shutdownEntry {
	out := slices.Clone(r.entries)
	slices.SortStableFunc(out, func(a, b shutdownEntry) int {
		return cmp.Compare(a.priority, b.priority)
	})
	return out
}

// Shutdown runs every function in priority order, even after failures, and
// returns the errors tagged with the entry name. It runs at most once.
func (r *ShutdownRegistry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	entries := r.sorted()
	r.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *ShutdownRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.sorted()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// Count returns the number of registered functions.
func (r *ShutdownRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
