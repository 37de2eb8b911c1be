// Package busy tracks in-flight operations and derives a single
// edge-triggered "something is loading" signal from them.
package busy

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrCounterUnderflow is returned by Complete when a completion has no
// matching outstanding Register. The count is clamped at zero.
var ErrCounterUnderflow = errors.New("busy: complete without matching register")

// Handle identifies one registered operation. It must be completed exactly
// once.
type Handle struct {
	id    uint64
	owner *Counter
	done  bool // guarded by owner.mu
}

// ID returns the handle's sequence number, for logging.
func (h *Handle) ID() uint64 {
	if h == nil {
		return 0
	}
	return h.id
}

// Counter counts outstanding operations. Visible is true iff at least one
// is outstanding. The zero value is not usable; use NewCounter.
type Counter struct {
	mu         sync.Mutex
	count      int
	nextID     uint64
	underflows int

	observers map[int]Observer
	nextObsID int

	logger *slog.Logger
}

// NewCounter creates a counter starting at zero.
func NewCounter(logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{
		observers: make(map[int]Observer),
		logger:    logger,
	}
}

// Register marks a new operation as in flight. Call it before the operation
// suspends.
func (c *Counter) Register() *Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	c.count++
	if c.count == 1 {
		c.notify(true)
	}
	return &Handle{id: c.nextID, owner: c}
}

// Complete marks the operation identified by h as finished, whatever its
// outcome. Completing a handle twice, completing a nil or foreign handle, or
// completing while nothing is outstanding leaves the count unchanged (never
// below zero) and returns ErrCounterUnderflow.
func (c *Counter) Complete(h *Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case h == nil:
		return c.underflow(0, "nil handle")
	case h.owner != c:
		return c.underflow(h.id, "handle belongs to another counter")
	case h.done:
		return c.underflow(h.id, "handle already completed")
	}
	h.done = true

	if c.count == 0 {
		return c.underflow(h.id, "count already zero")
	}
	c.count--
	if c.count == 0 {
		c.notify(false)
	}
	return nil
}

// underflow records a diagnostic. Caller holds c.mu.
func (c *Counter) underflow(id uint64, reason string) error {
	c.underflows++
	c.logger.Warn("busy counter underflow", "handle", id, "reason", reason, "count", c.count)
	return fmt.Errorf("%w: %s", ErrCounterUnderflow, reason)
}

// Visible reports whether any operation is in flight.
func (c *Counter) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count > 0
}

// Count returns the number of outstanding operations.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Underflows returns how many unmatched completions have been reported.
func (c *Counter) Underflows() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.underflows
}

// Subscribe registers o for busy edges. It returns the visibility at the
// moment of subscription, so the caller can render the initial state without
// racing the first edge, and a function that removes the subscription.
func (c *Counter) Subscribe(o Observer) (visible bool, unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o

	return c.count > 0, func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// notify delivers an edge to every observer. Caller holds c.mu.
func (c *Counter) notify(visible bool) {
	c.logger.Debug("busy edge", "visible", visible)
	for _, o := range c.observers {
		o.OnVisibilityChange(visible)
	}
}
