// Package module defines the capability trio every bar module
// implements (spec §3, §4.D) and a Base helper concrete modules embed
// for their lock and bar reference. Grounded in yambar's module.h/module.c.
package module

import (
	"context"
	"sync"
	"time"

	"github.com/barline/barline/internal/particle"
)

// Bar is the collaborator a running module holds a reference to: it can
// request a render, schedule a timed one, change the pointer shape, and
// run an on-click command on the module's behalf (spec §3, §4.D).
type Bar interface {
	particle.Dispatcher
	Refresh()
	RefreshIn(d time.Duration)
}

// Module is a capability trio: Run executes on its own goroutine until
// ctx is cancelled and returns an exit code (0 for clean shutdown);
// Content returns a fresh Exposable built from a snapshot of the
// module's current state. Content must never be called by the module's
// own Run goroutine — only the bar thread calls it (spec §4.D).
type Module interface {
	Run(ctx context.Context) int
	Content() particle.Exposable
}

// Base is embedded by concrete modules for the lock-guarded-state
// pattern every yambar module follows: acquire the lock, mutate, release,
// then optionally ask the bar to refresh.
type Base struct {
	mu  sync.Mutex
	Bar Bar
}

// NewBase returns a Base bound to bar.
func NewBase(bar Bar) Base {
	return Base{Bar: bar}
}

// Lock acquires the module's state lock.
func (b *Base) Lock() { b.mu.Lock() }

// Unlock releases the module's state lock.
func (b *Base) Unlock() { b.mu.Unlock() }
