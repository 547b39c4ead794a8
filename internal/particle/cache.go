package particle

import (
	"sync"

	"github.com/barline/barline/internal/font"
)

// shapedRun is one cache entry: a shaped text run plus its pixel width.
// inUse is set while a live exposable references the entry and cleared
// when that exposable is destroyed; eviction prefers not-in-use entries
// over growing the cache (spec §4.B), matching yambar's
// particles/string.c text_run_cache.
type shapedRun struct {
	key   string
	run   font.Run
	width int
	inUse bool
}

// runCache is a per-string-particle cache keyed by the fully-expanded
// text itself, mapping it to its shaped run. Safe for concurrent use because
// particle.Instantiate is documented as safe to call concurrently for
// the same Particle (spec §4.B), even though in this implementation the
// bar thread is the only caller in practice (spec §5).
type runCache struct {
	mu      sync.Mutex
	entries []*shapedRun
}

// acquire returns the cache entry for key, shaping via shape() on a miss.
// A hit marks the existing entry in-use and does not re-shape. shape is
// called at most once per acquire.
func (c *runCache) acquire(key string, shape func() (font.Run, int)) *shapedRun {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.key == key {
			e.inUse = true
			return e
		}
	}
	for _, e := range c.entries {
		if !e.inUse {
			run, width := shape()
			e.key, e.run, e.width, e.inUse = key, run, width, true
			return e
		}
	}
	run, width := shape()
	e := &shapedRun{key: key, run: run, width: width, inUse: true}
	c.entries = append(c.entries, e)
	return e
}

// release clears the in-use flag so the entry may be reused by a future
// acquire with a different key.
func (c *runCache) release(e *shapedRun) {
	if e == nil {
		return
	}
	c.mu.Lock()
	e.inUse = false
	c.mu.Unlock()
}
