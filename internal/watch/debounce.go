// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// debouncer collects paths and calls fire once the window has been quiet.
// A call still in progress when the window closes again is not overlapped:
// the timer is re-armed so the pending paths are delivered afterwards.
type debouncer struct {
	ctx     context.Context
	window  time.Duration
	fire    func(context.Context, []string)
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	busy    atomic.Bool
}

func newDebouncer(ctx context.Context, window time.Duration, fire func(context.Context, []string)) *debouncer {
	return &debouncer{
		ctx:     ctx,
		window:  window,
		fire:    fire,
		pending: make(map[string]struct{}),
	}
}

func (d *debouncer) add(p string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[p] = struct{}{}
	d.arm()
}

// arm must be called with mu held.
func (d *debouncer) arm() {
	if d.timer == nil {
		d.timer = time.AfterFunc(d.window, d.flush)
		return
	}
	d.timer.Reset(d.window)
}

func (d *debouncer) flush() {
	if d.ctx.Err() != nil {
		return
	}
	if !d.busy.CompareAndSwap(false, true) {
		d.mu.Lock()
		d.arm()
		d.mu.Unlock()
		return
	}
	defer d.busy.Store(false)

	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	changed := slices.Sorted(maps.Keys(d.pending))
	clear(d.pending)
	d.mu.Unlock()

	d.fire(d.ctx, changed)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
