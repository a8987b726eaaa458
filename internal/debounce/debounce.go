// Package debounce coalesces bursts of calls per key: only the last function
// scheduled under a key runs, once the key has been quiet for the window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs scheduled functions on timer goroutines. The zero value is
// not usable; use New.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*call
	stopped bool
}

type call struct {
	timer *time.Timer
	fn    func()
}

func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window, pending: make(map[string]*call)}
}

// Do schedules fn under key, replacing and restarting any pending call for
// the same key. It is a no-op after Stop.
func (d *Debouncer) Do(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if c, ok := d.pending[key]; ok {
		c.timer.Stop()
	}

	c := &call{fn: fn}
	c.timer = time.AfterFunc(d.window, func() { d.fire(key, c) })
	d.pending[key] = c
}

func (d *Debouncer) fire(key string, c *call) {
	d.mu.Lock()
	if d.pending[key] != c {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	c.fn()
}

// Cancel drops the pending call for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.pending[key]
	if ok {
		c.timer.Stop()
		delete(d.pending, key)
	}
	return ok
}

// Flush runs every pending call now, on the caller's goroutine.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*call, 0, len(d.pending))
	for key, c := range d.pending {
		c.timer.Stop()
		calls = append(calls, c)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, c := range calls {
		c.fn()
	}
}

// Pending returns the number of scheduled calls.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop drops every pending call and disables further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, c := range d.pending {
		c.timer.Stop()
		delete(d.pending, key)
	}
	d.stopped = true
}
