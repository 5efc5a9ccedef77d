// Package debounce coalesces bursts of work per key: only the last trigger
// inside a quiet window runs, and a completion belonging to a superseded
// trigger is never applied.
package debounce

import (
	"sync"
	"time"
)

// Debouncer schedules at most one pending function per key. A new Trigger for
// the same key cancels the previous pending one and bumps the key's sequence
// number, so a stale execution that already left the timer can detect it lost
// the race and skip its effect.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	seq     map[string]uint64
	stopped bool
	wg      sync.WaitGroup
}

func New(window time.Duration) *Debouncer {
	return &Debouncer{
		window:  window,
		pending: make(map[string]*time.Timer),
		seq:     make(map[string]uint64),
	}
}

// Trigger schedules fn to run after the quiet window. fn receives an apply
// callback that returns true only while this trigger is still the latest for
// the key; callers must gate their state mutation on it.
func (d *Debouncer) Trigger(key string, fn func(apply func() bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if t, ok := d.pending[key]; ok {
		if t.Stop() {
			// The superseded AfterFunc will never run.
			d.wg.Done()
		}
	}

	d.seq[key]++
	mySeq := d.seq[key]

	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		defer d.wg.Done()

		// A Trigger racing with this firing may already have replaced the
		// entry; only remove it while it is still ours.
		d.mu.Lock()
		if d.pending[key] == t {
			delete(d.pending, key)
		}
		d.mu.Unlock()

		fn(func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()
			return !d.stopped && d.seq[key] == mySeq
		})
	})
	d.pending[key] = t
}

// Stop cancels all pending triggers and waits for in-flight ones to settle.
// After Stop, Trigger is a no-op.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.pending {
		if t.Stop() {
			// Timer had not fired; its AfterFunc will never run.
			d.wg.Done()
		}
		delete(d.pending, key)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
