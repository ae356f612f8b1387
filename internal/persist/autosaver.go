// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persist

import (
	"sync"
	"time"
)

// =============================================================================
// AUTO SAVER
// =============================================================================

// SaveFunc writes the current document state to storage. It is called
// from the saver's timer goroutine or from ForceSave's caller, never
// concurrently with itself.
type SaveFunc func() error

// DefaultDelay is the debounce window between a change and its save.
const DefaultDelay = 2 * time.Second

// AutoSaver coalesces change notifications into delayed saves.
//
// The state machine is idle -> pending -> saving. Notify while pending is
// a no-op: the armed timer already covers the change, because SaveFunc
// reads the live state when it finally runs.
type AutoSaver struct {
	mu sync.Mutex

	save  SaveFunc
	delay time.Duration

	timer  *time.Timer
	dirty  bool
	saving bool
	closed bool

	// onResult observes save outcomes (for the status line).
	onResult func(error)
}

// NewAutoSaver creates a saver with the given debounce delay.
func NewAutoSaver(save SaveFunc, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &AutoSaver{save: save, delay: delay}
}

// SetOnResult registers a callback observing each save outcome.
func (a *AutoSaver) SetOnResult(fn func(error)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onResult = fn
}

// Notify records a document change. The first change after a completed
// save arms the timer; further changes before it fires are covered by the
// same pending save.
func (a *AutoSaver) Notify() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.dirty = true
	if a.timer == nil && !a.saving {
		a.timer = time.AfterFunc(a.delay, a.fire)
	}
}

// Dirty returns true while unsaved changes exist.
func (a *AutoSaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// fire runs when the debounce timer elapses.
func (a *AutoSaver) fire() {
	a.mu.Lock()
	if a.closed || !a.dirty {
		a.timer = nil
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.saving = true
	a.dirty = false
	save := a.save
	a.mu.Unlock()

	err := save()

	a.mu.Lock()
	a.saving = false
	if err != nil {
		// Failed saves stay dirty and retry after a fresh delay.
		a.dirty = true
	}
	if a.dirty && a.timer == nil && !a.closed {
		a.timer = time.AfterFunc(a.delay, a.fire)
	}
	onResult := a.onResult
	a.mu.Unlock()

	if onResult != nil {
		onResult(err)
	}
}

// ForceSave flushes synchronously, cancelling any armed timer. Changes
// arriving after the flush arm a fresh timer as usual. Returns the save
// error, or nil when there was nothing to write.
func (a *AutoSaver) ForceSave() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	a.saving = true
	a.dirty = false
	save := a.save
	a.mu.Unlock()

	err := save()

	a.mu.Lock()
	a.saving = false
	if err != nil {
		a.dirty = true
	}
	if a.dirty && a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
	}
	onResult := a.onResult
	a.mu.Unlock()

	if onResult != nil {
		onResult(err)
	}
	return err
}

// Close stops the saver. Pending changes are not flushed; call ForceSave
// first during teardown.
func (a *AutoSaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
