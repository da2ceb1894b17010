// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import "sync"

// WindowTable maps handles back to windows so a goroutine that received
// only a Handle can operate on the window.
//
// WindowTable is safe for concurrent use. The zero value is ready.
type WindowTable struct {
	mu      sync.RWMutex
	windows map[Handle]Window
}

// Put registers win under its handle and returns the handle.
// Null handles are not stored.
func (t *WindowTable) Put(win Window) Handle {
	if win == nil {
		return 0
	}
	h := win.Handle()
	if h.IsNull() {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.windows == nil {
		t.windows = make(map[Handle]Window)
	}
	t.windows[h] = win
	return h
}

// Get returns the window registered under h.
func (t *WindowTable) Get(h Handle) (Window, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	win, ok := t.windows[h]
	return win, ok
}

// Drop forgets h.
func (t *WindowTable) Drop(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.windows, h)
}

// Len returns the number of registered windows.
func (t *WindowTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.windows)
}
