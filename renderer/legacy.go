// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"fmt"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/gralloc"
)

// LegacyTable is the entry point table of the legacy renderer library.
// Functions return 0 on success. Windows are passed as raw handles.
//
// StartRenderer, SetNativeWindow, ResetSubWindow and RemoveSubWindow are
// required; DestroySubwindow and Repaint may be nil.
type LegacyTable struct {
	StartRenderer    func(win gralloc.Handle, width, height, xdpi, ydpi, fps int) int
	SetNativeWindow  func(win gralloc.Handle) int
	ResetSubWindow   func(win gralloc.Handle, left, top, width, height, fbWidth, fbHeight int, scale, rotation float32) int
	RemoveSubWindow  func(win gralloc.Handle) int
	DestroySubwindow func() int
	Repaint          func()
}

// Complete reports whether every required entry is set.
func (t *LegacyTable) Complete() bool {
	return t != nil && t.StartRenderer != nil && t.SetNativeWindow != nil &&
		t.ResetSubWindow != nil && t.RemoveSubWindow != nil
}

// Legacy adapts a LegacyTable to Renderer.
type Legacy struct {
	table LegacyTable
}

// NewLegacy wraps t.
func NewLegacy(t LegacyTable) *Legacy {
	return &Legacy{table: t}
}

// Name implements Renderer.
func (l *Legacy) Name() string { return "legacy" }

// Start implements Renderer.
func (l *Legacy) Start(win gralloc.Window, width, height, xdpi, ydpi, fps int) error {
	if l.table.StartRenderer == nil {
		return missing("StartRenderer")
	}
	return status("StartRenderer", l.table.StartRenderer(handleOf(win), width, height, xdpi, ydpi, fps))
}

// SetWindow implements Renderer.
func (l *Legacy) SetWindow(win gralloc.Window) error {
	if l.table.SetNativeWindow == nil {
		return missing("SetNativeWindow")
	}
	return status("SetNativeWindow", l.table.SetNativeWindow(handleOf(win)))
}

// ResetSubWindow implements Renderer.
func (l *Legacy) ResetSubWindow(win gralloc.Window, left, top, width, height, fbWidth, fbHeight int, scale, rotation float32) error {
	if l.table.ResetSubWindow == nil {
		return missing("ResetSubWindow")
	}
	return status("ResetSubWindow",
		l.table.ResetSubWindow(handleOf(win), left, top, width, height, fbWidth, fbHeight, scale, rotation))
}

// RemoveSubWindow implements Renderer.
func (l *Legacy) RemoveSubWindow(win gralloc.Window) error {
	if l.table.RemoveSubWindow == nil {
		return missing("RemoveSubWindow")
	}
	return status("RemoveSubWindow", l.table.RemoveSubWindow(handleOf(win)))
}

// Repaint implements Renderer. It is a no-op when the library has no
// repaint entry.
func (l *Legacy) Repaint() error {
	if l.table.Repaint != nil {
		l.table.Repaint()
	}
	return nil
}

// Destroy implements Renderer.
func (l *Legacy) Destroy() error {
	if l.table.DestroySubwindow == nil {
		return nil
	}
	return status("DestroySubwindow", l.table.DestroySubwindow())
}

func handleOf(win gralloc.Window) gralloc.Handle {
	if win == nil {
		return 0
	}
	return win.Handle()
}

func missing(name string) error {
	return fmt.Errorf("renderer: legacy %s not provided: %w", name, glpipe.ErrNotAvailable)
}

// LegacyError is a non-zero status from a legacy library call.
type LegacyError struct {
	Call   string
	Status int
}

func (e *LegacyError) Error() string {
	return fmt.Sprintf("renderer: legacy %s returned %d", e.Call, e.Status)
}

func status(call string, rc int) error {
	if rc == 0 {
		return nil
	}
	return &LegacyError{Call: call, Status: rc}
}
