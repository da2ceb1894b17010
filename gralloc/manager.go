// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
)

// Manager owns one reference on a host window and its buffer geometry.
//
// Lock and unlock are not reentrant and the Manager does not serialize
// callers: one goroutine at a time must drive the lock/post cycle.
type Manager struct {
	win    Window
	width  int
	height int
	format Format

	rec     *diag.Recorder
	mirror  gpucontext.TextureUpdater
	overlay string

	released bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder logs buffer locks and posts to rec.
func WithRecorder(rec *diag.Recorder) Option {
	return func(m *Manager) { m.rec = rec }
}

// WithMirror uploads every frame posted through Present to tex. Frames
// whose format has no RGBA8 texture equivalent are not uploaded.
func WithMirror(tex gpucontext.TextureUpdater) Option {
	return func(m *Manager) { m.mirror = tex }
}

// WithFormat selects the buffer format requested from the host. The
// default is FormatRGBA8888.
func WithFormat(f Format) Option {
	return func(m *Manager) { m.format = f }
}

// WithOverlay draws text in the top-left corner of every presented frame.
func WithOverlay(text string) Option {
	return func(m *Manager) { m.overlay = text }
}

// New acquires win and configures its buffers as width x height in the
// selected format (RGBA8888 unless WithFormat says otherwise).
//
// A nil window or a null handle yields glpipe.ErrInvalidWindow. A geometry
// failure yields a *glpipe.SurfaceError matching
// glpipe.ErrConfigurationFailed, and the reference is released again.
func New(win Window, width, height int, opts ...Option) (*Manager, error) {
	if win == nil || win.Handle().IsNull() {
		return nil, fmt.Errorf("gralloc: new manager: %w", glpipe.ErrInvalidWindow)
	}

	m := &Manager{win: win, width: width, height: height, format: FormatRGBA8888}
	for _, opt := range opts {
		opt(m)
	}

	glpipe.Logger().Info("gralloc: acquiring window",
		"handle", uintptr(win.Handle()), "width", width, "height", height)
	win.Acquire()

	if err := m.configure(width, height); err != nil {
		m.release()
		return nil, err
	}
	if m.mirror != nil && m.format.TextureFormat() != gputypes.TextureFormatRGBA8Unorm {
		glpipe.Logger().Warn("gralloc: window format has no texture equivalent, frames will not be mirrored",
			"format", m.format)
	}
	return m, nil
}

// SetSize reconfigures the buffer geometry. The stored size changes only
// if the host accepts the new geometry.
func (m *Manager) SetSize(width, height int) error {
	if m.released {
		return fmt.Errorf("gralloc: set size: %w", glpipe.ErrInvalidWindow)
	}
	if err := m.configure(width, height); err != nil {
		return err
	}
	m.width, m.height = width, height
	glpipe.Logger().Debug("gralloc: size updated", "width", width, "height", height)
	return nil
}

// Size returns the configured buffer size.
func (m *Manager) Size() (width, height int) { return m.width, m.height }

// Format returns the configured pixel format.
func (m *Manager) Format() Format { return m.format }

// Window returns the managed window.
func (m *Manager) Window() Window { return m.win }

// LockBuffer locks the next buffer for CPU writes.
func (m *Manager) LockBuffer() (Buffer, error) {
	if m.released {
		return Buffer{}, fmt.Errorf("gralloc: lock: %w", glpipe.ErrInvalidWindow)
	}
	buf, code := m.win.Lock()
	if code != 0 {
		glpipe.Logger().Warn("gralloc: lock failed", "status", code)
		return Buffer{}, &glpipe.SurfaceError{Op: glpipe.SurfaceLock, Code: code}
	}
	m.rec.Buffer("lock", buf.Width, buf.Height, buf.Stride, buf.Format.String())
	return buf, nil
}

// UnlockAndPost releases the locked buffer and queues it for display.
func (m *Manager) UnlockAndPost() error {
	if m.released {
		return fmt.Errorf("gralloc: unlock and post: %w", glpipe.ErrInvalidWindow)
	}
	if code := m.win.UnlockAndPost(); code != 0 {
		glpipe.Logger().Warn("gralloc: unlock and post failed", "status", code)
		return &glpipe.SurfaceError{Op: glpipe.SurfacePresent, Code: code}
	}
	m.rec.SurfaceEvent("unlock_and_post")
	return nil
}

// Close releases the window reference. Calling Close more than once is a
// no-op. After Close every other call fails with glpipe.ErrInvalidWindow.
func (m *Manager) Close() error {
	m.release()
	return nil
}

func (m *Manager) configure(width, height int) error {
	if code := m.win.SetBuffersGeometry(width, height, m.format); code != 0 {
		glpipe.Logger().Warn("gralloc: set geometry failed",
			"width", width, "height", height, "format", m.format, "status", code)
		return &glpipe.SurfaceError{Op: glpipe.SurfaceConfigure, Code: code}
	}
	return nil
}

func (m *Manager) release() {
	if m.released {
		return
	}
	m.released = true
	m.win.Release()
	glpipe.Logger().Debug("gralloc: window released", "handle", uintptr(m.win.Handle()))
}
