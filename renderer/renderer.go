// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"sync"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/gralloc"
)

// Renderer is the operation set shared by both rendering paths. Argument
// shapes match the legacy renderer library so a Selector can forward host
// events to either path unchanged.
type Renderer interface {
	// Name identifies the path in logs.
	Name() string

	// Start boots the renderer for win at the guest framebuffer size.
	Start(win gralloc.Window, width, height, xdpi, ydpi, fps int) error

	// SetWindow rebinds the renderer to win.
	SetWindow(win gralloc.Window) error

	// ResetSubWindow repositions and resizes the output. left, top, width
	// and height describe the surface; fbWidth and fbHeight the guest
	// framebuffer.
	ResetSubWindow(win gralloc.Window, left, top, width, height, fbWidth, fbHeight int, scale, rotation float32) error

	// RemoveSubWindow acknowledges that win went away.
	RemoveSubWindow(win gralloc.Window) error

	// Repaint redraws the last frame.
	Repaint() error

	// Destroy tears the renderer down.
	Destroy() error
}

// SessionRenderer drives a Session over the pipe transport.
//
// A destroyed session is replaced by a fresh one on the next Start.
type SessionRenderer struct {
	newSession func() *Session

	mu      sync.Mutex
	session *Session
}

// NewSessionRenderer returns a renderer creating sessions with newSession.
func NewSessionRenderer(newSession func() *Session) *SessionRenderer {
	return &SessionRenderer{newSession: newSession, session: newSession()}
}

// Name implements Renderer.
func (r *SessionRenderer) Name() string { return "session" }

// Session returns the current session.
func (r *SessionRenderer) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Start implements Renderer.
func (r *SessionRenderer) Start(win gralloc.Window, width, height, xdpi, ydpi, fps int) error {
	r.mu.Lock()
	if r.session.State() == StateDestroyed {
		r.session = r.newSession()
	}
	s := r.session
	r.mu.Unlock()

	return s.Start(win, width, height, xdpi, ydpi, fps)
}

// SetWindow implements Renderer.
func (r *SessionRenderer) SetWindow(win gralloc.Window) error {
	return r.Session().AttachWindow(win)
}

// ResetSubWindow implements Renderer. Placement, scale and rotation are
// handled by the host compositor; only sizes reach the guest.
func (r *SessionRenderer) ResetSubWindow(win gralloc.Window, left, top, width, height, fbWidth, fbHeight int, scale, rotation float32) error {
	glpipe.Logger().Debug("renderer: reset sub window",
		"left", left, "top", top, "width", width, "height", height,
		"fb_width", fbWidth, "fb_height", fbHeight, "scale", scale, "rotation", rotation)
	return r.Session().Resize(win, width, height, fbWidth, fbHeight)
}

// RemoveSubWindow implements Renderer.
func (r *SessionRenderer) RemoveSubWindow(win gralloc.Window) error {
	return r.Session().DetachWindow(win)
}

// Repaint implements Renderer.
func (r *SessionRenderer) Repaint() error { return r.Session().Repaint() }

// Destroy implements Renderer.
func (r *SessionRenderer) Destroy() error { return r.Session().Destroy() }
