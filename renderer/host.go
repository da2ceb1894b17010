// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/gralloc"
	"github.com/gogpu/glpipe/pipe"
)

// Launcher starts the guest container. internal/guest.Launcher
// implements it.
type Launcher interface {
	Launch(loader string) error
}

// HostOptions configures a Host.
type HostOptions struct {
	// Dialer reaches the pipe device for the session path. Nil disables
	// the session path.
	Dialer pipe.Dialer

	// Endpoints overrides the negotiated endpoints.
	Endpoints []pipe.Endpoint

	// Legacy is the legacy library table. Nil or incomplete disables the
	// legacy path.
	Legacy *LegacyTable

	// Input is started at first attach. Optional.
	Input Input

	// Launcher starts the guest at first attach. Optional.
	Launcher Launcher

	// Recorder receives channel and command dumps. Optional.
	Recorder *diag.Recorder
}

// Host maps host window events onto the renderer.
//
// The first WindowAttach performs bring-up; until Destroy, later attaches
// only rebind and resize. Host is safe for concurrent use.
type Host struct {
	opts     HostOptions
	selector *Selector
	session  *SessionRenderer
	windows  gralloc.WindowTable

	started atomic.Bool

	mu       sync.Mutex
	boot     chan struct{}
	startErr error
	// pending is the handle the bootstrap goroutine has yet to resolve.
	// A remove of that handle is deferred until it has.
	pending     gralloc.Handle
	dropPending bool

	// bootGate, when set, holds bootstrap before it resolves its handle.
	bootGate chan struct{}
}

// NewHost builds the renderer paths described by opts.
func NewHost(opts HostOptions) *Host {
	h := &Host{opts: opts}

	var sessionPath, legacyPath Renderer
	if opts.Dialer != nil {
		sopts := []SessionOption{WithRecorder(opts.Recorder)}
		if len(opts.Endpoints) > 0 {
			sopts = append(sopts, WithEndpoints(opts.Endpoints...))
		}
		h.session = NewSessionRenderer(func() *Session {
			return NewSession(opts.Dialer, sopts...)
		})
		sessionPath = h.session
	}
	if opts.Legacy.Complete() {
		legacyPath = NewLegacy(*opts.Legacy)
	}
	h.selector = NewSelector(sessionPath, legacyPath)
	return h
}

// Selector returns the host's renderer selector.
func (h *Host) Selector() *Selector { return h.selector }

// Session returns the current session, or nil if the session path is
// disabled.
func (h *Host) Session() *Session {
	if h.session == nil {
		return nil
	}
	return h.session.Session()
}

// SelectRenderer chooses the session path (true) or the legacy path for
// the next bring-up. It has no effect while a renderer runs.
func (h *Host) SelectRenderer(useNew bool) {
	h.selector.Select(useNew)
}

// WindowAttach handles a new or recreated host surface. width and height
// are the guest framebuffer size.
//
// The first call starts the input subsystem, starts the renderer on its
// own goroutine and launches the guest; it returns without waiting for
// the renderer (see Wait). Later calls rebind the renderer to win and
// reset it to the window's surface size.
func (h *Host) WindowAttach(win gralloc.Window, loader string, width, height, xdpi, ydpi, fps int) error {
	if win == nil || win.Handle().IsNull() {
		return fmt.Errorf("renderer: window attach: %w", glpipe.ErrInvalidWindow)
	}
	log := glpipe.Logger()
	handle := h.windows.Put(win)

	if !h.started.CompareAndSwap(false, true) {
		if err := h.selector.SetWindow(win); err != nil {
			log.Warn("renderer: set window failed", "err", err)
			return err
		}
		err := h.selector.ResetSubWindow(win, 0, 0, win.Width(), win.Height(), width, height, 1, 0)
		if err != nil {
			log.Warn("renderer: reset window failed", "err", err)
		}
		return err
	}

	log.Info("renderer: first attach, booting",
		"surface_width", win.Width(), "surface_height", win.Height(),
		"width", width, "height", height, "fps", fps)

	if h.opts.Input != nil {
		if err := h.opts.Input.Start(width, height); err != nil {
			log.Warn("renderer: input start failed", "err", err)
		}
	}

	boot := make(chan struct{})
	h.mu.Lock()
	h.boot = boot
	h.startErr = nil
	h.pending = handle
	h.dropPending = false
	h.mu.Unlock()
	go h.bootstrap(handle, boot, width, height, xdpi, ydpi, fps)

	if h.opts.Launcher != nil {
		if err := h.opts.Launcher.Launch(loader); err != nil {
			log.Warn("renderer: guest launch failed", "err", err)
		}
	}
	return nil
}

// bootstrap runs the renderer start off the caller's goroutine. Only the
// handle crosses over; the window is looked up again here.
func (h *Host) bootstrap(handle gralloc.Handle, boot chan struct{}, width, height, xdpi, ydpi, fps int) {
	defer close(boot)
	if h.bootGate != nil {
		<-h.bootGate
	}

	win, ok := h.windows.Get(handle)
	h.mu.Lock()
	h.pending = 0
	if h.dropPending {
		h.windows.Drop(handle)
		h.dropPending = false
	}
	h.mu.Unlock()

	var err error
	if ok {
		err = h.selector.Start(win, width, height, xdpi, ydpi, fps)
	} else {
		err = fmt.Errorf("renderer: bootstrap: handle %#x: %w", uintptr(handle), glpipe.ErrInvalidWindow)
	}
	if err != nil {
		glpipe.Logger().Error("renderer: start failed", "err", err)
	} else {
		glpipe.Logger().Info("renderer: running", "path", h.selector.Name())
	}

	h.mu.Lock()
	h.startErr = err
	h.mu.Unlock()
}

// Wait blocks until the current bring-up finishes and returns its error.
// It returns glpipe.ErrNotStarted if no window was ever attached.
func (h *Host) Wait() error {
	h.mu.Lock()
	boot := h.boot
	h.mu.Unlock()
	if boot == nil {
		return glpipe.ErrNotStarted
	}
	<-boot

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startErr
}

// WindowResize handles a surface geometry change.
func (h *Host) WindowResize(win gralloc.Window, top, left, width, height, fbWidth, fbHeight int) error {
	err := h.selector.ResetSubWindow(win, left, top, width, height, fbWidth, fbHeight, 1, 0)
	if err != nil {
		glpipe.Logger().Warn("renderer: resize failed", "err", err)
	}
	return err
}

// WindowRemove handles the host surface going away. The renderer keeps
// running and expects a new attach.
func (h *Host) WindowRemove(win gralloc.Window) error {
	if win != nil {
		h.dropWindow(win.Handle())
	}
	err := h.selector.RemoveSubWindow(win)
	if err != nil {
		glpipe.Logger().Warn("renderer: remove window failed", "err", err)
	}
	return err
}

// dropWindow forgets a handle, unless bootstrap still has to resolve it.
func (h *Host) dropWindow(handle gralloc.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !handle.IsNull() && handle == h.pending {
		h.dropPending = true
		return
	}
	h.windows.Drop(handle)
}

// Repaint asks the running renderer to redraw.
func (h *Host) Repaint() error {
	return h.selector.Repaint()
}

// PointerEvent forwards a touch sample to the input subsystem.
func (h *Host) PointerEvent(ev PointerEvent) error {
	if h.opts.Input == nil {
		return nil
	}
	return h.opts.Input.Touch(ev)
}

// KeyEvent forwards a key code to the input subsystem.
func (h *Host) KeyEvent(code int) error {
	if h.opts.Input == nil {
		return nil
	}
	return h.opts.Input.Key(code)
}

// Destroy tears the renderer down. The next WindowAttach boots again.
func (h *Host) Destroy() error {
	err := h.selector.Destroy()
	h.started.Store(false)
	if err != nil {
		glpipe.Logger().Warn("renderer: destroy failed", "err", err)
	}
	return err
}
