// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/gralloc"
	"github.com/gogpu/glpipe/pipe"
	"github.com/gogpu/glpipe/protocol"
)

// State is the lifecycle state of a Session.
type State uint8

// Session states.
const (
	StateUninitialized State = iota
	StateStarting
	StateActive
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateStarting:
		return "Starting"
	case StateActive:
		return "Active"
	case StateDestroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// activeState exists only while the session is Active.
type activeState struct {
	gl     *protocol.GLContext
	win    gralloc.Window
	width  int
	height int
	id     uuid.UUID
}

// Snapshot is a point-in-time view of a Session.
type Snapshot struct {
	State    State
	ID       string
	Endpoint pipe.Endpoint
	Window   gralloc.Handle
	// Width and Height are the last confirmed framebuffer size.
	Width  int
	Height int
}

// Session owns at most one live guest rendering context.
//
// Session is safe for concurrent use. All operations are serialized.
type Session struct {
	dialer    pipe.Dialer
	endpoints []pipe.Endpoint
	rec       *diag.Recorder

	mu    sync.Mutex
	state State
	cur   *activeState
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithEndpoints overrides the endpoints negotiated at start.
func WithEndpoints(eps ...pipe.Endpoint) SessionOption {
	return func(s *Session) { s.endpoints = eps }
}

// WithRecorder attaches a diagnostic recorder to the channel and the
// command log.
func WithRecorder(rec *diag.Recorder) SessionOption {
	return func(s *Session) { s.rec = rec }
}

// NewSession returns an uninitialized session that will connect through d.
func NewSession(d pipe.Dialer, opts ...SessionOption) *Session {
	s := &Session{dialer: d}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the current state and, when Active, the session
// details.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{State: s.state}
	if s.cur != nil {
		snap.ID = s.cur.id.String()
		snap.Endpoint = s.cur.gl.Endpoint()
		snap.Window = s.cur.win.Handle()
		snap.Width = s.cur.width
		snap.Height = s.cur.height
	}
	return snap
}

// Start negotiates an endpoint, initializes the guest context at the
// given size and display metrics, and takes a reference on win.
//
// Start is valid only from Uninitialized. On failure nothing is published,
// everything opened is closed, and the session returns to Uninitialized.
func (s *Session) Start(win gralloc.Window, width, height, xdpi, ydpi, fps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStarting, StateActive:
		return glpipe.ErrAlreadyStarted
	case StateDestroyed:
		return glpipe.ErrSessionDestroyed
	}
	if win == nil || win.Handle().IsNull() {
		return fmt.Errorf("renderer: start: %w", glpipe.ErrInvalidWindow)
	}

	s.state = StateStarting
	cur, err := s.start(win, width, height, xdpi, ydpi, fps)
	if err != nil {
		s.state = StateUninitialized
		glpipe.Logger().Error("renderer: session start failed", "err", err)
		return err
	}

	s.cur = cur
	s.state = StateActive
	glpipe.Logger().Info("renderer: session started",
		"id", cur.id, "endpoint", cur.gl.Endpoint(), "width", width, "height", height, "fps", fps)
	return nil
}

func (s *Session) start(win gralloc.Window, width, height, xdpi, ydpi, fps int) (*activeState, error) {
	if !pipe.IsAvailable(s.dialer) {
		return nil, fmt.Errorf("renderer: start: %w", glpipe.ErrNotAvailable)
	}

	popts := []pipe.Option{pipe.WithRecorder(s.rec)}
	if len(s.endpoints) > 0 {
		popts = append(popts, pipe.WithEndpoints(s.endpoints...))
	}
	ch, err := pipe.Negotiate(s.dialer, popts...)
	if err != nil {
		return nil, fmt.Errorf("renderer: start: %w", err)
	}

	gl := protocol.NewContext(ch, protocol.WithCommandLog(s.rec))
	if err := gl.Initialize(width, height, xdpi, ydpi, fps); err != nil {
		_ = gl.Close()
		return nil, fmt.Errorf("renderer: start: %w", err)
	}

	win.Acquire()
	return &activeState{
		gl:     gl,
		win:    win,
		width:  width,
		height: height,
		id:     uuid.New(),
	}, nil
}

// AttachWindow makes win the session's window. The channel is untouched.
func (s *Session) AttachWindow(win gralloc.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: attach window: %w", glpipe.ErrNotStarted)
	}
	if win == nil || win.Handle().IsNull() {
		return fmt.Errorf("renderer: attach window: %w", glpipe.ErrInvalidWindow)
	}
	s.swapWindow(win)
	return nil
}

// Resize sends SetWindowSize and, once the command is sent, records win
// and the framebuffer size. A nil win keeps the current window.
//
// On failure the stored state is unchanged and the session stays Active.
func (s *Session) Resize(win gralloc.Window, surfWidth, surfHeight, fbWidth, fbHeight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: resize: %w", glpipe.ErrNotStarted)
	}
	if win != nil && win.Handle().IsNull() {
		return fmt.Errorf("renderer: resize: %w", glpipe.ErrInvalidWindow)
	}

	if err := s.cur.gl.SetWindowSize(surfWidth, surfHeight, fbWidth, fbHeight); err != nil {
		glpipe.Logger().Warn("renderer: resize failed, keeping last size",
			"width", s.cur.width, "height", s.cur.height, "err", err)
		return fmt.Errorf("renderer: resize: %w", err)
	}

	if win != nil {
		s.swapWindow(win)
	}
	s.cur.width, s.cur.height = fbWidth, fbHeight
	return nil
}

// DetachWindow acknowledges that win was removed by the host. The session
// stays alive for the next attach and nothing is sent to the guest.
func (s *Session) DetachWindow(win gralloc.Window) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: detach window: %w", glpipe.ErrNotStarted)
	}
	var h gralloc.Handle
	if win != nil {
		h = win.Handle()
	}
	glpipe.Logger().Debug("renderer: window detached", "handle", uintptr(h))
	return nil
}

// Repaint asks the guest to redraw its last frame.
func (s *Session) Repaint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: repaint: %w", glpipe.ErrNotStarted)
	}
	return s.cur.gl.Repaint()
}

// SwapBuffers forwards a buffer swap.
func (s *Session) SwapBuffers() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: swap buffers: %w", glpipe.ErrNotStarted)
	}
	return s.cur.gl.SwapBuffers()
}

// Destroy sends Destroy, closes the channel, releases the window and
// moves the session to Destroyed. The transition happens even if the
// Destroy command could not be sent; the send error is returned.
func (s *Session) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return fmt.Errorf("renderer: destroy: %w", glpipe.ErrNotStarted)
	}

	cur := s.cur
	s.cur = nil
	s.state = StateDestroyed

	err := cur.gl.Close()
	cur.win.Release()

	if err != nil {
		glpipe.Logger().Warn("renderer: destroy incomplete", "id", cur.id, "err", err)
		return fmt.Errorf("renderer: destroy: %w", err)
	}
	glpipe.Logger().Info("renderer: session destroyed", "id", cur.id)
	return nil
}

// swapWindow takes a reference on win and drops the one on the previous
// window. Caller holds s.mu.
func (s *Session) swapWindow(win gralloc.Window) {
	old := s.cur.win
	if old.Handle() == win.Handle() {
		return
	}
	win.Acquire()
	old.Release()
	s.cur.win = win
	glpipe.Logger().Debug("renderer: window attached",
		"handle", uintptr(win.Handle()), "previous", uintptr(old.Handle()))
}
