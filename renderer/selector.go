// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/gralloc"
)

// Selector chooses between the session path and the legacy path.
//
// The choice is read once, at Start, and cannot change until Destroy. If
// the session path is chosen and fails to start, Selector falls back to
// the legacy path.
//
// Selector implements Renderer by forwarding to the path that started.
// Before that, and while Start runs, forwarded calls fail with
// glpipe.ErrNotStarted.
type Selector struct {
	session Renderer
	legacy  Renderer

	mu       sync.Mutex
	useNew   bool
	starting bool
	active   Renderer
}

// NewSelector returns a selector over the two paths. Either may be nil.
func NewSelector(session, legacy Renderer) *Selector {
	return &Selector{session: session, legacy: legacy}
}

// Name implements Renderer.
func (s *Selector) Name() string {
	if a := s.Active(); a != nil {
		return a.Name()
	}
	return "unselected"
}

// Select sets the preferred path for the next Start. It reports false and
// changes nothing while a renderer is starting or running.
func (s *Selector) Select(useNew bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.starting || s.active != nil {
		glpipe.Logger().Warn("renderer: selection ignored while running", "use_new", useNew)
		return false
	}
	s.useNew = useNew
	glpipe.Logger().Info("renderer: selected", "use_new", useNew)
	return true
}

// UseNew reports the current preference.
func (s *Selector) UseNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useNew
}

// Active returns the running path, or nil.
func (s *Selector) Active() Renderer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start starts the preferred path, falling back to legacy on failure.
func (s *Selector) Start(win gralloc.Window, width, height, xdpi, ydpi, fps int) error {
	s.mu.Lock()
	if s.starting || s.active != nil {
		s.mu.Unlock()
		return glpipe.ErrAlreadyStarted
	}
	s.starting = true
	useNew := s.useNew
	s.mu.Unlock()

	r, err := s.start(useNew, win, width, height, xdpi, ydpi, fps)

	s.mu.Lock()
	s.starting = false
	if err == nil {
		s.active = r
	}
	s.mu.Unlock()
	return err
}

func (s *Selector) start(useNew bool, win gralloc.Window, width, height, xdpi, ydpi, fps int) (Renderer, error) {
	log := glpipe.Logger()

	var sessionErr error
	if useNew && s.session != nil {
		sessionErr = s.session.Start(win, width, height, xdpi, ydpi, fps)
		if sessionErr == nil {
			return s.session, nil
		}
		log.Warn("renderer: session path failed, falling back to legacy", "err", sessionErr)
	}

	if s.legacy == nil {
		if sessionErr != nil {
			return nil, sessionErr
		}
		return nil, fmt.Errorf("renderer: no renderer path: %w", glpipe.ErrNotAvailable)
	}

	if err := s.legacy.Start(win, width, height, xdpi, ydpi, fps); err != nil {
		return nil, errors.Join(sessionErr, err)
	}
	log.Info("renderer: legacy path started", "width", width, "height", height)
	return s.legacy, nil
}

func (s *Selector) running() (Renderer, error) {
	if a := s.Active(); a != nil {
		return a, nil
	}
	return nil, glpipe.ErrNotStarted
}

// SetWindow implements Renderer.
func (s *Selector) SetWindow(win gralloc.Window) error {
	r, err := s.running()
	if err != nil {
		return err
	}
	return r.SetWindow(win)
}

// ResetSubWindow implements Renderer.
func (s *Selector) ResetSubWindow(win gralloc.Window, left, top, width, height, fbWidth, fbHeight int, scale, rotation float32) error {
	r, err := s.running()
	if err != nil {
		return err
	}
	return r.ResetSubWindow(win, left, top, width, height, fbWidth, fbHeight, scale, rotation)
}

// RemoveSubWindow implements Renderer.
func (s *Selector) RemoveSubWindow(win gralloc.Window) error {
	r, err := s.running()
	if err != nil {
		return err
	}
	return r.RemoveSubWindow(win)
}

// Repaint implements Renderer.
func (s *Selector) Repaint() error {
	r, err := s.running()
	if err != nil {
		return err
	}
	return r.Repaint()
}

// Destroy tears the running path down and unlocks the selection.
func (s *Selector) Destroy() error {
	s.mu.Lock()
	r := s.active
	s.active = nil
	s.mu.Unlock()

	if r == nil {
		return glpipe.ErrNotStarted
	}
	return r.Destroy()
}
