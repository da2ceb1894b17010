// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package protocol

import (
	"errors"
	"fmt"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/pipe"
)

// ErrNotInitialized is returned by Destroy on a context that was never
// initialized or has already been destroyed.
var ErrNotInitialized = errors.New("protocol: context not initialized")

// GLContext is the host-side handle of one guest rendering context.
//
// It owns its channel: Close sends Destroy if the context is still
// initialized and then closes the channel. Destroy is sent at most once
// per successful Initialize.
//
// GLContext is not safe for concurrent use; the renderer session
// serializes access.
type GLContext struct {
	ch          *pipe.Channel
	rec         *diag.Recorder
	width       int
	height      int
	initialized bool
	closed      bool
}

// ContextOption configures a GLContext.
type ContextOption func(*GLContext)

// WithCommandLog records each command sent to rec's command log.
func WithCommandLog(rec *diag.Recorder) ContextOption {
	return func(c *GLContext) { c.rec = rec }
}

// NewContext wraps ch. The context starts uninitialized.
func NewContext(ch *pipe.Channel, opts ...ContextOption) *GLContext {
	c := &GLContext{ch: ch}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint of the underlying channel.
func (c *GLContext) Endpoint() pipe.Endpoint { return c.ch.Endpoint() }

// Initialized reports whether Initialize succeeded and no Destroy has been
// attempted since.
func (c *GLContext) Initialized() bool { return c.initialized }

// Size returns the last confirmed size: the surface size from Initialize,
// or the framebuffer size from SetWindowSize.
func (c *GLContext) Size() (width, height int) { return c.width, c.height }

// Initialize creates the guest context. State changes only after the
// command was sent.
func (c *GLContext) Initialize(width, height, xdpi, ydpi, fps int) error {
	glpipe.Logger().Info("protocol: initialize",
		"endpoint", c.ch.Endpoint(), "width", width, "height", height,
		"xdpi", xdpi, "ydpi", ydpi, "fps", fps)

	if err := c.send(Initialize(width, height, xdpi, ydpi, fps)); err != nil {
		return err
	}
	c.width, c.height = width, height
	c.initialized = true
	return nil
}

// SetWindowSize updates the surface and framebuffer size. On success the
// context records the framebuffer size.
func (c *GLContext) SetWindowSize(width, height, fbWidth, fbHeight int) error {
	glpipe.Logger().Debug("protocol: set window size",
		"width", width, "height", height, "fb_width", fbWidth, "fb_height", fbHeight)

	if err := c.send(SetWindowSize(width, height, fbWidth, fbHeight)); err != nil {
		return err
	}
	c.width, c.height = fbWidth, fbHeight
	return nil
}

// SwapBuffers sends a swap request.
func (c *GLContext) SwapBuffers() error { return c.send(SwapBuffers()) }

// MakeCurrent sends a make-current request.
func (c *GLContext) MakeCurrent() error { return c.send(MakeCurrent()) }

// Repaint sends a repaint request.
func (c *GLContext) Repaint() error { return c.send(Repaint()) }

// Destroy tears the guest context down. It returns ErrNotInitialized
// without writing anything if the context is not initialized. After any
// send attempt the context is uninitialized, so Destroy is never sent
// twice.
func (c *GLContext) Destroy() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	c.initialized = false
	glpipe.Logger().Info("protocol: destroy", "endpoint", c.ch.Endpoint())
	return c.send(Destroy())
}

// Close destroys the context if needed and closes the channel.
// Calling Close more than once is a no-op.
func (c *GLContext) Close() error {
	if c.closed {
		return nil
	}

	var destroyErr error
	if c.initialized {
		if destroyErr = c.Destroy(); destroyErr != nil {
			glpipe.Logger().Warn("protocol: destroy on close failed", "err", destroyErr)
		}
	}
	c.closed = true
	return errors.Join(destroyErr, c.ch.Close())
}

func (c *GLContext) send(cmd Command) error {
	if c.closed {
		return fmt.Errorf("protocol: %s on closed context: %w", cmd.Op, glpipe.ErrIO)
	}
	c.rec.Command(cmd.Op.String(), uint32(cmd.Op), cmd.Describe())
	if err := Send(c.ch, cmd); err != nil {
		return fmt.Errorf("protocol: send %s: %w", cmd.Op, err)
	}
	return nil
}
