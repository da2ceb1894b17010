// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gralloc manages host surface buffers for CPU presentation.
//
// A Manager holds one reference on a host Window, configures its buffer
// geometry, and runs the lock / write / unlock-and-post cycle:
//
//	m, err := gralloc.New(win, 720, 1280)
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	buf, err := m.LockBuffer()
//	if err != nil {
//	    return err // errors.Is(err, glpipe.ErrLockFailed)
//	}
//	fill(buf)
//	return m.UnlockAndPost()
//
// Windows cross goroutines as a Handle and are reconstructed through a
// WindowTable.
package gralloc

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
)

// Handle is an opaque, address-sized reference to a host window. It may
// be copied across goroutines; its structure is never inspected.
type Handle uintptr

// IsNull reports whether h refers to no window.
func (h Handle) IsNull() bool { return h == 0 }

// Window is a host drawing surface with reference-counted lifetime.
//
// Status-returning methods report 0 on success and a host status code
// otherwise.
type Window interface {
	// Handle returns the window's opaque handle.
	Handle() Handle

	// Width and Height return the current surface size.
	Width() int
	Height() int

	// Acquire takes one reference; Release drops one.
	Acquire()
	Release()

	// SetBuffersGeometry sets the size and format of future buffers.
	SetBuffersGeometry(width, height int, format Format) int

	// Lock returns the next writable buffer.
	Lock() (Buffer, int)

	// UnlockAndPost releases the locked buffer and queues it for display.
	UnlockAndPost() int
}

// Format is a host window pixel format code.
type Format int32

// Window formats.
const (
	FormatRGBA8888 Format = 1
	FormatRGBX8888 Format = 2
	FormatRGB565   Format = 4
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatRGBX8888:
		return "RGBX8888"
	case FormatRGB565:
		return "RGB565"
	default:
		return fmt.Sprintf("Format(%d)", int32(f))
	}
}

// BytesPerPixel returns the pixel size, or 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8888, FormatRGBX8888:
		return 4
	case FormatRGB565:
		return 2
	default:
		return 0
	}
}

// TextureFormat returns the matching GPU texture format, or
// TextureFormatUndefined when there is none.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatRGBA8888, FormatRGBX8888:
		return gputypes.TextureFormatRGBA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Buffer is a locked surface buffer. It is valid only until the matching
// unlock-and-post.
type Buffer struct {
	Width  int
	Height int
	// Stride is the row pitch in pixels.
	Stride int
	Format Format
	Bits   []byte
}

// RGBA returns an image view over the buffer memory. It reports false for
// formats that are not 32-bit RGBA.
func (b Buffer) RGBA() (*image.RGBA, bool) {
	if b.Format.BytesPerPixel() != 4 || b.Stride < b.Width {
		return nil, false
	}
	need := b.Stride * 4 * b.Height
	if len(b.Bits) < need {
		return nil, false
	}
	return &image.RGBA{
		Pix:    b.Bits[:need],
		Stride: b.Stride * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}, true
}
