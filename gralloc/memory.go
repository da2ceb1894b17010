// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"image"
	"sync"
	"sync/atomic"
)

// Status codes returned by MemoryWindow.
const (
	StatusOK          = 0
	StatusInvalid     = -22 // EINVAL
	StatusBusy        = -16 // EBUSY
	StatusNotLocked   = -1
	StatusBadGeometry = -33 // EDOM
)

var memoryHandles atomic.Uintptr

// MemoryWindow is a CPU-backed Window. Posted frames are kept and can be
// read back with Frame.
//
// MemoryWindow is safe for concurrent use.
type MemoryWindow struct {
	handle Handle

	mu      sync.Mutex
	refs    int
	width   int
	height  int
	stride  int
	format  Format
	back    []byte
	front   *image.RGBA
	locked  bool
	posts   int
	failErr map[string]int
}

// NewMemoryWindow returns a window of the given size with a unique
// non-null handle.
func NewMemoryWindow(width, height int) *MemoryWindow {
	return &MemoryWindow{
		handle: Handle(memoryHandles.Add(1)),
		width:  width,
		height: height,
		format: FormatRGBA8888,
	}
}

// Handle implements Window.
func (w *MemoryWindow) Handle() Handle { return w.handle }

// Width implements Window.
func (w *MemoryWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// Height implements Window.
func (w *MemoryWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// Acquire implements Window.
func (w *MemoryWindow) Acquire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs++
}

// Release implements Window.
func (w *MemoryWindow) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refs--
}

// Refs returns the outstanding reference count.
func (w *MemoryWindow) Refs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.refs
}

// Fail makes the named call ("geometry", "lock" or "post") return code
// until cleared with code 0.
func (w *MemoryWindow) Fail(call string, code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failErr == nil {
		w.failErr = make(map[string]int)
	}
	if code == 0 {
		delete(w.failErr, call)
		return
	}
	w.failErr[call] = code
}

// SetBuffersGeometry implements Window.
func (w *MemoryWindow) SetBuffersGeometry(width, height int, format Format) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if code := w.failErr["geometry"]; code != 0 {
		return code
	}
	if width < 0 || height < 0 || format.BytesPerPixel() == 0 {
		return StatusBadGeometry
	}
	// Zero keeps the current dimension.
	if width > 0 {
		w.width = width
	}
	if height > 0 {
		w.height = height
	}
	w.format = format
	return StatusOK
}

// Lock implements Window. Locking twice without a post fails with
// StatusBusy.
func (w *MemoryWindow) Lock() (Buffer, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if code := w.failErr["lock"]; code != 0 {
		return Buffer{}, code
	}
	if w.locked {
		return Buffer{}, StatusBusy
	}
	if w.width <= 0 || w.height <= 0 {
		return Buffer{}, StatusInvalid
	}

	// Pad rows to a 16 pixel boundary like real allocators do.
	w.stride = (w.width + 15) &^ 15
	size := w.stride * w.height * w.format.BytesPerPixel()
	if cap(w.back) < size {
		w.back = make([]byte, size)
	}
	w.back = w.back[:size]
	w.locked = true

	return Buffer{
		Width:  w.width,
		Height: w.height,
		Stride: w.stride,
		Format: w.format,
		Bits:   w.back,
	}, StatusOK
}

// UnlockAndPost implements Window.
func (w *MemoryWindow) UnlockAndPost() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if code := w.failErr["post"]; code != 0 {
		return code
	}
	if !w.locked {
		return StatusNotLocked
	}
	w.locked = false
	w.posts++

	if w.format.BytesPerPixel() == 4 {
		front := image.NewRGBA(image.Rect(0, 0, w.width, w.height))
		row := w.width * 4
		for y := 0; y < w.height; y++ {
			copy(front.Pix[y*front.Stride:y*front.Stride+row], w.back[y*w.stride*4:])
		}
		w.front = front
	}
	return StatusOK
}

// Frame returns the last posted frame, or nil if nothing was posted.
func (w *MemoryWindow) Frame() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.front
}

// Posts returns how many frames were posted.
func (w *MemoryWindow) Posts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.posts
}
