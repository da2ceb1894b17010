// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build android

package gralloc

/*
#cgo LDFLAGS: -landroid
#include <android/native_window.h>
*/
import "C"

import "unsafe"

// ndkWindow wraps an ANativeWindow through the NDK.
type ndkWindow struct {
	ptr *C.ANativeWindow
}

// FromNative wraps a native window pointer received from the host
// application (an ANativeWindow* obtained with ANativeWindow_fromSurface).
// It does not take a reference; use Acquire.
func FromNative(h Handle) Window {
	if h.IsNull() {
		return nil
	}
	return &ndkWindow{ptr: (*C.ANativeWindow)(unsafe.Pointer(uintptr(h)))} //nolint:govet // handle is a C pointer owned by the host
}

func (w *ndkWindow) Handle() Handle { return Handle(uintptr(unsafe.Pointer(w.ptr))) }

func (w *ndkWindow) Width() int  { return int(C.ANativeWindow_getWidth(w.ptr)) }
func (w *ndkWindow) Height() int { return int(C.ANativeWindow_getHeight(w.ptr)) }

func (w *ndkWindow) Acquire() { C.ANativeWindow_acquire(w.ptr) }
func (w *ndkWindow) Release() { C.ANativeWindow_release(w.ptr) }

func (w *ndkWindow) SetBuffersGeometry(width, height int, format Format) int {
	return int(C.ANativeWindow_setBuffersGeometry(w.ptr, C.int32_t(width), C.int32_t(height), C.int32_t(format)))
}

func (w *ndkWindow) Lock() (Buffer, int) {
	var nb C.ANativeWindow_Buffer
	if rc := C.ANativeWindow_lock(w.ptr, &nb, nil); rc != 0 {
		return Buffer{}, int(rc)
	}
	f := Format(nb.format)
	size := int(nb.stride) * int(nb.height) * f.BytesPerPixel()
	return Buffer{
		Width:  int(nb.width),
		Height: int(nb.height),
		Stride: int(nb.stride),
		Format: f,
		Bits:   unsafe.Slice((*byte)(nb.bits), size),
	}, 0
}

func (w *ndkWindow) UnlockAndPost() int {
	return int(C.ANativeWindow_unlockAndPost(w.ptr))
}
