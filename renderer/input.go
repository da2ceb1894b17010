// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package renderer

// PointerAction is the kind of a pointer event.
type PointerAction int32

// Pointer actions, numbered as the host's motion events.
const (
	PointerDown   PointerAction = 0
	PointerUp     PointerAction = 1
	PointerMove   PointerAction = 2
	PointerCancel PointerAction = 3
)

// PointerEvent is one touch sample from the host.
type PointerEvent struct {
	Action    PointerAction
	PointerID int
	X, Y      float32
	Pressure  float32
}

// Input is the guest input subsystem. It is started once, at the first
// window attach, with the guest framebuffer size.
type Input interface {
	Start(width, height int) error
	Touch(ev PointerEvent) error
	Key(code int) error
}
