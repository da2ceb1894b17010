// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package protocol frames OpenGL ES lifecycle commands on a pipe channel.
//
// Every command is a sequence of little-endian 32-bit words: the opcode
// followed by a fixed number of signed parameters.
//
//	Initialize     0x1000  width height xdpi ydpi fps
//	SetWindowSize  0x1001  width height fb_width fb_height
//	SwapBuffers    0x1002
//	MakeCurrent    0x1003
//	Destroy        0x1004
//	Repaint        0x1005
//
// There is no length prefix, no magic and no acknowledgement. Send writes
// one word at a time and flushes once per command.
package protocol
