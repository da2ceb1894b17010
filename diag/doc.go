// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package diag provides passive diagnostics for the renderer transport.
//
// Two pieces live here:
//
//   - Recorder: append-only, size-rotated log files under a debug
//     directory. The pipe, protocol and gralloc packages write their
//     traffic, command and buffer events through it when debugging is on.
//   - Tap: one background listener per well-known container socket. Each
//     listener connects, reads with a short deadline and dumps every chunk
//     it receives. Listeners never write to a monitored socket.
//
// Nothing in this package affects the control path. Every failure is
// logged and swallowed.
//
// # Dump Format
//
// Each chunk is written as a header line followed by three views:
//
//	[1700000000000] READ 8 bytes from /opengles2:
//	Hex: 00 10 00 00 20 03 00 00
//	ASCII: ........
//	i32: [4096, 800]
//
// The i32 view is present only for 4-byte aligned chunks and decodes
// little-endian words, matching the command protocol framing.
package diag
