// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package renderer owns the rendering session and routes host window
// events to it.
//
// # Session
//
// A Session is the state machine behind one guest rendering context:
//
//	Uninitialized --Start--> Starting --ok--> Active --Destroy--> Destroyed
//	                            |
//	                            +--fail--> Uninitialized
//
// While Active it holds the negotiated channel, the GLContext and one
// reference on the current window. Every operation takes the session
// mutex for its whole duration, so command frames never interleave on
// the channel. Destroyed is terminal; start again with a new Session.
//
// # Renderers
//
// Two rendering paths share the Renderer interface: SessionRenderer
// drives a Session over the pipe transport, and Legacy calls a fixed
// function table supplied by the host (a closed-source renderer library).
// A Selector picks one at start and falls back to the legacy path if the
// session cannot start.
//
// # Host
//
// Host is the composition root. The first window attach boots
// everything: the input subsystem, the guest container, and the renderer
// on its own goroutine. Later attaches only rebind and resize the window.
//
//	host := renderer.NewHost(renderer.HostOptions{
//	    Dialer:   pipe.DeviceDialer{},
//	    Legacy:   legacyTable,
//	    Launcher: &guest.Launcher{Rootfs: rootfs, LogPath: logPath},
//	})
//	host.SelectRenderer(true)
//	_ = host.WindowAttach(win, loader, 720, 1280, 320, 320, 60)
package renderer
