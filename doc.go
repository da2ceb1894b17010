// Package glpipe forwards OpenGL ES session control from a host application
// to a guest container's graphics stub and manages the host surface the
// guest renders into.
//
// # Overview
//
// The guest has no access to host graphics hardware. It exposes OpenGL ES
// endpoints over a shared pipe device; the host opens a channel to the best
// endpoint, frames lifecycle commands on it and owns the on-screen surface.
//
// # Architecture
//
// The module is organized into:
//   - pipe: the byte channel to a guest endpoint, with ES3 → ES2 → ES1
//     negotiation
//   - protocol: the little-endian command framing and the GLContext
//   - renderer: the session state machine, the legacy/new renderer
//     selector and the Host composition root
//   - gralloc: the native surface buffer manager (lock, blit, post)
//   - diag: the passive diagnostic tap and traffic recorder
//   - config: YAML configuration with hot reload
//   - cmd/glpipe: the standalone binary (run, probe, tap, decode)
//
// # Quick Start
//
//	host := renderer.NewHost(renderer.HostOptions{
//	    Dialer: pipe.DeviceDialer{Path: pipe.DefaultDevice},
//	})
//	host.SelectRenderer(true)
//	host.WindowAttach(win, loader, 720, 1280, 320, 320, 60)
//	if err := host.Wait(); err != nil {
//	    log.Printf("renderer start failed: %v", err)
//	}
//
// # Logging
//
// glpipe is silent by default. Call SetLogger to route its structured logs
// to a slog.Handler.
//
// # Thread Safety
//
// All session operations are serialized by the session mutex. The surface
// buffer manager is not synchronized; lock/post must come from one
// goroutine at a time.
package glpipe

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
