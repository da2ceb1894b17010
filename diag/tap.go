// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/glpipe"
)

// Tap defaults.
const (
	DefaultReadTimeout = 100 * time.Millisecond
	DefaultChunkSize   = 4096
)

// Tap runs one passive listener per socket path and dumps whatever each
// socket delivers to socket_<path>.log in the recorder's directory.
//
// The zero value is not usable; set Paths and Recorder before Start.
type Tap struct {
	// Paths lists the unix socket paths to monitor.
	Paths []string

	// Recorder receives the dumps. A nil or disabled recorder makes Start
	// a no-op.
	Recorder *Recorder

	// ReadTimeout is the read deadline used to re-check liveness.
	// Zero means DefaultReadTimeout.
	ReadTimeout time.Duration

	// ChunkSize is the read buffer size. Zero means DefaultChunkSize.
	ChunkSize int

	// Dial connects to a socket path. Nil means a unix stream dial.
	Dial func(path string) (net.Conn, error)

	g *errgroup.Group
}

// Start spawns the listeners and returns immediately. Listeners end when
// their socket closes, fails, or ctx is cancelled.
func (t *Tap) Start(ctx context.Context) {
	log := glpipe.Logger()
	if !t.Recorder.Enabled() {
		log.Debug("diag: tap disabled")
		return
	}

	t.g = new(errgroup.Group)
	for _, p := range t.Paths {
		t.g.Go(func() error {
			t.listen(ctx, p)
			return nil
		})
	}
	log.Info("diag: tap started", "sockets", len(t.Paths), "dir", t.Recorder.Dir())
}

// Wait blocks until every listener has ended.
func (t *Tap) Wait() error {
	if t.g == nil {
		return nil
	}
	return t.g.Wait()
}

func (t *Tap) listen(ctx context.Context, p string) {
	log := glpipe.Logger().With("socket", p)

	if _, err := os.Stat(p); err != nil {
		log.Debug("diag: socket absent, skipping", "err", err)
		return
	}

	conn, err := t.dial(p)
	if err != nil {
		log.Warn("diag: connect failed", "err", err)
		return
	}
	defer conn.Close()

	timeout := t.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	size := t.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	logName := "socket_" + FileName(p) + ".log"

	log.Debug("diag: listening")
	for ctx.Err() == nil {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			log.Warn("diag: set deadline", "err", err)
			return
		}

		n, err := conn.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			ts := time.Now()
			t.Recorder.Append(logName, func(w io.Writer) error {
				return FormatChunk(w, ts, "READ", p, chunk)
			})
		}

		switch {
		case err == nil && n == 0:
			log.Debug("diag: socket closed")
			return
		case err == nil:
		case isTimeout(err):
		case errors.Is(err, io.EOF):
			log.Debug("diag: socket closed")
			return
		default:
			log.Warn("diag: read failed", "err", err)
			return
		}
	}
}

func (t *Tap) dial(p string) (net.Conn, error) {
	if t.Dial != nil {
		return t.Dial(p)
	}
	return net.Dial("unix", p)
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// DefaultPaths returns the container sockets worth monitoring: input
// devices, system services, binder endpoints, the OpenGL ES endpoints at
// both the device root and inside rootfs, and the debugger socket.
func DefaultPaths(rootfs string) []string {
	paths := []string{
		"/dev/input/key0",
		"/dev/input/touch",
	}
	for _, s := range []string{
		"property_service", "vold", "cryptd", "netd", "dnsproxyd",
		"mdns", "fwmarkd", "zygote", "webview_zygote",
	} {
		paths = append(paths, "/dev/socket/"+s)
	}
	for _, dev := range []string{"vbinder", "vndbinder", "hwbinder"} {
		for _, s := range []string{"bcs", "bhs", "bis"} {
			paths = append(paths, "/dev/"+dev+"/"+s)
		}
	}
	gles := []string{"/opengles", "/opengles2", "/opengles3"}
	paths = append(paths, gles...)
	if rootfs != "" {
		for _, g := range gles {
			paths = append(paths, path.Join(rootfs, g))
		}
	}
	return append(paths, "/data/system/ndebugsocket")
}
