// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gogpu/glpipe"
)

// Log file names shared with the bug-report collector on the host side.
const (
	CommandLog      = "opengles_commands.log"
	BufferLog       = "gralloc_buffers.log"
	SurfaceEventLog = "gralloc_events.log"
)

// DefaultMaxSizeMB is the size at which a dump file is rotated.
const DefaultMaxSizeMB = 8

// Recorder appends diagnostic entries to per-name files in a directory.
//
// A nil *Recorder is valid and records nothing, so components can hold an
// optional recorder without nil checks at every call site.
//
// Recorder is safe for concurrent use.
type Recorder struct {
	dir        string
	maxSizeMB  int
	maxBackups int
	now        func() time.Time

	enabled atomic.Bool

	mu    sync.Mutex
	files map[string]*lumberjack.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithMaxSize sets the rotation size in megabytes.
func WithMaxSize(mb int) RecorderOption {
	return func(r *Recorder) {
		if mb > 0 {
			r.maxSizeMB = mb
		}
	}
}

// WithMaxBackups sets how many rotated files are kept per log.
func WithMaxBackups(n int) RecorderOption {
	return func(r *Recorder) { r.maxBackups = n }
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates an enabled recorder writing under dir.
// The directory is created on first write.
func NewRecorder(dir string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		dir:        dir,
		maxSizeMB:  DefaultMaxSizeMB,
		maxBackups: 2,
		now:        time.Now,
		files:      make(map[string]*lumberjack.Logger),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.enabled.Store(true)
	return r
}

// Dir returns the directory the recorder writes to.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Enabled reports whether entries are currently written.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled.Load()
}

// SetEnabled switches recording on or off at runtime.
func (r *Recorder) SetEnabled(on bool) {
	if r == nil {
		return
	}
	r.enabled.Store(on)
	glpipe.Logger().Info("diag: recorder toggled", "enabled", on, "dir", r.dir)
}

// Append writes one entry to the named file. fill renders the entry into
// a buffer first so each entry reaches the file in a single write.
func (r *Recorder) Append(name string, fill func(w io.Writer) error) {
	if !r.Enabled() {
		return
	}

	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		glpipe.Logger().Warn("diag: render entry", "file", name, "err", err)
		return
	}

	f := r.file(name)
	if _, err := f.Write(buf.Bytes()); err != nil {
		glpipe.Logger().Warn("diag: append entry", "file", name, "err", err)
	}
}

// Traffic records one chunk of channel traffic to
// pipe_<source>_<direction>.log.
func (r *Recorder) Traffic(source, direction string, data []byte) {
	if !r.Enabled() {
		return
	}
	name := fmt.Sprintf("pipe_%s_%s.log", FileName(source), direction)
	ts := r.now()
	r.Append(name, func(w io.Writer) error {
		return FormatChunk(w, ts, direction, "", data)
	})
}

// Command records one protocol command to CommandLog.
func (r *Recorder) Command(name string, code uint32, params string) {
	if !r.Enabled() {
		return
	}
	ts := r.now()
	r.Append(CommandLog, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "[%d] %s (0x%04x): %s\n", ts.UnixMilli(), name, code, params)
		return err
	})
}

// Buffer records the geometry of a locked surface buffer to BufferLog.
func (r *Recorder) Buffer(event string, width, height, stride int, format string) {
	if !r.Enabled() {
		return
	}
	ts := r.now()
	r.Append(BufferLog, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "[%d] BUFFER_%s: width=%d, height=%d, stride=%d, format=%s\n",
			ts.UnixMilli(), upper(event), width, height, stride, format)
		return err
	})
}

// SurfaceEvent records a bare surface event to SurfaceEventLog.
func (r *Recorder) SurfaceEvent(event string) {
	if !r.Enabled() {
		return
	}
	ts := r.now()
	r.Append(SurfaceEventLog, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "[%d] %s\n", ts.UnixMilli(), upper(event))
		return err
	})
}

// Close closes every open log file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, f := range r.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("diag: close %s: %w", name, err))
		}
		delete(r.files, name)
	}
	return errors.Join(errs...)
}

func (r *Recorder) file(name string) *lumberjack.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[name]
	if !ok {
		f = &lumberjack.Logger{
			Filename:   filepath.Join(r.dir, name),
			MaxSize:    r.maxSizeMB,
			MaxBackups: r.maxBackups,
		}
		r.files[name] = f
	}
	return f
}

func upper(s string) string {
	return string(bytes.ToUpper([]byte(s)))
}
