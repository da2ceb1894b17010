// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package guest starts the guest container's init process.
package guest

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/gogpu/glpipe"
)

// LoaderEnv is the environment variable that tells the guest init which
// loader library to use.
const LoaderEnv = "TYLOADER"

// DefaultInit is the init binary, relative to the rootfs.
const DefaultInit = "./init"

// ErrAlreadyRunning is returned by Launch when another launch holds the
// rootfs lock.
var ErrAlreadyRunning = errors.New("guest: container already running")

// Launcher runs the guest init once per rootfs.
//
// A lock file next to the rootfs makes a second launch fail with
// ErrAlreadyRunning, including from another process. The lock is released
// when the guest exits.
type Launcher struct {
	// Rootfs is the container root and the working directory of init.
	Rootfs string
	// LogPath receives init's stdout and stderr. It is truncated on launch.
	LogPath string
	// Init is the program to run. Empty means DefaultInit.
	Init string

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// LockPath returns the lock file guarding the rootfs.
func (l *Launcher) LockPath() string {
	return filepath.Clean(l.Rootfs) + ".lock"
}

// Launch starts init with LoaderEnv set to loader and returns once the
// process is running.
func (l *Launcher) Launch(loader string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil {
		return ErrAlreadyRunning
	}

	lock := flock.New(l.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("guest: lock %s: %w", l.LockPath(), err)
	}
	if !locked {
		return ErrAlreadyRunning
	}

	out, err := os.Create(l.LogPath)
	if err != nil {
		_ = lock.Unlock()
		return fmt.Errorf("guest: open log: %w", err)
	}

	prog := l.Init
	if prog == "" {
		prog = DefaultInit
	}
	cmd := exec.Command(prog)
	cmd.Dir = l.Rootfs
	cmd.Env = append(os.Environ(), LoaderEnv+"="+loader)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		out.Close()
		_ = lock.Unlock()
		return fmt.Errorf("guest: start %s: %w", prog, err)
	}

	l.cmd = cmd
	l.done = make(chan struct{})
	glpipe.Logger().Info("guest: init started",
		"pid", cmd.Process.Pid, "rootfs", l.Rootfs, "loader", loader, "log", l.LogPath)

	go l.reap(cmd, out, lock, l.done)
	return nil
}

func (l *Launcher) reap(cmd *exec.Cmd, out *os.File, lock *flock.Flock, done chan struct{}) {
	err := cmd.Wait()
	out.Close()
	if uerr := lock.Unlock(); uerr != nil {
		glpipe.Logger().Warn("guest: unlock rootfs", "err", uerr)
	}

	l.mu.Lock()
	l.err = err
	l.mu.Unlock()

	if err != nil {
		glpipe.Logger().Warn("guest: init exited", "err", err)
	} else {
		glpipe.Logger().Info("guest: init exited")
	}
	close(done)
}

// Pid returns the init process id, or 0 if nothing was launched.
func (l *Launcher) Pid() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cmd == nil || l.cmd.Process == nil {
		return 0
	}
	return l.cmd.Process.Pid
}

// Wait blocks until the launched init exits and returns its exit error.
// It returns nil immediately if nothing was launched.
func (l *Launcher) Wait() error {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
