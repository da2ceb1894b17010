// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build unix

package guest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRootfs(t *testing.T, script string) (*Launcher, string) {
	t.Helper()
	base := t.TempDir()
	rootfs := filepath.Join(base, "rootfs")
	require.NoError(t, os.Mkdir(rootfs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(rootfs, "init"), []byte("#!/bin/sh\n"+script), 0o755))

	logPath := filepath.Join(base, "log.txt")
	return &Launcher{Rootfs: rootfs, LogPath: logPath}, logPath
}

func TestLaunchRunsInitWithLoader(t *testing.T) {
	l, logPath := newRootfs(t, `echo "loader=$TYLOADER"; pwd; echo oops >&2`+"\n")

	require.NoError(t, l.Launch("/system/lib64/libloader.so"))
	assert.NotZero(t, l.Pid())
	require.NoError(t, l.Wait())

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "loader=/system/lib64/libloader.so")
	assert.Contains(t, out, "oops", "stderr captured")
	assert.True(t, strings.Contains(out, "rootfs"), "working directory is rootfs: %q", out)
}

func TestLaunchOnce(t *testing.T) {
	l, _ := newRootfs(t, "exit 0\n")
	require.NoError(t, l.Launch("x"))
	assert.ErrorIs(t, l.Launch("x"), ErrAlreadyRunning)
	require.NoError(t, l.Wait())
}

func TestLaunchLockedByOther(t *testing.T) {
	l, _ := newRootfs(t, "exit 0\n")

	other := flock.New(l.LockPath())
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	assert.ErrorIs(t, l.Launch("x"), ErrAlreadyRunning)
	assert.Zero(t, l.Pid())
}

func TestLockReleasedOnExit(t *testing.T) {
	l, _ := newRootfs(t, "exit 3\n")
	require.NoError(t, l.Launch("x"))
	assert.Error(t, l.Wait(), "non-zero exit reported")

	probe := flock.New(l.LockPath())
	locked, err := probe.TryLock()
	require.NoError(t, err)
	assert.True(t, locked, "rootfs lock still held after exit")
	_ = probe.Unlock()
}

func TestLaunchMissingInit(t *testing.T) {
	base := t.TempDir()
	l := &Launcher{Rootfs: base, LogPath: filepath.Join(base, "log.txt")}
	assert.Error(t, l.Launch("x"))
	assert.NoError(t, l.Wait())

	// A failed start must not keep the lock.
	probe := flock.New(l.LockPath())
	locked, err := probe.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	_ = probe.Unlock()
}
