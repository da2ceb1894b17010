// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build unix

package pipe

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Available reports whether the device node exists and is readable and
// writable by this process.
func (d DeviceDialer) Available() bool {
	return unix.Access(d.path(), unix.R_OK|unix.W_OK) == nil
}

// Open opens the device node read/write.
func (d DeviceDialer) Open() (io.ReadWriteCloser, error) {
	return os.OpenFile(d.path(), os.O_RDWR|unix.O_CLOEXEC, 0)
}
