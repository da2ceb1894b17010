// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !unix

package pipe

import (
	"errors"
	"io"
)

var errNoDevice = errors.New("pipe: device not supported on this platform")

// Available always reports false: the pipe device exists only on unix
// hosts.
func (d DeviceDialer) Available() bool { return false }

// Open always fails on this platform.
func (d DeviceDialer) Open() (io.ReadWriteCloser, error) { return nil, errNoDevice }
