// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipe

import "io"

// DefaultDevice is the shared pipe device exposed to the host.
const DefaultDevice = "/dev/qemu_pipe"

// Dialer opens raw connections on the pipe device.
//
// Each Open returns an independent connection; the endpoint handshake is
// done by Connect, not by the Dialer.
type Dialer interface {
	// Available reports whether the device can be opened at all.
	Available() bool

	// Open returns a new read/write connection to the device.
	Open() (io.ReadWriteCloser, error)
}

// DeviceDialer opens the pipe device node at Path.
// An empty Path means DefaultDevice.
type DeviceDialer struct {
	Path string
}

func (d DeviceDialer) path() string {
	if d.Path == "" {
		return DefaultDevice
	}
	return d.Path
}

// IsAvailable reports whether d can reach the transport device.
// Renderer start checks this before negotiating.
func IsAvailable(d Dialer) bool {
	return d != nil && d.Available()
}
