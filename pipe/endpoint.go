// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipe opens byte channels to the guest's OpenGL ES endpoints.
//
// A channel is a duplex stream over the shared pipe device. The first
// bytes written on a fresh connection name the endpoint; after that the
// stream carries whatever the protocol layer frames on it.
//
// Negotiate picks the best endpoint the guest serves, trying ES3, then
// ES2, then ES1, and returns the first channel whose handshake succeeds:
//
//	ch, err := pipe.Negotiate(pipe.DeviceDialer{Path: pipe.DefaultDevice})
//	if err != nil {
//	    return err // errors.Is(err, glpipe.ErrNoEndpoint)
//	}
//	defer ch.Close()
package pipe

// Endpoint is the service name written on a fresh connection to select an
// OpenGL ES protocol version on the guest side.
type Endpoint string

// Known endpoints.
const (
	EndpointES3 Endpoint = "/opengles3"
	EndpointES2 Endpoint = "/opengles2"
	EndpointES1 Endpoint = "/opengles"
)

// Endpoints returns the known endpoints in preference order.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointES3, EndpointES2, EndpointES1}
}

// Version returns the OpenGL ES major version served by the endpoint,
// or 0 for an unknown endpoint.
func (e Endpoint) Version() int {
	switch e {
	case EndpointES3:
		return 3
	case EndpointES2:
		return 2
	case EndpointES1:
		return 1
	default:
		return 0
	}
}

// String returns the endpoint name.
func (e Endpoint) String() string { return string(e) }
