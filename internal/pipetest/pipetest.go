// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipetest provides a scripted pipe.Dialer for tests.
//
// Connections accept the endpoint handshake only for endpoints marked
// reachable. Every write after the handshake is recorded with a sequence
// number taken from one counter shared by all connections of a Dialer,
// so tests can assert ordering across reconnects and detect lost writes.
package pipetest

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/gogpu/glpipe/pipe"
)

// ErrRefused is returned by a handshake write to an unreachable endpoint.
var ErrRefused = errors.New("pipetest: endpoint refused")

// Write is one recorded write on a connection.
type Write struct {
	Seq      uint64
	Endpoint pipe.Endpoint
	Data     []byte
}

// Dialer is a scripted pipe.Dialer. The zero value is unavailable and
// refuses every endpoint; use NewDialer.
type Dialer struct {
	mu        sync.Mutex
	reachable map[pipe.Endpoint]bool
	available bool
	openErr   error
	writeErr  error
	seq       uint64
	attempts  []pipe.Endpoint
	conns     []*Conn
	writes    []Write
}

// NewDialer returns an available dialer that accepts the given endpoints.
func NewDialer(reachable ...pipe.Endpoint) *Dialer {
	d := &Dialer{reachable: make(map[pipe.Endpoint]bool), available: true}
	for _, ep := range reachable {
		d.reachable[ep] = true
	}
	return d
}

// SetAvailable controls what Available reports.
func (d *Dialer) SetAvailable(ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.available = ok
}

// SetReachable marks ep reachable or not for future handshakes.
func (d *Dialer) SetReachable(ep pipe.Endpoint, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reachable == nil {
		d.reachable = make(map[pipe.Endpoint]bool)
	}
	d.reachable[ep] = ok
}

// FailOpen makes every Open return err. Nil restores normal behavior.
func (d *Dialer) FailOpen(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.openErr = err
}

// BreakWrites makes every post-handshake write fail with err on all
// connections. Nil restores normal behavior.
func (d *Dialer) BreakWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// Available implements pipe.Dialer.
func (d *Dialer) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.available
}

// Open implements pipe.Dialer.
func (d *Dialer) Open() (io.ReadWriteCloser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	c := &Conn{d: d}
	d.conns = append(d.conns, c)
	return c, nil
}

// Attempts returns the endpoints named in handshakes, in order.
func (d *Dialer) Attempts() []pipe.Endpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]pipe.Endpoint(nil), d.attempts...)
}

// Conns returns every connection opened so far.
func (d *Dialer) Conns() []*Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Conn(nil), d.conns...)
}

// Writes returns every recorded write across connections in sequence
// order.
func (d *Dialer) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.writes...)
}

// Bytes returns the concatenated payload of every recorded write.
func (d *Dialer) Bytes() []byte {
	var b bytes.Buffer
	for _, w := range d.Writes() {
		b.Write(w.Data)
	}
	return b.Bytes()
}

// Conn is one scripted connection.
type Conn struct {
	d        *Dialer
	endpoint pipe.Endpoint
	bound    bool
	closed   bool
	inbound  bytes.Buffer
	data     bytes.Buffer
}

// Endpoint returns the endpoint named in the handshake, if any.
func (c *Conn) Endpoint() pipe.Endpoint {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.endpoint
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return c.closed
}

// Bytes returns everything written after the handshake.
func (c *Conn) Bytes() []byte {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	return append([]byte(nil), c.data.Bytes()...)
}

// Feed queues bytes to be returned by Read.
func (c *Conn) Feed(p []byte) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.inbound.Write(p)
}

// Write records p. The first write on a connection is the handshake and
// is checked against the reachable set.
func (c *Conn) Write(p []byte) (int, error) {
	d := c.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if c.closed {
		return 0, io.ErrClosedPipe
	}
	if !c.bound {
		ep := pipe.Endpoint(p)
		d.attempts = append(d.attempts, ep)
		if !d.reachable[ep] {
			return 0, ErrRefused
		}
		c.endpoint = ep
		c.bound = true
		return len(p), nil
	}
	if d.writeErr != nil {
		return 0, d.writeErr
	}

	d.seq++
	data := append([]byte(nil), p...)
	d.writes = append(d.writes, Write{Seq: d.seq, Endpoint: c.endpoint, Data: data})
	c.data.Write(data)
	return len(p), nil
}

// Read returns queued bytes, or io.EOF when none remain.
func (c *Conn) Read(p []byte) (int, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.inbound.Read(p)
}

// Close marks the connection closed.
func (c *Conn) Close() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.closed = true
	return nil
}
