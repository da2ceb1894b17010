// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipe

import (
	"bufio"
	"errors"
	"io"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
)

// Channel is a duplex byte stream bound to one endpoint.
//
// Writes are buffered; call Flush after each logical command and before
// any read that depends on it. Every failure is a *glpipe.IOError.
//
// A failed write or flush discards whatever was still buffered, so the
// channel stays usable and the tail of a failed command is never sent
// ahead of the next one.
//
// A Channel is owned by a single caller and is not safe for concurrent
// use.
type Channel struct {
	endpoint Endpoint
	conn     io.ReadWriteCloser
	w        *bufio.Writer
	rec      *diag.Recorder
	closed   bool
}

func newChannel(ep Endpoint, conn io.ReadWriteCloser, rec *diag.Recorder) *Channel {
	return &Channel{
		endpoint: ep,
		conn:     conn,
		w:        bufio.NewWriter(conn),
		rec:      rec,
	}
}

// Endpoint returns the endpoint the channel is bound to.
func (c *Channel) Endpoint() Endpoint { return c.endpoint }

// WriteAll queues every byte of p or fails. There is no partial success:
// on error nothing of the pending command reaches the device after this
// call, and the next command starts on a clean buffer.
func (c *Channel) WriteAll(p []byte) error {
	if c.closed {
		return c.ioErr("write", io.ErrClosedPipe)
	}
	if _, err := c.w.Write(p); err != nil {
		c.w.Reset(c.conn)
		return c.ioErr("write", err)
	}
	c.rec.Traffic(string(c.endpoint), "write", p)
	return nil
}

// Flush pushes buffered bytes to the device.
func (c *Channel) Flush() error {
	if c.closed {
		return c.ioErr("flush", io.ErrClosedPipe)
	}
	if err := c.w.Flush(); err != nil {
		// bufio.Writer keeps its first error forever.
		c.w.Reset(c.conn)
		return c.ioErr("flush", err)
	}
	return nil
}

// Read reads up to len(p) bytes. It returns the count read; io.EOF is
// reported as an IOError like any other failure.
func (c *Channel) Read(p []byte) (int, error) {
	if c.closed {
		return 0, c.ioErr("read", io.ErrClosedPipe)
	}
	n, err := c.conn.Read(p)
	if n > 0 {
		c.rec.Traffic(string(c.endpoint), "read", p[:n])
	}
	if err != nil {
		return n, c.ioErr("read", err)
	}
	return n, nil
}

// ReadExact fills p completely or fails.
func (c *Channel) ReadExact(p []byte) error {
	if c.closed {
		return c.ioErr("read", io.ErrClosedPipe)
	}
	n, err := io.ReadFull(c.conn, p)
	if n > 0 {
		c.rec.Traffic(string(c.endpoint), "read", p[:n])
	}
	if err != nil {
		return c.ioErr("read", err)
	}
	return nil
}

// Close flushes pending writes and closes the connection. Calling Close
// more than once is a no-op.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	flushErr := c.w.Flush()
	closeErr := c.conn.Close()
	if err := errors.Join(flushErr, closeErr); err != nil {
		return c.ioErr("close", err)
	}
	return nil
}

func (c *Channel) ioErr(op string, err error) error {
	return &glpipe.IOError{Op: op, Endpoint: string(c.endpoint), Err: err}
}
