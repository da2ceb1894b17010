// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipe

import (
	"fmt"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
)

type options struct {
	endpoints []Endpoint
	recorder  *diag.Recorder
}

// Option configures Connect and Negotiate.
type Option func(*options)

// WithEndpoints replaces the candidate endpoints tried by Negotiate.
// They are tried in the given order.
func WithEndpoints(eps ...Endpoint) Option {
	return func(o *options) { o.endpoints = eps }
}

// WithRecorder dumps all channel traffic to rec.
func WithRecorder(rec *diag.Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

func buildOptions(opts []Option) options {
	o := options{endpoints: Endpoints()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Connect opens a connection on d and performs the endpoint handshake:
// the endpoint name is written as the first bytes and flushed.
//
// Any failure returns an error matching glpipe.ErrNotAvailable, and the
// connection is closed before returning.
func Connect(d Dialer, ep Endpoint, opts ...Option) (*Channel, error) {
	o := buildOptions(opts)
	return connect(d, ep, o.recorder)
}

func connect(d Dialer, ep Endpoint, rec *diag.Recorder) (*Channel, error) {
	if d == nil {
		return nil, fmt.Errorf("pipe: connect %s: nil dialer: %w", ep, glpipe.ErrNotAvailable)
	}

	conn, err := d.Open()
	if err != nil {
		return nil, fmt.Errorf("pipe: open for %s: %w: %w", ep, glpipe.ErrNotAvailable, err)
	}

	ch := newChannel(ep, conn, rec)
	if err := ch.WriteAll([]byte(ep)); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("pipe: handshake %s: %w: %w", ep, glpipe.ErrNotAvailable, err)
	}
	if err := ch.Flush(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("pipe: handshake %s: %w: %w", ep, glpipe.ErrNotAvailable, err)
	}

	glpipe.Logger().Debug("pipe: connected", "endpoint", ep)
	return ch, nil
}

// Negotiate connects to the first endpoint whose handshake succeeds,
// trying ES3, ES2 and ES1 in that order unless WithEndpoints says
// otherwise. Endpoints after the first success are never attempted.
//
// If every endpoint fails the error matches glpipe.ErrNoEndpoint.
func Negotiate(d Dialer, opts ...Option) (*Channel, error) {
	o := buildOptions(opts)
	log := glpipe.Logger()

	var lastErr error
	for _, ep := range o.endpoints {
		ch, err := connect(d, ep, o.recorder)
		if err == nil {
			log.Info("pipe: endpoint selected", "endpoint", ep, "version", ep.Version())
			return ch, nil
		}
		log.Warn("pipe: endpoint unavailable, trying next", "endpoint", ep, "err", err)
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("pipe: negotiate: %w (last: %v)", glpipe.ErrNoEndpoint, lastErr)
	}
	return nil, fmt.Errorf("pipe: negotiate: %w", glpipe.ErrNoEndpoint)
}
