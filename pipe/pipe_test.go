// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipe_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/internal/pipetest"
	"github.com/gogpu/glpipe/pipe"
)

func TestEndpointsOrder(t *testing.T) {
	eps := pipe.Endpoints()
	want := []pipe.Endpoint{"/opengles3", "/opengles2", "/opengles"}
	if len(eps) != len(want) {
		t.Fatalf("len = %d, want %d", len(eps), len(want))
	}
	for i := range want {
		if eps[i] != want[i] {
			t.Errorf("Endpoints()[%d] = %s, want %s", i, eps[i], want[i])
		}
		if v := eps[i].Version(); v != 3-i {
			t.Errorf("%s.Version() = %d, want %d", eps[i], v, 3-i)
		}
	}
	if v := pipe.Endpoint("/other").Version(); v != 0 {
		t.Errorf("unknown endpoint version = %d", v)
	}
}

func TestNegotiatePrefersHighest(t *testing.T) {
	tests := []struct {
		name      string
		reachable []pipe.Endpoint
		want      pipe.Endpoint
		attempts  []pipe.Endpoint
	}{
		{
			name:      "all reachable",
			reachable: []pipe.Endpoint{pipe.EndpointES3, pipe.EndpointES2, pipe.EndpointES1},
			want:      pipe.EndpointES3,
			attempts:  []pipe.Endpoint{pipe.EndpointES3},
		},
		{
			name:      "es2 and es1",
			reachable: []pipe.Endpoint{pipe.EndpointES2, pipe.EndpointES1},
			want:      pipe.EndpointES2,
			attempts:  []pipe.Endpoint{pipe.EndpointES3, pipe.EndpointES2},
		},
		{
			name:      "es1 only",
			reachable: []pipe.Endpoint{pipe.EndpointES1},
			want:      pipe.EndpointES1,
			attempts:  []pipe.Endpoint{pipe.EndpointES3, pipe.EndpointES2, pipe.EndpointES1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := pipetest.NewDialer(tt.reachable...)
			ch, err := pipe.Negotiate(d)
			if err != nil {
				t.Fatalf("Negotiate: %v", err)
			}
			defer ch.Close()

			if ch.Endpoint() != tt.want {
				t.Errorf("endpoint = %s, want %s", ch.Endpoint(), tt.want)
			}
			got := d.Attempts()
			if len(got) != len(tt.attempts) {
				t.Fatalf("attempts = %v, want %v", got, tt.attempts)
			}
			for i := range got {
				if got[i] != tt.attempts[i] {
					t.Errorf("attempt %d = %s, want %s", i, got[i], tt.attempts[i])
				}
			}
			// Failed handshakes must not leak connections.
			conns := d.Conns()
			for _, c := range conns[:len(conns)-1] {
				if !c.Closed() {
					t.Error("failed handshake left connection open")
				}
			}
		})
	}
}

func TestNegotiateNoEndpoint(t *testing.T) {
	d := pipetest.NewDialer()
	_, err := pipe.Negotiate(d)
	if !errors.Is(err, glpipe.ErrNoEndpoint) {
		t.Fatalf("err = %v, want ErrNoEndpoint", err)
	}
	if n := len(d.Attempts()); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestNegotiateWithEndpoints(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES3, pipe.EndpointES1)
	ch, err := pipe.Negotiate(d, pipe.WithEndpoints(pipe.EndpointES1, pipe.EndpointES3))
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if ch.Endpoint() != pipe.EndpointES1 {
		t.Errorf("endpoint = %s, want %s", ch.Endpoint(), pipe.EndpointES1)
	}
}

func TestConnectOpenFailure(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES3)
	d.FailOpen(os.ErrPermission)

	_, err := pipe.Connect(d, pipe.EndpointES3)
	if !errors.Is(err, glpipe.ErrNotAvailable) {
		t.Errorf("err = %v, want ErrNotAvailable", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestConnectNilDialer(t *testing.T) {
	if _, err := pipe.Connect(nil, pipe.EndpointES2); !errors.Is(err, glpipe.ErrNotAvailable) {
		t.Errorf("err = %v, want ErrNotAvailable", err)
	}
	if pipe.IsAvailable(nil) {
		t.Error("IsAvailable(nil) = true")
	}
}

func TestChannelWriteFlush(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES2)
	ch, err := pipe.Connect(d, pipe.EndpointES2)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if err := ch.WriteAll([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if got := d.Bytes(); len(got) != 0 {
		t.Errorf("bytes visible before flush: %v", got)
	}
	if err := ch.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := d.Bytes(); string(got) != "\x01\x02\x03\x04" {
		t.Errorf("bytes = %v", got)
	}

	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if !d.Conns()[0].Closed() {
		t.Error("connection not closed")
	}

	err = ch.WriteAll([]byte{5})
	var ioErr *glpipe.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "write" {
		t.Errorf("write after close = %v", err)
	}
}

func TestChannelIOErrors(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES3)
	ch, err := pipe.Connect(d, pipe.EndpointES3)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ch.Close()

	broken := errors.New("broken pipe")
	d.BreakWrites(broken)
	if err := ch.WriteAll([]byte{0, 0, 0, 0}); err != nil {
		t.Fatalf("buffered WriteAll: %v", err)
	}
	err = ch.Flush()
	if !errors.Is(err, glpipe.ErrIO) {
		t.Errorf("Flush err = %v, want ErrIO", err)
	}
	if !errors.Is(err, broken) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestChannelRecoversAfterFailedFlush(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES3)
	ch, err := pipe.Connect(d, pipe.EndpointES3)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ch.Close()

	d.BreakWrites(errors.New("transient"))
	if err := ch.WriteAll([]byte{1, 1, 1, 1}); err != nil {
		t.Fatalf("buffered WriteAll: %v", err)
	}
	if err := ch.Flush(); !errors.Is(err, glpipe.ErrIO) {
		t.Fatalf("Flush err = %v, want ErrIO", err)
	}

	d.BreakWrites(nil)
	if err := ch.WriteAll([]byte{2, 2, 2, 2}); err != nil {
		t.Fatalf("WriteAll after heal: %v", err)
	}
	if err := ch.Flush(); err != nil {
		t.Fatalf("Flush after heal: %v", err)
	}
	if got := d.Bytes(); string(got) != string([]byte{2, 2, 2, 2}) {
		t.Errorf("wire = %v, want only the second write", got)
	}
}

func TestChannelRead(t *testing.T) {
	d := pipetest.NewDialer(pipe.EndpointES3)
	ch, err := pipe.Connect(d, pipe.EndpointES3)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ch.Close()

	d.Conns()[0].Feed([]byte("abcdef"))

	buf := make([]byte, 4)
	if err := ch.ReadExact(buf); err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if string(buf) != "abcd" {
		t.Errorf("ReadExact = %q", buf)
	}
	if err := ch.ReadExact(buf); !errors.Is(err, glpipe.ErrIO) {
		t.Errorf("short ReadExact err = %v, want ErrIO", err)
	}

	d.Conns()[0].Feed([]byte("xy"))
	n, err := ch.Read(buf)
	if err != nil || n != 2 || string(buf[:n]) != "xy" {
		t.Errorf("Read = %d %q %v", n, buf[:n], err)
	}
}

func TestChannelRecordsTraffic(t *testing.T) {
	dir := t.TempDir()
	rec := diag.NewRecorder(dir)
	defer rec.Close()

	d := pipetest.NewDialer(pipe.EndpointES2)
	ch, err := pipe.Negotiate(d, pipe.WithRecorder(rec))
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if err := ch.WriteAll([]byte{0x02, 0x10, 0x00, 0x00}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "pipe__opengles2_write.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(b)
	if !strings.Contains(got, "ASCII: /opengles2") {
		t.Errorf("handshake not recorded:\n%s", got)
	}
	if !strings.Contains(got, "i32: [4098]") {
		t.Errorf("command not recorded:\n%s", got)
	}
}
