// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package protocol_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/internal/pipetest"
	"github.com/gogpu/glpipe/pipe"
	"github.com/gogpu/glpipe/protocol"
)

func newContext(t *testing.T, opts ...protocol.ContextOption) (*protocol.GLContext, *pipetest.Dialer) {
	t.Helper()
	d := pipetest.NewDialer(pipe.EndpointES2)
	ch, err := pipe.Negotiate(d)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	return protocol.NewContext(ch, opts...), d
}

func decoded(t *testing.T, d *pipetest.Dialer) []protocol.Command {
	t.Helper()
	cmds, err := protocol.DecodeAll(bytes.NewReader(d.Bytes()))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	return cmds
}

func ops(cmds []protocol.Command) []protocol.Opcode {
	out := make([]protocol.Opcode, len(cmds))
	for i, c := range cmds {
		out[i] = c.Op
	}
	return out
}

func TestContextLifecycle(t *testing.T) {
	ctx, d := newContext(t)

	if ctx.Endpoint() != pipe.EndpointES2 {
		t.Errorf("Endpoint = %s", ctx.Endpoint())
	}
	if err := ctx.Initialize(720, 1280, 320, 320, 60); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !ctx.Initialized() {
		t.Fatal("not initialized after Initialize")
	}
	if w, h := ctx.Size(); w != 720 || h != 1280 {
		t.Errorf("Size = %dx%d", w, h)
	}

	if err := ctx.SetWindowSize(800, 480, 640, 360); err != nil {
		t.Fatalf("SetWindowSize: %v", err)
	}
	if w, h := ctx.Size(); w != 640 || h != 360 {
		t.Errorf("Size after resize = %dx%d, want framebuffer 640x360", w, h)
	}
	if err := ctx.MakeCurrent(); err != nil {
		t.Fatalf("MakeCurrent: %v", err)
	}
	if err := ctx.SwapBuffers(); err != nil {
		t.Fatalf("SwapBuffers: %v", err)
	}
	if err := ctx.Repaint(); err != nil {
		t.Fatalf("Repaint: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []protocol.Opcode{
		protocol.OpInitialize, protocol.OpSetWindowSize, protocol.OpMakeCurrent,
		protocol.OpSwapBuffers, protocol.OpRepaint, protocol.OpDestroy,
	}
	got := ops(decoded(t, d))
	if len(got) != len(want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d = %s, want %s", i, got[i], want[i])
		}
	}
	if !d.Conns()[0].Closed() {
		t.Error("channel not closed")
	}
}

func TestDestroyAtMostOnce(t *testing.T) {
	ctx, d := newContext(t)
	if err := ctx.Initialize(1, 1, 1, 1, 1); err != nil {
		t.Fatal(err)
	}

	if err := ctx.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := ctx.Destroy(); !errors.Is(err, protocol.ErrNotInitialized) {
		t.Errorf("second Destroy = %v, want ErrNotInitialized", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	destroys := 0
	for _, c := range decoded(t, d) {
		if c.Op == protocol.OpDestroy {
			destroys++
		}
	}
	if destroys != 1 {
		t.Errorf("Destroy sent %d times, want 1", destroys)
	}
}

func TestCloseUninitializedSendsNothing(t *testing.T) {
	ctx, d := newContext(t)
	if err := ctx.Destroy(); !errors.Is(err, protocol.ErrNotInitialized) {
		t.Errorf("Destroy = %v, want ErrNotInitialized", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if n := len(d.Bytes()); n != 0 {
		t.Errorf("wrote %d bytes on uninitialized context", n)
	}
	if err := ctx.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestFailedSendKeepsState(t *testing.T) {
	ctx, d := newContext(t)
	if err := ctx.Initialize(720, 1280, 320, 320, 60); err != nil {
		t.Fatal(err)
	}

	d.BreakWrites(errors.New("broken"))
	err := ctx.SetWindowSize(1, 2, 3, 4)
	if !errors.Is(err, glpipe.ErrIO) {
		t.Fatalf("SetWindowSize err = %v, want ErrIO", err)
	}
	if w, h := ctx.Size(); w != 720 || h != 1280 {
		t.Errorf("Size changed on failure: %dx%d", w, h)
	}

	// Destroy is attempted once even if it fails; afterwards the context
	// is uninitialized.
	if err := ctx.Destroy(); err == nil {
		t.Error("Destroy on broken channel succeeded")
	}
	if ctx.Initialized() {
		t.Error("still initialized after Destroy attempt")
	}
}

func TestFailedInitializeStaysUninitialized(t *testing.T) {
	ctx, d := newContext(t)
	d.BreakWrites(errors.New("broken"))

	if err := ctx.Initialize(720, 1280, 320, 320, 60); err == nil {
		t.Fatal("Initialize succeeded on broken channel")
	}
	if ctx.Initialized() {
		t.Error("initialized after failed send")
	}
}

func TestContextCommandLog(t *testing.T) {
	dir := t.TempDir()
	rec := diag.NewRecorder(dir)
	defer rec.Close()

	ctx, _ := newContext(t, protocol.WithCommandLog(rec))
	if err := ctx.Initialize(720, 1280, 320, 320, 60); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(dir, diag.CommandLog))
	if err != nil {
		t.Fatal(err)
	}
	got := string(b)
	for _, want := range []string{
		"Initialize (0x1000): width=720, height=1280, xdpi=320, ydpi=320, fps=60",
		"Destroy (0x1004): ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("command log missing %q:\n%s", want, got)
		}
	}
}
