// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"slices"
	"testing"
)

func le(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[4*i:], w)
	}
	return b
}

func TestCommandEncoding(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"initialize", Initialize(720, 1280, 320, 320, 60), le(0x1000, 720, 1280, 320, 320, 60)},
		{"set window size", SetWindowSize(800, 480, 640, 360), le(0x1001, 800, 480, 640, 360)},
		{"swap", SwapBuffers(), le(0x1002)},
		{"make current", MakeCurrent(), le(0x1003)},
		{"destroy", Destroy(), le(0x1004)},
		{"repaint", Repaint(), le(0x1005)},
		{"negative param", SetWindowSize(-1, 0, 0, 0), le(0x1001, 0xffffffff, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cmd.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("bytes = % x, want % x", got, tt.want)
			}
			if len(got) != tt.cmd.Size() {
				t.Errorf("Size() = %d, len = %d", tt.cmd.Size(), len(got))
			}

			var back Command
			if err := back.UnmarshalBinary(got); err != nil {
				t.Fatalf("UnmarshalBinary: %v", err)
			}
			if back.Op != tt.cmd.Op || !slices.Equal(back.Params, tt.cmd.Params) {
				t.Errorf("decoded %s, want %s", back, tt.cmd)
			}
		})
	}
}

func TestCommandRoundTripExtremes(t *testing.T) {
	extremes := []int{math.MinInt32, -1, 0, 1, math.MaxInt32}
	build := map[Opcode]func(p []int) Command{
		OpInitialize:    func(p []int) Command { return Initialize(p[0], p[1], p[2], p[3], p[4]) },
		OpSetWindowSize: func(p []int) Command { return SetWindowSize(p[0], p[1], p[2], p[3]) },
	}
	for op, mk := range build {
		for slot := 0; slot < op.ParamCount(); slot++ {
			for _, v := range extremes {
				params := make([]int, op.ParamCount())
				for i := range params {
					params[i] = math.MaxInt32 - i
				}
				params[slot] = v
				cmd := mk(params)

				var buf bytes.Buffer
				if err := Encode(&buf, cmd); err != nil {
					t.Fatalf("%s slot %d = %d: Encode: %v", op, slot, v, err)
				}
				back, err := Decode(&buf)
				if err != nil {
					t.Fatalf("%s slot %d = %d: Decode: %v", op, slot, v, err)
				}
				if back.Op != op {
					t.Errorf("%s slot %d = %d: op = %s", op, slot, v, back.Op)
				}
				if int(back.Params[slot]) != v {
					t.Errorf("%s slot %d = %d: decoded %d", op, slot, v, back.Params[slot])
				}
				if !slices.Equal(back.Params, cmd.Params) {
					t.Errorf("%s slot %d = %d: params %v, want %v", op, slot, v, back.Params, cmd.Params)
				}
				if buf.Len() != 0 {
					t.Errorf("%s slot %d = %d: %d bytes left over", op, slot, v, buf.Len())
				}
			}
		}
	}
}

func TestCommandValidate(t *testing.T) {
	if _, err := (Command{Op: 0x2000}).MarshalBinary(); !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("unknown opcode err = %v", err)
	}
	if _, err := (Command{Op: OpSwapBuffers, Params: []int32{1}}).MarshalBinary(); !errors.Is(err, ErrParamCount) {
		t.Errorf("extra param err = %v", err)
	}
	if _, err := (Command{Op: OpInitialize, Params: []int32{1, 2}}).MarshalBinary(); !errors.Is(err, ErrParamCount) {
		t.Errorf("missing params err = %v", err)
	}
}

func TestDecodeAll(t *testing.T) {
	var stream bytes.Buffer
	cmds := []Command{
		Initialize(720, 1280, 320, 320, 60),
		SetWindowSize(800, 480, 640, 360),
		SwapBuffers(),
		Destroy(),
	}
	for _, c := range cmds {
		if err := Encode(&stream, c); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	got, err := DecodeAll(&stream)
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(got) != len(cmds) {
		t.Fatalf("decoded %d commands, want %d", len(got), len(cmds))
	}
	for i := range cmds {
		if got[i].String() != cmds[i].String() {
			t.Errorf("command %d = %s, want %s", i, got[i], cmds[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"empty", nil, io.EOF},
		{"partial opcode", []byte{0x00, 0x10}, io.ErrUnexpectedEOF},
		{"unknown", le(0x0999), ErrUnknownOpcode},
		{"truncated params", le(0x1001, 800, 480), io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpcodeString(t *testing.T) {
	if got := OpSetWindowSize.String(); got != "SetWindowSize" {
		t.Errorf("String() = %q", got)
	}
	if got := Opcode(0x42).String(); got != "Opcode(0x0042)" {
		t.Errorf("String() = %q", got)
	}
}

func TestCommandDescribe(t *testing.T) {
	got := SetWindowSize(800, 480, 640, 360).Describe()
	want := "width=800, height=480, fb_width=640, fb_height=360"
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
	if got := SwapBuffers().String(); got != "SwapBuffers" {
		t.Errorf("String() = %q", got)
	}
}

type countingSender struct {
	writes  [][]byte
	flushes int
	failAt  int
}

func (s *countingSender) WriteAll(p []byte) error {
	if s.failAt > 0 && len(s.writes)+1 == s.failAt {
		return errors.New("write failed")
	}
	s.writes = append(s.writes, append([]byte(nil), p...))
	return nil
}

func (s *countingSender) Flush() error {
	s.flushes++
	return nil
}

func TestSendWordPerWrite(t *testing.T) {
	s := &countingSender{}
	if err := Send(s, SetWindowSize(800, 480, 640, 360)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(s.writes) != 5 {
		t.Fatalf("writes = %d, want 5", len(s.writes))
	}
	for i, w := range s.writes {
		if len(w) != WordSize {
			t.Errorf("write %d has %d bytes", i, len(w))
		}
	}
	if s.flushes != 1 {
		t.Errorf("flushes = %d, want 1", s.flushes)
	}
	if got := bytes.Join(s.writes, nil); !bytes.Equal(got, le(0x1001, 800, 480, 640, 360)) {
		t.Errorf("bytes = % x", got)
	}
}

func TestSendStopsOnError(t *testing.T) {
	s := &countingSender{failAt: 2}
	if err := Send(s, Initialize(1, 2, 3, 4, 5)); err == nil {
		t.Fatal("Send succeeded on failing writer")
	}
	if s.flushes != 0 {
		t.Errorf("flushed after failed write")
	}
	if len(s.writes) != 1 {
		t.Errorf("writes = %d, want 1", len(s.writes))
	}
}
