// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"strings"
	"testing"
	"time"
)

func TestFormatChunk(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	data := []byte{0x00, 0x10, 0x00, 0x00, 0x20, 0x03, 0x00, 0x00}

	var b strings.Builder
	if err := FormatChunk(&b, ts, "read", "/opengles2", data); err != nil {
		t.Fatalf("FormatChunk: %v", err)
	}
	got := b.String()

	want := []string{
		"[1700000000000] READ 8 bytes from /opengles2:",
		"Hex: 00 10 00 00 20 03 00 00",
		"ASCII: ........",
		"i32: [4096, 800]",
	}
	for _, line := range want {
		if !strings.Contains(got, line) {
			t.Errorf("output missing %q\n%s", line, got)
		}
	}
}

func TestFormatChunkUnaligned(t *testing.T) {
	var b strings.Builder
	if err := FormatChunk(&b, time.Now(), "WRITE", "", []byte("hi!")); err != nil {
		t.Fatalf("FormatChunk: %v", err)
	}
	got := b.String()
	if strings.Contains(got, "i32:") {
		t.Errorf("unaligned chunk has int32 view:\n%s", got)
	}
	if strings.Contains(got, "from") {
		t.Errorf("empty source rendered:\n%s", got)
	}
	if !strings.Contains(got, "ASCII: hi!") {
		t.Errorf("printable view wrong:\n%s", got)
	}
}

func TestPrintable(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("abc"), "abc"},
		{[]byte("a b"), "a b"},
		{[]byte{0x00, 'x', 0x7f, 0xff}, ".x.."},
		{[]byte("\n\t"), ".."},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := Printable(tt.in); got != tt.want {
			t.Errorf("Printable(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInt32View(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []int32
		ok   bool
	}{
		{"empty", nil, nil, false},
		{"short", []byte{1, 2, 3}, nil, false},
		{"unaligned", []byte{1, 0, 0, 0, 2}, nil, false},
		{"one", []byte{0x05, 0x10, 0, 0}, []int32{0x1005}, true},
		{"negative", []byte{0xff, 0xff, 0xff, 0xff}, []int32{-1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Int32View(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("word %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("/dev/socket/vold"); got != "_dev_socket_vold" {
		t.Errorf("FileName = %q", got)
	}
	if got := FileName("/opengles3"); got != "_opengles3" {
		t.Errorf("FileName = %q", got)
	}
}
