// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"
)

// FormatChunk writes one dump entry for data to w.
// direction is an upper-case tag such as "READ" or "WRITE"; source names
// the endpoint or socket path and may be empty.
func FormatChunk(w io.Writer, ts time.Time, direction, source string, data []byte) error {
	var b strings.Builder

	fmt.Fprintf(&b, "\n[%d] %s %d bytes", ts.UnixMilli(), strings.ToUpper(direction), len(data))
	if source != "" {
		fmt.Fprintf(&b, " from %s", source)
	}
	b.WriteString(":\n")

	fmt.Fprintf(&b, "Hex: % x\n", data)
	fmt.Fprintf(&b, "ASCII: %s\n", Printable(data))

	if words, ok := Int32View(data); ok {
		b.WriteString("i32: [")
		for i, v := range words {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%d", v)
		}
		b.WriteString("]\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Printable maps data to a string keeping graphic ASCII and spaces and
// replacing every other byte with '.'.
func Printable(data []byte) string {
	out := make([]byte, len(data))
	for i, c := range data {
		if c == ' ' || (c > ' ' && c < 0x7f) {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

// Int32View decodes data as little-endian int32 words.
// It reports false unless data holds at least one word and its length is
// a multiple of four.
func Int32View(data []byte) ([]int32, bool) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, false
	}
	words := make([]int32, len(data)/4)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(data[i*4:])) //nolint:gosec // G115: reinterpretation is intended
	}
	return words, true
}

// FileName turns a path or endpoint name into a log file stem by
// replacing separators, e.g. "/dev/socket/vold" becomes "_dev_socket_vold".
func FileName(path string) string {
	return strings.ReplaceAll(path, "/", "_")
}
