// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package protocol

import (
	"encoding/binary"

	"github.com/gogpu/glpipe"
)

// Sender is the write side of a channel. *pipe.Channel implements it.
type Sender interface {
	WriteAll(p []byte) error
	Flush() error
}

// Send writes c as one WriteAll per word followed by exactly one Flush.
// No acknowledgement is read.
func Send(s Sender, c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}

	log := glpipe.Logger()
	var word [WordSize]byte

	binary.LittleEndian.PutUint32(word[:], uint32(c.Op))
	if err := s.WriteAll(word[:]); err != nil {
		return err
	}
	for i, p := range c.Params {
		binary.LittleEndian.PutUint32(word[:], uint32(p)) //nolint:gosec // G115: two's complement is the wire format
		log.Debug("protocol: param", "op", c.Op, "index", i, "value", p)
		if err := s.WriteAll(word[:]); err != nil {
			return err
		}
	}
	return s.Flush()
}
