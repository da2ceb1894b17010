// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordSize is the size of every word on the wire.
const WordSize = 4

// Opcode identifies a command. Values are fixed by the guest stub.
type Opcode uint32

// Known opcodes.
const (
	OpInitialize    Opcode = 0x1000
	OpSetWindowSize Opcode = 0x1001
	OpSwapBuffers   Opcode = 0x1002
	OpMakeCurrent   Opcode = 0x1003
	OpDestroy       Opcode = 0x1004
	OpRepaint       Opcode = 0x1005
)

// Decoding and encoding errors.
var (
	// ErrUnknownOpcode is returned when a word is not a known opcode.
	ErrUnknownOpcode = errors.New("protocol: unknown opcode")

	// ErrParamCount is returned when a command carries the wrong number of
	// parameters for its opcode.
	ErrParamCount = errors.New("protocol: wrong parameter count")
)

var paramNames = map[Opcode][]string{
	OpInitialize:    {"width", "height", "xdpi", "ydpi", "fps"},
	OpSetWindowSize: {"width", "height", "fb_width", "fb_height"},
	OpSwapBuffers:   nil,
	OpMakeCurrent:   nil,
	OpDestroy:       nil,
	OpRepaint:       nil,
}

// String returns the command name, e.g. "SetWindowSize".
func (o Opcode) String() string {
	switch o {
	case OpInitialize:
		return "Initialize"
	case OpSetWindowSize:
		return "SetWindowSize"
	case OpSwapBuffers:
		return "SwapBuffers"
	case OpMakeCurrent:
		return "MakeCurrent"
	case OpDestroy:
		return "Destroy"
	case OpRepaint:
		return "Repaint"
	default:
		return fmt.Sprintf("Opcode(0x%04x)", uint32(o))
	}
}

// Known reports whether o is a defined opcode.
func (o Opcode) Known() bool {
	_, ok := paramNames[o]
	return ok
}

// ParamCount returns the number of parameter words following o.
func (o Opcode) ParamCount() int {
	return len(paramNames[o])
}

// Command is one framed message: an opcode word followed by a fixed
// number of parameter words. There is no length prefix and no response.
type Command struct {
	Op     Opcode
	Params []int32
}

// Initialize creates the rendering context at the given surface size and
// display metrics.
func Initialize(width, height, xdpi, ydpi, fps int) Command {
	return Command{Op: OpInitialize, Params: words(width, height, xdpi, ydpi, fps)}
}

// SetWindowSize updates the surface and framebuffer dimensions.
func SetWindowSize(width, height, fbWidth, fbHeight int) Command {
	return Command{Op: OpSetWindowSize, Params: words(width, height, fbWidth, fbHeight)}
}

// SwapBuffers requests a buffer swap.
func SwapBuffers() Command { return Command{Op: OpSwapBuffers} }

// MakeCurrent binds the context on the guest side.
func MakeCurrent() Command { return Command{Op: OpMakeCurrent} }

// Destroy tears the guest context down.
func Destroy() Command { return Command{Op: OpDestroy} }

// Repaint asks the guest to redraw the last frame.
func Repaint() Command { return Command{Op: OpRepaint} }

func words(vals ...int) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v) //nolint:gosec // G115: surface metrics fit in int32
	}
	return out
}

// Validate checks the opcode and parameter count.
func (c Command) Validate() error {
	if !c.Op.Known() {
		return fmt.Errorf("%w: 0x%04x", ErrUnknownOpcode, uint32(c.Op))
	}
	if want := c.Op.ParamCount(); len(c.Params) != want {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrParamCount, c.Op, want, len(c.Params))
	}
	return nil
}

// Size returns the encoded size in bytes.
func (c Command) Size() int {
	return WordSize * (1 + len(c.Params))
}

// Describe renders the parameters as "name=value" pairs, e.g.
// "width=800, height=480, fb_width=640, fb_height=360".
func (c Command) Describe() string {
	names := paramNames[c.Op]
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		name := fmt.Sprintf("p%d", i)
		if i < len(names) {
			name = names[i]
		}
		parts[i] = fmt.Sprintf("%s=%d", name, p)
	}
	return strings.Join(parts, ", ")
}

// String returns a readable form such as "SwapBuffers" or
// "Initialize(width=720, height=1280, ...)".
func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Op.String()
	}
	return c.Op.String() + "(" + c.Describe() + ")"
}

// MarshalBinary encodes the command as little-endian words.
func (c Command) MarshalBinary() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, c.Size())
	binary.LittleEndian.PutUint32(buf, uint32(c.Op))
	for i, p := range c.Params {
		binary.LittleEndian.PutUint32(buf[WordSize*(i+1):], uint32(p)) //nolint:gosec // G115: two's complement is the wire format
	}
	return buf, nil
}

// UnmarshalBinary decodes exactly one command from data.
func (c *Command) UnmarshalBinary(data []byte) error {
	if len(data) < WordSize {
		return fmt.Errorf("protocol: short command: %d bytes", len(data))
	}
	op := Opcode(binary.LittleEndian.Uint32(data))
	if !op.Known() {
		return fmt.Errorf("%w: 0x%04x", ErrUnknownOpcode, uint32(op))
	}
	n := op.ParamCount()
	if len(data) != WordSize*(1+n) {
		return fmt.Errorf("%w: %s takes %d, got %d bytes", ErrParamCount, op, n, len(data))
	}
	c.Op = op
	c.Params = make([]int32, n)
	for i := range c.Params {
		c.Params[i] = int32(binary.LittleEndian.Uint32(data[WordSize*(i+1):])) //nolint:gosec // G115: two's complement is the wire format
	}
	return nil
}

// Encode writes c to w.
func Encode(w io.Writer, c Command) error {
	b, err := c.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Decode reads one command from r. It returns io.EOF only when r is
// exhausted at a command boundary.
func Decode(r io.Reader) (Command, error) {
	var word [WordSize]byte
	if _, err := io.ReadFull(r, word[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Command{}, fmt.Errorf("protocol: truncated opcode: %w", err)
		}
		return Command{}, err
	}

	op := Opcode(binary.LittleEndian.Uint32(word[:]))
	if !op.Known() {
		return Command{}, fmt.Errorf("%w: 0x%04x", ErrUnknownOpcode, uint32(op))
	}

	c := Command{Op: op}
	if n := op.ParamCount(); n > 0 {
		c.Params = make([]int32, n)
		for i := range c.Params {
			if _, err := io.ReadFull(r, word[:]); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				return Command{}, fmt.Errorf("protocol: truncated %s: %w", op, err)
			}
			c.Params[i] = int32(binary.LittleEndian.Uint32(word[:])) //nolint:gosec // G115: two's complement is the wire format
		}
	}
	return c, nil
}

// DecodeAll reads commands until r is exhausted. On error it returns the
// commands decoded so far together with the error.
func DecodeAll(r io.Reader) ([]Command, error) {
	var cmds []Command
	for {
		c, err := Decode(r)
		if errors.Is(err, io.EOF) {
			return cmds, nil
		}
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, c)
	}
}
