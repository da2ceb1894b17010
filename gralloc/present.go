// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gralloc

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glpipe"
)

// Present runs one full frame: lock, scale src into the buffer, draw the
// overlay if set, unlock and post, then mirror the posted pixels.
//
// RGB565 buffers are drawn through an RGBA scratch image and packed.
// Only buffers with an RGBA8 texture equivalent are mirrored; others are
// posted without a mirror upload. The buffer is posted even if the mirror
// upload fails; the mirror error is returned after the post.
func (m *Manager) Present(src image.Image) error {
	buf, err := m.LockBuffer()
	if err != nil {
		return err
	}

	dst, direct := buf.RGBA()
	if !direct {
		if buf.Format != FormatRGB565 || buf.Stride < buf.Width || len(buf.Bits) < buf.Stride*2*buf.Height {
			// Post the untouched buffer so the window does not stay locked.
			if err := m.UnlockAndPost(); err != nil {
				return err
			}
			return fmt.Errorf("gralloc: present: unsupported buffer format %s", buf.Format)
		}
		dst = image.NewRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	}

	if src != nil {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}
	if m.overlay != "" {
		drawOverlay(dst, m.overlay)
	}
	if !direct {
		pack565(buf, dst)
	}

	mirror := m.mirror != nil && buf.Format.TextureFormat() == gputypes.TextureFormatRGBA8Unorm
	if m.mirror != nil && !mirror {
		glpipe.Logger().Debug("gralloc: mirror skipped", "format", buf.Format)
	}

	// Copy before posting: the buffer memory belongs to the host after
	// unlock.
	var mirrored []byte
	if mirror {
		mirrored = packRows(dst)
	}

	if err := m.UnlockAndPost(); err != nil {
		return err
	}

	if mirror {
		if err := m.mirror.UpdateData(mirrored); err != nil {
			return fmt.Errorf("gralloc: mirror update failed: %w", err)
		}
	}
	return nil
}

// Fill locks a buffer, fills it with c and posts it.
func (m *Manager) Fill(c color.Color) error {
	px := image.NewRGBA(image.Rect(0, 0, 1, 1))
	px.Set(0, 0, c)
	return m.Present(px)
}

func drawOverlay(dst *image.RGBA, text string) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	pad := 4

	w := font.MeasureString(face, text).Ceil() + 2*pad
	h := metrics.Height.Ceil() + 2*pad
	bg := image.Rect(0, 0, w, h).Intersect(dst.Bounds())
	xdraw.Draw(dst, bg, image.NewUniform(color.RGBA{A: 0xc0}), image.Point{}, xdraw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(pad, pad+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
}

// pack565 converts img into the little-endian RGB565 buffer b.
func pack565(b Buffer, img *image.RGBA) {
	for y := 0; y < b.Height; y++ {
		row := b.Bits[y*b.Stride*2:]
		for x := 0; x < b.Width; x++ {
			c := img.RGBAAt(x, y)
			v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
			binary.LittleEndian.PutUint16(row[2*x:], v)
		}
	}
}

// packRows returns the image pixels without row padding.
func packRows(img *image.RGBA) []byte {
	b := img.Bounds()
	row := b.Dx() * 4
	if img.Stride == row {
		return append([]byte(nil), img.Pix[:row*b.Dy()]...)
	}
	out := make([]byte, 0, row*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		off := y * img.Stride
		out = append(out, img.Pix[off:off+row]...)
	}
	return out
}
