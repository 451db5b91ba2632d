/*
DESCRIPTION
  raster.go provides the interleaved 8-bit raster type used by the resampler
  and its conversion to and from image.Image.

AUTHORS
  The Australian Ocean Lab (AusOcean) developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

// Package raster provides an 8-bit multi-channel raster (Raster), conversion
// to and from image.Image, and image file reading and atomic writing.
package raster

import (
	"fmt"
	"image"
	"image/color"
)

// Raster is a Rows x Cols image with Channels interleaved 8-bit samples per
// pixel, stored row major. Channels is 1 (grey), 3 (RGB) or 4 (RGBA).
type Raster struct {
	Rows, Cols, Channels int
	Pix                  []uint8
}

// New returns a zeroed raster.
func New(rows, cols, channels int) (*Raster, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid raster size: %dx%d", rows, cols)
	}
	switch channels {
	case 1, 3, 4:
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	return &Raster{Rows: rows, Cols: cols, Channels: channels, Pix: make([]uint8, rows*cols*channels)}, nil
}

// Offset returns the index in Pix of the first sample of pixel (r, c).
func (r *Raster) Offset(row, col int) int { return (row*r.Cols + col) * r.Channels }

// FromImage converts img to a raster. Grey images give one channel, opaque
// images three and all others four non-premultiplied channels.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()

	if g, ok := img.(*image.Gray); ok {
		r := &Raster{Rows: rows, Cols: cols, Channels: 1, Pix: make([]uint8, rows*cols)}
		for y := 0; y < rows; y++ {
			i := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(r.Pix[y*cols:(y+1)*cols], g.Pix[i:i+cols])
		}
		return r
	}

	channels := 4
	if opaque(img) {
		channels = 3
	}
	r := &Raster{Rows: rows, Cols: cols, Channels: channels, Pix: make([]uint8, rows*cols*channels)}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := r.Offset(y, x)
			r.Pix[i], r.Pix[i+1], r.Pix[i+2] = c.R, c.G, c.B
			if channels == 4 {
				r.Pix[i+3] = c.A
			}
		}
	}
	return r
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// Image converts the raster back to an image.Image: *image.Gray for one
// channel and *image.NRGBA otherwise.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.Cols, r.Rows)
	if r.Channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g
	}
	img := image.NewNRGBA(rect)
	for p, i := 0, 0; p < r.Rows*r.Cols; p++ {
		j := p * 4
		img.Pix[j], img.Pix[j+1], img.Pix[j+2] = r.Pix[i], r.Pix[i+1], r.Pix[i+2]
		img.Pix[j+3] = 0xff
		if r.Channels == 4 {
			img.Pix[j+3] = r.Pix[i+3]
		}
		i += r.Channels
	}
	return img
}
