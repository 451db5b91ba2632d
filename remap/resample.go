/*
DESCRIPTION
  resample.go provides bilinear resampling of a raster through dense
  coordinate arrays.

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

package remap

import (
	"fmt"
	"math"

	"github.com/ausocean/unwarp/raster"
)

// Boundary is the policy for coordinates that fall outside the source.
type Boundary int

// Boundary policies.
const (
	// Fill outputs the fill value for any coordinate outside
	// [0, rows-1] x [0, cols-1].
	Fill Boundary = iota

	// Clamp moves the coordinate to the nearest edge of the source.
	Clamp
)

func (b Boundary) String() string {
	switch b {
	case Fill:
		return "fill"
	case Clamp:
		return "clamp"
	}
	return fmt.Sprintf("Boundary(%d)", int(b))
}

// ParseBoundary returns the boundary policy named s.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "fill":
		return Fill, nil
	case "clamp":
		return Clamp, nil
	}
	return 0, fmt.Errorf("unknown boundary policy: %q", s)
}

// Option is the function signature returned by option functions below for
// use in Resample.
type Option func(*sampler) error

// WithBoundary returns an Option that sets the boundary policy.
func WithBoundary(b Boundary) Option {
	return func(s *sampler) error {
		if b != Fill && b != Clamp {
			return fmt.Errorf("invalid boundary policy: %d", b)
		}
		s.boundary = b
		return nil
	}
}

// WithFill returns an Option that sets the value used outside the source
// under the Fill policy.
func WithFill(v uint8) Option {
	return func(s *sampler) error {
		s.fill = v
		return nil
	}
}

type sampler struct {
	boundary Boundary
	fill     uint8
}

// Resample returns a new raster of the coordinate dimensions in which every
// sample is the source bilinearly interpolated at the corresponding
// coordinate, rounded to the nearest integer. Each channel is sampled
// independently.
func Resample(src *raster.Raster, c *Coords, opts ...Option) (*raster.Raster, error) {
	var s sampler
	for i, opt := range opts {
		err := opt(&s)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	err := c.Validate()
	if err != nil {
		return nil, err
	}
	dst, err := raster.New(c.Rows, c.Cols, src.Channels)
	if err != nil {
		return nil, fmt.Errorf("could not create output raster: %w", err)
	}
	if len(src.Pix) != src.Rows*src.Cols*src.Channels {
		return nil, fmt.Errorf("inconsistent source raster: %dx%dx%d with %d samples", src.Rows, src.Cols, src.Channels, len(src.Pix))
	}

	for k := range c.Row {
		s.sample(dst.Pix[k*dst.Channels:(k+1)*dst.Channels], src, c.Row[k], c.Col[k])
	}
	return dst, nil
}

// sample writes the interpolated value of every channel of src at (y, x)
// into out.
func (s *sampler) sample(out []uint8, src *raster.Raster, y, x float64) {
	maxY, maxX := float64(src.Rows-1), float64(src.Cols-1)
	if src.Rows == 0 || src.Cols == 0 || math.IsNaN(y) || math.IsNaN(x) {
		s.fillOut(out)
		return
	}
	switch s.boundary {
	case Clamp:
		y = math.Max(0, math.Min(y, maxY))
		x = math.Max(0, math.Min(x, maxX))
	default:
		if y < 0 || y > maxY || x < 0 || x > maxX {
			s.fillOut(out)
			return
		}
	}

	y0, x0 := int(y), int(x)
	fy, fx := y-float64(y0), x-float64(x0)
	y1, x1 := min(y0+1, src.Rows-1), min(x0+1, src.Cols-1)

	p00, p01 := src.Offset(y0, x0), src.Offset(y0, x1)
	p10, p11 := src.Offset(y1, x0), src.Offset(y1, x1)
	for ch := range out {
		v := (1-fy)*((1-fx)*float64(src.Pix[p00+ch])+fx*float64(src.Pix[p01+ch])) +
			fy*((1-fx)*float64(src.Pix[p10+ch])+fx*float64(src.Pix[p11+ch]))
		out[ch] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
}

func (s *sampler) fillOut(out []uint8) {
	for i := range out {
		out[i] = s.fill
	}
}
