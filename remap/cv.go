//go:build withcv
// +build withcv

/*
DESCRIPTION
  cv.go provides an OpenCV backed alternative to Resample operating on
  gocv matrices.

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
	"errors"
	"fmt"
	"image/color"

	"gocv.io/x/gocv"
)

// Maps holds the coordinates as the single precision x and y maps used by
// OpenCV remap. They must be closed after use.
type Maps struct {
	X, Y gocv.Mat
}

// NewMaps converts c to OpenCV maps.
func NewMaps(c *Coords) (*Maps, error) {
	err := c.Validate()
	if err != nil {
		return nil, err
	}
	m := &Maps{
		X: gocv.NewMatWithSize(c.Rows, c.Cols, gocv.MatTypeCV32F),
		Y: gocv.NewMatWithSize(c.Rows, c.Cols, gocv.MatTypeCV32F),
	}
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			row, col := c.At(i, j)
			m.X.SetFloatAt(i, j, float32(col))
			m.Y.SetFloatAt(i, j, float32(row))
		}
	}
	return m, nil
}

// Close releases the maps.
func (m *Maps) Close() error {
	return errors.Join(m.X.Close(), m.Y.Close())
}

// Remap resamples src through m with bilinear interpolation, outputting
// black outside the source.
func Remap(src gocv.Mat, m *Maps) (gocv.Mat, error) {
	dst := gocv.NewMat()
	if src.Empty() {
		return dst, errors.New("source image is empty")
	}
	gocv.Remap(src, &dst, &m.X, &m.Y, gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	if dst.Empty() {
		return dst, fmt.Errorf("remap produced no output for %dx%d source", src.Rows(), src.Cols())
	}
	return dst, nil
}

// RemapFile reads the image at in, resamples it through m and writes the
// result to out.
func RemapFile(in, out string, m *Maps) error {
	src := gocv.IMRead(in, gocv.IMReadUnchanged)
	defer src.Close()
	if src.Empty() {
		return fmt.Errorf("could not read %s", in)
	}
	dst, err := Remap(src, m)
	defer dst.Close()
	if err != nil {
		return fmt.Errorf("could not remap %s: %w", in, err)
	}
	if !gocv.IMWrite(out, dst) {
		return fmt.Errorf("could not write %s", out)
	}
	return nil
}
