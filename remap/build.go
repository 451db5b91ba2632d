/*
DESCRIPTION
  build.go provides sampling of a fitted coordinate map over a dense output
  raster.

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

// Package remap provides the dense coordinate arrays sampled from a fitted
// calibration map (Coords) and the resampling of images through them.
package remap

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
)

// ErrPixelDensity is returned for a non-positive pixels per unit.
var ErrPixelDensity = errors.New("invalid pixel density")

// Coords holds, for every pixel of a Rows x Cols output raster, the physical
// source row and column to sample. Both slices are row major.
type Coords struct {
	Rows, Cols int
	Row, Col   []float64
}

// NewCoords returns zeroed coordinates for a rows x cols output.
func NewCoords(rows, cols int) *Coords {
	return &Coords{
		Rows: rows,
		Cols: cols,
		Row:  make([]float64, rows*cols),
		Col:  make([]float64, rows*cols),
	}
}

// At returns the source coordinate for output pixel (i, j).
func (c *Coords) At(i, j int) (row, col float64) {
	k := i*c.Cols + j
	return c.Row[k], c.Col[k]
}

// Size returns the output raster dimensions.
func (c *Coords) Size() (rows, cols int) { return c.Rows, c.Cols }

// Validate checks the slices agree with the dimensions.
func (c *Coords) Validate() error {
	n := c.Rows * c.Cols
	if c.Rows < 0 || c.Cols < 0 || len(c.Row) != n || len(c.Col) != n {
		return fmt.Errorf("inconsistent coordinates: %dx%d with %d and %d values", c.Rows, c.Cols, len(c.Row), len(c.Col))
	}
	return nil
}

// Build samples m over a grid of the given size at ppu output pixels per grid
// unit. Output pixel (i, j) holds m.Map(i/ppu, j/ppu), giving
// ppu*(rows-1) x ppu*(cols-1) pixels. Rows are computed concurrently.
func Build(m fit.CoordinateMap, size grid.Size, ppu int) (*Coords, error) {
	if ppu <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrPixelDensity, ppu)
	}
	err := size.Validate()
	if err != nil {
		return nil, err
	}

	c := NewCoords(ppu*(size.Rows-1), ppu*(size.Cols-1))
	d := float64(ppu)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < c.Rows; i++ {
		g.Go(func() error {
			r := float64(i) / d
			base := i * c.Cols
			for j := 0; j < c.Cols; j++ {
				c.Row[base+j], c.Col[base+j] = m.Map(r, float64(j)/d)
			}
			return nil
		})
	}
	g.Wait()
	return c, nil
}
