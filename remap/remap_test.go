/*
DESCRIPTION
  remap_test.go provides testing for Build and Resample.

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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/marker"
	"github.com/ausocean/unwarp/raster"
)

func TestBuildPixelDensity(t *testing.T) {
	for _, ppu := range []int{0, -1, -10} {
		_, err := Build(fit.Identity, grid.Size{Rows: 3, Cols: 3}, ppu)
		if !errors.Is(err, ErrPixelDensity) {
			t.Errorf("did not get expected error for ppu %d. Got: %v, Want: %v", ppu, err, ErrPixelDensity)
		}
	}
}

func TestBuildLayout(t *testing.T) {
	m := fit.Func(func(r, c float64) (float64, float64) { return 100*r + c, -c })
	c, err := Build(m, grid.Size{Rows: 3, Cols: 4}, 2)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if rows, cols := c.Size(); rows != 4 || cols != 6 {
		t.Fatalf("did not get expected size. Got: %dx%d, Want: 4x6", rows, cols)
	}
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			r, col := c.At(i, j)
			wr, wc := m.Map(float64(i)/2, float64(j)/2)
			if r != wr || col != wc {
				t.Errorf("did not get expected coordinate at (%d, %d). Got: (%v, %v), Want: (%v, %v)", i, j, r, col, wr, wc)
			}
			if c.Row[i*c.Cols+j] != r {
				t.Errorf("coordinates not row major at (%d, %d)", i, j)
			}
		}
	}
}

// TestBuildDensity checks that a higher pixel density samples the same grid
// extent more finely: sizes scale with the density and pixels on shared grid
// positions hold the same coordinate.
func TestBuildDensity(t *testing.T) {
	m := fit.Func(func(r, c float64) (float64, float64) { return 3*r*r + c, 0.5*c*c - r })
	size := grid.Size{Rows: 3, Cols: 4}
	base, err := Build(m, size, 1)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	for _, k := range []int{1, 2, 4} {
		c, err := Build(m, size, k)
		if err != nil {
			t.Fatalf("did not expect error for density %d: %v", k, err)
		}
		if c.Rows != k*(size.Rows-1) || c.Cols != k*(size.Cols-1) {
			t.Fatalf("did not get expected size for density %d. Got: %dx%d, Want: %dx%d", k, c.Rows, c.Cols, k*(size.Rows-1), k*(size.Cols-1))
		}
		for i := 0; i < base.Rows; i++ {
			for j := 0; j < base.Cols; j++ {
				wr, wc := base.At(i, j)
				r, col := c.At(k*i, k*j)
				if r != wr || col != wc {
					t.Errorf("did not get expected coordinate at (%d, %d) for density %d. Got: (%v, %v), Want: (%v, %v)", k*i, k*j, k, r, col, wr, wc)
				}
			}
		}
	}
}

// TestBuildFitted runs the 3x3, 10 pixel spacing lattice through an order 1
// fit and checks the map at 10 pixels per unit is the identity scaled by one.
func TestBuildFitted(t *testing.T) {
	l := make(grid.Lattice, 3)
	for r := range l {
		l[r] = make([]marker.Marker, 3)
		for c := range l[r] {
			l[r][c] = marker.Marker{Pos: marker.Point{Row: 10 * float64(r), Col: 10 * float64(c)}}
		}
	}
	m, err := fit.Polynomial{Order: 1}.Fit(l)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	c, err := Build(m, l.Size(), 10)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if c.Rows != 20 || c.Cols != 20 {
		t.Fatalf("did not get expected size. Got: %dx%d", c.Rows, c.Cols)
	}
	opt := cmpopts.EquateApprox(0, 1e-9)
	for _, p := range [][2]int{{0, 0}, {5, 7}, {19, 19}} {
		r, col := c.At(p[0], p[1])
		if !cmp.Equal(r, float64(p[0]), opt) || !cmp.Equal(col, float64(p[1]), opt) {
			t.Errorf("did not get expected coordinate at %v. Got: (%v, %v)", p, r, col)
		}
	}
}

func identityCoords(rows, cols int) *Coords {
	c := NewCoords(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c.Row[i*cols+j], c.Col[i*cols+j] = float64(i), float64(j)
		}
	}
	return c
}

func TestResampleIdentity(t *testing.T) {
	for _, ch := range []int{1, 3, 4} {
		src, err := raster.New(3, 4, ch)
		if err != nil {
			t.Fatalf("could not create raster: %v", err)
		}
		for i := range src.Pix {
			src.Pix[i] = uint8(i * 7)
		}
		dst, err := Resample(src, identityCoords(3, 4))
		if err != nil {
			t.Fatalf("did not expect error: %v", err)
		}
		if diff := cmp.Diff(src, dst); diff != "" {
			t.Errorf("did not get identity for %d channels (-want +got):\n%s", ch, diff)
		}
		if &dst.Pix[0] == &src.Pix[0] {
			t.Error("output aliases input")
		}
	}
}

// TestResampleBilinear checks the half pixel average and rounding.
func TestResampleBilinear(t *testing.T) {
	src := &raster.Raster{Rows: 2, Cols: 2, Channels: 1, Pix: []uint8{0, 10, 20, 31}}
	c := &Coords{Rows: 1, Cols: 4, Row: []float64{0.5, 0, 0.5, 1}, Col: []float64{0.5, 0.5, 0, 0.25}}
	dst, err := Resample(src, c)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := []uint8{15, 5, 10, 23}
	if diff := cmp.Diff(want, dst.Pix); diff != "" {
		t.Errorf("did not get expected samples (-want +got):\n%s", diff)
	}
}

func TestResampleBoundary(t *testing.T) {
	src := &raster.Raster{Rows: 2, Cols: 2, Channels: 1, Pix: []uint8{10, 20, 30, 40}}
	c := &Coords{Rows: 1, Cols: 3, Row: []float64{-1, 0, 5}, Col: []float64{0, 3, 1}}

	tests := []struct {
		name string
		opts []Option
		want []uint8
	}{
		{name: "default", want: []uint8{0, 0, 0}},
		{name: "fill", opts: []Option{WithFill(99)}, want: []uint8{99, 99, 99}},
		{name: "clamp", opts: []Option{WithBoundary(Clamp)}, want: []uint8{10, 20, 40}},
	}
	for _, test := range tests {
		dst, err := Resample(src, c, test.opts...)
		if err != nil {
			t.Fatalf("did not expect error for %s: %v", test.name, err)
		}
		if diff := cmp.Diff(test.want, dst.Pix); diff != "" {
			t.Errorf("did not get expected samples for %s (-want +got):\n%s", test.name, diff)
		}
	}
}

func TestResampleChannels(t *testing.T) {
	src := &raster.Raster{Rows: 1, Cols: 2, Channels: 3, Pix: []uint8{0, 100, 200, 100, 200, 0}}
	c := &Coords{Rows: 1, Cols: 1, Row: []float64{0}, Col: []float64{0.5}}
	dst, err := Resample(src, c)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if diff := cmp.Diff([]uint8{50, 150, 100}, dst.Pix); diff != "" {
		t.Errorf("did not get expected samples (-want +got):\n%s", diff)
	}
}

func TestResampleErrors(t *testing.T) {
	src := &raster.Raster{Rows: 1, Cols: 1, Channels: 1, Pix: []uint8{1}}
	_, err := Resample(src, &Coords{Rows: 2, Cols: 2, Row: make([]float64, 3), Col: make([]float64, 4)})
	if err == nil {
		t.Error("expected error for inconsistent coordinates")
	}
	_, err = Resample(src, identityCoords(1, 1), WithBoundary(Boundary(7)))
	if err == nil {
		t.Error("expected error for bad boundary")
	}
	_, err = Resample(&raster.Raster{Rows: 2, Cols: 2, Channels: 1, Pix: []uint8{1}}, identityCoords(1, 1))
	if err == nil {
		t.Error("expected error for short source")
	}
}

func TestParseBoundary(t *testing.T) {
	for _, b := range []Boundary{Fill, Clamp} {
		got, err := ParseBoundary(b.String())
		if err != nil || got != b {
			t.Errorf("did not get expected boundary for %q. Got: %v, %v", b, got, err)
		}
	}
	_, err := ParseBoundary("wrap")
	if err == nil {
		t.Error("expected error for unknown boundary")
	}
}
