/*
DESCRIPTION
  diag_test.go provides testing for diagnostic plots and residuals.

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

package diag

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/plot"

	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/marker"
)

func testLattice(size grid.Size) grid.Lattice {
	l := make(grid.Lattice, size.Rows)
	for r := range l {
		l[r] = make([]marker.Marker, size.Cols)
		for c := range l[r] {
			l[r][c] = marker.Marker{Pos: marker.Point{Row: 20 + 10*float64(r), Col: 15 + 12*float64(c) + float64(r)}}
		}
	}
	return l
}

func checkFile(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("could not stat plot: %v", err)
	}
	if fi.Size() == 0 {
		t.Errorf("plot %s is empty", path)
	}
}

func TestPlots(t *testing.T) {
	size := grid.Size{Rows: 4, Cols: 5}
	l := testLattice(size)
	m, err := fit.Spline{}.Fit(l)
	if err != nil {
		t.Fatalf("could not fit lattice: %v", err)
	}
	bg := image.NewGray(image.Rect(0, 0, 80, 60))

	dir := t.TempDir()
	for _, name := range []string{"lattice.png", "lattice.svg"} {
		path := filepath.Join(dir, name)
		err = PlotLattice(l, bg, path)
		if err != nil {
			t.Fatalf("did not expect error plotting %s: %v", name, err)
		}
		checkFile(t, path)
	}

	path := filepath.Join(dir, "map.png")
	err = PlotMap(m, l, size, nil, path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	checkFile(t, path)

	err = PlotLattice(l, nil, filepath.Join(dir, "lattice.nope"))
	if err == nil {
		t.Error("expected error for unknown plot format")
	}
}

func TestResiduals(t *testing.T) {
	l := testLattice(grid.Size{Rows: 3, Cols: 3})
	exact := fit.Func(func(r, c float64) (float64, float64) { return 20 + 10*r, 15 + 12*c + r })
	mean, max, err := Residuals(exact, l)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if mean != 0 || max != 0 {
		t.Errorf("did not get zero residuals. Got: mean %v, max %v", mean, max)
	}

	shifted := fit.Func(func(r, c float64) (float64, float64) {
		pr, pc := exact(r, c)
		if r == 0 && c == 0 {
			return pr + 3, pc + 4
		}
		return pr, pc
	})
	mean, max, err = Residuals(shifted, l)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if max != 5 || math.Abs(mean-5.0/9) > 1e-12 {
		t.Errorf("did not get expected residuals. Got: mean %v, max %v, Want: mean %v, max 5", mean, max, 5.0/9)
	}

	_, _, err = Residuals(exact, nil)
	if err == nil {
		t.Error("expected error for empty lattice")
	}
}

func TestFlipTicks(t *testing.T) {
	ticks := flipTicks{plot.DefaultTicks{}}.Ticks(-100, 0)
	for _, tk := range ticks {
		if tk.Label == "" {
			continue
		}
		if tk.Label[0] == '-' {
			t.Errorf("did not get expected flipped label for %v. Got: %q", tk.Value, tk.Label)
		}
	}
}
