/*
DESCRIPTION
  main_test.go provides testing for gridcheck.

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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/unwarp/config"
	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/target"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	var doc bytes.Buffer
	require.NoError(t, target.Generate(&doc, grid.Size{Rows: 5, Cols: 5}, 20, 4, 10))
	p := paths{
		calibration: filepath.Join(dir, "calibration.svg"),
		background:  filepath.Join(dir, "photo.png"),
		mapPlot:     filepath.Join(dir, "map.svg"),
		lattice:     filepath.Join(dir, "lattice.png"),
	}
	require.NoError(t, os.WriteFile(p.calibration, doc.Bytes(), 0o644))
	bg, err := raster.New(100, 100, 3)
	require.NoError(t, err)
	require.NoError(t, raster.Write(p.background, bg, raster.PNG))

	cfg := config.Defaults()
	cfg.GridRows, cfg.GridCols = 5, 5
	var out bytes.Buffer
	require.NoError(t, check(&cfg, p, (*logging.TestLogger)(t), &out))

	for _, path := range []string{p.mapPlot, p.lattice} {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, fi.Size(), path)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "spline(notaknot)"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "poly(order=5)"), lines[1])
}

func TestCheckErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.GridRows, cfg.GridCols = 3, 3
	p := paths{calibration: filepath.Join(dir, "missing.svg"), mapPlot: filepath.Join(dir, "map.png")}
	assert.Error(t, check(&cfg, p, (*logging.TestLogger)(t), &bytes.Buffer{}))

	var doc bytes.Buffer
	require.NoError(t, target.Generate(&doc, grid.Size{Rows: 3, Cols: 3}, 20, 4, 10))
	p.calibration = filepath.Join(dir, "calibration.svg")
	require.NoError(t, os.WriteFile(p.calibration, doc.Bytes(), 0o644))

	p.background = filepath.Join(dir, "missing.png")
	assert.Error(t, check(&cfg, p, (*logging.TestLogger)(t), &bytes.Buffer{}))

	// A 3x3 grid is too small for a not-a-knot spline.
	p.background = ""
	assert.ErrorIs(t, check(&cfg, p, (*logging.TestLogger)(t), &bytes.Buffer{}), fit.ErrLattice)
}

func TestAlternative(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, fit.Polynomial{Order: fit.DefaultOrder}, alternative(&cfg))
	cfg.Strategy, cfg.Spline = fit.KindPoly, "natural"
	assert.Equal(t, fit.Spline{Kind: fit.NaturalCubic}, alternative(&cfg))
}
