/*
DESCRIPTION
  diag.go provides diagnostic plots of tracked calibration lattices and fitted
  coordinate maps, and residual statistics for comparing fits.

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

// Package diag provides diagnostic visualisation of calibration lattices and
// fitted maps. Plots are drawn in image coordinates, with the column on the x
// axis and the row increasing downwards, optionally over the calibration
// photograph. The output format follows the file extension.
package diag

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/marker"
)

// Plot dimensions.
const (
	plotWidth  = 20 * vg.Centimeter
	plotHeight = 15 * vg.Centimeter
)

var (
	latticeColor = color.RGBA{B: 255, A: 255}
	sampleColor  = color.RGBA{R: 255, A: 255}
)

// PlotLattice draws every row and column of l as a polyline, over bg if it is
// not nil, and saves the plot to path.
func PlotLattice(l grid.Lattice, bg image.Image, path string) error {
	return plotToFile(path, "Calibration lattice "+l.Size().String(), func(p *plot.Plot) error {
		addBackground(p, bg)
		return addLattice(p, l)
	})
}

// PlotMap samples m on a half unit grid over [0, rows-1) x [0, cols-1) of
// size and draws the samples as crosses together with the lattice lines.
func PlotMap(m fit.CoordinateMap, l grid.Lattice, size grid.Size, bg image.Image, path string) error {
	var xys plotter.XYs
	for r := 0.0; r < float64(size.Rows-1); r += 0.5 {
		for c := 0.0; c < float64(size.Cols-1); c += 0.5 {
			pr, pc := m.Map(r, c)
			xys = append(xys, plotter.XY{X: pc, Y: -pr})
		}
	}

	return plotToFile(path, "Fitted map "+size.String(), func(p *plot.Plot) error {
		addBackground(p, bg)
		err := addLattice(p, l)
		if err != nil {
			return err
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("could not create sample scatter: %w", err)
		}
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Color = sampleColor
		p.Add(s)
		return nil
	})
}

// Residuals returns the mean and maximum distance between m evaluated at each
// integer lattice index and the tracked position there.
func Residuals(m fit.CoordinateMap, l grid.Lattice) (mean, max float64, err error) {
	var d []float64
	for r, row := range l {
		for c, mk := range row {
			pr, pc := m.Map(float64(r), float64(c))
			d = append(d, math.Hypot(pr-mk.Pos.Row, pc-mk.Pos.Col))
		}
	}
	if len(d) == 0 {
		return 0, 0, errors.New("empty lattice")
	}
	return stat.Mean(d, nil), floats.Max(d), nil
}

// plotToFile creates a plot with the given title using the provided draw
// function, and then saves it to path.
func plotToFile(path, title string, draw func(*plot.Plot) error) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column (px)"
	p.Y.Label.Text = "Row (px)"
	p.Y.Tick.Marker = flipTicks{plot.DefaultTicks{}}

	err := draw(p)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// addBackground places img so that pixel centres fall on integer image
// coordinates.
func addBackground(p *plot.Plot, img image.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	p.Add(plotter.NewImage(img, -0.5, 0.5-float64(b.Dy()), float64(b.Dx())-0.5, 0.5))
}

func addLattice(p *plot.Plot, l grid.Lattice) error {
	lines := slices.Concat(l.Rows(), l.Columns())
	for i, ms := range lines {
		ln, err := plotter.NewLine(plotterXY(ms))
		if err != nil {
			return fmt.Errorf("could not create lattice line %d: %w", i, err)
		}
		ln.LineStyle.Color = latticeColor
		p.Add(ln)
	}
	return nil
}

// plotterXY provides a plotter.XYs value for the marker positions, with the
// row negated so that it increases downwards.
func plotterXY(ms []marker.Marker) plotter.XYs {
	xy := make(plotter.XYs, len(ms))
	for i, m := range ms {
		xy[i].X = m.Pos.Col
		xy[i].Y = -m.Pos.Row
	}
	return xy
}

// flipTicks labels ticks with the negated value, undoing the row negation.
type flipTicks struct {
	plot.Ticker
}

func (f flipTicks) Ticks(min, max float64) []plot.Tick {
	ticks := f.Ticker.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		v := -t.Value
		if v == 0 {
			v = 0 // Drop the sign of negative zero.
		}
		ticks[i].Label = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ticks
}
