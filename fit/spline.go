/*
DESCRIPTION
  spline.go provides a tensor product interpolating spline fit of a
  calibration lattice.

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

package fit

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/ausocean/unwarp/grid"
)

// SplineKind is the 1D interpolant used along each lattice axis.
type SplineKind int

// Spline kinds.
const (
	NotAKnotCubic SplineKind = iota
	NaturalCubic
	Linear
)

var splineNames = map[SplineKind]string{
	NotAKnotCubic: "notaknot",
	NaturalCubic:  "natural",
	Linear:        "linear",
}

// minPoints is the fewest knots each kind can be fitted through.
var minPoints = map[SplineKind]int{
	NotAKnotCubic: 4,
	NaturalCubic:  2,
	Linear:        2,
}

func (k SplineKind) String() string {
	if s, ok := splineNames[k]; ok {
		return s
	}
	return fmt.Sprintf("SplineKind(%d)", int(k))
}

// ParseSplineKind returns the kind named s.
func ParseSplineKind(s string) (SplineKind, error) {
	for k, name := range splineNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown spline kind: %q", s)
}

// Spline fits an interpolating tensor product spline through every lattice
// point. Each physical axis is a scalar field over (row index, col index).
type Spline struct {
	Kind SplineKind
}

func (s Spline) String() string { return fmt.Sprintf("spline(%s)", s.Kind) }

// SplineMap is a fitted spline coordinate map.
//
// The field value at (r, c) is sum_i b_i(r) * f_i(c), where f_i is the spline
// through lattice row i and b_i is the cardinal spline along the row axis that
// is one at knot i and zero at the others. This is the same as evaluating
// every row spline at c and interpolating those values along the rows.
type SplineMap struct {
	basis []*curve // Cardinal splines over row indices.
	rows  []*curve // Physical row of lattice row i over col indices.
	cols  []*curve // Physical column of lattice row i over col indices.
}

// Fit implements Strategy.
func (s Spline) Fit(l grid.Lattice) (CoordinateMap, error) {
	need, ok := minPoints[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown spline kind %d", ErrLattice, s.Kind)
	}
	prow, pcol, err := values(l)
	if err != nil {
		return nil, err
	}
	size := l.Size()
	if size.Rows < need || size.Cols < need {
		return nil, fmt.Errorf("%w: %s spline needs %d points per axis, lattice is %v", ErrLattice, s.Kind, need, size)
	}

	rs := knots(size.Rows)
	cs := knots(size.Cols)
	sm := &SplineMap{
		basis: make([]*curve, size.Rows),
		rows:  make([]*curve, size.Rows),
		cols:  make([]*curve, size.Rows),
	}
	unit := make([]float64, size.Rows)
	for i := 0; i < size.Rows; i++ {
		for k := range unit {
			unit[k] = 0
		}
		unit[i] = 1
		sm.basis[i], err = newCurve(s.Kind, rs, unit)
		if err != nil {
			return nil, fmt.Errorf("could not fit row basis %d: %w", i, err)
		}
		sm.rows[i], err = newCurve(s.Kind, cs, prow[i])
		if err != nil {
			return nil, fmt.Errorf("could not fit physical rows of lattice row %d: %w", i, err)
		}
		sm.cols[i], err = newCurve(s.Kind, cs, pcol[i])
		if err != nil {
			return nil, fmt.Errorf("could not fit physical columns of lattice row %d: %w", i, err)
		}
	}
	return sm, nil
}

// Map implements CoordinateMap.
func (sm *SplineMap) Map(row, col float64) (float64, float64) {
	var pr, pc float64
	for i, b := range sm.basis {
		w := b.at(row)
		if w == 0 {
			continue
		}
		pr += w * sm.rows[i].at(col)
		pc += w * sm.cols[i].at(col)
	}
	return pr, pc
}

// curve is a 1D interpolant over [lo, hi] extended linearly beyond its ends
// using the boundary value and slope.
type curve struct {
	pred     interp.Predictor
	lo, hi   float64
	ylo, yhi float64
	dlo, dhi float64
}

func newCurve(kind SplineKind, xs, ys []float64) (*curve, error) {
	n := len(xs)
	c := &curve{lo: xs[0], hi: xs[n-1], ylo: ys[0], yhi: ys[n-1]}

	var dp interp.DerivativePredictor
	switch kind {
	case Linear:
		pl := &interp.PiecewiseLinear{}
		err := pl.Fit(xs, ys)
		if err != nil {
			return nil, err
		}
		c.pred = pl
		c.dlo = (ys[1] - ys[0]) / (xs[1] - xs[0])
		c.dhi = (ys[n-1] - ys[n-2]) / (xs[n-1] - xs[n-2])
		return c, nil
	case NaturalCubic:
		nc := &interp.NaturalCubic{}
		err := nc.Fit(xs, ys)
		if err != nil {
			return nil, err
		}
		dp = nc
	case NotAKnotCubic:
		nak := &interp.NotAKnotCubic{}
		err := nak.Fit(xs, ys)
		if err != nil {
			return nil, err
		}
		dp = nak
	default:
		return nil, fmt.Errorf("unknown spline kind %d", kind)
	}
	c.pred = dp
	c.dlo = dp.PredictDerivative(c.lo)
	c.dhi = dp.PredictDerivative(c.hi)
	return c, nil
}

func (c *curve) at(x float64) float64 {
	switch {
	case x < c.lo:
		return c.ylo + c.dlo*(x-c.lo)
	case x > c.hi:
		return c.yhi + c.dhi*(x-c.hi)
	}
	return c.pred.Predict(x)
}

// knots returns the indices 0..n-1 as floats.
func knots(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
