/*
DESCRIPTION
  fit.go provides the coordinate map abstraction and the factory for the
  strategies that fit one to a tracked calibration lattice.

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

// Package fit provides fitting of a continuous map from logical grid
// coordinates (row, col) to physical image coordinates, given a tracked
// calibration lattice. Two strategies are provided: a global least squares
// polynomial (Polynomial) and a local interpolating spline (Spline). Callers
// depend only on the resulting CoordinateMap.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/ausocean/unwarp/grid"
)

// Fitting errors.
var (
	ErrLattice  = errors.New("lattice cannot be fitted")
	ErrStrategy = errors.New("unknown fit strategy")
)

// CoordinateMap maps a logical grid coordinate to a physical image
// coordinate. Implementations are immutable and safe for concurrent use.
// Queries slightly outside [0, rows-1] x [0, cols-1] are extrapolated.
type CoordinateMap interface {
	Map(row, col float64) (prow, pcol float64)
}

// Func is a CoordinateMap backed by a function.
type Func func(row, col float64) (float64, float64)

// Map implements CoordinateMap.
func (f Func) Map(row, col float64) (float64, float64) { return f(row, col) }

// Identity maps every coordinate to itself.
var Identity CoordinateMap = Func(func(row, col float64) (float64, float64) { return row, col })

// Strategy fits a CoordinateMap to a lattice.
type Strategy interface {
	Fit(l grid.Lattice) (CoordinateMap, error)
	String() string
}

// Strategy names accepted by New.
const (
	KindPoly   = "poly"
	KindSpline = "spline"
)

// Defaults.
const (
	DefaultOrder = 5
)

// Option is the function signature returned by option functions below for
// use in New.
type Option func(*options) error

type options struct {
	order  int
	spline SplineKind
}

// WithOrder returns an Option that sets the polynomial order.
func WithOrder(order int) Option {
	return func(o *options) error {
		if order < 0 {
			return fmt.Errorf("invalid polynomial order: %d", order)
		}
		o.order = order
		return nil
	}
}

// WithSpline returns an Option that sets the spline kind.
func WithSpline(k SplineKind) Option {
	return func(o *options) error {
		if _, ok := splineNames[k]; !ok {
			return fmt.Errorf("invalid spline kind: %d", k)
		}
		o.spline = k
		return nil
	}
}

// New returns the strategy with the given name, configured by opts.
func New(kind string, opts ...Option) (Strategy, error) {
	o := options{order: DefaultOrder, spline: NotAKnotCubic}
	for i, opt := range opts {
		err := opt(&o)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}

	switch kind {
	case KindPoly:
		return Polynomial{Order: o.order}, nil
	case KindSpline:
		return Spline{Kind: o.spline}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrStrategy, kind)
	}
}

// values returns the physical rows and columns of the lattice as two
// row-major grids, checking that the lattice is rectangular and finite.
func values(l grid.Lattice) (prow, pcol [][]float64, err error) {
	size := l.Size()
	if size.Rows == 0 || size.Cols == 0 {
		return nil, nil, fmt.Errorf("%w: empty lattice", ErrLattice)
	}
	prow = make([][]float64, size.Rows)
	pcol = make([][]float64, size.Rows)
	for r, row := range l {
		if len(row) != size.Cols {
			return nil, nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrLattice, r, len(row), size.Cols)
		}
		prow[r] = make([]float64, size.Cols)
		pcol[r] = make([]float64, size.Cols)
		for c, m := range row {
			if !finite(m.Pos.Row) || !finite(m.Pos.Col) {
				return nil, nil, fmt.Errorf("%w: non-finite position at (%d, %d)", ErrLattice, r, c)
			}
			prow[r][c], pcol[r][c] = m.Pos.Row, m.Pos.Col
		}
	}
	return prow, pcol, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
