/*
DESCRIPTION
  poly.go provides a global least squares polynomial fit of a calibration
  lattice.

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
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/unwarp/grid"
)

// Polynomial fits one bivariate polynomial per physical axis. The basis is
// every col^xn * row^yn with xn, yn in [0, Order], less the (Order, Order)
// cross term; for Order 0 only the constant term is used.
type Polynomial struct {
	Order int
}

func (p Polynomial) String() string { return fmt.Sprintf("poly(order=%d)", p.Order) }

// Term is the pair of exponents (of col and row respectively) of one
// polynomial term.
type Term struct {
	XN, YN int
}

// Terms returns the polynomial basis for the given order.
func Terms(order int) []Term {
	var terms []Term
	for xn := 0; xn <= order; xn++ {
		for yn := 0; yn <= order; yn++ {
			terms = append(terms, Term{xn, yn})
		}
	}
	if order > 0 {
		terms = terms[:len(terms)-1]
	}
	return terms
}

// PolyMap is a fitted polynomial coordinate map.
type PolyMap struct {
	terms    []Term
	rowCoeff []float64
	colCoeff []float64
}

// Fit implements Strategy. Rank deficient systems, such as a high order on a
// small lattice, are solved for the minimum norm coefficients.
func (p Polynomial) Fit(l grid.Lattice) (CoordinateMap, error) {
	if p.Order < 0 {
		return nil, fmt.Errorf("%w: negative polynomial order %d", ErrLattice, p.Order)
	}
	prow, pcol, err := values(l)
	if err != nil {
		return nil, err
	}

	terms := Terms(p.Order)
	a := design(terms, l.Size())

	pm := &PolyMap{terms: terms}
	pm.rowCoeff, err = solve(a, flatten(prow))
	if err != nil {
		return nil, fmt.Errorf("could not fit physical rows: %w", err)
	}
	pm.colCoeff, err = solve(a, flatten(pcol))
	if err != nil {
		return nil, fmt.Errorf("could not fit physical columns: %w", err)
	}
	return pm, nil
}

// Map implements CoordinateMap.
func (pm *PolyMap) Map(row, col float64) (float64, float64) {
	var pr, pc float64
	for i, t := range pm.terms {
		v := ipow(col, t.XN) * ipow(row, t.YN)
		pr += pm.rowCoeff[i] * v
		pc += pm.colCoeff[i] * v
	}
	return pr, pc
}

// Terms returns the basis of the fitted polynomial.
func (pm *PolyMap) Terms() []Term { return append([]Term(nil), pm.terms...) }

// Coefficients returns the fitted coefficients for the physical row and
// column, in the order of Terms.
func (pm *PolyMap) Coefficients() (row, col []float64) {
	return append([]float64(nil), pm.rowCoeff...), append([]float64(nil), pm.colCoeff...)
}

// design returns the design matrix with one row per lattice cell, in
// row-major cell order, and one column per term.
func design(terms []Term, size grid.Size) *mat.Dense {
	a := mat.NewDense(size.Rows*size.Cols, len(terms), nil)
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			i := r*size.Cols + c
			for j, t := range terms {
				a.Set(i, j, ipow(float64(c), t.XN)*ipow(float64(r), t.YN))
			}
		}
	}
	return a
}

// solve returns the minimum norm least squares solution x of a*x = b.
func solve(a *mat.Dense, b []float64) ([]float64, error) {
	m, n := a.Dims()
	x := make([]float64, n)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, errors.New("could not factorize design matrix")
	}
	eps := math.Nextafter(1, 2) - 1
	rank := svd.Rank(eps * float64(max(m, n)))
	if rank == 0 {
		return x, nil
	}
	svd.SolveVecTo(mat.NewVecDense(n, x), mat.NewVecDense(m, b), rank)
	return x, nil
}

func flatten(g [][]float64) []float64 {
	var out []float64
	for _, row := range g {
		out = append(out, row...)
	}
	return out
}

// ipow returns x raised to the non-negative integer power n.
func ipow(x float64, n int) float64 {
	v := 1.0
	for ; n > 0; n-- {
		v *= x
	}
	return v
}
