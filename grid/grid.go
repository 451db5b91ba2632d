/*
DESCRIPTION
  grid.go provides reconstruction of the ordered row/column lattice of a
  printed calibration grid from an unordered list of detected markers.

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

// Package grid provides the calibration lattice type (Lattice) and the grid
// tracker that builds it. Tracking starts at the origin marker and follows
// each grid line by repeatedly jumping to the marker closest to where the next
// point is expected, re-deriving the step from the last jump so that the
// non-uniform spacing caused by perspective is followed.
package grid

import (
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/unwarp/marker"
)

// Tracking errors.
var (
	ErrColors    = errors.New("unexpected set of marker colours")
	ErrRoleCount = errors.New("unexpected number of role markers")
	ErrSize      = errors.New("invalid grid size")
)

// Size is the number of rows and columns of a calibration grid.
type Size struct {
	Rows, Cols int
}

// Validate returns an error if the size cannot describe a grid with at least
// one cell.
func (s Size) Validate() error {
	if s.Rows < 2 || s.Cols < 2 {
		return fmt.Errorf("%w: %dx%d", ErrSize, s.Rows, s.Cols)
	}
	return nil
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Rows, s.Cols) }

// Lattice is a tracked calibration grid, indexed [row][col]. Element [0][0]
// is the origin marker.
type Lattice [][]marker.Marker

// Size returns the dimensions of the lattice.
func (l Lattice) Size() Size {
	if len(l) == 0 {
		return Size{}
	}
	return Size{Rows: len(l), Cols: len(l[0])}
}

// At returns the position of the marker at row r, column c.
func (l Lattice) At(r, c int) marker.Point { return l[r][c].Pos }

// Rows returns the lattice rows.
func (l Lattice) Rows() [][]marker.Marker { return l }

// Columns returns the lattice transposed, one slice per column.
func (l Lattice) Columns() [][]marker.Marker {
	s := l.Size()
	cols := make([][]marker.Marker, s.Cols)
	for c := range cols {
		cols[c] = make([]marker.Marker, s.Rows)
		for r := range l {
			cols[c][r] = l[r][c]
		}
	}
	return cols
}

// TrackFile reads the markers of the SVG calibration document at path and
// tracks them into a lattice of the given size.
func TrackFile(path string, size Size, log logging.Logger) (Lattice, error) {
	markers, err := marker.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Track(markers, size, log)
}

// Track builds the lattice of the given size from markers. Tracking is
// greedy: a missing or spurious marker is silently replaced by whatever
// marker is closest to the expected position.
func Track(markers []marker.Marker, size Size, log logging.Logger) (Lattice, error) {
	err := size.Validate()
	if err != nil {
		return nil, err
	}

	byRole, err := partition(markers)
	if err != nil {
		return nil, err
	}

	want := size.Rows*size.Cols - 3
	if got := len(byRole[marker.Normal]); got != want {
		log.Warning("number of grid points not as expected", "got", got, "expected", want)
	}

	origin := byRole[marker.Origin][0]
	firstX := byRole[marker.FirstX][0]
	firstY := byRole[marker.FirstY][0]
	log.Debug("found role markers", "origin", origin.Pos, "firstX", firstX.Pos, "firstY", firstY.Pos)

	rows := make(Lattice, size.Rows)
	rows[0] = followLine(markers, origin, firstX.Pos.Sub(origin.Pos), size.Cols)
	firstCol := followLine(markers, origin, firstY.Pos.Sub(origin.Pos), size.Rows)
	for r := 1; r < size.Rows; r++ {
		prev := rows[r-1]
		rows[r] = followLine(markers, firstCol[r], prev[1].Pos.Sub(prev[0].Pos), size.Cols)
	}
	return rows, nil
}

// partition groups markers by role, checking that exactly the four role
// colours are present and that the origin and axis markers are unique.
func partition(markers []marker.Marker) (map[marker.Role][]marker.Marker, error) {
	byRole := make(map[marker.Role][]marker.Marker, marker.NumRoles)
	colors := make(map[uint32]bool)
	for _, m := range markers {
		colors[m.Color] = true
		r, ok := marker.RoleOf(m.Color)
		if !ok {
			return nil, fmt.Errorf("%w: unknown colour #%06x", ErrColors, m.Color)
		}
		byRole[r] = append(byRole[r], m)
	}
	if len(colors) != marker.NumRoles {
		return nil, fmt.Errorf("%w: got %d distinct colours, want %d", ErrColors, len(colors), marker.NumRoles)
	}

	for _, r := range []marker.Role{marker.Origin, marker.FirstX, marker.FirstY} {
		if n := len(byRole[r]); n != 1 {
			return nil, fmt.Errorf("%w: %d %s markers", ErrRoleCount, n, r)
		}
	}
	return byRole, nil
}
