/*
DESCRIPTION
  follow.go provides the nearest-marker line following used to walk the rows
  and first column of a calibration grid.

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

package grid

import (
	"math"

	"github.com/ausocean/unwarp/marker"
)

// step is the state carried between two points of a line walk.
type step struct {
	at  marker.Marker
	dir marker.Point
}

// next finds the marker closest to the expected position and returns the
// state for the following step, with the direction set to the jump just made.
func (s step) next(markers []marker.Marker) step {
	m := closest(markers, s.at.Pos.Add(s.dir))
	return step{at: m, dir: m.Pos.Sub(s.at.Pos)}
}

// followLine returns n markers along a grid line, starting at start and
// initially stepping by dir.
func followLine(markers []marker.Marker, start marker.Marker, dir marker.Point, n int) []marker.Marker {
	line := make([]marker.Marker, 0, n)
	line = append(line, start)
	s := step{at: start, dir: dir}
	for i := 1; i < n; i++ {
		s = s.next(markers)
		line = append(line, s.at)
	}
	return line
}

// closest returns the first marker with minimal L1 distance to p.
func closest(markers []marker.Marker, p marker.Point) marker.Marker {
	var best marker.Marker
	min := math.Inf(1)
	for _, m := range markers {
		if d := m.Pos.L1(p); d < min {
			min = d
			best = m
		}
	}
	return best
}
