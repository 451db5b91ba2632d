/*
DESCRIPTION
  marker.go provides the calibration marker type and the fixed table mapping
  marker fill colours to their role in the calibration grid.

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

// Package marker provides the calibration marker type (Marker), the colour to
// role table used to identify the origin and axis markers of a printed
// calibration grid, and extraction of markers from SVG documents.
package marker

import (
	"fmt"
	"math"
)

// Point is a position in image space, row axis first.
type Point struct {
	Row, Col float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.Row + q.Row, p.Col + q.Col} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.Row - q.Row, p.Col - q.Col} }

// L1 returns the Manhattan distance between p and q.
func (p Point) L1(q Point) float64 {
	return math.Abs(p.Row-q.Row) + math.Abs(p.Col-q.Col)
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.Row, p.Col) }

// Marker is a detected calibration dot.
type Marker struct {
	Pos   Point
	Color uint32 // 0xRRGGBB.
}

// Role is the part a marker plays in the calibration grid.
type Role int

// Marker roles.
const (
	Normal Role = iota
	Origin
	FirstX
	FirstY
)

// Marker fill colours.
const (
	ColorNormal uint32 = 0xff00ff // Magenta.
	ColorOrigin uint32 = 0x00ff00 // Green.
	ColorFirstX uint32 = 0xff0000 // Red.
	ColorFirstY uint32 = 0x0000ff // Blue.
)

var roles = map[uint32]Role{
	ColorNormal: Normal,
	ColorOrigin: Origin,
	ColorFirstX: FirstX,
	ColorFirstY: FirstY,
}

// NumRoles is the number of distinct roles, and so the number of distinct
// colours a valid calibration document contains.
const NumRoles = 4

// RoleOf returns the role for the given fill colour, and false if the colour
// is not part of the calibration colour table.
func RoleOf(color uint32) (Role, bool) {
	r, ok := roles[color]
	return r, ok
}

// ColorOf returns the fill colour used for role r.
func ColorOf(r Role) uint32 {
	for c, rr := range roles {
		if rr == r {
			return c
		}
	}
	panic(fmt.Sprintf("unknown role: %d", r))
}

func (r Role) String() string {
	switch r {
	case Normal:
		return "normal"
	case Origin:
		return "origin"
	case FirstX:
		return "first_x"
	case FirstY:
		return "first_y"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}
