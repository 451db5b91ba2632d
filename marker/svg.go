/*
DESCRIPTION
  svg.go provides extraction of calibration markers from the circle and
  ellipse shapes of an SVG document.

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

package marker

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// ErrNoColor is returned when a marker shape carries no usable fill colour.
var ErrNoColor = errors.New("marker has no fill colour")

// ReadFile reads the markers of the SVG document at path.
func ReadFile(path string) ([]Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open calibration document: %w", err)
	}
	defer f.Close()

	m, err := ParseSVG(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}
	return m, nil
}

// ParseSVG returns a marker for every ellipse and circle in the SVG document
// read from r. All ellipses are returned before all circles, each in document
// order. Positions are the shape centres (cy, cx); the colour is the fill
// property of the style attribute, or the fill attribute if the style has
// none.
func ParseSVG(r io.Reader) ([]Marker, error) {
	var ellipses, circles []Marker
	dec := xml.NewDecoder(r)
	for n := 0; ; {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not decode svg: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Space != svgNamespace {
			continue
		}
		if se.Name.Local != "circle" && se.Name.Local != "ellipse" {
			continue
		}

		m, err := markerFrom(se)
		if err != nil {
			return nil, fmt.Errorf("could not read %s %d: %w", se.Name.Local, n, err)
		}
		n++

		if se.Name.Local == "ellipse" {
			ellipses = append(ellipses, m)
		} else {
			circles = append(circles, m)
		}
	}
	return append(ellipses, circles...), nil
}

// markerFrom builds a marker from the attributes of a shape element.
func markerFrom(se xml.StartElement) (Marker, error) {
	var (
		m               Marker
		style, fillAttr string
		err             error
	)
	for _, a := range se.Attr {
		switch a.Name.Local {
		case "cx":
			m.Pos.Col, err = parseLength(a.Value)
		case "cy":
			m.Pos.Row, err = parseLength(a.Value)
		case "style":
			style = a.Value
		case "fill":
			fillAttr = a.Value
		}
		if err != nil {
			return Marker{}, fmt.Errorf("invalid %s: %w", a.Name.Local, err)
		}
	}

	fill := styleProperty(style, "fill")
	if fill == "" {
		fill = strings.TrimSpace(fillAttr)
	}
	m.Color, err = parseColor(fill)
	if err != nil {
		return Marker{}, err
	}
	return m, nil
}

// parseLength parses an SVG coordinate, ignoring a trailing px unit.
func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	return strconv.ParseFloat(s, 64)
}

// styleProperty returns the value of the named property of a CSS declaration
// list, or the empty string if it is not present.
func styleProperty(style, name string) string {
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == name {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseColor parses a #rrggbb or #rgb colour.
func parseColor(s string) (uint32, error) {
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("%w: %q", ErrNoColor, s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("%w: %q", ErrNoColor, s)
	}
	c, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNoColor, s)
	}
	return uint32(c), nil
}
