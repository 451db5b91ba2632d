/*
DESCRIPTION
  gridgen writes a printable calibration target for unwarp.

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

// gridgen writes an SVG calibration target of gridX columns by gridY rows.
//
// Usage:
//
//	gridgen [flags] gridX gridY out.svg
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/target"
)

func main() {
	spacing := flag.Int("spacing", target.DefaultSpacing, "distance between dot centres in pixels")
	radius := flag.Int("radius", target.DefaultRadius, "dot radius in pixels")
	margin := flag.Int("margin", target.DefaultMargin, "distance from the page edge to the outer dot centres")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: gridgen [flags] gridX gridY out.svg")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}
	err := generate(flag.Arg(0), flag.Arg(1), flag.Arg(2), *spacing, *radius, *margin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generate writes the target to path. Nothing is written if the layout is
// invalid.
func generate(x, y, path string, spacing, radius, margin int) error {
	cols, err := strconv.Atoi(x)
	if err != nil {
		return fmt.Errorf("grid size x must be an integer: %q", x)
	}
	rows, err := strconv.Atoi(y)
	if err != nil {
		return fmt.Errorf("grid size y must be an integer: %q", y)
	}

	var buf bytes.Buffer
	err = target.Generate(&buf, grid.Size{Rows: rows, Cols: cols}, spacing, radius, margin)
	if err != nil {
		return fmt.Errorf("could not generate target: %w", err)
	}
	err = os.WriteFile(path, buf.Bytes(), 0o644)
	if err != nil {
		return fmt.Errorf("could not write target: %w", err)
	}
	return nil
}
