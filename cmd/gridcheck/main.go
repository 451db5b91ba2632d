/*
DESCRIPTION
  gridcheck tracks and fits a calibration grid and plots the result, so that
  a calibration can be checked before unwarping images with it.

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

// gridcheck plots the fitted map of a calibration document.
//
// Usage:
//
//	gridcheck [flags] calibration.svg gridX gridY
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/unwarp/config"
	"github.com/ausocean/unwarp/diag"
	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/runlog"
)

// paths holds the files read and written by a check.
type paths struct {
	calibration string
	background  string // Optional.
	mapPlot     string
	lattice     string // Optional.
}

func main() {
	fs := flag.NewFlagSet("gridcheck", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: gridcheck [flags] calibration.svg gridX gridY")
		fs.PrintDefaults()
	}
	cfg := config.Defaults()
	cfg.Flags(fs, config.KeyStrategy, config.KeyOrder, config.KeySpline, config.KeyLogPath, config.KeyLogLevel)
	configPath := fs.String("config", "", "key/value config file; flags override its values")
	var p paths
	fs.StringVar(&p.background, "b", "", "background image, normally the calibration photograph")
	fs.StringVar(&p.mapPlot, "o", "gridcheck.png", "fitted map plot output; the extension selects the format")
	fs.StringVar(&p.lattice, "lattice", "", "optional tracked lattice plot output")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 3 {
		fs.Usage()
		os.Exit(2)
	}
	p.calibration = fs.Arg(0)
	cols, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "grid size x must be an integer: %q\n", fs.Arg(1))
		os.Exit(2)
	}
	rows, err := strconv.Atoi(fs.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "grid size y must be an integer: %q\n", fs.Arg(2))
		os.Exit(2)
	}
	cfg.GridRows, cfg.GridCols = rows, cols
	if *configPath != "" {
		keep := append(config.Explicit(fs), config.KeyGridRows, config.KeyGridCols)
		err = cfg.Load(*configPath, keep...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	err = cfg.ValidateFit()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	log := runlog.New(cfg.LogPath, level, true)

	err = check(&cfg, p, log, os.Stdout)
	if err != nil {
		log.Fatal("grid check failed", "error", err.Error())
	}
}

// check tracks and fits the calibration, writes the plots and reports the
// residuals of the configured strategy and of the other one to w.
func check(cfg *config.Config, p paths, log logging.Logger, w io.Writer) error {
	size := grid.Size{Rows: cfg.GridRows, Cols: cfg.GridCols}
	l, err := grid.TrackFile(p.calibration, size, log)
	if err != nil {
		return fmt.Errorf("could not track grid: %w", err)
	}

	var bg image.Image
	if p.background != "" {
		r, err := raster.Read(p.background)
		if err != nil {
			return fmt.Errorf("could not read background: %w", err)
		}
		bg = r.Image()
	}

	if p.lattice != "" {
		err = diag.PlotLattice(l, bg, p.lattice)
		if err != nil {
			return fmt.Errorf("could not plot lattice: %w", err)
		}
		log.Info("wrote lattice plot", "path", p.lattice)
	}

	chosen, err := cfg.FitStrategy()
	if err != nil {
		return err
	}
	m, err := chosen.Fit(l)
	if err != nil {
		return fmt.Errorf("could not fit %v: %w", chosen, err)
	}
	err = diag.PlotMap(m, l, size, bg, p.mapPlot)
	if err != nil {
		return fmt.Errorf("could not plot map: %w", err)
	}
	log.Info("wrote map plot", "path", p.mapPlot)

	err = report(m, chosen, l, log, w)
	if err != nil {
		return err
	}

	other := alternative(cfg)
	om, err := other.Fit(l)
	if err != nil {
		log.Warning("could not fit alternative strategy", "strategy", other.String(), "error", err.Error())
		return nil
	}
	return report(om, other, l, log, w)
}

func report(m fit.CoordinateMap, s fit.Strategy, l grid.Lattice, log logging.Logger, w io.Writer) error {
	mean, max, err := diag.Residuals(m, l)
	if err != nil {
		return fmt.Errorf("could not compute residuals: %w", err)
	}
	log.Info("fit residuals", "strategy", s.String(), "mean", mean, "max", max)
	fmt.Fprintf(w, "%v: mean residual %.4g px, max %.4g px\n", s, mean, max)
	return nil
}

// alternative returns the strategy of the other kind, keeping the configured
// order and spline kind.
func alternative(cfg *config.Config) fit.Strategy {
	if cfg.Strategy == fit.KindPoly {
		kind, err := fit.ParseSplineKind(cfg.Spline)
		if err != nil {
			kind = fit.NotAKnotCubic
		}
		return fit.Spline{Kind: kind}
	}
	return fit.Polynomial{Order: cfg.Order}
}
