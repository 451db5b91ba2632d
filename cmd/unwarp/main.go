/*
DESCRIPTION
  unwarp corrects the geometric distortion of a batch of photographs using a
  calibration grid photographed with the same camera setup.

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

// unwarp corrects the geometric distortion of a batch of photographs.
//
// Usage:
//
//	unwarp [flags] calibration.svg gridX gridY ppu image...
//
// The calibration document holds the grid markers annotated on a photograph of
// the printed target, gridX and gridY are the number of grid columns and
// rows, and ppu is the number of output pixels per grid unit. Image arguments
// may be glob patterns.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/unwarp/batch"
	"github.com/ausocean/unwarp/cache"
	"github.com/ausocean/unwarp/config"
	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/marker"
	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/remap"
	"github.com/ausocean/unwarp/runlog"
)

// Exit codes.
const (
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	fs := flag.NewFlagSet("unwarp", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: unwarp [flags] calibration.svg gridX gridY ppu image...")
		fs.PrintDefaults()
	}
	cfg := config.Defaults()
	cfg.Flags(fs,
		config.KeyStrategy, config.KeyOrder, config.KeySpline, config.KeyWorkers,
		config.KeyFormat, config.KeyDestination, config.KeyBoundary, config.KeyCache,
		config.KeyLogPath, config.KeyLogLevel,
	)
	configPath := fs.String("config", "", "key/value config file; flags override its values")
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 5 {
		fs.Usage()
		os.Exit(exitUsage)
	}
	calibration, inputs := args[0], args[4:]
	err := gridArgs(&cfg, args[1], args[2], args[3])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	if *configPath != "" {
		keep := append(config.Explicit(fs), config.KeyGridRows, config.KeyGridCols, config.KeyPixelsPerUnit)
		err = cfg.Load(*configPath, keep...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUsage)
		}
	}
	err = cfg.Validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	level, _ := cfg.Level()
	log := runlog.New(cfg.LogPath, level, true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := run(ctx, &cfg, calibration, expand(inputs), log, os.Stdout)
	if err != nil {
		log.Fatal("could not unwarp images", "error", err.Error())
	}
	if st.summary.Failed > 0 {
		stop()
		os.Exit(exitFailed)
	}
}

// gridArgs sets the grid size and pixel density from the positional
// arguments. The grid is given as columns then rows.
func gridArgs(cfg *config.Config, x, y, ppu string) error {
	var err error
	cfg.GridCols, err = strconv.Atoi(x)
	if err != nil {
		return fmt.Errorf("grid size x must be an integer: %q", x)
	}
	cfg.GridRows, err = strconv.Atoi(y)
	if err != nil {
		return fmt.Errorf("grid size y must be an integer: %q", y)
	}
	cfg.PixelsPerUnit, err = strconv.Atoi(ppu)
	if err != nil {
		return fmt.Errorf("pixels per unit must be an integer: %q", ppu)
	}
	return nil
}

// expand replaces glob patterns by their matches. Arguments matching nothing
// are kept, so that they are reported as missing.
func expand(args []string) []string {
	var out []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil || len(matches) == 0 {
			out = append(out, a)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// stats holds the timing of a run.
type stats struct {
	prepare time.Duration
	cached  bool
	summary *batch.Summary
}

// run prepares the coordinates for the calibration and unwarps inputs,
// printing each output and the final statistics to w.
func run(ctx context.Context, cfg *config.Config, calibration string, inputs []string, log logging.Logger, w io.Writer) (*stats, error) {
	start := time.Now()
	coords, cached, err := prepare(ctx, cfg, calibration, log)
	if err != nil {
		return nil, err
	}
	st := &stats{prepare: time.Since(start), cached: cached}
	log.Info("prepared coordinates", "rows", coords.Rows, "cols", coords.Cols, "cached", cached, "duration", st.prepare.String())

	opts, err := cfg.ResampleOptions()
	if err != nil {
		return nil, err
	}
	bopts := []batch.Option{
		batch.WithWorkers(cfg.Workers),
		batch.WithNaming(batch.Naming{Dir: cfg.Destination}),
		batch.WithResampleOptions(opts...),
	}
	if cfg.Format != "" {
		f, err := raster.FormatFor(cfg.Format)
		if err != nil {
			return nil, err
		}
		bopts = append(bopts, batch.WithFormat(f))
	}
	d, err := batch.New(coords, log, bopts...)
	if err != nil {
		return nil, fmt.Errorf("could not create batch driver: %w", err)
	}

	st.summary = d.Run(ctx, inputs)
	for _, r := range st.summary.Results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: %v\n", r.Input, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s -> %s\n", r.Input, r.Output)
	}
	st.print(w)
	return st, nil
}

func (st *stats) print(w io.Writer) {
	s := st.summary
	fmt.Fprintf(w, "Images processed: %d\n", s.Processed)
	if s.Failed > 0 {
		fmt.Fprintf(w, "Images failed: %d\n", s.Failed)
	}
	src := "computed"
	if st.cached {
		src = "cached"
	}
	fmt.Fprintf(w, "Preparation time: %v (%s)\n", st.prepare, src)
	fmt.Fprintf(w, "Unwarping time: %v (%v per image)\n", s.Elapsed, s.Mean())
}

// prepare returns the coordinates for the calibration document, from the
// cache if one is configured and holds them. The boolean reports a cache hit.
func prepare(ctx context.Context, cfg *config.Config, calibration string, log logging.Logger) (*remap.Coords, bool, error) {
	size := grid.Size{Rows: cfg.GridRows, Cols: cfg.GridCols}
	strategy, err := cfg.FitStrategy()
	if err != nil {
		return nil, false, err
	}
	doc, err := os.ReadFile(calibration)
	if err != nil {
		return nil, false, fmt.Errorf("could not read calibration: %w", err)
	}

	var (
		c   *cache.Cache
		key cache.Key
	)
	if cfg.Cache != "" {
		c, err = cache.Open(cfg.Cache)
		if err != nil {
			return nil, false, err
		}
		defer c.Close()
		key = cache.NewKey(doc, size, cfg.PixelsPerUnit, strategy.String())
		coords, ok, err := c.Get(ctx, key)
		if err != nil {
			log.Warning("could not read coordinate cache", "error", err.Error())
		}
		if ok {
			return coords, true, nil
		}
	}

	markers, err := marker.ParseSVG(bytes.NewReader(doc))
	if err != nil {
		return nil, false, fmt.Errorf("could not read markers: %w", err)
	}
	l, err := grid.Track(markers, size, log)
	if err != nil {
		return nil, false, fmt.Errorf("could not track grid: %w", err)
	}
	m, err := strategy.Fit(l)
	if err != nil {
		return nil, false, fmt.Errorf("could not fit %v: %w", strategy, err)
	}
	coords, err := remap.Build(m, size, cfg.PixelsPerUnit)
	if err != nil {
		return nil, false, fmt.Errorf("could not build coordinates: %w", err)
	}

	if c != nil {
		err = c.Put(ctx, key, coords)
		if err != nil {
			log.Warning("could not store coordinates in cache", "error", err.Error())
		}
	}
	return coords, false, nil
}
