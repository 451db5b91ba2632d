/*
DESCRIPTION
  config.go provides the configuration shared by the unwarp commands, read
  from command line flags and an optional key/value file.

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

// Package config provides the command configuration (Config). Values come
// from defaults, then a config file of "Key value" lines, then command line
// flags, each overriding the last.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/filemap"
	"github.com/ausocean/utils/sliceutils"

	"github.com/ausocean/unwarp/fit"
	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/remap"
	"github.com/ausocean/unwarp/runlog"
)

// ErrInvalid is returned for an unparsable or out of range value.
var ErrInvalid = errors.New("invalid configuration")

// Config keys.
const (
	KeyGridRows      = "GridRows"
	KeyGridCols      = "GridCols"
	KeyPixelsPerUnit = "PixelsPerUnit"
	KeyStrategy      = "Strategy"
	KeyOrder         = "Order"
	KeySpline        = "Spline"
	KeyWorkers       = "Workers"
	KeyFormat        = "Format"
	KeyDestination   = "Destination"
	KeyBoundary      = "Boundary"
	KeyCache         = "Cache"
	KeyLogPath       = "LogPath"
	KeyLogLevel      = "LogLevel"
)

// Config holds the settings of a run.
type Config struct {
	GridRows      int
	GridCols      int
	PixelsPerUnit int
	Strategy      string // poly or spline.
	Order         int    // Polynomial order.
	Spline        string // Spline kind.
	Workers       int
	Format        string // Output format; empty keeps the input extension.
	Destination   string // Output directory; empty writes beside inputs.
	Boundary      string
	Cache         string // Coordinate cache database; empty disables caching.
	LogPath       string
	LogLevel      string
}

// Defaults returns the default configuration. The grid size and pixel density
// have no default.
func Defaults() Config {
	return Config{
		Strategy: fit.KindSpline,
		Order:    fit.DefaultOrder,
		Spline:   fit.NotAKnotCubic.String(),
		Workers:  4,
		Boundary: remap.Fill.String(),
		LogLevel: "info",
	}
}

// field describes how a key is bound to a Config field and a flag.
type field struct {
	key   string
	flag  string
	usage string
	value func(c *Config) flag.Value
}

var fields = []field{
	{KeyGridRows, "rows", "number of grid rows", func(c *Config) flag.Value { return (*intValue)(&c.GridRows) }},
	{KeyGridCols, "cols", "number of grid columns", func(c *Config) flag.Value { return (*intValue)(&c.GridCols) }},
	{KeyPixelsPerUnit, "ppu", "output pixels per grid unit", func(c *Config) flag.Value { return (*intValue)(&c.PixelsPerUnit) }},
	{KeyStrategy, "strategy", "fit strategy: poly or spline", func(c *Config) flag.Value { return (*stringValue)(&c.Strategy) }},
	{KeyOrder, "order", "polynomial order", func(c *Config) flag.Value { return (*intValue)(&c.Order) }},
	{KeySpline, "spline", "spline kind: notaknot, natural or linear", func(c *Config) flag.Value { return (*stringValue)(&c.Spline) }},
	{KeyWorkers, "workers", "number of images unwarped concurrently", func(c *Config) flag.Value { return (*intValue)(&c.Workers) }},
	{KeyFormat, "format", "output image format (png, jpeg, tiff, bmp); default keeps the input format", func(c *Config) flag.Value { return (*stringValue)(&c.Format) }},
	{KeyDestination, "d", "destination folder; default writes unwarped_<name> beside each input", func(c *Config) flag.Value { return (*stringValue)(&c.Destination) }},
	{KeyBoundary, "boundary", "out of image policy: fill or clamp", func(c *Config) flag.Value { return (*stringValue)(&c.Boundary) }},
	{KeyCache, "cache", "coordinate cache database file", func(c *Config) flag.Value { return (*stringValue)(&c.Cache) }},
	{KeyLogPath, "log", "log file path", func(c *Config) flag.Value { return (*stringValue)(&c.LogPath) }},
	{KeyLogLevel, "loglevel", "log level: debug, info, warning, error or fatal", func(c *Config) flag.Value { return (*stringValue)(&c.LogLevel) }},
}

// Flags registers flags on fs for the given keys, storing into c.
func (c *Config) Flags(fs *flag.FlagSet, keys ...string) {
	for _, f := range fields {
		if sliceutils.ContainsString(keys, f.key) {
			fs.Var(f.value(c), f.flag, f.usage)
		}
	}
}

// Explicit returns the keys whose flags were set on the command line.
func Explicit(fs *flag.FlagSet) []string {
	var keys []string
	fs.Visit(func(fl *flag.Flag) {
		for _, f := range fields {
			if f.flag == fl.Name {
				keys = append(keys, f.key)
			}
		}
	})
	return keys
}

// Load reads the config file at path into c. Keys listed in keep are left
// unchanged, so that explicit command line values win. Unknown keys are an
// error.
func (c *Config) Load(path string, keep ...string) error {
	m, err := filemap.ReadFrom(path, "\n", " ")
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	return c.apply(m, keep)
}

func (c *Config) apply(m map[string]string, keep []string) error {
	for k, v := range m {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" {
			continue
		}
		f, ok := lookup(k)
		if !ok {
			return fmt.Errorf("%w: unknown key %q", ErrInvalid, k)
		}
		if sliceutils.ContainsString(keep, k) {
			continue
		}
		err := f.value(c).Set(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, k, err)
		}
	}
	return nil
}

func lookup(key string) (field, bool) {
	for _, f := range fields {
		if f.key == key {
			return f, true
		}
	}
	return field{}, false
}

// Validate checks the values needed to unwarp images.
func (c *Config) Validate() error {
	err := c.ValidateFit()
	if err != nil {
		return err
	}
	if c.PixelsPerUnit <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, KeyPixelsPerUnit, c.PixelsPerUnit)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, KeyWorkers, c.Workers)
	}
	if c.Format != "" {
		_, err := raster.FormatFor(c.Format)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	_, err = remap.ParseBoundary(c.Boundary)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ValidateFit checks the values needed to track and fit a calibration.
func (c *Config) ValidateFit() error {
	if c.GridRows < 2 || c.GridCols < 2 {
		return fmt.Errorf("%w: grid must be at least 2x2, got %dx%d", ErrInvalid, c.GridRows, c.GridCols)
	}
	_, err := c.FitStrategy()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	_, err = runlog.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// FitStrategy returns the configured fit strategy.
func (c *Config) FitStrategy() (fit.Strategy, error) {
	kind, err := fit.ParseSplineKind(c.Spline)
	if err != nil {
		return nil, err
	}
	return fit.New(c.Strategy, fit.WithOrder(c.Order), fit.WithSpline(kind))
}

// ResampleOptions returns the configured resampling options.
func (c *Config) ResampleOptions() ([]remap.Option, error) {
	b, err := remap.ParseBoundary(c.Boundary)
	if err != nil {
		return nil, err
	}
	return []remap.Option{remap.WithBoundary(b)}, nil
}

// Level returns the configured logging level.
func (c *Config) Level() (int8, error) { return runlog.ParseLevel(c.LogLevel) }

type intValue int

func (i *intValue) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", s)
	}
	*i = intValue(v)
	return nil
}

func (i *intValue) String() string { return strconv.Itoa(int(*i)) }

type stringValue string

func (s *stringValue) Set(v string) error {
	*s = stringValue(v)
	return nil
}

func (s *stringValue) String() string { return string(*s) }
