/*
DESCRIPTION
  config_test.go provides testing for configuration loading and validation.

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

package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/unwarp/fit"
)

func valid() Config {
	c := Defaults()
	c.GridRows, c.GridCols, c.PixelsPerUnit = 5, 7, 10
	return c
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unwarp.conf")
	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "GridRows 6\nGridCols 9\nPixelsPerUnit 20\nStrategy poly\nOrder 3\nWorkers 2\nFormat png\nDestination /tmp/out\n")
	c := Defaults()
	err := c.Load(path)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	want := Defaults()
	want.GridRows, want.GridCols, want.PixelsPerUnit = 6, 9, 20
	want.Strategy, want.Order, want.Workers = fit.KindPoly, 3, 2
	want.Format, want.Destination = "png", "/tmp/out"
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("did not get expected config (-want +got):\n%s", diff)
	}
}

// TestFlagPrecedence checks that explicitly set flags win over the file.
func TestFlagPrecedence(t *testing.T) {
	path := writeConfig(t, "Workers 2\nStrategy poly\nOrder 4\n")

	c := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.Flags(fs, KeyWorkers, KeyStrategy, KeyOrder)
	err := fs.Parse([]string{"-workers", "8", "-order", "2"})
	if err != nil {
		t.Fatalf("could not parse flags: %v", err)
	}
	if diff := cmp.Diff([]string{KeyOrder, KeyWorkers}, Explicit(fs)); diff != "" {
		t.Errorf("did not get expected explicit keys (-want +got):\n%s", diff)
	}

	err = c.Load(path, Explicit(fs)...)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if c.Workers != 8 || c.Order != 2 || c.Strategy != fit.KindPoly {
		t.Errorf("did not get expected precedence. Got: workers %d, order %d, strategy %s", c.Workers, c.Order, c.Strategy)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "non-integer density", content: "PixelsPerUnit 2.5\n"},
		{name: "unknown key", content: "Colour red\n"},
		{name: "non-integer workers", content: "Workers many\n"},
	}
	for _, test := range tests {
		c := Defaults()
		err := c.Load(writeConfig(t, test.content))
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("did not get expected error for %s. Got: %v, Want: %v", test.name, err, ErrInvalid)
		}
	}

	c := Defaults()
	err := c.Load(filepath.Join(t.TempDir(), "missing.conf"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{name: "valid", modify: func(c *Config) {}, ok: true},
		{name: "poly", modify: func(c *Config) { c.Strategy = fit.KindPoly }, ok: true},
		{name: "small grid", modify: func(c *Config) { c.GridRows = 1 }},
		{name: "zero density", modify: func(c *Config) { c.PixelsPerUnit = 0 }},
		{name: "negative density", modify: func(c *Config) { c.PixelsPerUnit = -3 }},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }},
		{name: "unknown strategy", modify: func(c *Config) { c.Strategy = "rbf" }},
		{name: "negative order", modify: func(c *Config) { c.Order = -1 }},
		{name: "unknown spline", modify: func(c *Config) { c.Spline = "quintic" }},
		{name: "unknown format", modify: func(c *Config) { c.Format = "webp" }},
		{name: "unknown boundary", modify: func(c *Config) { c.Boundary = "wrap" }},
		{name: "unknown level", modify: func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, test := range tests {
		c := valid()
		test.modify(&c)
		err := c.Validate()
		if test.ok && err != nil {
			t.Errorf("did not expect error for %s: %v", test.name, err)
		}
		if !test.ok && !errors.Is(err, ErrInvalid) {
			t.Errorf("did not get expected error for %s. Got: %v, Want: %v", test.name, err, ErrInvalid)
		}
	}
}

func TestFitStrategy(t *testing.T) {
	c := valid()
	c.Spline = "linear"
	s, err := c.FitStrategy()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if s != (fit.Spline{Kind: fit.Linear}) {
		t.Errorf("did not get expected strategy. Got: %v", s)
	}

	c.Strategy, c.Order = fit.KindPoly, 2
	s, err = c.FitStrategy()
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if s != (fit.Polynomial{Order: 2}) {
		t.Errorf("did not get expected strategy. Got: %v", s)
	}

	opts, err := c.ResampleOptions()
	if err != nil || len(opts) != 1 {
		t.Errorf("did not get expected resample options. Got: %d, %v", len(opts), err)
	}
}
