/*
DESCRIPTION
  batch.go provides the driver that unwarps many images with one shared set
  of coordinates using a fixed size pool of workers.

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

// Package batch provides unwarping of a list of image files through shared,
// read-only coordinates. Each image is read, resampled and written atomically
// by one worker; a failure affects only that image.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ausocean/utils/logging"
	"golang.org/x/sync/errgroup"

	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/remap"
)

// Output path errors. Both are detected before any image is processed.
var (
	// ErrOverwrite is returned for an image whose output path is an input
	// path of the same batch.
	ErrOverwrite = errors.New("output would overwrite input")

	// ErrCollision is returned for an image whose output path is already
	// claimed by an earlier image of the same batch.
	ErrCollision = errors.New("output shared with another image")
)

// Prefix is prepended to the file name of outputs written beside their input.
const Prefix = "unwarped_"

// Naming is the output naming policy. If Dir is set, the output of
// dir/name.ext is Dir/name.ext, otherwise it is dir/unwarped_name.ext. A
// non-empty Ext replaces the input extension.
type Naming struct {
	Dir string
	Ext string
}

// Output returns the output path for input.
func (n Naming) Output(input string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	if n.Ext != "" {
		ext = n.Ext
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
	}
	if n.Dir != "" {
		return filepath.Join(n.Dir, stem+ext)
	}
	return filepath.Join(filepath.Dir(input), Prefix+stem+ext)
}

// Driver unwarps images through a fixed set of coordinates.
type Driver struct {
	coords   *remap.Coords
	log      logging.Logger
	workers  int
	naming   Naming
	resample []remap.Option
}

// New returns a Driver for coords configured by opts. By default it uses one
// worker per CPU and writes each output beside its input.
func New(coords *remap.Coords, log logging.Logger, opts ...Option) (*Driver, error) {
	if coords == nil {
		return nil, errors.New("nil coordinates")
	}
	err := coords.Validate()
	if err != nil {
		return nil, err
	}

	d := &Driver{coords: coords, log: log, workers: runtime.NumCPU()}
	for i, opt := range opts {
		err := opt(d)
		if err != nil {
			return nil, fmt.Errorf("could not apply option %d: %w", i, err)
		}
	}
	return d, nil
}

// Run unwarps inputs and returns their results in input order. Output paths
// are checked against the whole batch first: an image whose output is any
// input fails with ErrOverwrite, and an image whose output was already
// claimed by an earlier image fails with ErrCollision. Cancelling ctx stops
// new images from being started; these report the context error, while
// images already written are left in place.
func (d *Driver) Run(ctx context.Context, inputs []string) *Summary {
	start := time.Now()
	s := newSummary(len(inputs))
	outputs, conflicts := d.plan(inputs)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, in := range inputs {
		switch {
		case ctx.Err() != nil:
			s.update(i, Result{Input: in, Output: outputs[i], Err: ctx.Err()})
			continue
		case conflicts[i] != nil:
			d.log.Error("refusing image", "input", in, "output", outputs[i], "error", conflicts[i].Error())
			s.update(i, Result{Input: in, Output: outputs[i], Err: conflicts[i]})
			continue
		}
		g.Go(func() error {
			s.update(i, d.unwarp(ctx, in, outputs[i]))
			return nil
		})
	}
	g.Wait()

	s.tally()
	s.Elapsed = time.Since(start)
	d.log.Info("batch complete", "processed", s.Processed, "failed", s.Failed, "elapsed", s.Elapsed.String())
	return s
}

// plan names the output of every input and returns, per input, the error that
// prevents it from being written, if any.
func (d *Driver) plan(inputs []string) (outputs []string, conflicts []error) {
	outputs = make([]string, len(inputs))
	conflicts = make([]error, len(inputs))

	in := make(map[string]bool, len(inputs))
	for _, p := range inputs {
		in[resolve(p)] = true
	}
	claimed := make(map[string]string, len(inputs))
	for i, p := range inputs {
		outputs[i] = d.naming.Output(p)
		out := resolve(outputs[i])
		if in[out] {
			conflicts[i] = fmt.Errorf("%w: %s", ErrOverwrite, outputs[i])
			continue
		}
		if first, ok := claimed[out]; ok {
			conflicts[i] = fmt.Errorf("%w: %s is also written from %s", ErrCollision, outputs[i], first)
			continue
		}
		claimed[out] = p
	}
	return outputs, conflicts
}

// resolve returns path made absolute with symbolic links evaluated. For a
// path that does not exist yet only its directory is evaluated.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	p, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return p
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return abs
	}
	return filepath.Join(dir, filepath.Base(abs))
}

// unwarp processes a single image.
func (d *Driver) unwarp(ctx context.Context, in, out string) Result {
	start := time.Now()
	res := Result{Input: in, Output: out}
	res.Err = d.process(ctx, res.Input, res.Output)
	res.Duration = time.Since(start)
	if res.Err != nil {
		d.log.Error("could not unwarp image", "input", in, "error", res.Err.Error())
		return res
	}
	d.log.Debug("unwarped image", "input", in, "output", res.Output, "duration", res.Duration.String())
	return res
}

func (d *Driver) process(ctx context.Context, in, out string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	format, err := raster.FormatFor(filepath.Ext(out))
	if err != nil {
		return fmt.Errorf("could not determine output format: %w", err)
	}

	src, err := raster.Read(in)
	if err != nil {
		return err
	}
	dst, err := remap.Resample(src, d.coords, d.resample...)
	if err != nil {
		return fmt.Errorf("could not resample: %w", err)
	}
	err = raster.Write(out, dst, format)
	if err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	return nil
}
