/*
DESCRIPTION
  options.go provides the options of the batch driver.

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

package batch

import (
	"fmt"

	"github.com/ausocean/unwarp/raster"
	"github.com/ausocean/unwarp/remap"
)

// Option is the function signature returned by option functions below for
// use in New.
type Option func(*Driver) error

// WithWorkers returns an Option that sets the number of images unwarped
// concurrently.
func WithWorkers(n int) Option {
	return func(d *Driver) error {
		if n <= 0 {
			return fmt.Errorf("invalid worker count: %d", n)
		}
		d.workers = n
		return nil
	}
}

// WithNaming returns an Option that sets the output naming policy.
func WithNaming(n Naming) Option {
	return func(d *Driver) error {
		if n.Ext != "" {
			_, err := raster.FormatFor(n.Ext)
			if err != nil {
				return err
			}
		}
		d.naming = n
		return nil
	}
}

// WithFormat returns an Option that sets the output image format, replacing
// the extension of every output.
func WithFormat(f raster.Format) Option {
	return func(d *Driver) error {
		_, err := raster.FormatFor(string(f))
		if err != nil {
			return err
		}
		d.naming.Ext = f.Ext()
		return nil
	}
}

// WithResampleOptions returns an Option that sets the options passed to
// remap.Resample for every image.
func WithResampleOptions(opts ...remap.Option) Option {
	return func(d *Driver) error {
		d.resample = opts
		return nil
	}
}
