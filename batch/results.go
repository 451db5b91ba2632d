/*
DESCRIPTION
  results.go provides the per-image results and timing statistics of a batch
  run.

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
	"errors"
	"fmt"
	"time"
)

// Result is the outcome of unwarping one image.
type Result struct {
	Input    string
	Output   string
	Err      error
	Duration time.Duration
}

// Summary holds the results of a run, in input order.
type Summary struct {
	Results   []Result
	Processed int // Images written successfully.
	Failed    int
	Elapsed   time.Duration
}

// newSummary returns a Summary with room for n results.
func newSummary(n int) *Summary {
	return &Summary{Results: make([]Result, n)}
}

// update sets the result at index. Distinct indices may be updated
// concurrently.
func (s *Summary) update(index int, r Result) {
	s.Results[index] = r
}

// tally counts the processed and failed results.
func (s *Summary) tally() {
	s.Processed, s.Failed = 0, 0
	for _, r := range s.Results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Processed++
	}
}

// Mean returns the mean time taken to unwarp a successfully processed image.
func (s *Summary) Mean() time.Duration {
	if s.Processed == 0 {
		return 0
	}
	var total time.Duration
	for _, r := range s.Results {
		if r.Err == nil {
			total += r.Duration
		}
	}
	return total / time.Duration(s.Processed)
}

// Err returns the failures of the run joined into one error, or nil if every
// image was processed.
func (s *Summary) Err() error {
	var errs []error
	for _, r := range s.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return errors.Join(errs...)
}
