/*
DESCRIPTION
  runlog.go provides construction of the structured loggers used by the
  commands.

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

// Package runlog provides a JSON logger writing to a rotating log file and,
// optionally, the console.
package runlog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ausocean/utils/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation parameters.
const (
	maxSize    = 500 // MB
	maxBackups = 10
	maxAge     = 28 // days
)

// Logging is suppressed for repeated messages.
const suppress = true

var levels = map[string]int8{
	"debug":   int8(logging.Debug),
	"info":    int8(logging.Info),
	"warning": int8(logging.Warning),
	"error":   int8(logging.Error),
	"fatal":   int8(logging.Fatal),
}

// ParseLevel returns the logging level named s.
func ParseLevel(s string) (int8, error) {
	l, ok := levels[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
	return l, nil
}

// New returns a logger at the given level. If path is not empty log lines are
// written to a rotating file at path; if console is true they are also
// written to stderr. With neither, logs are discarded.
func New(path string, level int8, console bool) logging.Logger {
	var ws []io.Writer
	if path != "" {
		ws = append(ws, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
		})
	}
	if console {
		ws = append(ws, os.Stderr)
	}
	if len(ws) == 0 {
		ws = append(ws, io.Discard)
	}
	return logging.New(level, io.MultiWriter(ws...), suppress)
}
