/*
DESCRIPTION
  cache.go provides an on-disk SQLite cache of built coordinate arrays, so
  that repeated runs against one calibration skip tracking, fitting and
  building.

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

// Package cache provides a persistent cache of remap.Coords keyed by the
// calibration document and the parameters they were built with.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"github.com/ausocean/unwarp/grid"
	"github.com/ausocean/unwarp/remap"
)

//go:embed schema.sql
var schemaSQL string

// ErrCorrupt is returned when a cached entry cannot be decoded.
var ErrCorrupt = errors.New("corrupt cache entry")

// Key identifies one set of built coordinates.
type Key struct {
	Calibration   [sha256.Size]byte
	Size          grid.Size
	PixelsPerUnit int
	Strategy      string
}

// NewKey returns the key for coordinates built from the calibration document
// svg with the given grid size, density and fit strategy description.
func NewKey(svg []byte, size grid.Size, ppu int, strategy string) Key {
	return Key{Calibration: sha256.Sum256(svg), Size: size, PixelsPerUnit: ppu, Strategy: strategy}
}

// Cache is a coordinate cache backed by a SQLite database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open cache database: %w", err)
	}
	_, err = db.Exec(schemaSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error { return c.db.Close() }

// Get returns the coordinates stored for k. The boolean is false if there is
// no entry.
func (c *Cache) Get(ctx context.Context, k Key) (*remap.Coords, bool, error) {
	const query = `
		SELECT out_rows, out_cols, data FROM coords
		WHERE calibration = ? AND grid_rows = ? AND grid_cols = ? AND ppu = ? AND strategy = ?
	`
	var (
		rows, cols int
		data       []byte
	)
	err := c.db.QueryRowContext(ctx, query, k.Calibration[:], k.Size.Rows, k.Size.Cols, k.PixelsPerUnit, k.Strategy).Scan(&rows, &cols, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not query cache: %w", err)
	}

	coords, err := decode(rows, cols, data)
	if err != nil {
		return nil, false, err
	}
	return coords, true, nil
}

// Put stores coords under k, replacing any existing entry.
func (c *Cache) Put(ctx context.Context, k Key, coords *remap.Coords) error {
	err := coords.Validate()
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO coords (calibration, grid_rows, grid_cols, ppu, strategy, out_rows, out_cols, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (calibration, grid_rows, grid_cols, ppu, strategy)
		DO UPDATE SET out_rows = excluded.out_rows, out_cols = excluded.out_cols, data = excluded.data, created = UNIXEPOCH()
	`
	_, err = c.db.ExecContext(ctx, query, k.Calibration[:], k.Size.Rows, k.Size.Cols, k.PixelsPerUnit, k.Strategy, coords.Rows, coords.Cols, encode(coords))
	if err != nil {
		return fmt.Errorf("could not store coordinates: %w", err)
	}
	return nil
}

// encode packs the row then column coordinates as little endian float64s.
func encode(c *remap.Coords) []byte {
	b := make([]byte, 0, 16*len(c.Row))
	for _, v := range c.Row {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	for _, v := range c.Col {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
	}
	return b
}

func decode(rows, cols int, b []byte) (*remap.Coords, error) {
	if rows < 0 || cols < 0 || len(b) != 16*rows*cols {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d coordinates", ErrCorrupt, len(b), rows, cols)
	}
	c := remap.NewCoords(rows, cols)
	n := rows * cols
	for i := 0; i < n; i++ {
		c.Row[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
		c.Col[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*(n+i):]))
	}
	return c, nil
}
