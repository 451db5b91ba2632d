/*
DESCRIPTION
  io.go provides reading and atomic writing of raster image files.

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

package raster

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrFormat is returned for an unsupported output format.
var ErrFormat = errors.New("unsupported image format")

// Format is an output image encoding.
type Format string

// Output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

// JPEGQuality is the quality used when writing JPEG files.
const JPEGQuality = 95

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case JPEG:
		return ".jpg"
	case TIFF:
		return ".tif"
	}
	return "." + string(f)
}

// FormatFor returns the format for a file extension or format name. The
// leading dot is optional and case is ignored.
func FormatFor(ext string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, ext)
}

// Read decodes the image file at path. PNG, JPEG, GIF, TIFF and BMP are
// supported.
func Read(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r *Raster, format Format) error {
	img := r.Image()
	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

// Write encodes r to path. The image is written to a temporary file in the
// same directory and renamed into place, so path is either left untouched or
// holds the complete image.
func Write(path string, r *Raster, format Format) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	err = Encode(w, r, format)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	err = w.Flush()
	if err != nil {
		return fmt.Errorf("could not flush %s: %w", path, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("could not close %s: %w", tmp.Name(), err)
	}
	err = os.Rename(tmp.Name(), path)
	if err != nil {
		return fmt.Errorf("could not rename into place: %w", err)
	}
	return nil
}
