// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-archivestream.
//
// go-archivestream is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-archivestream is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-archivestream.  If not, see <https://www.gnu.org/licenses/>.

// Package archive adapts the ZIP decompression library to the small surface
// the stream provider needs: enumerate entries and open a forward-only
// decompression stream per entry.
package archive

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Entry is one file inside an archive container.
type Entry interface {
	// Name is the path inside the archive, '/' separated.
	Name() string

	// Size is the declared uncompressed size.
	Size() int64

	// CompressedSize is the size of the entry's compressed data.
	CompressedSize() int64

	// IsDir reports whether the entry is a directory record.
	IsDir() bool

	// Open opens a forward-only decompression stream over the entry.
	// The caller must close it.
	Open() (io.ReadCloser, error)
}

// Reader provides read access to the entries of an opened archive.
type Reader interface {
	// Entries returns the entries in central directory order.
	Entries() []Entry

	// Close releases the reader.
	Close() error
}

// Opener parses an archive container from a random-access byte source.
type Opener func(r io.ReaderAt, size int64) (Reader, error)

// MaxEntrySize caps the declared uncompressed size ReadEntry will allocate for.
const MaxEntrySize = math.MaxInt32

// ErrEntryTooLarge is returned when an entry declares a size that cannot be
// materialized in memory.
var ErrEntryTooLarge = errors.New("entry too large to materialize")

// ErrEntryOverflow is returned when an entry decompresses to more bytes than
// it declares.
var ErrEntryOverflow = errors.New("entry longer than declared size")

// ReadEntry decompresses the whole entry into a freshly allocated buffer
// sized to the entry's declared uncompressed length. The stream is read to
// EOF so the library verifies the checksum.
func ReadEntry(entry Entry) ([]byte, error) {
	size := entry.Size()
	if size < 0 || size > MaxEntrySize {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrEntryTooLarge, entry.Name(), size)
	}

	reader, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}

	extra, err := io.Copy(io.Discard, io.LimitReader(reader, 1))
	if err != nil {
		return nil, fmt.Errorf("verify entry: %w", err)
	}
	if extra != 0 {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrEntryOverflow, entry.Name(), size)
	}

	return data, nil
}
