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

package archive

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression methods registered on top of the library's store and deflate.
const (
	MethodStore   uint16 = zip.Store
	MethodDeflate uint16 = zip.Deflate
	MethodBzip2   uint16 = 12
	MethodZstd    uint16 = zstd.ZipMethodWinZip
	MethodZstdPK  uint16 = zstd.ZipMethodPKWare
	MethodXZ      uint16 = 95
)

// SupportedMethods lists every compression method OpenZIP can decompress.
var SupportedMethods = []uint16{
	MethodStore, MethodDeflate, MethodBzip2, MethodZstd, MethodZstdPK, MethodXZ,
}

// ZIPArchive is a Reader over a ZIP container.
type ZIPArchive struct {
	reader  *zip.Reader
	entries []Entry
}

var _ Opener = OpenZIP

// OpenZIP parses the ZIP central directory from r.
func OpenZIP(r io.ReaderAt, size int64) (Reader, error) {
	reader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, FormatError{Format: "ZIP", Err: err}
	}

	registerDecompressors(reader)

	entries := make([]Entry, 0, len(reader.File))
	for _, file := range reader.File {
		entries = append(entries, &zipEntry{file: file})
	}

	return &ZIPArchive{
		reader:  reader,
		entries: entries,
	}, nil
}

func registerDecompressors(reader *zip.Reader) {
	zstdDecompressor := zstd.ZipDecompressor()
	reader.RegisterDecompressor(MethodZstd, zstdDecompressor)
	reader.RegisterDecompressor(MethodZstdPK, zstdDecompressor)
	reader.RegisterDecompressor(MethodXZ, newXZReader)
	reader.RegisterDecompressor(MethodBzip2, func(r io.Reader) io.ReadCloser {
		return io.NopCloser(bzip2.NewReader(r))
	})
}

// Entries returns the entries in central directory order.
func (za *ZIPArchive) Entries() []Entry {
	return za.entries
}

// Close is a no-op: the byte source belongs to the caller.
func (*ZIPArchive) Close() error {
	return nil
}

type zipEntry struct {
	file *zip.File
}

func (ze *zipEntry) Name() string { return ze.file.Name }

//nolint:gosec // Safe: file sizes don't exceed int64
func (ze *zipEntry) Size() int64 { return int64(ze.file.UncompressedSize64) }

//nolint:gosec // Safe: file sizes don't exceed int64
func (ze *zipEntry) CompressedSize() int64 { return int64(ze.file.CompressedSize64) }

func (ze *zipEntry) IsDir() bool {
	return strings.HasSuffix(ze.file.Name, "/") || ze.file.FileInfo().IsDir()
}

func (ze *zipEntry) Open() (io.ReadCloser, error) {
	if ze.IsDir() {
		// Directory records carry no data.
		return io.NopCloser(strings.NewReader("")), nil
	}

	reader, err := ze.file.Open()
	if errors.Is(err, zip.ErrAlgorithm) {
		return nil, MethodError{Name: ze.file.Name, Method: ze.file.Method}
	}
	if err != nil {
		return nil, fmt.Errorf("open file in ZIP: %w", err)
	}
	return reader, nil
}

// xzReader reports decoder construction failures on the first Read, since
// zip decompressors cannot return an error themselves.
type xzReader struct {
	reader io.Reader
	err    error
}

func newXZReader(r io.Reader) io.ReadCloser {
	reader, err := xz.NewReader(r)
	if err != nil {
		return &xzReader{err: fmt.Errorf("xz: %w", err)}
	}
	return &xzReader{reader: reader}
}

func (xr *xzReader) Read(p []byte) (int, error) {
	if xr.err != nil {
		return 0, xr.err
	}
	return xr.reader.Read(p) //nolint:wrapcheck // Read error passthrough is intentional
}

func (*xzReader) Close() error {
	// xz.Reader has no resources to release
	return nil
}
