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

package archivestream_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"

	archivestream "github.com/ZaparooProject/go-archivestream"
	"github.com/ZaparooProject/go-archivestream/archive"
)

// zipFile describes one entry written by createTestZIP.
type zipFile struct {
	name    string
	content []byte
	method  uint16
}

// createTestZIP builds a ZIP archive in memory, preserving entry order.
func createTestZIP(t *testing.T, files []zipFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(archive.MethodZstd, zstd.ZipCompressor(zstd.WithEncoderConcurrency(1)))
	writer.RegisterCompressor(archive.MethodXZ, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})

	for _, file := range files {
		fileWriter, err := writer.CreateHeader(&zip.FileHeader{
			Name:   file.name,
			Method: file.method,
		})
		if err != nil {
			t.Fatalf("create file in zip: %v", err)
		}
		if _, err := fileWriter.Write(file.content); err != nil {
			t.Fatalf("write file content: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
	return buf.Bytes()
}

// writeTestZIP stores a ZIP archive on an in-memory file system.
func writeTestZIP(t *testing.T, name string, files []zipFile) (afero.Fs, *archivestream.FSFile) {
	t.Helper()

	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, name, createTestZIP(t, files), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
	return fsys, archivestream.NewFSFile(fsys, name)
}

// countingOpener wraps an opener and counts how often the archive is parsed.
type countingOpener struct {
	opener archive.Opener
	calls  atomic.Int32
}

func (c *countingOpener) open(r io.ReaderAt, size int64) (archive.Reader, error) {
	c.calls.Add(1)
	return c.opener(r, size)
}

type fakeEntry struct {
	openErr error
	name    string
	data    []byte
	size    int64
	dir     bool
}

func (e *fakeEntry) Name() string          { return e.name }
func (e *fakeEntry) Size() int64           { return e.size }
func (e *fakeEntry) CompressedSize() int64 { return e.size }
func (e *fakeEntry) IsDir() bool           { return e.dir }

func (e *fakeEntry) Open() (io.ReadCloser, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

func newFakeEntry(name string, data []byte) *fakeEntry {
	return &fakeEntry{name: name, data: data, size: int64(len(data))}
}

type fakeReader struct {
	closeErr error
	entries  []archive.Entry
	closed   atomic.Int32
}

func (r *fakeReader) Entries() []archive.Entry { return r.entries }

func (r *fakeReader) Close() error {
	r.closed.Add(1)
	return r.closeErr
}

// fakeOpener returns an opener that ignores the bytes and serves entries.
func fakeOpener(reader *fakeReader) archive.Opener {
	return func(io.ReaderAt, int64) (archive.Reader, error) {
		return reader, nil
	}
}

// trackedFile records how often it was opened and whether its streams were closed.
type trackedFile struct {
	data    []byte
	openErr error
	opens   atomic.Int32
	closes  atomic.Int32
	hideAt  bool
}

type trackedStream struct {
	io.ReadSeeker
	file *trackedFile
}

func (s *trackedStream) Close() error {
	s.file.closes.Add(1)
	return nil
}

type trackedReaderAtStream struct {
	*bytes.Reader
	file *trackedFile
}

func (s *trackedReaderAtStream) Close() error {
	s.file.closes.Add(1)
	return nil
}

func (f *trackedFile) Open(_ context.Context, mode archivestream.AccessMode) (io.ReadSeekCloser, error) {
	f.opens.Add(1)
	if f.openErr != nil {
		return nil, f.openErr
	}
	if mode.CanWrite() {
		return nil, errors.New("tracked file is read-only")
	}
	if f.hideAt {
		return &trackedStream{ReadSeeker: bytes.NewReader(f.data), file: f}, nil
	}
	return &trackedReaderAtStream{Reader: bytes.NewReader(f.data), file: f}, nil
}

// readAll reads a stream from the start.
func readAll(t *testing.T, stream *archivestream.Stream) []byte {
	t.Helper()

	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	return data
}
