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

package archivestream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// File is the borrowed handle an archive is read from. The provider opens it
// once and closes only the stream it opened, never the File itself.
type File interface {
	Open(ctx context.Context, mode AccessMode) (io.ReadSeekCloser, error)
}

// FSFile is a File backed by a path on an afero file system.
type FSFile struct {
	fs   afero.Fs
	name string
}

// NewFSFile returns a File for name on fsys.
func NewFSFile(fsys afero.Fs, name string) *FSFile {
	return &FSFile{fs: fsys, name: name}
}

// NewOSFile returns a read-only File for a path on the host file system.
func NewOSFile(path string) *FSFile {
	return NewFSFile(afero.NewReadOnlyFs(afero.NewOsFs()), path)
}

// Name returns the path the file was created with.
func (f *FSFile) Name() string { return f.name }

// Open opens the file. Write access is requested from the file system only
// when mode asks for it.
func (f *FSFile) Open(_ context.Context, mode AccessMode) (io.ReadSeekCloser, error) {
	flag := os.O_RDONLY
	switch {
	case mode.CanRead() && mode.CanWrite():
		flag = os.O_RDWR
	case mode.CanWrite():
		flag = os.O_WRONLY
	}

	file, err := f.fs.OpenFile(f.name, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.name, err)
	}
	return file, nil
}

// BytesFile is a read-only File over an archive already held in memory.
type BytesFile []byte

// Open returns a fresh reader over the bytes.
func (b BytesFile) Open(_ context.Context, mode AccessMode) (io.ReadSeekCloser, error) {
	if mode.CanWrite() {
		return nil, fmt.Errorf("open in-memory archive for %s: %w", mode, os.ErrPermission)
	}
	return nopSeekCloser{bytes.NewReader(b)}, nil
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

// source is the opened backing stream plus its size, as a ReaderAt.
type source struct {
	io.ReaderAt
	closer io.Closer
	size   int64
}

func newSource(rsc io.ReadSeekCloser) (*source, error) {
	size, err := rsc.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("determine archive size: %w", err)
	}
	if _, err := rsc.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind archive: %w", err)
	}

	var readerAt io.ReaderAt
	if ra, ok := rsc.(io.ReaderAt); ok {
		readerAt = &lockedReaderAt{ra: ra}
	} else {
		readerAt = &seekerReaderAt{rs: rsc}
	}

	return &source{ReaderAt: readerAt, closer: rsc, size: size}, nil
}

func (s *source) Close() error {
	return s.closer.Close() //nolint:wrapcheck // Close error passthrough is intentional
}

// lockedReaderAt serializes ReadAt. File implementations such as afero's
// in-memory files move a shared offset inside ReadAt.
type lockedReaderAt struct {
	ra io.ReaderAt
	mu sync.Mutex
}

func (l *lockedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.ra.ReadAt(p, off) //nolint:wrapcheck // ReadAt error passthrough is intentional
}

// seekerReaderAt adapts a ReadSeeker to ReaderAt by seeking under a lock.
type seekerReaderAt struct {
	rs io.ReadSeeker
	mu sync.Mutex
}

func (s *seekerReaderAt) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to %d: %w", off, err)
	}
	n, err := io.ReadFull(s.rs, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}
