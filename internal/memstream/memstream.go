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

// Package memstream provides a fixed-capacity, seekable stream over a byte
// slice. The stream never grows: it can mutate bytes in place but cannot
// extend past the slice it was created with.
package memstream

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrReadOnly is returned by writes on a stream opened without write access.
	ErrReadOnly = errors.New("stream is read-only")

	// ErrNotExpandable is returned when a write would extend past the buffer.
	ErrNotExpandable = errors.New("stream is not expandable")

	// ErrClosed is returned by any operation on a closed stream.
	ErrClosed = errors.New("stream is closed")

	// ErrNegativeOffset is returned for seeks and positioned I/O before the start.
	ErrNegativeOffset = errors.New("negative offset")
)

var (
	_ io.ReadWriteSeeker = (*Stream)(nil)
	_ io.ReaderAt        = (*Stream)(nil)
	_ io.WriterAt        = (*Stream)(nil)
	_ io.Closer          = (*Stream)(nil)
)

// Stream is a random-access stream over a caller-supplied buffer.
// It is safe for concurrent use.
type Stream struct {
	data     []byte
	mu       sync.Mutex
	pos      int64
	writable bool
	closed   bool
}

// New returns a stream over data. The stream takes ownership of data.
func New(data []byte, writable bool) *Stream {
	return &Stream{data: data, writable: writable}
}

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}

	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

// ReadAt implements io.ReaderAt. It does not move the stream position.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeOffset, off)
	}
	if off >= int64(len(s.data)) {
		return 0, io.EOF
	}

	n := copy(p, s.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Write implements io.Writer, overwriting bytes at the current position.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.writeAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

// WriteAt implements io.WriterAt. It does not move the stream position.
func (s *Stream) WriteAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeAt(p, off)
}

func (s *Stream) writeAt(p []byte, off int64) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if !s.writable {
		return 0, ErrReadOnly
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeOffset, off)
	}
	if off >= int64(len(s.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, ErrNotExpandable
	}

	n := copy(s.data[off:], p)
	if n < len(p) {
		return n, ErrNotExpandable
	}
	return n, nil
}

// Seek implements io.Seeker. Seeking past the end is allowed; reads there
// return io.EOF and writes fail with ErrNotExpandable.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeOffset, abs)
	}

	s.pos = abs
	return abs, nil
}

// Size returns the fixed length of the stream.
func (s *Stream) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.data))
}

// Len returns the number of unread bytes after the current position.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pos >= int64(len(s.data)) {
		return 0
	}
	return int(int64(len(s.data)) - s.pos)
}

// Bytes returns a copy of the stream contents.
func (s *Stream) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	return append([]byte(nil), s.data...), nil
}

// Writable reports whether the stream accepts writes.
func (s *Stream) Writable() bool {
	return s.writable
}

// Closed reports whether Close has been called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Close releases the buffer. Closing twice is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.data = nil
	return nil
}
