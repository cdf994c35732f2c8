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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-archivestream/internal/memstream"
)

var (
	// ErrDisposed is returned by every operation on a disposed provider.
	ErrDisposed = errors.New("archive stream provider is disposed")

	// ErrReadOnly is returned by writes on a stream opened without Write.
	ErrReadOnly = memstream.ErrReadOnly

	// ErrNotExpandable is returned by writes past the end of an entry.
	ErrNotExpandable = memstream.ErrNotExpandable

	// ErrStreamClosed is returned by I/O on a closed stream.
	ErrStreamClosed = memstream.ErrClosed
)

// InitError indicates the archive could not be opened or indexed. It is
// returned by every operation once initialization has failed.
type InitError struct {
	Err    error
	Scheme string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize archive %q: %v", e.Scheme, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// EntryError indicates a single entry could not be materialized. Other
// entries remain usable.
type EntryError struct {
	Err  error
	Path string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("materialize %q: %v", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// DuplicateEntryError indicates two archive entries map to the same virtual
// path under DuplicateError.
type DuplicateEntryError struct {
	Path   string
	First  string
	Second string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("entries %q and %q both map to %q", e.First, e.Second, e.Path)
}
