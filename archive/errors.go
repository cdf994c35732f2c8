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
	"errors"
	"fmt"
)

// ErrFormat matches any error caused by bytes that do not parse as an archive.
var ErrFormat = errors.New("invalid archive format")

// FormatError indicates the archive container could not be parsed.
type FormatError struct {
	Err    error
	Format string
}

func (e FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s archive: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("invalid %s archive", e.Format)
}

// Unwrap exposes both ErrFormat and the library error.
func (e FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}

// MethodError indicates an entry uses a compression method with no
// registered decompressor.
type MethodError struct {
	Name   string
	Method uint16
}

func (e MethodError) Error() string {
	return fmt.Sprintf("entry %q uses unsupported compression method %d", e.Name, e.Method)
}
