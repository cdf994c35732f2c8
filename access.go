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
	"fmt"
	"strings"
)

// AccessMode is the access requested when opening a stream.
type AccessMode uint8

// Access modes. ReadWrite is Read|Write.
const (
	Read      AccessMode = 1 << iota
	Write
	ReadWrite = Read | Write
)

// CanRead reports whether the mode includes read access.
func (m AccessMode) CanRead() bool { return m&Read != 0 }

// CanWrite reports whether the mode includes write access.
func (m AccessMode) CanWrite() bool { return m&Write != 0 }

func (m AccessMode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("AccessMode(%d)", uint8(m))
	}
}

// ParseAccessMode parses "r", "w" or "rw" (case-insensitive).
func ParseAccessMode(s string) (AccessMode, error) {
	switch strings.ToLower(s) {
	case "r", "read":
		return Read, nil
	case "w", "write":
		return Write, nil
	case "rw", "read-write":
		return ReadWrite, nil
	default:
		return 0, fmt.Errorf("unknown access mode %q", s)
	}
}
