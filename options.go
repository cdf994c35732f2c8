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
	"log/slog"

	"github.com/ZaparooProject/go-archivestream/archive"
)

// DuplicatePolicy decides what happens when two entries map to the same
// virtual path.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the entry that comes later in the archive and
	// logs a warning.
	DuplicateLastWins DuplicatePolicy = iota

	// DuplicateError fails initialization with a DuplicateEntryError.
	DuplicateError
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOpener replaces the archive parser, archive.OpenZIP by default.
func WithOpener(opener archive.Opener) Option {
	return func(p *Provider) {
		if opener != nil {
			p.opener = opener
		}
	}
}

// WithDuplicatePolicy sets how colliding virtual paths are handled.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(p *Provider) {
		p.duplicates = policy
	}
}
