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
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/go-archivestream/archive"
)

// VirtualPath joins scheme with an entry's '/' separated name, converting
// separators to the host's. Directory records are indexed under this path
// plus a trailing separator.
func VirtualPath(scheme, name string) string {
	return filepath.Join(scheme, filepath.FromSlash(name))
}

// EntryInfo describes an indexed entry.
type EntryInfo struct {
	Path           string `json:"path"`
	Name           string `json:"name"`
	Size           int64  `json:"size"`
	CompressedSize int64  `json:"compressedSize"`
}

type indexEntry struct {
	entry archive.Entry
	path  string
}

func (ie indexEntry) info() EntryInfo {
	return EntryInfo{
		Path:           ie.path,
		Name:           ie.entry.Name(),
		Size:           ie.entry.Size(),
		CompressedSize: ie.entry.CompressedSize(),
	}
}

// entryIndex maps virtual paths to entries. Slots are sorted by path and
// never change once built.
type entryIndex struct {
	slots   map[string]int
	entries []indexEntry
}

func buildIndex(
	scheme string,
	entries []archive.Entry,
	policy DuplicatePolicy,
	logger *slog.Logger,
) (*entryIndex, error) {
	byPath := make(map[string]int, len(entries))
	collected := make([]indexEntry, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			logger.Warn("skipping entry outside archive root", slog.String("name", name))
			continue
		}

		path := VirtualPath(scheme, name)
		if entry.IsDir() {
			// Keep the separator so "a/" and a file named "a" stay distinct.
			path += string(filepath.Separator)
		}
		if slot, ok := byPath[path]; ok {
			previous := collected[slot].entry.Name()
			if policy == DuplicateError {
				return nil, &DuplicateEntryError{Path: path, First: previous, Second: name}
			}
			logger.Warn("duplicate entry path, keeping last",
				slog.String("path", path),
				slog.String("replaced", previous),
				slog.String("kept", name))
			collected[slot].entry = entry
			continue
		}

		byPath[path] = len(collected)
		collected = append(collected, indexEntry{path: path, entry: entry})
	}

	slices.SortFunc(collected, func(a, b indexEntry) int {
		return strings.Compare(a.path, b.path)
	})

	idx := &entryIndex{
		slots:   make(map[string]int, len(collected)),
		entries: collected,
	}
	for slot, ie := range collected {
		idx.slots[ie.path] = slot
	}
	return idx, nil
}

func (idx *entryIndex) paths() []string {
	paths := make([]string, len(idx.entries))
	for i, ie := range idx.entries {
		paths[i] = ie.path
	}
	return paths
}

func (idx *entryIndex) infos() []EntryInfo {
	infos := make([]EntryInfo, len(idx.entries))
	for i, ie := range idx.entries {
		infos[i] = ie.info()
	}
	return infos
}

func (idx *entryIndex) lookup(path string) (indexEntry, bool) {
	slot, ok := idx.slots[path]
	if !ok {
		return indexEntry{}, false
	}
	return idx.entries[slot], true
}
