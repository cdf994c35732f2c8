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
	"path/filepath"
	"strings"
)

var supportedExtensions = []string{".zip"}

// SupportedExtensions returns the file extensions a router should hand to
// this provider.
func SupportedExtensions() []string {
	return append([]string(nil), supportedExtensions...)
}

// IsSupportedExtension checks if ext (with the leading dot) is handled by
// this provider.
func IsSupportedExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supported := range supportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Path is a host path split into the archive file and a path inside it.
type Path struct {
	ArchivePath  string // Path to the archive file
	InternalPath string // '/' separated path inside the archive, empty for the archive itself
}

// ParsePath splits paths like "games/pack.zip/roms/a.bin". It returns nil
// when path neither is nor points inside a supported archive. Existence is
// not checked.
func ParsePath(path string) *Path {
	normalized := filepath.ToSlash(path)
	lower := strings.ToLower(normalized)

	for _, ext := range supportedExtensions {
		idx := strings.Index(lower, ext+"/")
		if idx == -1 {
			continue
		}
		return &Path{
			ArchivePath:  filepath.FromSlash(normalized[:idx+len(ext)]),
			InternalPath: strings.TrimPrefix(normalized[idx+len(ext)+1:], "/"),
		}
	}

	if IsSupportedExtension(filepath.Ext(normalized)) {
		return &Path{ArchivePath: path}
	}
	return nil
}

// Scheme derives a scheme from an archive file name: its base name without
// the extension.
func Scheme(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
