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

package archive_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"go.uber.org/goleak"

	"github.com/ZaparooProject/go-archivestream/archive"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testFile struct {
	name    string
	content []byte
	method  uint16
}

// createTestZIP builds a ZIP archive in memory with the given files.
func createTestZIP(t *testing.T, files []testFile) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(archive.MethodZstd, zstd.ZipCompressor(zstd.WithEncoderConcurrency(1)))
	writer.RegisterCompressor(archive.MethodXZ, func(w io.Writer) (io.WriteCloser, error) {
		return xz.NewWriter(w)
	})
	writer.RegisterCompressor(archive.MethodZstdPK, zstd.ZipCompressor(zstd.WithEncoderConcurrency(1)))

	for _, file := range files {
		fileWriter, err := writer.CreateHeader(&zip.FileHeader{Name: file.name, Method: file.method})
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

func openTestZIP(t *testing.T, files []testFile) archive.Reader {
	t.Helper()

	data := createTestZIP(t, files)
	reader, err := archive.OpenZIP(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })
	return reader
}

func TestOpenZIP_Entries(t *testing.T) {
	t.Parallel()

	files := []testFile{
		{name: "game.gba", content: make([]byte, 100), method: archive.MethodDeflate},
		{name: "readme.txt", content: []byte("readme")},
		{name: "folder/"},
		{name: "folder/file.x", content: []byte("nested"), method: archive.MethodDeflate},
	}
	reader := openTestZIP(t, files)

	entries := reader.Entries()
	if len(entries) != len(files) {
		t.Fatalf("got %d entries, want %d", len(entries), len(files))
	}

	for i, entry := range entries {
		file := files[i]
		if entry.Name() != file.name {
			t.Errorf("entry %d: got name %q, want %q", i, entry.Name(), file.name)
		}
		if entry.Size() != int64(len(file.content)) {
			t.Errorf("%s: got size %d, want %d", file.name, entry.Size(), len(file.content))
		}
		if wantDir := file.name == "folder/"; entry.IsDir() != wantDir {
			t.Errorf("%s: got IsDir %v", file.name, entry.IsDir())
		}
	}

	if entries[0].CompressedSize() >= entries[0].Size() {
		t.Errorf("zeros did not compress: %d >= %d", entries[0].CompressedSize(), entries[0].Size())
	}
}

func TestOpenZIP_Methods(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("method payload "), 64)
	tests := []struct {
		name   string
		method uint16
	}{
		{"store", archive.MethodStore},
		{"deflate", archive.MethodDeflate},
		{"zstd", archive.MethodZstd},
		{"zstd-pkware", archive.MethodZstdPK},
		{"xz", archive.MethodXZ},
	}

	files := make([]testFile, 0, len(tests))
	for _, tt := range tests {
		files = append(files, testFile{name: tt.name, content: content, method: tt.method})
	}
	reader := openTestZIP(t, files)

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := archive.ReadEntry(reader.Entries()[i])
			if err != nil {
				t.Fatalf("read entry: %v", err)
			}
			if !bytes.Equal(data, content) {
				t.Error("content mismatch")
			}
		})
	}
}

func TestOpenZIP_Bzip2(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("../testdata/archive/bzip2.zip")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	reader, err := archive.OpenZIP(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = reader.Close() }()

	entries := reader.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	got, err := archive.ReadEntry(entries[0])
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	want := bytes.Repeat([]byte("bzip2 payload for the archive stream provider\n"), 4)
	if !bytes.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOpenZIP_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	writer.RegisterCompressor(99, func(w io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{w}, nil
	})
	fileWriter, err := writer.CreateHeader(&zip.FileHeader{Name: "aes.bin", Method: 99})
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	if _, err := fileWriter.Write([]byte("secret")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reader, err := archive.OpenZIP(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	_, err = reader.Entries()[0].Open()
	var methodErr archive.MethodError
	if !errors.As(err, &methodErr) {
		t.Fatalf("expected MethodError, got %T: %v", err, err)
	}
	if methodErr.Method != 99 || methodErr.Name != "aes.bin" {
		t.Errorf("unexpected MethodError %+v", methodErr)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func TestOpenZIP_InvalidData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not a zip archive")},
		{"truncated", createTestZIP(t, []testFile{{name: "a", content: []byte("a")}})[:30]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := archive.OpenZIP(bytes.NewReader(tt.data), int64(len(tt.data)))
			if !errors.Is(err, archive.ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}

			var formatErr archive.FormatError
			if !errors.As(err, &formatErr) {
				t.Errorf("expected FormatError, got %T", err)
			}
		})
	}
}

func TestReadEntry(t *testing.T) {
	t.Parallel()

	testContent := []byte("test game content for random access")
	reader := openTestZIP(t, []testFile{
		{name: "game.bin", content: testContent, method: archive.MethodDeflate},
		{name: "empty.bin"},
	})

	data, err := archive.ReadEntry(reader.Entries()[0])
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.Equal(data, testContent) {
		t.Errorf("got %q, want %q", data, testContent)
	}
	if cap(data) != len(testContent) {
		t.Errorf("buffer capacity %d, want exactly %d", cap(data), len(testContent))
	}

	empty, err := archive.ReadEntry(reader.Entries()[1])
	if err != nil {
		t.Fatalf("read empty entry: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d bytes for empty entry", len(empty))
	}
}

type sizedEntry struct {
	archive.Entry
	size int64
}

func (e sizedEntry) Size() int64 { return e.size }

func TestReadEntry_SizeMismatch(t *testing.T) {
	t.Parallel()

	reader := openTestZIP(t, []testFile{{name: "f", content: []byte("12345")}})
	entry := reader.Entries()[0]

	tests := []struct {
		wantErr error
		name    string
		size    int64
	}{
		{io.ErrUnexpectedEOF, "declared larger", 10},
		{archive.ErrEntryOverflow, "declared smaller", 3},
		{archive.ErrEntryTooLarge, "negative", -1},
		{archive.ErrEntryTooLarge, "too large", archive.MaxEntrySize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := archive.ReadEntry(sizedEntry{Entry: entry, size: tt.size})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestReadEntry_Checksum(t *testing.T) {
	t.Parallel()

	content := []byte("hello world!")
	data := createTestZIP(t, []testFile{{name: "a/b.txt", content: content}})
	offset := bytes.Index(data, content)
	if offset < 0 {
		t.Fatal("stored content not found in archive")
	}
	data[offset] ^= 0xff

	reader, err := archive.OpenZIP(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = reader.Close() }()

	_, err = archive.ReadEntry(reader.Entries()[0])
	if !errors.Is(err, zip.ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestOpenZIP_DirectoryEntry(t *testing.T) {
	t.Parallel()

	reader := openTestZIP(t, []testFile{{name: "a/"}, {name: "a/b.txt", content: []byte("b")}})

	dir := reader.Entries()[0]
	if !dir.IsDir() {
		t.Fatal("expected directory entry")
	}
	data, err := archive.ReadEntry(dir)
	if err != nil {
		t.Fatalf("read directory: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("got %d bytes for directory", len(data))
	}
}

func TestIsZIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"archive", createTestZIP(t, []testFile{{name: "a"}})[:4], true},
		{"empty archive", createTestZIP(t, nil)[:4], true},
		{"spanned", []byte{'P', 'K', 0x07, 0x08}, true},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, false},
		{"short", []byte("PK"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := archive.IsZIP(tt.header); got != tt.want {
				t.Errorf("IsZIP(%x) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
