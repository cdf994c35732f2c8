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

// Command archivestream lists and extracts entries of a ZIP archive through
// the archive stream provider.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	archivestream "github.com/ZaparooProject/go-archivestream"
	"github.com/ZaparooProject/go-archivestream/archive"
)

const appVersion = "0.1.0"

var errUsage = errors.New("usage")

type options struct {
	input   string
	scheme  string
	cat     string
	stat    string
	json    bool
	debug   bool
	version bool
}

func main() {
	fsys := afero.NewReadOnlyFs(afero.NewOsFs())
	os.Exit(run(context.Background(), fsys, os.Args, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&opts.input, "i", "", "archive path, optionally followed by a path inside it (required)")
	flags.StringVar(&opts.scheme, "scheme", "", "root of virtual paths (archive name if omitted)")
	flags.StringVar(&opts.cat, "cat", "", "write the entry at this internal path to stdout")
	flags.StringVar(&opts.stat, "stat", "", "print metadata for the entry at this internal path")
	flags.BoolVar(&opts.json, "json", false, "output as JSON")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.version, "version", false, "print version and exit")

	flags.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: %s -i <archive.zip> [options]\n\n", args[0])
		_, _ = fmt.Fprintf(stderr, "Lists or extracts entries of a ZIP archive.\n\n")
		_, _ = fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		_, _ = fmt.Fprintf(stderr, "\nZIP compression methods: %v\n", archive.SupportedMethods)
		_, _ = fmt.Fprintf(stderr, "\nExamples:\n")
		_, _ = fmt.Fprintf(stderr, "  %s -i roms.zip\n", args[0])
		_, _ = fmt.Fprintf(stderr, "  %s -i roms.zip -cat snes/game.sfc > game.sfc\n", args[0])
		_, _ = fmt.Fprintf(stderr, "  %s -i roms.zip/snes/game.sfc -stat snes/game.sfc -json\n", args[0])
	}

	if err := flags.Parse(args[1:]); err != nil {
		return nil, errUsage
	}
	if !opts.version && opts.input == "" {
		_, _ = fmt.Fprintf(stderr, "Error: input archive required (-i)\n")
		flags.Usage()
		return nil, errUsage
	}
	return opts, nil
}

func run(ctx context.Context, fsys afero.Fs, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		_, _ = fmt.Fprintf(stdout, "archivestream version %s\n", appVersion)
		return 0
	}

	logger := newLogger(stderr, opts.debug)

	if err := execute(ctx, fsys, opts, stdout, logger); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func execute(ctx context.Context, fsys afero.Fs, opts *options, stdout io.Writer, logger *slog.Logger) error {
	path := archivestream.ParsePath(opts.input)
	if path == nil {
		return fmt.Errorf("unsupported archive %q, expected one of %v", opts.input, archivestream.SupportedExtensions())
	}
	if path.InternalPath != "" && opts.cat == "" && opts.stat == "" {
		opts.cat = path.InternalPath
	}

	if err := checkSignature(fsys, path.ArchivePath); err != nil {
		return err
	}

	scheme := opts.scheme
	if scheme == "" {
		scheme = archivestream.Scheme(path.ArchivePath)
	}

	provider := archivestream.New(scheme,
		archivestream.NewFSFile(fsys, path.ArchivePath),
		archivestream.WithLogger(logger))
	defer func() {
		if err := provider.Dispose(); err != nil {
			logger.Warn("dispose provider", slog.Any("error", err))
		}
	}()

	switch {
	case opts.stat != "":
		return statEntry(ctx, provider, archivestream.VirtualPath(scheme, opts.stat), opts.json, stdout)
	case opts.cat != "":
		return catEntry(ctx, provider, archivestream.VirtualPath(scheme, opts.cat), stdout)
	default:
		return listEntries(ctx, provider, opts.json, stdout)
	}
}

func checkSignature(fsys afero.Fs, name string) error {
	file, err := fsys.Open(name)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	header := make([]byte, 4)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read archive header: %w", err)
	}
	if !archive.IsZIP(header[:n]) {
		return archive.FormatError{Format: "ZIP", Err: errors.New("missing ZIP signature")}
	}
	return nil
}

func listEntries(ctx context.Context, provider *archivestream.Provider, asJSON bool, stdout io.Writer) error {
	if asJSON {
		entries, err := provider.Entries(ctx)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}
		return writeJSON(stdout, entries)
	}

	paths, err := provider.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	for _, p := range paths {
		_, _ = fmt.Fprintln(stdout, p)
	}
	return nil
}

func statEntry(ctx context.Context, provider *archivestream.Provider, path string, asJSON bool, stdout io.Writer) error {
	info, ok, err := provider.Lookup(ctx, path)
	if err != nil {
		return fmt.Errorf("lookup entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("entry %q not found", path)
	}

	if asJSON {
		return writeJSON(stdout, info)
	}
	_, _ = fmt.Fprintf(stdout, "Path: %s\n", info.Path)
	_, _ = fmt.Fprintf(stdout, "Name: %s\n", info.Name)
	_, _ = fmt.Fprintf(stdout, "Size: %d\n", info.Size)
	_, _ = fmt.Fprintf(stdout, "Compressed: %d\n", info.CompressedSize)
	return nil
}

func catEntry(ctx context.Context, provider *archivestream.Provider, path string, stdout io.Writer) error {
	stream, err := provider.OpenStream(ctx, path, archivestream.Read)
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	if stream == nil {
		return fmt.Errorf("entry %q not found", path)
	}
	defer func() { _ = provider.CloseStream(stream) }()

	if _, err := io.Copy(stdout, stream); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
