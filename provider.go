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

// Package archivestream exposes the entries of a ZIP archive as a virtual,
// path-addressable file system. Entry data is decompressed into memory on
// open, so every returned stream supports seeking and, when requested,
// in-place writes that are never persisted back to the archive.
//
// A Provider opens its archive lazily on first use, at most once, under a
// lock: concurrent first calls are safe and parse the archive a single time.
// If opening fails the error is kept and returned by every later call.
package archivestream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ZaparooProject/go-archivestream/archive"
	"github.com/ZaparooProject/go-archivestream/internal/memstream"
)

// Stream is the random-access stream returned by OpenStream.
type Stream = memstream.Stream

// Provider serves streams for the entries of one archive.
type Provider struct {
	file       File
	opener     archive.Opener
	logger     *slog.Logger
	initErr    error
	src        *source
	reader     archive.Reader
	index      *entryIndex
	streams    map[*memstream.Stream]struct{}
	scheme     string
	duplicates DuplicatePolicy
	initMu     sync.Mutex // guards initErr, src, reader, index
	mu         sync.Mutex // guards streams, disposed
	disposed   bool
}

// New returns a provider for the archive behind file. Virtual paths are
// rooted at scheme. The file is borrowed and never closed by the provider.
func New(scheme string, file File, opts ...Option) *Provider {
	p := &Provider{
		file:    file,
		scheme:  scheme,
		opener:  archive.OpenZIP,
		logger:  slog.New(slog.DiscardHandler),
		streams: make(map[*memstream.Stream]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scheme returns the root of the provider's virtual paths.
func (p *Provider) Scheme() string { return p.scheme }

// ListEntries returns every virtual path in ascending lexicographic order.
func (p *Provider) ListEntries(ctx context.Context) ([]string, error) {
	idx, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.paths(), nil
}

// Entries returns metadata for every entry, ordered like ListEntries.
func (p *Provider) Entries(ctx context.Context) ([]EntryInfo, error) {
	idx, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.infos(), nil
}

// Lookup returns metadata for path without decompressing it.
func (p *Provider) Lookup(ctx context.Context, path string) (EntryInfo, bool, error) {
	idx, err := p.ensureIndex(ctx)
	if err != nil {
		return EntryInfo{}, false, err
	}
	ie, ok := idx.lookup(path)
	if !ok {
		return EntryInfo{}, false, nil
	}
	return ie.info(), true, nil
}

// OpenStream decompresses the entry at path into a new in-memory stream.
// A path that is not in the archive yields a nil stream and a nil error.
// The stream accepts writes only if mode includes Write; writes are never
// visible to other streams or persisted to the archive.
func (p *Provider) OpenStream(ctx context.Context, path string, mode AccessMode) (*Stream, error) {
	idx, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	ie, ok := idx.lookup(path)
	if !ok {
		p.logger.Debug("entry not found", slog.String("path", path))
		return nil, nil
	}

	data, err := archive.ReadEntry(ie.entry)
	if err != nil {
		return nil, &EntryError{Path: path, Err: err}
	}

	stream := memstream.New(data, mode.CanWrite())

	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		_ = stream.Close()
		return nil, ErrDisposed
	}
	p.streams[stream] = struct{}{}
	p.mu.Unlock()

	p.logger.Debug("stream opened",
		slog.String("path", path),
		slog.String("mode", mode.String()),
		slog.Int64("size", ie.entry.Size()))

	return stream, nil
}

// CloseStream closes a stream returned by OpenStream and stops tracking it.
// Streams that are not tracked, including nil and already closed ones, are
// ignored.
func (p *Provider) CloseStream(stream *Stream) error {
	if stream == nil {
		return nil
	}

	p.mu.Lock()
	_, ok := p.streams[stream]
	delete(p.streams, stream)
	p.mu.Unlock()

	if !ok {
		return nil
	}

	p.logger.Debug("stream closed")
	return stream.Close() //nolint:wrapcheck // memstream close never fails
}

// OpenStreams returns the number of tracked streams.
func (p *Provider) OpenStreams() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.streams)
}

// Dispose releases the archive and closes every tracked stream. It keeps
// going past failures and returns them joined. Only the first call has any
// effect; the provider cannot be used afterwards.
func (p *Provider) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true
	streams := p.streams
	p.streams = make(map[*memstream.Stream]struct{})
	p.mu.Unlock()

	// Waits for an initialization in flight, which will see disposed on its
	// next call.
	p.initMu.Lock()
	reader, src := p.reader, p.src
	p.reader, p.src, p.index = nil, nil, nil
	p.initMu.Unlock()

	var errs []error
	if reader != nil {
		if err := reader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	if src != nil {
		if err := src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive source: %w", err))
		}
	}
	for stream := range streams {
		if err := stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		p.logger.Warn("dispose finished with errors", slog.Any("error", err))
	} else {
		p.logger.Debug("disposed", slog.String("scheme", p.scheme), slog.Int("streams", len(streams)))
	}
	return err
}

func (p *Provider) isDisposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.disposed
}

func (p *Provider) ensureIndex(ctx context.Context) (*entryIndex, error) {
	p.initMu.Lock()
	defer p.initMu.Unlock()

	if p.isDisposed() {
		return nil, ErrDisposed
	}
	if p.initErr != nil {
		return nil, p.initErr
	}
	if p.index != nil {
		return p.index, nil
	}

	if err := p.initialize(ctx); err != nil {
		p.initErr = &InitError{Scheme: p.scheme, Err: err}
		p.logger.Debug("open archive failed", slog.String("scheme", p.scheme), slog.Any("error", err))
		return nil, p.initErr
	}
	return p.index, nil
}

// initialize opens the archive and builds the index. Callers hold initMu.
func (p *Provider) initialize(ctx context.Context) error {
	rsc, err := p.file.Open(ctx, Read)
	if err != nil {
		return fmt.Errorf("open archive file: %w", err)
	}

	src, err := newSource(rsc)
	if err != nil {
		_ = rsc.Close()
		return err
	}

	reader, err := p.opener(src, src.size)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("parse archive: %w", err)
	}

	idx, err := buildIndex(p.scheme, reader.Entries(), p.duplicates, p.logger)
	if err != nil {
		_ = reader.Close()
		_ = src.Close()
		return err
	}

	p.src, p.reader, p.index = src, reader, idx
	p.logger.Debug("archive opened",
		slog.String("scheme", p.scheme),
		slog.Int64("size", src.size),
		slog.Int("entries", len(idx.entries)))
	return nil
}
