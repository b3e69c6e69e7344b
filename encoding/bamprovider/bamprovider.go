// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"io"
	"sync"

	baseerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for BAM files. Path may name any file
// readable through github.com/grailbio/base/file, or "-" for stdin.
type BAMProvider struct {
	// Path of the *.bam file. Must be nonempty.
	Path string
	err  baseerrors.Once

	mu     sync.Mutex
	in     *input
	reader *bam.Reader
	header *sam.Header
	iters  iterState
}

type bamIterator struct {
	provider *BAMProvider
	reader   *bam.Reader
	err      error
	next     *sam.Record
	active   bool
}

// open lazily opens the file and decodes the header. REQUIRES: b.mu is held.
func (b *BAMProvider) open() error {
	if b.reader != nil {
		return nil
	}
	if err := b.err.Err(); err != nil {
		return err
	}
	in, err := openInput(b.Path)
	if err != nil {
		b.err.Set(err)
		return err
	}
	reader, err := bam.NewReader(in.r, 1)
	if err != nil {
		err = errors.Wrapf(err, "%v: failed to open BAM", b.Path)
		b.err.Set(err)
		b.err.Set(in.close())
		return err
	}
	b.in = in
	b.reader = reader
	b.header = reader.Header()
	return nil
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.open(); err != nil {
		return nil, err
	}
	return b.header, nil
}

// NewIterator implements the Provider interface. The BAM stream is read once,
// so only the first call yields records.
func (b *BAMProvider) NewIterator() Iterator {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.open(); err != nil {
		return NewErrorIterator(err)
	}
	if err := b.iters.acquire(b.Path, "BAM"); err != nil {
		return NewErrorIterator(err)
	}
	return &bamIterator{provider: b, reader: b.reader, active: true}
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.iters.checkIdle(b.Path)
	if b.reader != nil {
		b.err.Set(b.reader.Close())
		b.reader = nil
	}
	if b.in != nil {
		b.err.Set(b.in.close())
		b.in = nil
	}
	return b.err.Err()
}

func (b *BAMProvider) freeIterator(i *bamIterator) {
	b.mu.Lock()
	b.iters.release(b.Path)
	b.mu.Unlock()
	b.err.Set(i.Err())
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
	if !i.active {
		vlog.Fatal("Reusing iterator")
	}
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	if i.err != nil {
		i.next = nil
		if i.err != io.EOF {
			i.err = errors.Wrapf(i.err, "%v: failed to read BAM record", i.provider.Path)
		}
		return false
	}
	return true
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record {
	return i.next
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	if !i.active {
		vlog.Fatal("Closing iterator twice")
	}
	i.active = false
	err := i.Err()
	i.provider.freeIterator(i)
	return err
}
