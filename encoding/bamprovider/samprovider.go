// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"io"
	"sync"

	baseerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// SAMProvider implements Provider for text SAM files, optionally
// gzip-compressed.
type SAMProvider struct {
	// Path of the SAM file, or "-" for stdin. Must be nonempty.
	Path string
	// Gzip causes the input to be decompressed before parsing.
	Gzip bool
	err  baseerrors.Once

	mu     sync.Mutex
	in     *input
	gz     *gzip.Reader
	reader *sam.Reader
	iters  iterState
}

type samIterator struct {
	provider *SAMProvider
	err      error
	next     *sam.Record
	active   bool
}

func (b *SAMProvider) open() error {
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
	b.in = in
	r := in.r
	if b.Gzip {
		if b.gz, err = gzip.NewReader(r); err != nil {
			err = errors.Wrapf(err, "%v: failed to open gzip stream", b.Path)
			b.err.Set(err)
			return err
		}
		r = b.gz
	}
	if b.reader, err = sam.NewReader(r); err != nil {
		err = errors.Wrapf(err, "%v: failed to open SAM", b.Path)
		b.err.Set(err)
		return err
	}
	return nil
}

// GetHeader implements the Provider interface.
func (b *SAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.open(); err != nil {
		return nil, err
	}
	return b.reader.Header(), nil
}

// NewIterator implements the Provider interface.
func (b *SAMProvider) NewIterator() Iterator {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.open(); err != nil {
		return NewErrorIterator(err)
	}
	if err := b.iters.acquire(b.Path, "SAM"); err != nil {
		return NewErrorIterator(err)
	}
	return &samIterator{provider: b, active: true}
}

// Close implements the Provider interface.
func (b *SAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.iters.checkIdle(b.Path)
	if b.gz != nil {
		b.err.Set(b.gz.Close())
		b.gz = nil
	}
	if b.in != nil {
		b.err.Set(b.in.close())
		b.in = nil
	}
	b.reader = nil
	return b.err.Err()
}

func (b *SAMProvider) freeIterator(i *samIterator) {
	b.mu.Lock()
	b.iters.release(b.Path)
	b.mu.Unlock()
	b.err.Set(i.Err())
}

// Scan implements the Iterator interface.
func (i *samIterator) Scan() bool {
	if !i.active {
		vlog.Fatal("Reusing iterator")
	}
	if i.err != nil {
		return false
	}
	i.next, i.err = i.provider.reader.Read()
	if i.err != nil {
		i.next = nil
		if i.err != io.EOF {
			i.err = errors.Wrapf(i.err, "%v: failed to read SAM record", i.provider.Path)
		}
		return false
	}
	return true
}

// Record implements the Iterator interface.
func (i *samIterator) Record() *sam.Record { return i.next }

// Err implements the Iterator interface.
func (i *samIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *samIterator) Close() error {
	if !i.active {
		vlog.Fatal("Closing iterator twice")
	}
	i.active = false
	err := i.Err()
	i.provider.freeIterator(i)
	return err
}
