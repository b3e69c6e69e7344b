// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"io"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"
	"v.io/x/lib/vlog"
)

// StdinPath is the path that makes a provider read from os.Stdin.
const StdinPath = "-"

// input is an opened source file. close releases the underlying handle; it
// is a no-op for stdin.
type input struct {
	r     io.Reader
	close func() error
}

func openInput(path string) (*input, error) {
	if path == StdinPath {
		return &input{r: os.Stdin, close: func() error { return nil }}, nil
	}
	ctx := vcontext.Background()
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", path)
	}
	return &input{
		r:     f.Reader(ctx),
		close: func() error { return f.Close(ctx) },
	}, nil
}

// iterState tracks the one iterator a sequential provider may hand out.
// Callers hold the provider's lock.
type iterState struct {
	used    bool
	nActive int
}

// acquire claims the stream for a new iterator. The stream can be read only
// once, so every call after the first fails.
func (s *iterState) acquire(path, kind string) error {
	if s.used {
		return errors.Errorf("%v: %s stream already consumed by another iterator", path, kind)
	}
	s.used = true
	s.nActive++
	return nil
}

func (s *iterState) release(path string) {
	s.nActive--
	if s.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", path)
	}
}

// checkIdle aborts the process if an iterator is still open.
func (s *iterState) checkIdle(path string) {
	if s.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", s.nActive, path)
	}
}
