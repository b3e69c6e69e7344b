// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bamprovider

import (
	"strings"

	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// ProviderOpts defines options for NewProvider.
type ProviderOpts struct {
	// FileType overrides the type detected from the path. Unknown means
	// autodetect.
	FileType FileType
}

// Provider gives sequential access to the records of a BAM or SAM file, in
// the order they are stored. Thread compatible.
type Provider interface {
	// GetHeader returns the header for the provided data. The callee must not
	// modify the returned header object.
	//
	// REQUIRES: Close has not been called.
	GetHeader() (*sam.Header, error)

	// NewIterator returns an iterator over all records in file order. At most
	// one iterator may be active at a time.
	//
	// REQUIRES: Close has not been called.
	NewIterator() Iterator

	// Close must be called exactly once. It returns any error encountered
	// by the provider, or any iterator created by the provider.
	//
	// REQUIRES: All the iterators created by NewIterator have been closed.
	Close() error
}

// Iterator iterates over sam.Records in file order.
type Iterator interface {
	// Scan returns where there are any records remaining in the iterator,
	// and if so, advances the iterator to the next record. If an error
	// occurs, Scan() returns false and the error can be retrieved by
	// calling Err().
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Record returns the current record in the iterator. This must be
	// called only after a call to Scan() returns true. The caller owns the
	// record and may hand it back with sam.PutInFreePool once done. Name and
	// the other variable-length fields may alias the record's buffer, so they
	// must be copied before the record is returned to the pool.
	//
	// REQUIRES: Close has not been called.
	Record() *sam.Record

	// Err returns the error encoutered during iteration, or nil if no error
	// occurred.  An io.EOF error will be translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// FileType represents the type of a BAM-like file.
type FileType int

const (
	// Unknown is a sentinel.
	Unknown FileType = iota
	// BAM file
	BAM
	// SAM is a plain-text SAM file.
	SAM
	// SAMGzip is a gzip-compressed SAM file.
	SAMGzip
)

// ParseFileType parses the file type string. "bam" returns bamprovider.BAM, for
// example. On error, it returns Unknown.
func ParseFileType(name string) FileType {
	switch name {
	case "bam":
		return BAM
	case "sam":
		return SAM
	case "sam.gz":
		return SAMGzip
	default:
		return Unknown
	}
}

// GuessFileType returns the file type from the pathname. Returns Unknown if
// the extension is not recognized.
func GuessFileType(path string) FileType {
	switch {
	case strings.HasSuffix(path, ".bam"):
		return BAM
	case strings.HasSuffix(path, ".sam"):
		return SAM
	case strings.HasSuffix(path, ".sam.gz"):
		return SAMGzip
	}
	vlog.VI(1).Infof("%v: could not detect file type.", path)
	return Unknown
}

func mergeOpts(optList []ProviderOpts) ProviderOpts {
	opts := ProviderOpts{}
	for _, o := range optList {
		if o.FileType != Unknown {
			opts.FileType = o.FileType
		}
	}
	return opts
}

// NewProvider creates a Provider object that can handle a BAM or SAM file at
// "path". Path "-" reads from the standard input. The file type is
// autodetected from the path unless set in the options; unrecognized paths
// are read as BAM.
func NewProvider(path string, optList ...ProviderOpts) Provider {
	opts := mergeOpts(optList)
	fileType := opts.FileType
	if fileType == Unknown {
		fileType = GuessFileType(path)
	}
	switch fileType {
	case BAM, Unknown:
		return &BAMProvider{Path: path}
	case SAM:
		return &SAMProvider{Path: path}
	case SAMGzip:
		return &SAMProvider{Path: path, Gzip: true}
	}
	panic("shouldn't reach here")
}

// failedIterator is handed out when a provider cannot produce records. It
// never yields a record and reports err from both Err and Close.
type failedIterator struct {
	err    error
	closed bool
}

// NewErrorIterator returns an Iterator whose first Scan returns false and
// whose Err and Close return err.
func NewErrorIterator(err error) Iterator {
	return &failedIterator{err: err}
}

func (i *failedIterator) Scan() bool {
	if i.closed {
		vlog.Fatal("Reusing iterator")
	}
	return false
}

// Record always returns nil, since Scan never succeeds.
func (i *failedIterator) Record() *sam.Record { return nil }

func (i *failedIterator) Err() error { return i.err }

func (i *failedIterator) Close() error {
	if i.closed {
		vlog.Fatal("Closing iterator twice")
	}
	i.closed = true
	return i.err
}
