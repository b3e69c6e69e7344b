// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mapqdiff

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/mapqdiff/encoding/bamprovider"
)

// unavailableMapQ is the MAPQ value that the SAM format reserves for "not available".
const unavailableMapQ = 255

// ctxCheckInterval is the number of records between two cancellation checks.
const ctxCheckInterval = 1 << 16

// Opts configures Run.
type Opts struct {
	// Set1Prefix and Set2Prefix are embedded in the output column names.
	Set1Prefix, Set2Prefix string
	// Set1Refs and Set2Refs are the reference names that make up each set.
	Set1Refs, Set2Refs []string
}

// Stats are the record counters of one run.
type Stats struct {
	// NumValid is the number of records aligned to set1 or set2. It equals the
	// sum of both count columns over all rows.
	NumValid int64
	// NumUnmapped is the number of records with tid -1 or MAPQ 255.
	NumUnmapped int64
	// NumOutside is the number of records aligned to a reference in neither set.
	NumOutside int64
}

// Class is the outcome of classifying one record.
type Class int

const (
	// ClassUnmapped records are unmapped or lack a MAPQ.
	ClassUnmapped Class = iota
	// ClassSet1 records are aligned to a reference in set1.
	ClassSet1
	// ClassSet2 records are aligned to a reference in set2 but not set1.
	ClassSet2
	// ClassOutside records are aligned to a reference in neither set.
	ClassOutside
)

// Classify decides how a record with the given tid and MAPQ is treated, for a
// header with nRefs references. Set1 wins over set2 when the sets overlap. A
// tid other than -1 outside [0, nRefs) is an errors.Integrity error, unless
// the record is already skipped as unmapped.
func Classify(tid int, mapq uint8, nRefs int, set1, set2 *RefSet) (Class, error) {
	switch {
	case tid == -1 || mapq == unavailableMapQ:
		return ClassUnmapped, nil
	case tid < 0 || tid >= nRefs:
		return ClassUnmapped, errors.E(errors.Integrity,
			fmt.Sprintf("unexpected tid %d (header declares %d references)", tid, nRefs))
	case set1.Contains(tid):
		return ClassSet1, nil
	case set2.Contains(tid):
		return ClassSet2, nil
	}
	return ClassOutside, nil
}

// Run scans every record of the provider once and writes one CSV row per
// group of same-named records to out. It always closes the provider. The
// provider must yield records in name-sorted order.
func Run(ctx context.Context, provider bamprovider.Provider, opts Opts, out io.Writer) (stats Stats, err error) {
	defer func() {
		if e := provider.Close(); e != nil && err == nil {
			err = e
		}
	}()
	header, err := provider.GetHeader()
	if err != nil {
		return
	}
	logHeaderRefs(header)
	set1, err := ResolveRefs(header, opts.Set1Refs)
	if err != nil {
		return
	}
	set2, err := ResolveRefs(header, opts.Set2Refs)
	if err != nil {
		return
	}
	logRefSet("set1", header, set1)
	logRefSet("set2", header, set2)
	for _, tid := range Overlap(set1, set2) {
		log.Printf("tid %d (%q) is in both sets; its alignments count toward set1",
			tid, header.Refs()[tid].Name())
	}

	w := NewCSVWriter(out, opts.Set1Prefix, opts.Set2Prefix)
	if err = w.WriteHeader(); err != nil {
		return
	}
	s := &scanner{
		nRefs:   len(header.Refs()),
		set1:    set1,
		set2:    set2,
		reducer: NewReducer(w.WriteRow),
	}
	iter := provider.NewIterator()
	defer func() {
		if e := iter.Close(); e != nil && err == nil {
			err = e
		}
	}()
	for n := 0; iter.Scan(); n++ {
		if n%ctxCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}
		rec := iter.Record()
		err = s.add(rec)
		sam.PutInFreePool(rec)
		if err != nil {
			return
		}
	}
	if err = iter.Err(); err != nil {
		return
	}
	if err = s.reducer.Flush(); err != nil {
		return
	}
	s.stats.NumValid = s.reducer.NumValid()
	stats = s.stats
	log.Printf("# valid alignments: %d", stats.NumValid)
	log.Printf("# unmapped reads: %d", stats.NumUnmapped)
	log.Printf("# alignments outside specified sets: %d", stats.NumOutside)
	err = w.Flush()
	return
}

// scanner holds the state of one Run.
type scanner struct {
	nRefs      int
	set1, set2 *RefSet
	reducer    *Reducer
	stats      Stats
}

func (s *scanner) add(rec *sam.Record) error {
	if !utf8.ValidString(rec.Name) {
		return errors.E(errors.Invalid, fmt.Sprintf("query name %q is not valid UTF-8", rec.Name))
	}
	class, err := Classify(rec.Ref.ID(), rec.MapQ, s.nRefs, s.set1, s.set2)
	if err != nil {
		return errors.E(err, fmt.Sprintf("record %q", rec.Name))
	}
	switch class {
	case ClassUnmapped:
		s.stats.NumUnmapped++
	case ClassOutside:
		s.stats.NumOutside++
	case ClassSet1:
		return s.reducer.Observe(rec.Name, rec.MapQ, Set1)
	case ClassSet2:
		return s.reducer.Observe(rec.Name, rec.MapQ, Set2)
	}
	return nil
}
