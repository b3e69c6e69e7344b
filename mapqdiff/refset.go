// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mapqdiff

import (
	"fmt"
	"strings"

	"github.com/grailbio/base/bitset"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// RefSet is an immutable set of reference IDs (tids) of one header.
type RefSet struct {
	nRefs int
	bits  []uintptr
	ids   []int // ascending
}

// newRefSet creates an empty set over a header with nRefs references.
func newRefSet(nRefs int) *RefSet {
	return &RefSet{
		nRefs: nRefs,
		bits:  make([]uintptr, (nRefs+bitset.BitsPerWord-1)/bitset.BitsPerWord),
	}
}

// Contains checks whether tid is in the set. It is false for any tid outside
// [0, nRefs).
func (s *RefSet) Contains(tid int) bool {
	if tid < 0 || tid >= s.nRefs {
		return false
	}
	return bitset.Test(s.bits, tid)
}

// Len returns the number of distinct tids in the set.
func (s *RefSet) Len() int { return len(s.ids) }

// IDs returns the tids in the set, in ascending order. The caller must not
// modify the result.
func (s *RefSet) IDs() []int { return s.ids }

// ParseRefNames splits a comma-separated list of reference names. Names are
// kept verbatim; an empty item is an empty name.
func ParseRefNames(list string) []string {
	return strings.Split(list, ",")
}

// ResolveRefs looks up each name in the header and returns the set of their
// tids. Repeated names are harmless. A name that is absent from the header
// yields an errors.NotExist error.
func ResolveRefs(header *sam.Header, names []string) (*RefSet, error) {
	refs := header.Refs()
	byName := make(map[string]int, len(refs))
	for _, ref := range refs {
		byName[ref.Name()] = ref.ID()
	}
	s := newRefSet(len(refs))
	for _, name := range names {
		tid, ok := byName[name]
		if !ok {
			return nil, errors.E(errors.NotExist, fmt.Sprintf("reference %q not found in the input header", name))
		}
		bitset.Set(s.bits, tid)
	}
	for tid := 0; tid < s.nRefs; tid++ {
		if bitset.Test(s.bits, tid) {
			s.ids = append(s.ids, tid)
		}
	}
	return s, nil
}

// Overlap returns the tids present in both sets, in ascending order.
func Overlap(a, b *RefSet) []int {
	var ids []int
	for _, tid := range a.ids {
		if b.Contains(tid) {
			ids = append(ids, tid)
		}
	}
	return ids
}

func logHeaderRefs(header *sam.Header) {
	refs := header.Refs()
	log.Printf("target_count: %d", len(refs))
	for _, ref := range refs {
		log.Printf("tid %d = %q", ref.ID(), ref.Name())
	}
}

func logRefSet(label string, header *sam.Header, s *RefSet) {
	refs := header.Refs()
	for _, tid := range s.IDs() {
		log.Printf("%s: resolved tid is %d for %q", label, tid, refs[tid].Name())
	}
}
