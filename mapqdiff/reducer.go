// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mapqdiff

import "fmt"

// SetID names one of the two reference sets.
type SetID int

const (
	// Set1 is the first reference set on the command line.
	Set1 SetID = iota
	// Set2 is the second reference set on the command line.
	Set2
)

// String implements fmt.Stringer.
func (s SetID) String() string {
	switch s {
	case Set1:
		return "set1"
	case Set2:
		return "set2"
	}
	return fmt.Sprintf("SetID(%d)", int(s))
}

// Row is the summary of one group of records sharing a query name.
type Row struct {
	Name   string
	Max1   uint8
	Count1 int
	Max2   uint8
	Count2 int
}

// AbsDiff returns |Max1 - Max2|.
func (r Row) AbsDiff() int {
	d := int(r.Max1) - int(r.Max2)
	if d < 0 {
		return -d
	}
	return d
}

// groupAcc accumulates the records of the current group.
type groupAcc struct {
	max1, max2     uint8
	count1, count2 int
	numValid       int
}

// Reducer folds accepted records into one Row per run of equal query names.
// Records must be fed in input order. Thread compatible.
type Reducer struct {
	emit func(Row) error
	// name is the query name of the current group. It is a private copy, since
	// decoders may recycle the storage behind sam.Record.Name.
	name     []byte
	acc      groupAcc
	numValid int64
}

// NewReducer creates a Reducer that passes every completed Row to emit.
func NewReducer(emit func(Row) error) *Reducer {
	return &Reducer{emit: emit}
}

// Observe adds one accepted record. If name differs from the name of the
// current group, the current group is emitted first.
func (r *Reducer) Observe(name string, mapq uint8, set SetID) error {
	if string(r.name) != name {
		if err := r.Flush(); err != nil {
			return err
		}
		r.name = append(r.name[:0], name...)
	}
	switch set {
	case Set1:
		if mapq > r.acc.max1 {
			r.acc.max1 = mapq
		}
		r.acc.count1++
	case Set2:
		if mapq > r.acc.max2 {
			r.acc.max2 = mapq
		}
		r.acc.count2++
	default:
		panic(set)
	}
	r.acc.numValid++
	r.numValid++
	return nil
}

// Flush emits the current group, if it holds any record, and resets the
// accumulator. Calling Flush twice in a row emits nothing the second time.
func (r *Reducer) Flush() error {
	if r.acc.numValid == 0 {
		return nil
	}
	row := Row{
		Name:   string(r.name),
		Max1:   r.acc.max1,
		Count1: r.acc.count1,
		Max2:   r.acc.max2,
		Count2: r.acc.count2,
	}
	r.acc = groupAcc{}
	return r.emit(row)
}

// NumValid returns the number of records observed so far, across all groups.
func (r *Reducer) NumValid() int64 { return r.numValid }
