// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bamprovider provides sequential readers over BAM and SAM files.
//
// The Provider is an interface that exposes the file header and an Iterator
// that yields records in the order they are stored, so that name-sorted input
// stays name-sorted. NewFakeProvider serves in-memory records for tests.
package bamprovider
