// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
bio-mapq-diff reports, for every read template of a name-sorted BAM file, the
best mapping quality against two sets of reference sequences.

Usage:

  bio-mapq-diff [-format bam|sam|sam.gz] in.bam S1 ref1,ref2,... S2 ref3,...

The CSV goes to stdout:

  read_name,top_mapq_S1,count_S1,top_mapq_S2,count_S2,abs_diff_mapq
  r1,40,2,20,1,20

Diagnostics (reference enumeration, resolved sets and record counters) go to
stderr, one "INFO: " line each. A nonzero exit status means the CSV on stdout
is truncated.

The input must be sorted by query name, e.g. with "samtools sort -n". Use "-"
as the path to read from stdin.
*/
package main
