// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
Package mapqdiff compares, for every read template in a name-sorted BAM file,
the best mapping quality achieved against two disjoint sets of reference
sequences.

The input is scanned once. Consecutive records that share a query name form a
group; for each group the tool reports the maximum MAPQ and the number of
alignments landing on set1 and on set2, plus the absolute difference of the two
maxima:

  read_name,top_mapq_<S1>,count_<S1>,top_mapq_<S2>,count_<S2>,abs_diff_mapq

Records that are unmapped (tid -1) or have MAPQ 255 ("not available") are
counted and skipped. Records aligned to references outside both sets are
counted and skipped as well; they never start a new group, so a template whose
alignments all fall outside the sets produces no row. A side with no accepted
alignment reports a maximum of 0.

The input must be sorted by query name. This is not verified: records of one
template that are not contiguous are reported as separate rows.

Query names are written verbatim. Names containing commas therefore break the
CSV framing.

Rows are streamed through a buffered writer. If Run returns an error, rows
already flushed may have reached the consumer; such output is truncated and
must be discarded.
*/
package mapqdiff
