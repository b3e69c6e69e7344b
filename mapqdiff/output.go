// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mapqdiff

import (
	"bufio"
	"io"
	"strconv"

	"github.com/grailbio/base/errors"
)

// DefaultBufferSize is the size of the output buffer of a CSVWriter.
const DefaultBufferSize = 1 << 20

// CSVWriter writes Rows as unquoted comma-separated lines.
type CSVWriter struct {
	w                *bufio.Writer
	prefix1, prefix2 string
	wroteHeader      bool
	line             []byte
}

// NewCSVWriter creates a writer whose column names embed the two set
// prefixes. Nothing is written until WriteHeader or WriteRow.
func NewCSVWriter(w io.Writer, prefix1, prefix2 string) *CSVWriter {
	return &CSVWriter{
		w:       bufio.NewWriterSize(w, DefaultBufferSize),
		prefix1: prefix1,
		prefix2: prefix2,
	}
}

// Header returns the header line, without the trailing newline.
func (w *CSVWriter) Header() string {
	return "read_name," +
		"top_mapq_" + w.prefix1 + ",count_" + w.prefix1 + "," +
		"top_mapq_" + w.prefix2 + ",count_" + w.prefix2 + "," +
		"abs_diff_mapq"
}

// WriteHeader writes the header line. It must be called at most once.
func (w *CSVWriter) WriteHeader() error {
	if w.wroteHeader {
		return errors.E(errors.Precondition, "CSV header already written")
	}
	w.wroteHeader = true
	_, err := w.w.WriteString(w.Header() + "\n")
	return err
}

// WriteRow writes one data line. The header is written first if it hasn't
// been yet.
func (w *CSVWriter) WriteRow(row Row) error {
	if !w.wroteHeader {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	b := append(w.line[:0], row.Name...)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(row.Max1), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(row.Count1), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(row.Max2), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(row.Count2), 10)
	b = append(b, ',')
	b = strconv.AppendInt(b, int64(row.AbsDiff()), 10)
	b = append(b, '\n')
	w.line = b
	_, err := w.w.Write(b)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (w *CSVWriter) Flush() error {
	return w.w.Flush()
}
