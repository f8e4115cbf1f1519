// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offsetfmt reads the CSV exports consumed by the clocksd
// analysis tool.
//
// Two layouts exist. The histogram export carries pre-aggregated
// (rtt, count, offset) rows pulled from the Cobalt time metrics; the
// sample export carries per-estimate rows produced by the httpdate
// sampler. Both readers are modeled on bufio.Scanner: Scan advances
// to the next well-formed row and the caller retrieves it with Record
// or Sample. Rows the exports are known to contain but that carry no
// data (column headers, null markers, malformed rows) are skipped,
// not reported as errors.
package offsetfmt

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// A HistogramRecord is one cell of the histogram export, already
// translated to zero-based bucket indexes.
type HistogramRecord struct {
	RTTBucket    int
	OffsetBucket int
	Count        int
}

// A HistogramReader reads the histogram export, whose rows are
// rtt_raw,bucket_count,cobalt_offset_bucket.
//
// The zero value of HistogramReader is a valid reader, but the user
// must call Reset before using it.
type HistogramReader struct {
	s       *bufio.Scanner
	buckets Buckets
	rec     HistogramRecord
	err     error
}

// NewHistogramReader constructs a reader that parses the histogram
// export from r, translating bucket encodings according to buckets.
func NewHistogramReader(r io.Reader, buckets Buckets) *HistogramReader {
	reader := new(HistogramReader)
	reader.Reset(r, buckets)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *HistogramReader) Reset(ior io.Reader, buckets Buckets) {
	r.s = bufio.NewScanner(ior)
	r.buckets = buckets
	r.err = nil
}

// Scan advances the reader to the next record and returns true if a
// record was read. The caller should use the Record method to get the
// record. If an I/O error occurs, or this reaches the end of the
// input, it returns false and the caller should use the Err method to
// check for errors.
func (r *HistogramReader) Scan() bool {
	for r.s.Scan() {
		line := r.s.Text()
		// The export begins with a column header row.
		if strings.Contains(line, "bucket_count") {
			continue
		}
		// Rows with no bucket data come through as explicit nulls.
		if strings.Contains(line, "null") {
			continue
		}
		rec, ok := parseHistogramLine(line, r.buckets)
		if !ok {
			continue
		}
		r.rec = rec
		return true
	}
	r.err = r.s.Err()
	return false
}

func parseHistogramLine(line string, buckets Buckets) (rec HistogramRecord, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return rec, false
	}
	rawRTT, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return rec, false
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil || count < 0 {
		return rec, false
	}
	rawOffset, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return rec, false
	}
	rtt, ok := buckets.RTTIndex(rawRTT)
	if !ok {
		return rec, false
	}
	offset, ok := buckets.OffsetIndex(rawOffset)
	if !ok {
		return rec, false
	}
	return HistogramRecord{RTTBucket: rtt, OffsetBucket: offset, Count: count}, true
}

// Record returns the last record read.
func (r *HistogramReader) Record() HistogramRecord {
	return r.rec
}

// Err returns the first I/O error that was encountered by the reader.
func (r *HistogramReader) Err() error {
	return r.err
}

// ReadHistogramRecords reads every record from ior.
func ReadHistogramRecords(ior io.Reader, buckets Buckets) ([]HistogramRecord, error) {
	r := NewHistogramReader(ior, buckets)
	var recs []HistogramRecord
	for r.Scan() {
		recs = append(recs, r.Record())
	}
	return recs, r.Err()
}
