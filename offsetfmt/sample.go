// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetfmt

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// A Sample is one row of the sample export: the error of one combined
// time estimate along with properties of the polls that produced it.
// BoundSize, DeltaAvg, DeltaMax and Error are in nanoseconds.
type Sample struct {
	Polls     int
	BoundSize int64
	DeltaAvg  int64
	DeltaMax  int64
	Error     int64
}

// A SampleReader reads the sample export, whose rows are
// polls,bound_size,delta_avg,delta_max,error.
//
// The zero value of SampleReader is a valid reader, but the user must
// call Reset before using it.
type SampleReader struct {
	s      *bufio.Scanner
	sample Sample
	err    error
}

// NewSampleReader constructs a reader that parses the sample export
// from r.
func NewSampleReader(r io.Reader) *SampleReader {
	reader := new(SampleReader)
	reader.Reset(r)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *SampleReader) Reset(ior io.Reader) {
	r.s = bufio.NewScanner(ior)
	r.err = nil
}

// Scan advances the reader to the next sample and returns true if a
// sample was read.
func (r *SampleReader) Scan() bool {
	for r.s.Scan() {
		line := r.s.Text()
		if strings.HasPrefix(line, "polls") {
			continue
		}
		sample, ok := parseSampleLine(line)
		if !ok {
			continue
		}
		r.sample = sample
		return true
	}
	r.err = r.s.Err()
	return false
}

func parseSampleLine(line string) (sample Sample, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return sample, false
	}
	polls, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return sample, false
	}
	vals := make([]int64, 4)
	for i, f := range fields[1:] {
		vals[i], err = strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return sample, false
		}
	}
	sample = Sample{
		Polls:     polls,
		BoundSize: vals[0],
		DeltaAvg:  vals[1],
		DeltaMax:  vals[2],
		Error:     vals[3],
	}
	return sample, true
}

// Sample returns the last sample read.
func (r *SampleReader) Sample() Sample {
	return r.sample
}

// Err returns the first I/O error that was encountered by the reader.
func (r *SampleReader) Err() error {
	return r.err
}

// ReadSamples reads every sample from ior.
func ReadSamples(ior io.Reader) ([]Sample, error) {
	r := NewSampleReader(ior)
	var samples []Sample
	for r.Scan() {
		samples = append(samples, r.Sample())
	}
	return samples, r.Err()
}
