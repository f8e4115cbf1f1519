// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetfmt

// Buckets describes the bucket geometry of a clock-offset histogram
// export.
//
// The export encodes an RTT bucket as a positive integer starting at
// 1 and an offset bucket as a signed integer in [-HalfRange,
// HalfRange] with no zero value; underflow and overflow rows are
// stripped by the query that produces the export. Buckets translates
// both encodings to contiguous zero-based indexes.
type Buckets struct {
	// HalfRange is the number of offset buckets on each side of
	// zero. A dense offset histogram has 2*HalfRange bins.
	HalfRange int

	// RTTWidth and OffsetWidth are the real-world width, in
	// milliseconds, of one RTT bucket and one offset bucket.
	RTTWidth    float64
	OffsetWidth float64
}

// DefaultBuckets matches the Cobalt time metrics export: 100 offset
// buckets per side of zero and 10ms buckets on both axes.
var DefaultBuckets = Buckets{HalfRange: 100, RTTWidth: 10, OffsetWidth: 10}

// NumOffsetBins returns the number of bins in a dense offset
// histogram.
func (b Buckets) NumOffsetBins() int { return 2 * b.HalfRange }

// RTTIndex translates a raw RTT bucket to a zero-based index. ok is
// false if raw is not a valid RTT bucket.
func (b Buckets) RTTIndex(raw int) (idx int, ok bool) {
	if raw < 1 {
		return 0, false
	}
	return raw - 1, true
}

// OffsetIndex translates a raw signed offset bucket to a zero-based
// index in [0, NumOffsetBins()). Index HalfRange-1 is the bucket
// immediately below zero and index HalfRange the bucket immediately
// above and including zero, so the mapping leaves no gap where the
// zero crossing sat. ok is false if raw is zero or out of range.
func (b Buckets) OffsetIndex(raw int) (idx int, ok bool) {
	switch {
	case raw >= -b.HalfRange && raw <= -1:
		return raw + b.HalfRange, true
	case raw >= 1 && raw <= b.HalfRange:
		return raw + b.HalfRange - 1, true
	}
	return 0, false
}

// OffsetValue returns the signed offset, in milliseconds, of the left
// edge of dense offset bin idx.
func (b Buckets) OffsetValue(idx int) float64 {
	return float64(idx-b.HalfRange) * b.OffsetWidth
}

// RTTMid returns the midpoint, in milliseconds, of RTT bucket idx.
func (b Buckets) RTTMid(idx int) float64 {
	return (float64(idx) + 0.5) * b.RTTWidth
}

// Gap returns the time gap, in milliseconds, modeled by a conflation
// shift of shift offset bins.
func (b Buckets) Gap(shift int) float64 {
	return float64(shift) * b.OffsetWidth
}
