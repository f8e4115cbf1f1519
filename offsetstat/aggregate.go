// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetstat

import (
	"fmt"

	"clocksd/offsetfmt"
)

// An IncompleteHistogramError reports an RTT bucket whose offset
// histogram has no record for some offset bucket.
type IncompleteHistogramError struct {
	RTTBucket    int
	OffsetBucket int
}

func (e *IncompleteHistogramError) Error() string {
	return fmt.Sprintf("incomplete histogram for rtt bucket %d: no record for offset bucket %d",
		e.RTTBucket, e.OffsetBucket)
}

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	// AllowSparse accepts RTT buckets whose histograms do not
	// cover every offset bucket, treating unobserved buckets as
	// zero. By default a missing bucket is an error, since the
	// export carries a row for every bucket of every RTT group it
	// mentions.
	AllowSparse bool
}

// Aggregate groups records by RTT bucket and builds one dense
// Distribution per bucket, with bin width buckets.OffsetWidth.
// Records for the same (rtt, offset) cell are summed. The returned
// map is owned by the caller; no state survives the call.
func Aggregate(records []offsetfmt.HistogramRecord, buckets offsetfmt.Buckets, opts AggregateOptions) (map[int]*Distribution, error) {
	n := buckets.NumOffsetBins()
	type group struct {
		counts []float64
		seen   []bool
	}
	groups := make(map[int]*group)
	for _, rec := range records {
		if rec.OffsetBucket < 0 || rec.OffsetBucket >= n {
			return nil, fmt.Errorf("offset bucket %d out of range [0,%d)", rec.OffsetBucket, n)
		}
		g := groups[rec.RTTBucket]
		if g == nil {
			g = &group{counts: make([]float64, n), seen: make([]bool, n)}
			groups[rec.RTTBucket] = g
		}
		g.counts[rec.OffsetBucket] += float64(rec.Count)
		g.seen[rec.OffsetBucket] = true
	}

	dists := make(map[int]*Distribution, len(groups))
	for bucket, g := range groups {
		if !opts.AllowSparse {
			for i, ok := range g.seen {
				if !ok {
					return nil, &IncompleteHistogramError{RTTBucket: bucket, OffsetBucket: i}
				}
			}
		}
		d, err := New(g.counts, buckets.OffsetWidth)
		if err != nil {
			return nil, fmt.Errorf("rtt bucket %d: %w", bucket, err)
		}
		dists[bucket] = d
	}
	return dists, nil
}
