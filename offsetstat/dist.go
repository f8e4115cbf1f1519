// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offsetstat derives dispersion statistics from bucketed
// clock-offset measurements.
//
// The central type is Distribution, a normalized histogram over
// fixed-width bins. Distributions for individual RTT buckets are
// built with Aggregate, combined pairwise with Conflate, and the
// dispersions of the combined distributions are collected into a
// DeviationTable that feeds an ordinary least squares fit.
package offsetstat

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyDistribution is returned by New when the given weights have
// no mass to normalize.
var ErrEmptyDistribution = errors.New("distribution has no mass")

// ErrNoOverlap is returned by Conflate when the clipped product
// window is empty or carries no mass, so the result cannot be
// normalized.
var ErrNoOverlap = errors.New("conflation window has no mass")

// An IncompatibleError reports an attempt to conflate two
// distributions with different geometry.
type IncompatibleError struct {
	Bins1, Bins2   int
	Width1, Width2 float64
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("incompatible distributions: %d bins of width %v vs %d bins of width %v",
		e.Bins1, e.Width1, e.Bins2, e.Width2)
}

// A Distribution is a normalized histogram over fixed-width bins.
// Bins sums to 1 after construction. BinWidth is the real-world
// width, in milliseconds, that one index step represents.
//
// A Distribution is read-only after construction; callers must not
// modify Bins.
type Distribution struct {
	Bins     []float64
	BinWidth float64
}

// New builds a Distribution from raw non-negative bin weights,
// normalizing them once by their sum. The weights need not sum to 1
// and are not modified.
func New(bins []float64, binWidth float64) (*Distribution, error) {
	if binWidth <= 0 {
		return nil, fmt.Errorf("non-positive bin width %v", binWidth)
	}
	var total float64
	for _, q := range bins {
		total += q
	}
	if total == 0 {
		return nil, ErrEmptyDistribution
	}
	norm := make([]float64, len(bins))
	for i, q := range bins {
		norm[i] = q / total
	}
	return &Distribution{Bins: norm, BinWidth: binWidth}, nil
}

// StdDev returns the standard deviation of d in the units of
// BinWidth. Each bin's mass is treated as concentrated at the bin's
// center, index + 0.5. The mean divides by the actual bin mass
// rather than assuming it sums to 1, since a conflated distribution
// draws its mass from a clipped window.
func (d *Distribution) StdDev() float64 {
	var num, den float64
	for i, q := range d.Bins {
		num += (float64(i) + 0.5) * q
		den += q
	}
	mean := num / den

	var variance float64
	for i, q := range d.Bins {
		dist := ((float64(i) + 0.5) - mean) * d.BinWidth
		variance += q * dist * dist
	}
	return math.Sqrt(variance)
}

// Conflate returns the distribution that results from combining a
// measurement drawn from d with an independent measurement drawn from
// other whose bin grid is displaced shift bins from d's. Output bin
// idx pairs d's bin idx-shift with other's bin idx, so bin 0 of the
// result does not line up with bin 0 of either input. Pairs that
// would index outside either input are clipped, and the surviving
// product weights are renormalized into a new Distribution.
//
// If no mass survives the clipping, which happens when shift reaches
// the bin count in either direction or when the overlapping bins are
// all zero, Conflate returns ErrNoOverlap. Both inputs must have the
// same bin count and bin width. Neither input is modified.
func (d *Distribution) Conflate(other *Distribution, shift int) (*Distribution, error) {
	if len(d.Bins) != len(other.Bins) || d.BinWidth != other.BinWidth {
		return nil, &IncompatibleError{
			Bins1:  len(d.Bins),
			Bins2:  len(other.Bins),
			Width1: d.BinWidth,
			Width2: other.BinWidth,
		}
	}

	var bins []float64
	for idx := 0; idx < len(d.Bins)+shift; idx++ {
		idxInSelf := idx - shift
		idxInOther := idx
		if idxInSelf < 0 || idxInOther >= len(other.Bins) {
			continue
		}
		bins = append(bins, d.Bins[idxInSelf]*other.Bins[idxInOther])
	}

	nd, err := New(bins, d.BinWidth)
	if err != nil {
		// Either the window is empty or every product in it is
		// zero.
		return nil, ErrNoOverlap
	}
	return nd, nil
}
