// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetstat

import (
	"math"

	"clocksd/offsetfmt"
)

// SigmaOptions configures SigmaGrid.
type SigmaOptions struct {
	// NumBins is the number of rows and columns in the grid.
	NumBins int

	// BoundBinSize and DeltaBinSize are the widths, in
	// nanoseconds, of one bound-size column and one average-delta
	// row.
	BoundBinSize int64
	DeltaBinSize int64
}

// DefaultSigmaOptions matches the httpdate analysis defaults: a 12x12
// grid of 100ms bound-size columns and 2ms average-delta rows.
var DefaultSigmaOptions = SigmaOptions{
	NumBins:      12,
	BoundBinSize: 100_000_000,
	DeltaBinSize: 2_000_000,
}

// SigmaGrid buckets samples by average poll delta (rows) and bound
// size (columns) and returns the root mean square estimate error of
// each cell, in seconds. Samples beyond the edge of the grid are
// dropped; cells with no samples are zero.
func SigmaGrid(samples []offsetfmt.Sample, opts SigmaOptions) [][]float64 {
	const nanosPerSecond = 1e9

	type cell struct {
		sumSq float64
		n     int
	}
	cells := make([][]cell, opts.NumBins)
	for i := range cells {
		cells[i] = make([]cell, opts.NumBins)
	}
	for _, s := range samples {
		deltaBin := s.DeltaAvg / opts.DeltaBinSize
		boundBin := s.BoundSize / opts.BoundBinSize
		if deltaBin < 0 || deltaBin >= int64(opts.NumBins) || boundBin < 0 || boundBin >= int64(opts.NumBins) {
			continue
		}
		err := float64(s.Error)
		c := &cells[deltaBin][boundBin]
		c.sumSq += err * err
		c.n++
	}

	grid := make([][]float64, opts.NumBins)
	for i := range grid {
		grid[i] = make([]float64, opts.NumBins)
		for j, c := range cells[i] {
			if c.n > 0 {
				grid[i][j] = math.Sqrt(c.sumSq/float64(c.n)) / nanosPerSecond
			}
		}
	}
	return grid
}
