// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetstat

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

// A DeviationEntry records the dispersion of one pairwise conflation:
// the distribution of RTT bucket RTT1 conflated with that of RTT2 at
// the given shift. SD is in the bin width's units.
type DeviationEntry struct {
	RTT1  int
	RTT2  int
	Shift int
	SD    float64
}

// A DeviationTable is the flat result of a full pairwise conflation
// sweep, ordered by (RTT1, RTT2, Shift).
type DeviationTable struct {
	Entries []DeviationEntry
}

// SweepDeviations conflates every ordered pair of distributions,
// including each distribution with itself, at every shift in
// [minShift, maxShift) and records the resulting standard deviation.
// minShift must be at least 1; non-positive shifts model no gap and
// degenerate to clipped or empty windows.
//
// Pairs are computed in parallel, but the returned table is always in
// (RTT1, RTT2, Shift) order.
func SweepDeviations(dists map[int]*Distribution, minShift, maxShift int) (*DeviationTable, error) {
	if minShift < 1 {
		return nil, fmt.Errorf("min shift %d, must be at least 1", minShift)
	}
	if maxShift <= minShift {
		return nil, fmt.Errorf("empty shift range [%d,%d)", minShift, maxShift)
	}

	ids := make([]int, 0, len(dists))
	for id := range dists {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	type pair struct{ i, j int }
	pairs := make(chan pair)
	out := make([][]DeviationEntry, len(ids)*len(ids))
	errs := make([]error, len(ids)*len(ids))

	var wg sync.WaitGroup
	for w := 0; w < runtime.GOMAXPROCS(0); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range pairs {
				rtt1, rtt2 := ids[p.i], ids[p.j]
				d1, d2 := dists[rtt1], dists[rtt2]
				entries := make([]DeviationEntry, 0, maxShift-minShift)
				var err error
				for shift := minShift; shift < maxShift; shift++ {
					var cd *Distribution
					cd, err = d1.Conflate(d2, shift)
					if err != nil {
						err = fmt.Errorf("conflating rtt buckets %d and %d at shift %d: %w", rtt1, rtt2, shift, err)
						break
					}
					entries = append(entries, DeviationEntry{RTT1: rtt1, RTT2: rtt2, Shift: shift, SD: cd.StdDev()})
				}
				out[p.i*len(ids)+p.j] = entries
				errs[p.i*len(ids)+p.j] = err
			}
		}()
	}
	for i := range ids {
		for j := range ids {
			pairs <- pair{i, j}
		}
	}
	close(pairs)
	wg.Wait()

	table := new(DeviationTable)
	for k, entries := range out {
		if errs[k] != nil {
			return nil, errs[k]
		}
		table.Entries = append(table.Entries, entries...)
	}
	return table, nil
}

// Slice returns the dense (RTT1, RTT2) dispersion grid at a fixed
// shift. The grid is indexed [rtt1][rtt2] and sized to the largest
// bucket index in the table; cells with no entry at this shift are
// zero.
func (t *DeviationTable) Slice(shift int) [][]float64 {
	n := 0
	for _, e := range t.Entries {
		if e.RTT1 >= n {
			n = e.RTT1 + 1
		}
		if e.RTT2 >= n {
			n = e.RTT2 + 1
		}
	}
	grid := make([][]float64, n)
	for i := range grid {
		grid[i] = make([]float64, n)
	}
	for _, e := range t.Entries {
		if e.Shift == shift {
			grid[e.RTT1][e.RTT2] = e.SD
		}
	}
	return grid
}

// SDRange returns the smallest and largest dispersion in the table.
// Using a common range across Slice calls keeps slice heatmaps
// comparable.
func (t *DeviationTable) SDRange() (min, max float64) {
	for i, e := range t.Entries {
		if i == 0 || e.SD < min {
			min = e.SD
		}
		if i == 0 || e.SD > max {
			max = e.SD
		}
	}
	return
}
