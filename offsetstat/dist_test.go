// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetstat

import (
	"errors"
	"math"
	"testing"
)

func mustNew(t *testing.T, bins []float64, binWidth float64) *Distribution {
	t.Helper()
	d, err := New(bins, binWidth)
	if err != nil {
		t.Fatalf("New(%v, %v) failed: %v", bins, binWidth, err)
	}
	return d
}

func aeq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func TestNewNormalizes(t *testing.T) {
	for _, bins := range [][]float64{
		{1, 1},
		{3, 1},
		{0, 5, 0, 15},
		{0.25, 0.25, 0.5},
	} {
		d := mustNew(t, bins, 10)
		var total float64
		for _, q := range d.Bins {
			total += q
		}
		if !aeq(total, 1) {
			t.Errorf("New(%v): bins sum to %v, want 1", bins, total)
		}
	}

	d := mustNew(t, []float64{3, 1}, 10)
	if !aeq(d.Bins[0], 0.75) || !aeq(d.Bins[1], 0.25) {
		t.Errorf("New([3 1]): bins = %v, want [0.75 0.25]", d.Bins)
	}
}

func TestNewScaleInvariant(t *testing.T) {
	d1 := mustNew(t, []float64{1, 3}, 10)
	d2 := mustNew(t, []float64{2, 6}, 10)
	for i := range d1.Bins {
		if !aeq(d1.Bins[i], d2.Bins[i]) {
			t.Fatalf("bins differ at %d: %v vs %v", i, d1.Bins, d2.Bins)
		}
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New([]float64{0, 0, 0}, 10); !errors.Is(err, ErrEmptyDistribution) {
		t.Errorf("New(all zero) = %v, want ErrEmptyDistribution", err)
	}
	if _, err := New(nil, 10); !errors.Is(err, ErrEmptyDistribution) {
		t.Errorf("New(nil) = %v, want ErrEmptyDistribution", err)
	}
	if _, err := New([]float64{1}, 0); err == nil {
		t.Error("New with zero bin width succeeded")
	}
	if _, err := New([]float64{1}, -1); err == nil {
		t.Error("New with negative bin width succeeded")
	}
}

func TestStdDevPointMass(t *testing.T) {
	for _, idx := range []int{0, 3, 9} {
		for _, width := range []float64{0.5, 1, 10} {
			bins := make([]float64, 10)
			bins[idx] = 4
			d := mustNew(t, bins, width)
			if sd := d.StdDev(); sd != 0 {
				t.Errorf("point mass at %d, width %v: sd = %v, want 0", idx, width, sd)
			}
		}
	}
}

func TestStdDevKnown(t *testing.T) {
	// Two equal bins one bin apart: centers 0.5 and 1.5, mean 1,
	// deviation half a bin each way.
	d := mustNew(t, []float64{1, 1}, 2)
	if sd := d.StdDev(); !aeq(sd, 1) {
		t.Errorf("sd = %v, want 1", sd)
	}
}

func TestStdDevWidthScaling(t *testing.T) {
	bins := []float64{1, 2, 3, 4}
	base := mustNew(t, bins, 1).StdDev()
	for _, k := range []float64{0.25, 2, 10, 1000} {
		sd := mustNew(t, bins, k).StdDev()
		if !aeq(sd, k*base) {
			t.Errorf("width %v: sd = %v, want %v", k, sd, k*base)
		}
	}
}

func TestConflateShiftZero(t *testing.T) {
	a := mustNew(t, []float64{1, 3}, 1)
	b := mustNew(t, []float64{2, 2}, 1)
	c, err := a.Conflate(b, 0)
	if err != nil {
		t.Fatal(err)
	}
	// No leading or trailing truncation at shift 0: products of
	// corresponding bins, renormalized.
	if len(c.Bins) != 2 {
		t.Fatalf("got %d bins, want 2", len(c.Bins))
	}
	if !aeq(c.Bins[0], 0.25) || !aeq(c.Bins[1], 0.75) {
		t.Errorf("bins = %v, want [0.25 0.75]", c.Bins)
	}
}

func TestConflateWindow(t *testing.T) {
	// A uniform three-bin distribution conflated with itself:
	// every surviving product is equal, so the output is uniform
	// over the clipped window, whose size pins down the window
	// bounds for every shift.
	d := mustNew(t, []float64{1, 1, 1}, 1)
	for shift := -5; shift <= 5; shift++ {
		c, err := d.Conflate(d, shift)
		wantLen := 3 - shift
		if shift < 0 {
			wantLen = 3 + shift
		}
		if wantLen <= 0 {
			if !errors.Is(err, ErrNoOverlap) {
				t.Errorf("shift %d: err = %v, want ErrNoOverlap", shift, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("shift %d: %v", shift, err)
			continue
		}
		if len(c.Bins) != wantLen {
			t.Errorf("shift %d: got %d bins, want %d", shift, len(c.Bins), wantLen)
			continue
		}
		for i, q := range c.Bins {
			if !aeq(q, 1/float64(wantLen)) {
				t.Errorf("shift %d: bin %d = %v, want %v", shift, i, q, 1/float64(wantLen))
			}
		}
	}
}

func TestConflatePointMasses(t *testing.T) {
	// All mass of a at bin 0 and of b at bin 1. At shift 1 the
	// only surviving product pairs a's bin 0 with b's bin 1, at
	// output index 1, so the result is a point mass.
	a := mustNew(t, []float64{1, 0}, 10)
	b := mustNew(t, []float64{0, 1}, 10)
	c, err := a.Conflate(b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Bins) != 1 {
		t.Fatalf("got %d bins, want 1", len(c.Bins))
	}
	if !aeq(c.Bins[0], 1) {
		t.Errorf("bin 0 = %v, want 1", c.Bins[0])
	}
	if sd := c.StdDev(); sd != 0 {
		t.Errorf("sd = %v, want 0", sd)
	}
}

func TestConflateNoOverlap(t *testing.T) {
	// Mass at bin 0 of both inputs never pairs at shift 1: the
	// window exists but carries no mass.
	d := mustNew(t, []float64{1, 0}, 10)
	if _, err := d.Conflate(d, 1); !errors.Is(err, ErrNoOverlap) {
		t.Errorf("disjoint mass: err = %v, want ErrNoOverlap", err)
	}
	// Shifts at or past the bin count leave an empty window.
	for _, shift := range []int{2, 5, -2, -5} {
		if _, err := d.Conflate(d, shift); !errors.Is(err, ErrNoOverlap) {
			t.Errorf("shift %d: err = %v, want ErrNoOverlap", shift, err)
		}
	}
}

func TestConflateIncompatible(t *testing.T) {
	a := mustNew(t, []float64{1, 1}, 10)
	b := mustNew(t, []float64{1, 1, 1}, 10)
	var ierr *IncompatibleError
	if _, err := a.Conflate(b, 1); !errors.As(err, &ierr) {
		t.Fatalf("length mismatch: err = %v, want IncompatibleError", err)
	}
	if ierr.Bins1 != 2 || ierr.Bins2 != 3 {
		t.Errorf("got bins %d, %d, want 2, 3", ierr.Bins1, ierr.Bins2)
	}

	c := mustNew(t, []float64{1, 1}, 20)
	if _, err := a.Conflate(c, 1); !errors.As(err, &ierr) {
		t.Fatalf("width mismatch: err = %v, want IncompatibleError", err)
	}
	if ierr.Width1 != 10 || ierr.Width2 != 20 {
		t.Errorf("got widths %v, %v, want 10, 20", ierr.Width1, ierr.Width2)
	}
}

func TestConflateDoesNotMutate(t *testing.T) {
	a := mustNew(t, []float64{1, 2, 3}, 1)
	b := mustNew(t, []float64{3, 2, 1}, 1)
	aBefore := append([]float64(nil), a.Bins...)
	bBefore := append([]float64(nil), b.Bins...)
	if _, err := a.Conflate(b, 1); err != nil {
		t.Fatal(err)
	}
	for i := range aBefore {
		if a.Bins[i] != aBefore[i] || b.Bins[i] != bBefore[i] {
			t.Fatal("Conflate mutated an operand")
		}
	}
}
