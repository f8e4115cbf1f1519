// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetstat

import (
	"fmt"
	"strings"

	"github.com/aclements/go-moremath/fit"
	"github.com/aclements/go-moremath/stats"

	"clocksd/offsetfmt"
)

// A RegressionResult is an ordinary least squares fit of dispersion
// against the RTT midpoints of the two conflated buckets and the
// modeled time gap, all in milliseconds.
type RegressionResult struct {
	Const float64
	RTT1  float64
	RTT2  float64
	Gap   float64

	R2         float64
	ResidualSD float64
	N          int
}

// Regress fits the dispersions in table to
//
//	sd = Const + RTT1*rtt1 + RTT2*rtt2 + Gap*gap
//
// by least squares, where rtt1 and rtt2 are bucket midpoints and gap
// is shift scaled by the offset bucket width. The table must cover at
// least two distinct RTT buckets; with one the RTT regressors are
// constant and the design matrix is singular.
func Regress(table *DeviationTable, buckets offsetfmt.Buckets) (*RegressionResult, error) {
	n := len(table.Entries)
	if n < 4 {
		return nil, fmt.Errorf("%d deviation entries, need at least 4", n)
	}
	distinct := make(map[int]bool)
	for _, e := range table.Entries {
		distinct[e.RTT1] = true
	}
	if len(distinct) < 2 {
		return nil, fmt.Errorf("need at least two distinct rtt buckets, have %d", len(distinct))
	}

	idx := make([]float64, n)
	sds := make([]float64, n)
	rtt1 := make([]float64, n)
	rtt2 := make([]float64, n)
	gap := make([]float64, n)
	for i, e := range table.Entries {
		idx[i] = float64(i)
		sds[i] = e.SD
		rtt1[i] = buckets.RTTMid(e.RTT1)
		rtt2[i] = buckets.RTTMid(e.RTT2)
		gap[i] = buckets.Gap(e.Shift)
	}

	// fit.LinearLeastSquares takes each term as a function of the
	// scalar x. Pass the observation index as x and look the
	// regressors up by index to get a multivariate fit.
	column := func(col []float64) func(xs, fvs []float64) {
		return func(xs, fvs []float64) {
			for i, x := range xs {
				fvs[i] = col[int(x)]
			}
		}
	}
	constant := func(xs, fvs []float64) {
		for i := range fvs {
			fvs[i] = 1
		}
	}
	params := fit.LinearLeastSquares(idx, sds, nil, constant, column(rtt1), column(rtt2), column(gap))

	res := &RegressionResult{
		Const: params[0],
		RTT1:  params[1],
		RTT2:  params[2],
		Gap:   params[3],
		N:     n,
	}

	resid := make([]float64, n)
	var ssr float64
	for i := range sds {
		pred := res.Const + res.RTT1*rtt1[i] + res.RTT2*rtt2[i] + res.Gap*gap[i]
		resid[i] = sds[i] - pred
		ssr += resid[i] * resid[i]
	}
	mean := stats.Sample{Xs: sds}.Mean()
	var sst float64
	for _, y := range sds {
		sst += (y - mean) * (y - mean)
	}
	if sst > 0 {
		res.R2 = 1 - ssr/sst
	}
	res.ResidualSD = stats.Sample{Xs: resid}.StdDev()
	return res, nil
}

// Summary renders a human-readable fit report.
func (r *RegressionResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "OLS: sd = %.6g + %.6g*rtt1 + %.6g*rtt2 + %.6g*gap (ms)\n", r.Const, r.RTT1, r.RTT2, r.Gap)
	fmt.Fprintf(&sb, "observations: %d\n", r.N)
	fmt.Fprintf(&sb, "R^2: %.4f\n", r.R2)
	fmt.Fprintf(&sb, "residual sd: %.6g ms\n", r.ResidualSD)
	return sb.String()
}
