// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offsetplot renders the outputs of offsetstat.
//
// Line and comparison charts are rendered as PNG using go-chart.
// Dispersion grids are rendered as self-contained SVG documents.
package offsetplot

import (
	"fmt"
	"io"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"clocksd/offsetfmt"
	"clocksd/offsetstat"
)

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
	}
}

// SDByRTT renders a line chart of per-RTT-bucket offset dispersion to
// w as PNG.
func SDByRTT(w io.Writer, dists map[int]*offsetstat.Distribution, buckets offsetfmt.Buckets) error {
	if len(dists) == 0 {
		return fmt.Errorf("no distributions to plot")
	}
	ids := make([]int, 0, len(dists))
	for id := range dists {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	xs := make([]float64, len(ids))
	ys := make([]float64, len(ids))
	for i, id := range ids {
		xs[i] = buckets.RTTMid(id)
		ys[i] = dists[id].StdDev()
	}

	ch := chart.Chart{
		Title: "Offset dispersion by RTT",
		XAxis: chart.XAxis{Name: "RTT midpoint (ms)"},
		YAxis: chart.YAxis{Name: "standard deviation (ms)"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "sd",
				XValues: xs,
				YValues: ys,
				Style:   lineStyle(chart.ColorBlue),
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

var comparePalette = []drawing.Color{chart.ColorRed, chart.ColorGreen, chart.ColorBlue, chart.ColorOrange}

// DistCompare renders the offset distributions of the chosen RTT
// buckets overlaid on shared axes to w as PNG. The x axis is the
// signed offset of each bin's left edge.
func DistCompare(w io.Writer, dists map[int]*offsetstat.Distribution, ids []int, buckets offsetfmt.Buckets) error {
	if len(ids) == 0 {
		return fmt.Errorf("no rtt buckets selected")
	}
	series := make([]chart.Series, 0, len(ids))
	for i, id := range ids {
		d, ok := dists[id]
		if !ok {
			return fmt.Errorf("no distribution for rtt bucket %d", id)
		}
		xs := make([]float64, len(d.Bins))
		for j := range d.Bins {
			xs[j] = buckets.OffsetValue(j)
		}
		name := fmt.Sprintf("RTT [%g,%g)", float64(id)*buckets.RTTWidth, float64(id+1)*buckets.RTTWidth)
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: d.Bins,
			Style:   lineStyle(comparePalette[i%len(comparePalette)]),
		})
	}

	ch := chart.Chart{
		Title:  "Offset distribution by RTT bucket",
		XAxis:  chart.XAxis{Name: "offset (ms)"},
		YAxis:  chart.YAxis{Name: "probability mass"},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}
