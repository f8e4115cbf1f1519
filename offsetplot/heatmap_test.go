// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetplot

import (
	"bytes"
	"strings"
	"testing"

	"clocksd/offsetstat"
)

func TestHeatmap(t *testing.T) {
	grid := [][]float64{
		{1, 2},
		{3, 4},
	}
	buf := new(bytes.Buffer)
	if err := Heatmap(buf, grid, HeatmapOptions{Title: "test"}); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("output does not start with <svg: %.40q", svg)
	}
	if got := strings.Count(svg, "<rect"); got != 4 {
		t.Errorf("got %d rects, want 4", got)
	}
	for _, want := range []string{"<title>1</title>", "<title>4</title>", ">test</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestHeatmapFlatGrid(t *testing.T) {
	grid := [][]float64{{5, 5}, {5, 5}}
	buf := new(bytes.Buffer)
	if err := Heatmap(buf, grid, HeatmapOptions{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Error("flat grid produced NaN coordinates")
	}
}

func TestHeatmapFixedRange(t *testing.T) {
	// The same cell value must map to the same fill when the color
	// range is pinned, whatever the rest of the grid holds.
	render := func(grid [][]float64) string {
		t.Helper()
		buf := new(bytes.Buffer)
		if err := Heatmap(buf, grid, HeatmapOptions{Min: 0, Max: 10}); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	a := render([][]float64{{5, 1}})
	b := render([][]float64{{5, 9}})
	fill := func(svg string) string {
		i := strings.Index(svg, `fill="`)
		return svg[i+6 : i+13]
	}
	if fill(a) != fill(b) {
		t.Errorf("cell value 5 filled %s vs %s under a fixed range", fill(a), fill(b))
	}
}

func TestHeatmapEmpty(t *testing.T) {
	if err := Heatmap(new(bytes.Buffer), nil, HeatmapOptions{}); err == nil {
		t.Error("empty grid succeeded")
	}
}

func TestSigmaHeatmap(t *testing.T) {
	opts := offsetstat.SigmaOptions{NumBins: 2, BoundBinSize: 100_000_000, DeltaBinSize: 2_000_000}
	grid := [][]float64{
		{0.5, 0},
		{0, 0.25},
	}
	buf := new(bytes.Buffer)
	if err := SigmaHeatmap(buf, grid, opts); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	// 0.5s renders as a 500ms cell label, zero cells stay blank.
	if !strings.Contains(svg, ">500</text>") {
		t.Error("missing 500 ms cell label")
	}
	// Column ticks come from the bound bin size: 0 and 100 ms.
	if !strings.Contains(svg, ">100</text>") {
		t.Error("missing 100 ms column tick")
	}
}
