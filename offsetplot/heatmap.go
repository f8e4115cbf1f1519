// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package offsetplot

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/aclements/go-moremath/scale"

	"clocksd/offsetstat"
)

// HeatmapOptions configures Heatmap.
type HeatmapOptions struct {
	Title  string
	XLabel string
	YLabel string

	// Min and Max fix the color range, so several heatmaps can
	// share one. If both are zero, the range of the grid is used.
	Min, Max float64

	// CellSize is the edge of one cell in pixels. Zero means 6.
	CellSize int

	// XTick and YTick, if non-nil, label the left edge of each
	// column and the top edge of each row.
	XTick func(i int) string
	YTick func(i int) string

	// CellLabel, if non-nil, writes a label into each cell. Only
	// legible with a large CellSize.
	CellLabel func(v float64) string
}

// Viridis endpoints.
var (
	rampLow  = color.RGBA{68, 1, 84, 255}
	rampHigh = color.RGBA{253, 231, 37, 255}
)

func svgColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func rampColor(t float64) color.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	lerp := func(a, b uint8) uint8 {
		return uint8(float64(a) + t*(float64(b)-float64(a)) + 0.5)
	}
	return color.RGBA{
		lerp(rampLow.R, rampHigh.R),
		lerp(rampLow.G, rampHigh.G),
		lerp(rampLow.B, rampHigh.B),
		255,
	}
}

// Heatmap renders grid to w as an SVG matrix. grid is indexed
// [row][col], with row 0 drawn at the top. Every cell carries its
// value in a title element.
func Heatmap(w io.Writer, grid [][]float64, opts HeatmapOptions) error {
	rows := len(grid)
	if rows == 0 {
		return fmt.Errorf("empty grid")
	}
	cols := len(grid[0])

	cell := opts.CellSize
	if cell == 0 {
		cell = 6
	}
	min, max := opts.Min, opts.Max
	if min == 0 && max == 0 {
		for _, row := range grid {
			for _, v := range row {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
		}
	}
	if max == min {
		// A flat grid still needs a nonempty color range.
		max = min + 1
	}

	const left, top = 60, 30
	width := left + cols*cell + 20
	height := top + rows*cell + 50

	xIn := scale.Linear{Min: 0, Max: float64(cols)}
	xOut := scale.Linear{Min: left, Max: float64(left + cols*cell)}
	x := scale.QQ{Src: &xIn, Dest: &xOut}
	yIn := scale.Linear{Min: 0, Max: float64(rows)}
	yOut := scale.Linear{Min: top, Max: float64(top + rows*cell)}
	y := scale.QQ{Src: &yIn, Dest: &yOut}
	vIn := scale.Linear{Min: min, Max: max}
	vOut := scale.Linear{Min: 0, Max: 1}
	ramp := scale.QQ{Src: &vIn, Dest: &vOut}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" font-family="sans-serif">`+"\n", width, height)
	if opts.Title != "" {
		fmt.Fprintf(buf, `  <text x="%f" y="18" font-size="13" text-anchor="middle">%s</text>`+"\n", x.Map(float64(cols)/2), opts.Title)
	}
	for i, row := range grid {
		for j, v := range row {
			fill := svgColor(rampColor(ramp.Map(v)))
			fmt.Fprintf(buf, `  <rect x="%f" y="%f" width="%d" height="%d" fill="%s"><title>%g</title></rect>`+"\n",
				x.Map(float64(j)), y.Map(float64(i)), cell, cell, fill, v)
			if opts.CellLabel != nil {
				if label := opts.CellLabel(v); label != "" {
					fmt.Fprintf(buf, `  <text x="%f" y="%f" font-size="10" text-anchor="middle" dy=".35em" fill="white">%s</text>`+"\n",
						x.Map(float64(j)+0.5), y.Map(float64(i)+0.5), label)
				}
			}
		}
	}
	if opts.XTick != nil {
		for j := 0; j < cols; j++ {
			fmt.Fprintf(buf, `  <text x="%f" y="%f" font-size="9" text-anchor="middle">%s</text>`+"\n",
				x.Map(float64(j)), y.Map(float64(rows))+12, opts.XTick(j))
		}
	}
	if opts.YTick != nil {
		for i := 0; i < rows; i++ {
			fmt.Fprintf(buf, `  <text x="%d" y="%f" font-size="9" text-anchor="end" dy=".35em">%s</text>`+"\n",
				left-4, y.Map(float64(i)), opts.YTick(i))
		}
	}
	if opts.XLabel != "" {
		fmt.Fprintf(buf, `  <text x="%f" y="%f" font-size="11" text-anchor="middle">%s</text>`+"\n",
			x.Map(float64(cols)/2), y.Map(float64(rows))+34, opts.XLabel)
	}
	if opts.YLabel != "" {
		mid := y.Map(float64(rows) / 2)
		fmt.Fprintf(buf, `  <text x="14" y="%f" font-size="11" text-anchor="middle" transform="rotate(-90 14 %f)">%s</text>`+"\n",
			mid, mid, opts.YLabel)
	}
	fmt.Fprintf(buf, "</svg>\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// SigmaHeatmap renders the sample sigma grid with millisecond axis
// labels: bound size across, average poll delta down, cell values in
// milliseconds.
func SigmaHeatmap(w io.Writer, grid [][]float64, opts offsetstat.SigmaOptions) error {
	const nanosPerMilli = 1_000_000
	return Heatmap(w, grid, HeatmapOptions{
		Title:    "Estimate error sigma (ms)",
		XLabel:   "bound size (ms)",
		YLabel:   "avg delta (ms)",
		CellSize: 36,
		XTick: func(i int) string {
			return strconv.FormatInt(int64(i)*opts.BoundBinSize/nanosPerMilli, 10)
		},
		YTick: func(i int) string {
			return strconv.FormatInt(int64(i)*opts.DeltaBinSize/nanosPerMilli, 10)
		},
		CellLabel: func(v float64) string {
			if v <= 0 {
				return ""
			}
			return strconv.Itoa(int(1000 * v))
		},
	})
}
