// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command clocksd analyzes the relationship between time poll round
// trip times and the distribution of clock offset error.
//
// It reads a CSV export on stdin (or from input files) and runs one
// of the following modes:
//
//	sd-by-rtt [inputs...]    print per-RTT-bucket offset dispersion
//	dist-cmp bucket...       render a comparison chart of the offset
//	                         distributions of the given RTT buckets
//	regression [inputs...]   sweep pairwise conflations and fit
//	                         dispersion against rtt and poll gap
//	sample-sigma [inputs...] print RMS estimate error bucketed by
//	                         bound size and poll delta
//
// The first three modes consume the Cobalt histogram export;
// sample-sigma consumes the httpdate sample export.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"clocksd/offsetfmt"
	"clocksd/offsetplot"
	"clocksd/offsetstat"
)

var (
	flagHalfRange   = flag.Int("half-range", 100, "offset buckets per side of zero")
	flagRTTWidth    = flag.Float64("rtt-width", 10, "RTT bucket width in `ms`")
	flagOffsetWidth = flag.Float64("offset-width", 10, "offset bucket width in `ms`")
	flagSparse      = flag.Bool("sparse", false, "tolerate histograms that do not cover every offset bucket")
	flagMinShift    = flag.Int("min-shift", 1, "first conflation shift in the sweep")
	flagMaxShift    = flag.Int("max-shift", 0, "sweep shifts up to `n`, exclusive (default half-range)")
	flagPlot        = flag.String("plot", "", "write a chart of the result to `file` (PNG; SVG for sample-sigma)")
	flagSlices      = flag.String("slices", "25,50,75", "regression heatmap slice `shifts`, comma separated")
	flagHeatmaps    = flag.String("heatmaps", "", "write regression heatmap slices to files named `prefix`N.svg")
)

func main() {
	log.SetPrefix("")
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), `Usage: %s [flags] mode [args...]

clocksd reads a CSV export on stdin (or from input files) and runs one
of the following modes:

	sd-by-rtt [inputs...]    print per-RTT-bucket offset dispersion
	dist-cmp bucket...       render a comparison chart of the offset
	                         distributions of the given RTT buckets
	regression [inputs...]   sweep pairwise conflations and fit
	                         dispersion against rtt and poll gap
	sample-sigma [inputs...] print RMS estimate error bucketed by
	                         bound size and poll delta

The first three modes consume the Cobalt histogram export;
sample-sigma consumes the httpdate sample export. dist-cmp always
reads stdin.
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		// Keep the original tool's contract: a missing mode
		// reports usage on stdout.
		fmt.Println("Need to specify a command")
		flag.Usage()
		os.Exit(2)
	}

	buckets := offsetfmt.Buckets{
		HalfRange:   *flagHalfRange,
		RTTWidth:    *flagRTTWidth,
		OffsetWidth: *flagOffsetWidth,
	}
	mode, args := flag.Arg(0), flag.Args()[1:]

	switch mode {
	case "sd-by-rtt":
		dists := readDistributions(args, buckets)
		sdByRTT(dists, buckets)
	case "dist-cmp":
		if len(args) == 0 {
			log.Fatal("dist-cmp needs at least one rtt bucket argument")
		}
		ids := make([]int, len(args))
		for i, arg := range args {
			id, err := strconv.Atoi(arg)
			if err != nil {
				log.Fatalf("bad rtt bucket %q", arg)
			}
			ids[i] = id
		}
		dists := readDistributions(nil, buckets)
		distCmp(dists, ids, buckets)
	case "regression":
		dists := readDistributions(args, buckets)
		regression(dists, buckets)
	case "sample-sigma":
		samples := readSamples(args)
		sampleSigma(samples)
	default:
		log.Printf("unknown mode %q", mode)
		flag.Usage()
		os.Exit(2)
	}
}

func readDistributions(args []string, buckets offsetfmt.Buckets) map[int]*offsetstat.Distribution {
	var records []offsetfmt.HistogramRecord
	var reader offsetfmt.HistogramReader
	files := FileArgs{Args: args}
	for {
		f, err := files.Next()
		if err != nil {
			log.Fatal(err)
		}
		if f == nil {
			break
		}
		reader.Reset(f, buckets)
		for reader.Scan() {
			records = append(records, reader.Record())
		}
		if err := reader.Err(); err != nil {
			log.Fatal(err)
		}
	}

	dists, err := offsetstat.Aggregate(records, buckets, offsetstat.AggregateOptions{AllowSparse: *flagSparse})
	if err != nil {
		log.Fatal(err)
	}
	if len(dists) == 0 {
		log.Fatal("no histogram records in input")
	}
	return dists
}

func readSamples(args []string) []offsetfmt.Sample {
	var samples []offsetfmt.Sample
	var reader offsetfmt.SampleReader
	files := FileArgs{Args: args}
	for {
		f, err := files.Next()
		if err != nil {
			log.Fatal(err)
		}
		if f == nil {
			break
		}
		reader.Reset(f)
		for reader.Scan() {
			samples = append(samples, reader.Sample())
		}
		if err := reader.Err(); err != nil {
			log.Fatal(err)
		}
	}
	return samples
}

func sdByRTT(dists map[int]*offsetstat.Distribution, buckets offsetfmt.Buckets) {
	ids := sortedIDs(dists)
	fmt.Printf("%6s %12s\n", "bucket", "sd (ms)")
	for _, id := range ids {
		fmt.Printf("%6d %12.3f\n", id, dists[id].StdDev())
	}

	if *flagPlot != "" {
		writePlot(*flagPlot, func(f *os.File) error {
			return offsetplot.SDByRTT(f, dists, buckets)
		})
	}
}

func distCmp(dists map[int]*offsetstat.Distribution, ids []int, buckets offsetfmt.Buckets) {
	out := *flagPlot
	if out == "" {
		out = "dist-cmp.png"
	}
	writePlot(out, func(f *os.File) error {
		return offsetplot.DistCompare(f, dists, ids, buckets)
	})
}

func regression(dists map[int]*offsetstat.Distribution, buckets offsetfmt.Buckets) {
	maxShift := *flagMaxShift
	if maxShift == 0 {
		maxShift = buckets.HalfRange
	}
	table, err := offsetstat.SweepDeviations(dists, *flagMinShift, maxShift)
	if err != nil {
		log.Fatal(err)
	}
	res, err := offsetstat.Regress(table, buckets)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(res.Summary())

	if *flagHeatmaps == "" {
		return
	}
	shifts, err := parseShifts(*flagSlices)
	if err != nil {
		log.Fatal(err)
	}
	min, max := table.SDRange()
	for _, shift := range shifts {
		grid := table.Slice(shift)
		name := fmt.Sprintf("%s%d.svg", *flagHeatmaps, shift)
		writePlot(name, func(f *os.File) error {
			return offsetplot.Heatmap(f, grid, offsetplot.HeatmapOptions{
				Title:  fmt.Sprintf("SD when polls are %g ms apart", buckets.Gap(shift)),
				XLabel: "rtt bucket 2",
				YLabel: "rtt bucket 1",
				Min:    min,
				Max:    max,
			})
		})
	}
}

func sampleSigma(samples []offsetfmt.Sample) {
	opts := offsetstat.DefaultSigmaOptions
	grid := offsetstat.SigmaGrid(samples, opts)
	for _, row := range grid {
		for j, v := range row {
			if j > 0 {
				fmt.Print(" ")
			}
			fmt.Printf("%8.4f", v)
		}
		fmt.Println()
	}

	if *flagPlot != "" {
		writePlot(*flagPlot, func(f *os.File) error {
			return offsetplot.SigmaHeatmap(f, grid, opts)
		})
	}
}

// parseShifts parses a comma-separated shift list.
func parseShifts(s string) ([]int, error) {
	var shifts []int
	for _, f := range strings.Split(s, ",") {
		shift, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad shift list %q", s)
		}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

func writePlot(name string, render func(*os.File) error) {
	f, err := os.Create(name)
	if err != nil {
		log.Fatal(err)
	}
	if err := render(f); err != nil {
		f.Close()
		log.Fatal("rendering ", name, ": ", err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
}

func sortedIDs(dists map[int]*offsetstat.Distribution) []int {
	ids := make([]int, 0, len(dists))
	for id := range dists {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
