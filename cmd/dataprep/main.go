package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"htb-forecast/internal/histdata"
)

// dataprep is a one-shot ETL: it reads a dated historical source CSV and
// writes the pre-differenced changes-only CSV that the forecaster can fall
// back to when the full source is not distributed with it.
func main() {
	kind := flag.String("kind", "", "series to process: cpi, property or mortgage")
	inDir := flag.String("in", "datasets", "directory holding the dated source CSV")
	outPath := flag.String("out", "", "output path for the monthly-change CSV")
	lookback := flag.Int("lookback", 0, "restrict to the last N years of source data (0 = full history)")
	flag.Parse()

	var seriesKind histdata.Kind
	switch *kind {
	case "cpi":
		seriesKind = histdata.KindCPI
	case "property":
		seriesKind = histdata.KindProperty
	case "mortgage":
		seriesKind = histdata.KindMortgage
	default:
		fmt.Fprintf(os.Stderr, "Unknown -kind %q (want cpi, property or mortgage)\n", *kind)
		os.Exit(1)
	}
	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "-out is required")
		os.Exit(1)
	}

	changes := histdata.NewStore(*inDir, *lookback).Load(seriesKind)
	if len(changes) == 0 {
		fmt.Fprintf(os.Stderr, "No %s source data found in %s\n", *kind, *inDir)
		os.Exit(1)
	}

	file, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"monthly_change"}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	for _, change := range changes {
		if err := writer.Write([]string{strconv.FormatFloat(change, 'g', -1, 64)}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
			os.Exit(1)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush %s: %v\n", *outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d %s monthly changes to %s\n", len(changes), *kind, *outPath)
}
