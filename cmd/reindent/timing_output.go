package main

import (
	"fmt"
	"io"

	"reindent/internal/observ"
)

// printTimings writes the phase table followed by the mean time per file.
func printTimings(out io.Writer, timer *observ.Timer, files int) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
	report := timer.Report()
	if files > 0 && report.TotalMS > 0 {
		fmt.Fprintf(out, "  %-12s %8.2f ms\n", "per file", report.TotalMS/float64(files))
	}
}
