package main

import (
	"fmt"
	"io"
	"time"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/convert"
)

func printStageTimings(out io.Writer, timings convert.Timings) {
	if out == nil {
		return
	}
	for _, stage := range []convert.Stage{convert.StageRead, convert.StageReplay, convert.StageEmit} {
		if timings.Has(stage) {
			fmt.Fprintf(out, "  %-8s %.1f ms\n", stage, toMillis(timings.Duration(stage)))
		}
	}
	fmt.Fprintf(out, "  %-8s %.1f ms\n", "total", toMillis(timings.Total()))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
