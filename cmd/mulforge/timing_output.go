package main

import (
	"fmt"
	"io"
	"time"

	"mulforge/internal/observ"
	"mulforge/internal/pipeline"
)

func printStageTimings(out io.Writer, name string, timings pipeline.Timings) {
	if out == nil {
		return
	}
	fmt.Fprintf(out, "%s:", name)
	for _, stage := range []pipeline.Stage{pipeline.StageCache, pipeline.StageSolve, pipeline.StageCheck, pipeline.StageStore} {
		if timings.Has(stage) {
			fmt.Fprintf(out, " %s %.1f ms", stage, toMillis(timings.Duration(stage)))
		}
	}
	fmt.Fprintln(out)
}

func printTimer(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	fmt.Fprint(out, timer.Summary())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
