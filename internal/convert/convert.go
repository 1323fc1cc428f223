// Package convert turns recorded capture streams into trace artifacts.
// Each capture file is one compilation unit and gets its own engine
// instance; units never share state.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/capture"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/clock"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/pathnorm"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/traceout"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

// Request configures the conversion of one capture file.
type Request struct {
	// CapturePath is the recorded notification stream.
	CapturePath string

	// OpenSink creates the artifact file. The conversion finalizes it
	// and removes it on failure.
	OpenSink func() (*os.File, error)

	// Warnings receives path-normalization diagnostics. nil means
	// os.Stderr.
	Warnings io.Writer

	// Progress receives stage events. nil disables reporting.
	Progress ProgressSink
}

// Result describes one finished conversion.
type Result struct {
	CapturePath string
	TracePath   string
	Timings     Timings
}

// File converts one capture stream into one trace artifact.
func File(ctx context.Context, req *Request) (Result, error) {
	res := Result{CapturePath: req.CapturePath}
	sink := req.Progress
	if sink == nil {
		sink = nopSink{}
	}
	sink.OnEvent(Event{File: req.CapturePath, Stage: StageRead, Status: StatusQueued})

	fail := func(stage Stage, err error) (Result, error) {
		sink.OnEvent(Event{File: req.CapturePath, Stage: stage, Status: StatusError, Err: err})
		return res, err
	}

	// read
	start := time.Now()
	sink.OnEvent(Event{File: req.CapturePath, Stage: StageRead, Status: StatusWorking})
	f, err := os.Open(req.CapturePath)
	if err != nil {
		return fail(StageRead, fmt.Errorf("open capture: %w", err))
	}
	defer func() {
		_ = f.Close()
	}()
	reader, err := capture.NewReader(f)
	if err != nil {
		return fail(StageRead, fmt.Errorf("%s: %w", req.CapturePath, err))
	}
	res.Timings.Set(StageRead, time.Since(start))

	if err := ctx.Err(); err != nil {
		return fail(StageRead, err)
	}

	// replay
	start = time.Now()
	sink.OnEvent(Event{File: req.CapturePath, Stage: StageReplay, Status: StatusWorking})
	clk := clock.NewManual(time.UnixMicro(reader.EpochMicros()))
	run := tracking.NewRun(clk, pathnorm.NewTable(req.Warnings))
	if err := capture.Replay(reader, run, clk); err != nil {
		return fail(StageReplay, fmt.Errorf("%s: %w", req.CapturePath, err))
	}
	res.Timings.Set(StageReplay, time.Since(start))

	if err := ctx.Err(); err != nil {
		return fail(StageReplay, err)
	}

	// emit
	start = time.Now()
	sink.OnEvent(Event{File: req.CapturePath, Stage: StageEmit, Status: StatusWorking})
	out, err := req.OpenSink()
	if err != nil {
		return fail(StageEmit, fmt.Errorf("open trace output: %w", err))
	}
	res.TracePath = out.Name()
	pid := reader.Pid()
	if pid == 0 {
		pid = os.Getpid()
	}
	if err := traceout.WriteFile(run, out, pid); err != nil {
		res.TracePath = ""
		return fail(StageEmit, err)
	}
	res.Timings.Set(StageEmit, time.Since(start))

	sink.OnEvent(Event{
		File:    req.CapturePath,
		Stage:   StageEmit,
		Status:  StatusDone,
		Elapsed: res.Timings.Total(),
	})
	return res, nil
}
