package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/convert"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/prof"
)

var convertCmd = &cobra.Command{
	Use:   "convert <capture>...",
	Short: "Render capture streams into Chrome Tracing artifacts",
	Long: `Convert replays recorded compiler lifecycle captures and writes one
Chrome Tracing JSON artifact per capture. Open the result in a trace
viewer such as chrome://tracing or Perfetto.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("trace", "", "write the artifact to this exact path (single capture only)")
	convertCmd.Flags().String("trace-dir", "", "create uniquely named trace_*.json artifacts in this directory")
	convertCmd.Flags().Int("jobs", 0, "parallel conversions (0 = number of CPUs)")
	convertCmd.Flags().String("ui", "auto", "progress display (auto|on|off)")
	convertCmd.Flags().String("cpuprofile", "", "profile the converter's CPU usage into this file")
	convertCmd.Flags().String("memprofile", "", "write the converter's heap profile to this file")
}

func runConvert(cmd *cobra.Command, args []string) error {
	traceFile, err := cmd.Flags().GetString("trace")
	if err != nil {
		return err
	}
	traceDir, err := cmd.Flags().GetString("trace-dir")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cpuProfile, err := cmd.Flags().GetString("cpuprofile")
	if err != nil {
		return err
	}
	memProfile, err := cmd.Flags().GetString("memprofile")
	if err != nil {
		return err
	}
	if cpuProfile != "" {
		if err := prof.StartCPU(cpuProfile); err != nil {
			return err
		}
		defer prof.StopCPU()
	}
	if memProfile != "" {
		defer func() {
			if err := prof.WriteHeap(memProfile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "gperf error: %v\n", err)
			}
		}()
	}

	// Project manifest supplies defaults; explicit flags win.
	if manifest, found, err := loadProjectManifest("."); err != nil {
		return err
	} else if found {
		if traceFile == "" && traceDir == "" {
			traceDir = manifest.Config.Output.TraceDir
		}
		if jobs == 0 {
			jobs = manifest.Config.Convert.Jobs
		}
	}

	dest, err := resolveDestination(traceFile, traceDir, len(args))
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]convert.Result, len(args))
	errs := make([]error, len(args))

	// One engine instance per capture; units share nothing, so the
	// batch can fan out freely.
	doAll := func(sink convert.ProgressSink) error {
		g, gctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(min(jobs, len(args)))
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				res, convErr := convert.File(gctx, &convert.Request{
					CapturePath: path,
					OpenSink:    dest.open,
					Warnings:    cmd.ErrOrStderr(),
					Progress:    sink,
				})
				results[i], errs[i] = res, convErr
				// A failed unit must not cancel the rest of the batch.
				return nil
			})
		}
		return g.Wait()
	}

	if shouldUseTUI(mode) && len(args) > 1 {
		if err := runBatchWithUI("converting captures", args, doAll); err != nil {
			return err
		}
	} else {
		if err := doAll(nil); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, path := range args {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "gperf error: %s: %v\n", path, errs[i])
			continue
		}
		if !quiet {
			fmt.Fprintf(out, "%s -> %s\n", path, results[i].TracePath)
		}
		if showTimings {
			printStageTimings(out, results[i].Timings)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(args))
	}
	return nil
}
