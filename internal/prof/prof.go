// Package prof exposes self-profiling hooks for the converter itself.
// Large batch conversions are worth profiling when replay throughput
// regresses; these helpers keep the flag plumbing in cmd/gperf small.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

var cpuOut *os.File

// StartCPU begins sampling CPU usage into the file at path. A second
// call without an intervening StopCPU returns an error from pprof.
func StartCPU(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("start cpu profile: %w", err)
	}
	cpuOut = f
	return nil
}

// StopCPU flushes and closes the profile opened by StartCPU. Safe to
// call when no profile is active.
func StopCPU() {
	if cpuOut == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = cpuOut.Close()
	cpuOut = nil
}

// WriteHeap forces a GC and writes the live-heap profile to path.
func WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write heap profile: %w", err)
	}
	return f.Close()
}
