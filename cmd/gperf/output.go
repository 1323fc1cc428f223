package main

import (
	"errors"
	"fmt"
	"os"
)

// traceDestination selects where artifacts are created. Exactly one of
// the three modes is active: an explicit file, a directory with
// generated names, or the system temp directory.
type traceDestination struct {
	file string
	dir  string
}

func resolveDestination(file, dir string, inputs int) (traceDestination, error) {
	if file != "" && dir != "" {
		return traceDestination{}, errors.New("choose either --trace or --trace-dir, not both")
	}
	if file != "" && inputs != 1 {
		return traceDestination{}, fmt.Errorf("--trace names one output file but %d captures were given; use --trace-dir", inputs)
	}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return traceDestination{}, fmt.Errorf("--trace-dir: %w", err)
		}
		if !info.IsDir() {
			return traceDestination{}, fmt.Errorf("--trace-dir: %s is not a directory", dir)
		}
	}
	return traceDestination{file: file, dir: dir}, nil
}

// open creates the artifact file for one conversion. Generated names
// follow the trace_*.json pattern so repeated runs never collide.
func (d traceDestination) open() (*os.File, error) {
	switch {
	case d.file != "":
		return os.Create(d.file)
	case d.dir != "":
		return os.CreateTemp(d.dir, "trace_*.json")
	default:
		return os.CreateTemp("", "trace_*.json")
	}
}
