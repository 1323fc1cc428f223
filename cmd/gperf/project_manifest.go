package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// projectManifest carries per-project defaults for the CLI. Flags, when
// set, win over the manifest.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Output  outputConfig  `toml:"output"`
	Convert convertConfig `toml:"convert"`
}

type outputConfig struct {
	TraceDir string `toml:"trace_dir"`
}

type convertConfig struct {
	Jobs int `toml:"jobs"`
}

func findGperfToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "gperf.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest finds and parses the nearest gperf.toml above
// startDir. A malformed manifest is a startup failure, not something to
// paper over mid-run.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findGperfToml(startDir)
	if err != nil || !ok {
		return nil, false, err
	}

	var cfg projectConfig
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, false, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	if cfg.Convert.Jobs < 0 {
		return nil, false, fmt.Errorf("%s: convert.jobs must not be negative", manifestPath)
	}

	root := filepath.Dir(manifestPath)
	// Relative trace_dir is anchored at the manifest, not the cwd.
	if cfg.Output.TraceDir != "" && !filepath.IsAbs(cfg.Output.TraceDir) {
		cfg.Output.TraceDir = filepath.Join(root, cfg.Output.TraceDir)
	}

	return &projectManifest{Path: manifestPath, Root: root, Config: cfg}, true, nil
}
