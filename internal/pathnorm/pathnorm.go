// Package pathnorm maps absolute file paths to stable relative display
// names. A file included from /usr/include as /usr/include/vector is
// shown as "vector"; when two different files would claim the same
// relative name, both fall back to their absolute paths.
package pathnorm

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Table holds the path registrations for one run. Entries are created
// once per unique absolute path and never mutated afterwards.
type Table struct {
	includeDir map[string]string // absolute file path -> include directory
	normalized map[string]string // absolute file path -> relative name
	claimed    map[string]string // relative name -> first claiming absolute path
	conflicted map[string]struct{}
	warnings   io.Writer
}

// NewTable creates an empty table. Warnings about paths that cannot be
// normalized go to w; nil means os.Stderr.
func NewTable(w io.Writer) *Table {
	if w == nil {
		w = os.Stderr
	}
	return &Table{
		includeDir: make(map[string]string),
		normalized: make(map[string]string),
		claimed:    make(map[string]string),
		conflicted: make(map[string]struct{}),
		warnings:   w,
	}
}

// Register records that file was included from dir. Both must be
// absolute. Repeat registrations of the same file are no-ops; all
// failure modes degrade to verbose display names, never errors.
func (t *Table) Register(file, dir string) {
	if _, seen := t.includeDir[file]; seen {
		return
	}
	t.includeDir[file] = dir

	if len(file) <= len(dir) || !strings.HasPrefix(file, dir) {
		fmt.Fprintf(t.warnings, "gperf warning: can't normalize paths %s and %s\n", file, dir)
		return
	}

	// Strip the directory prefix plus one path separator.
	rel := file[len(dir)+1:]
	t.normalized[file] = rel

	if _, taken := t.claimed[rel]; taken {
		t.conflicted[rel] = struct{}{}
	} else {
		t.claimed[rel] = file
	}
}

// Resolve returns the display name for file: the relative name when one
// was registered and is conflict-free, the absolute path otherwise.
// Pure and total.
func (t *Table) Resolve(file string) string {
	rel, ok := t.normalized[file]
	if !ok {
		return file
	}
	if _, bad := t.conflicted[rel]; bad {
		return file
	}
	return rel
}
