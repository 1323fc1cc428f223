// Package tracking collects the lifecycle events of one compilation
// unit: nested file inclusions, sequential transformation stages, and
// function/scope parses. All state is owned by a single Run instance;
// the host adapter drives it strictly in callback order.
package tracking

import (
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/clock"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/pathnorm"
)

// SentinelCircular is the reserved inclusion key substituted when a
// file re-enters while still open. Sentinel records never reach the
// trace artifact.
const SentinelCircular = "CIRCULAR_POISON_VALUE"

// The trace viewer collapses events whose boundaries share an exact
// instant, so sequential spans are kept apart by fixed nanosecond pads.
const (
	leavePad = 3 // boundary advance after a file leave
	stagePad = 1 // separation between consecutive stages
	scopePad = 1 // scope spans enclose their child functions
	funcPad  = 3 // separation between consecutive functions
)

// Run is the event store for one compilation unit. Not safe for
// concurrent use; the observed pipeline is single-threaded.
type Run struct {
	clock clock.Clock
	paths *pathnorm.Table

	inclusions []InclusionRecord
	byName     map[string]int
	stack      []string

	// lastBoundary is the high-water mark the next function span must
	// strictly exceed.
	lastBoundary int64

	pending *StageRecord
	stages  []StageRecord

	scopes       []ScopeRecord
	functions    []FunctionRecord
	lastHadScope bool
}

// NewRun creates an empty run backed by the given clock and path table.
func NewRun(c clock.Clock, paths *pathnorm.Table) *Run {
	return &Run{
		clock:  c,
		paths:  paths,
		byName: make(map[string]int),
	}
}

// FileEnter records that the pipeline started processing an included
// file. A re-entered file that is still open is a circular inclusion
// and is rerouted to the sentinel record; its directory hint is
// discarded. The first-ever start timestamp of a file wins.
func (r *Run) FileEnter(path, includeDir string) {
	now := r.clock.Elapsed()

	// The host reports pseudo-files for driver-supplied input.
	if path == "" || path == "<command-line>" {
		return
	}

	if idx, seen := r.byName[path]; seen && !r.inclusions[idx].Closed {
		path = SentinelCircular
		includeDir = ""
	}

	if _, seen := r.byName[path]; !seen {
		r.byName[path] = len(r.inclusions)
		r.inclusions = append(r.inclusions, InclusionRecord{
			Name: path,
			Span: TimeSpan{Start: now},
		})
	}

	r.stack = append(r.stack, path)

	if includeDir != "" {
		r.paths.Register(path, includeDir)
	}
}

// FileLeave closes the innermost open inclusion. The first close of a
// record wins. Calling FileLeave with no open inclusion is a contract
// violation in the host pipeline and panics.
func (r *Run) FileLeave() {
	now := r.clock.Elapsed()

	if len(r.stack) == 0 {
		panic("tracking: FileLeave without a matching FileEnter")
	}

	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	idx := r.byName[top]
	if !r.inclusions[idx].Closed {
		r.inclusions[idx].Span.End = now
		r.inclusions[idx].Closed = true
	}

	r.lastBoundary = now + leavePad
}

// ForceCloseFiles closes every inclusion still open. Idempotent; safe
// to call any number of times, including on an empty stack.
func (r *Run) ForceCloseFiles() {
	for len(r.stack) > 0 {
		r.FileLeave()
		r.lastBoundary = r.clock.Elapsed()
	}
}

// InclusionRecords force-closes any open inclusions and returns all
// inclusion records, sentinel included, in first-seen order.
func (r *Run) InclusionRecords() []InclusionRecord {
	r.ForceCloseFiles()
	return r.inclusions
}

// ScopeRecords returns the coalesced scope records in creation order.
func (r *Run) ScopeRecords() []ScopeRecord {
	return r.scopes
}

// FunctionRecords returns the function records in emission order.
func (r *Run) FunctionRecords() []FunctionRecord {
	return r.functions
}

// OpenInclusions returns the number of inclusions entered but not yet
// left. Callers feeding the run from external data can check it before
// FileLeave instead of relying on the panic.
func (r *Run) OpenInclusions() int {
	return len(r.stack)
}

// Paths returns the run's path table.
func (r *Run) Paths() *pathnorm.Table {
	return r.paths
}

// Elapsed returns the run clock's current offset.
func (r *Run) Elapsed() int64 {
	return r.clock.Elapsed()
}

// EpochMicros returns the run epoch as microseconds since the Unix
// reference instant, the unit beginningOfTime uses on the wire.
func (r *Run) EpochMicros() int64 {
	return r.clock.Epoch().UnixMicro()
}
