// Package traceout drains one tracking.Run into a Chrome Tracing JSON
// artifact. Emission happens exactly once, at the end of the run.
package traceout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

// MinEventLength is the shortest span (in nanoseconds) worth showing.
// Shorter events are dropped to keep the artifact readable.
const MinEventLength = 1_000_000 // 1ms

// builder accumulates begin/end pairs with a shared UID per pair.
type builder struct {
	pid    int
	uid    int
	events []Event
}

// add expands one logical span into a begin/end pair, applying the
// minimum-duration filter.
func (b *builder) add(name string, cat tracking.Category, span tracking.TimeSpan, extra map[string]string) {
	if span.Duration() < MinEventLength {
		return
	}

	uid := b.uid
	b.uid++

	b.events = append(b.events,
		b.event(name, cat, span.Start, "B", uid, extra),
		b.event(name, cat, span.End, "E", uid, extra))
}

func (b *builder) event(name string, cat tracking.Category, ts int64, phase string, uid int, extra map[string]string) Event {
	args := make(map[string]any, len(extra)+1)
	args["UID"] = uid
	for k, v := range extra {
		args[k] = v
	}
	return Event{
		Name:      name,
		Phase:     phase,
		Category:  cat.String(),
		Timestamp: float64(ts) * 0.001, // ns -> us
		PID:       b.pid,
		TID:       0,
		Args:      args,
	}
}

// Build drains the run into a Document. Open inclusions are
// force-closed and the pending stage is flushed first, so every span
// read here is final.
func Build(run *tracking.Run, pid int) Document {
	b := builder{pid: pid}

	// The whole-unit span always comes first.
	b.add("TU", tracking.CategoryTU, tracking.TimeSpan{Start: 0, End: run.Elapsed()}, nil)

	paths := run.Paths()

	for _, rec := range run.InclusionRecords() {
		if rec.Name == tracking.SentinelCircular {
			continue
		}
		b.add(paths.Resolve(rec.Name), tracking.CategoryPreprocess, rec.Span, nil)
	}

	for _, st := range run.StageRecords() {
		b.add(st.Label, st.Category, st.Span, map[string]string{
			"static_pass_number": strconv.Itoa(st.Order),
		})
	}

	for _, fn := range run.FunctionRecords() {
		b.add(fn.Signature, tracking.CategoryFunction, fn.Span, map[string]string{
			"file": paths.Resolve(fn.File),
		})
	}

	for _, sc := range run.ScopeRecords() {
		b.add(sc.Name, sc.Category, sc.Span, nil)
	}

	return Document{
		DisplayTimeUnit: "ns",
		BeginningOfTime: run.EpochMicros(),
		TraceEvents:     b.events,
	}
}

// Write serializes the run's trace document to w.
func Write(run *tracking.Run, w io.Writer, pid int) error {
	doc := Build(run, pid)
	if err := json.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("serialize trace: %w", err)
	}
	return nil
}

// WriteFile serializes to an already-open file and finalizes it. On any
// failure the file is removed so no malformed artifact survives.
func WriteFile(run *tracking.Run, f *os.File, pid int) error {
	if err := Write(run, f, pid); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("finalize trace %s: %w", f.Name(), err)
	}
	return nil
}
