package convert

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/capture"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

type recordingSink struct {
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.events = append(s.events, evt)
}

func writeCapture(t *testing.T, dir string, notifications ...*capture.Notification) string {
	t.Helper()
	path := filepath.Join(dir, "unit.gperf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create capture: %v", err)
	}
	w, err := capture.NewWriter(f, 999, 31337)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, n := range notifications {
		if err := w.Write(n); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func TestFileConvertsCaptureToArtifact(t *testing.T) {
	dir := t.TempDir()
	capPath := writeCapture(t, dir,
		capture.FileEnter(0, "/w/main.cpp", "/w"),
		capture.FunctionParsed(4_000_000, "N::f()", "/w/main.cpp", "N", tracking.CategoryNamespace),
		capture.FileLeave(8_000_000),
		capture.RunFinished(9_000_000),
	)

	outPath := filepath.Join(dir, "trace.json")
	sink := &recordingSink{}
	res, err := File(context.Background(), &Request{
		CapturePath: capPath,
		OpenSink:    func() (*os.File, error) { return os.Create(outPath) },
		Warnings:    io.Discard,
		Progress:    sink,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if res.TracePath != outPath {
		t.Fatalf("trace path = %q", res.TracePath)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var doc struct {
		DisplayTimeUnit string `json:"displayTimeUnit"`
		BeginningOfTime int64  `json:"beginningOfTime"`
		TraceEvents     []struct {
			Name string `json:"name"`
			PID  int    `json:"pid"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("artifact not valid JSON: %v", err)
	}
	if doc.DisplayTimeUnit != "ns" || doc.BeginningOfTime != 999 {
		t.Fatalf("header wrong: %+v", doc)
	}
	if len(doc.TraceEvents) == 0 || doc.TraceEvents[0].PID != 31337 {
		t.Fatalf("artifact must carry the recorded compiler pid: %+v", doc.TraceEvents)
	}

	last := sink.events[len(sink.events)-1]
	if last.Status != StatusDone || last.Stage != StageEmit {
		t.Fatalf("final progress event wrong: %+v", last)
	}
	if !res.Timings.Has(StageRead) || !res.Timings.Has(StageReplay) || !res.Timings.Has(StageEmit) {
		t.Fatalf("missing stage timings: %+v", res.Timings)
	}
}

func TestFileReportsMissingCapture(t *testing.T) {
	sink := &recordingSink{}
	_, err := File(context.Background(), &Request{
		CapturePath: filepath.Join(t.TempDir(), "absent.gperf"),
		OpenSink:    func() (*os.File, error) { return nil, os.ErrInvalid },
		Progress:    sink,
	})
	if err == nil {
		t.Fatalf("expected error for missing capture")
	}
	last := sink.events[len(sink.events)-1]
	if last.Status != StatusError || last.Stage != StageRead {
		t.Fatalf("expected read-stage error event, got %+v", last)
	}
}

func TestFileRejectsTruncatedCapture(t *testing.T) {
	dir := t.TempDir()
	capPath := writeCapture(t, dir, capture.FileEnter(0, "/w/main.cpp", "/w"))

	outPath := filepath.Join(dir, "trace.json")
	_, err := File(context.Background(), &Request{
		CapturePath: capPath,
		OpenSink:    func() (*os.File, error) { return os.Create(outPath) },
		Warnings:    io.Discard,
	})
	if err == nil {
		t.Fatalf("expected error for truncated capture")
	}
	if _, statErr := os.Stat(outPath); !os.IsNotExist(statErr) {
		t.Fatalf("no artifact may be left behind, stat err = %v", statErr)
	}
}

func TestTimingsAccessors(t *testing.T) {
	var tm Timings
	if tm.Has(StageRead) || tm.Duration(StageRead) != 0 || tm.Total() != 0 {
		t.Fatalf("zero Timings must be empty")
	}
	tm.Set(StageRead, 5)
	tm.Set(StageEmit, 7)
	if !tm.Has(StageRead) || tm.Total() != 12 {
		t.Fatalf("timings accounting wrong: %+v", tm)
	}
}
