package traceout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/clock"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/pathnorm"
	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

func newRun() (*tracking.Run, *clock.Manual) {
	c := clock.NewManual(time.UnixMicro(1234567))
	return tracking.NewRun(c, pathnorm.NewTable(&bytes.Buffer{})), c
}

func names(doc Document) []string {
	out := make([]string, 0, len(doc.TraceEvents))
	for _, ev := range doc.TraceEvents {
		out = append(out, ev.Name)
	}
	return out
}

func TestMinimumDurationFilter(t *testing.T) {
	r, c := newRun()

	c.Set(0)
	r.FileEnter("/w/short.h", "")
	c.Set(999_999)
	r.FileLeave()
	r.FileEnter("/w/long.h", "")
	c.Set(999_999 + 1_000_001)
	r.FileLeave()
	c.Set(10_000_000)

	doc := Build(r, 42)
	var sawShort, sawLong bool
	for _, ev := range doc.TraceEvents {
		switch ev.Name {
		case "/w/short.h":
			sawShort = true
		case "/w/long.h":
			sawLong = true
		}
	}
	if sawShort {
		t.Fatalf("999999ns event must be filtered: %v", names(doc))
	}
	if !sawLong {
		t.Fatalf("1000001ns event must survive: %v", names(doc))
	}
}

func TestSurvivingEventsArePairedWithSharedUID(t *testing.T) {
	r, c := newRun()
	c.Set(5_000_000)

	doc := Build(r, 42)
	if len(doc.TraceEvents)%2 != 0 {
		t.Fatalf("events must come in begin/end pairs, got %d", len(doc.TraceEvents))
	}
	lastUID := -1
	for i := 0; i < len(doc.TraceEvents); i += 2 {
		begin, end := doc.TraceEvents[i], doc.TraceEvents[i+1]
		if begin.Phase != "B" || end.Phase != "E" {
			t.Fatalf("pair %d has phases %q/%q", i/2, begin.Phase, end.Phase)
		}
		bu, eu := begin.Args["UID"].(int), end.Args["UID"].(int)
		if bu != eu {
			t.Fatalf("pair %d UIDs differ: %d vs %d", i/2, bu, eu)
		}
		if bu <= lastUID {
			t.Fatalf("UIDs must strictly increase in emission order")
		}
		lastUID = bu
	}
}

func TestSentinelDroppedRegardlessOfDuration(t *testing.T) {
	r, c := newRun()

	c.Set(0)
	r.FileEnter("/w/x.h", "")
	c.Set(1_000_000)
	r.FileEnter("/w/x.h", "") // circular, held open for a long time
	c.Set(50_000_000)
	r.FileLeave()
	c.Set(60_000_000)
	r.FileLeave()

	doc := Build(r, 42)
	count := 0
	for _, ev := range doc.TraceEvents {
		if ev.Category == "PREPROCESS" {
			count++
		}
		if ev.Name == tracking.SentinelCircular {
			t.Fatalf("sentinel leaked into the artifact")
		}
	}
	if count != 2 {
		t.Fatalf("expected one surviving inclusion pair, got %d records", count)
	}
}

func TestEndToEndDocument(t *testing.T) {
	r, c := newRun()

	c.Set(0)
	r.FileEnter("/w/main.cpp", "/w")
	c.Set(2_000_000)
	r.FunctionParsed("N::a()", "/w/main.cpp", "N", tracking.CategoryNamespace)
	c.Set(5_000_000)
	r.FunctionParsed("N::b()", "/w/main.cpp", "N", tracking.CategoryNamespace)
	c.Set(6_000_000)
	r.StageBegin("inline", tracking.CategoryGimplePass, 3)
	c.Set(9_000_000)
	r.FileLeave()
	c.Set(10_000_000)

	doc := Build(r, 42)

	if doc.DisplayTimeUnit != "ns" {
		t.Fatalf("displayTimeUnit = %q", doc.DisplayTimeUnit)
	}
	if doc.BeginningOfTime != 1234567 {
		t.Fatalf("beginningOfTime = %d", doc.BeginningOfTime)
	}

	// TU, inclusion, stage, two functions, one scope: 6 pairs.
	if len(doc.TraceEvents) != 12 {
		t.Fatalf("expected 12 records, got %d: %v", len(doc.TraceEvents), names(doc))
	}

	byCat := map[string]int{}
	for _, ev := range doc.TraceEvents {
		byCat[ev.Category]++
		if ev.TID != 0 || ev.PID != 42 {
			t.Fatalf("pid/tid wrong on %+v", ev)
		}
	}
	want := map[string]int{"TU": 2, "PREPROCESS": 2, "GIMPLE_PASS": 2, "FUNCTION": 4, "NAMESPACE": 2}
	for cat, n := range want {
		if byCat[cat] != n {
			t.Fatalf("category %s: got %d records, want %d (%v)", cat, byCat[cat], n, names(doc))
		}
	}

	tu := doc.TraceEvents[0]
	if tu.Name != "TU" || tu.Timestamp != 0 {
		t.Fatalf("TU begin wrong: %+v", tu)
	}
	if doc.TraceEvents[1].Timestamp != 10_000 { // 10ms in us
		t.Fatalf("TU end ts = %v", doc.TraceEvents[1].Timestamp)
	}

	incl := doc.TraceEvents[2]
	if incl.Name != "main.cpp" {
		t.Fatalf("inclusion must use the normalized name, got %q", incl.Name)
	}

	stage := doc.TraceEvents[4]
	if stage.Name != "inline" || stage.Args["static_pass_number"] != "3" {
		t.Fatalf("stage record wrong: %+v", stage)
	}

	fn := doc.TraceEvents[6]
	if fn.Name != "N::a()" || fn.Args["file"] != "main.cpp" {
		t.Fatalf("function record wrong: %+v", fn)
	}

	scope := doc.TraceEvents[10]
	if scope.Name != "N" || scope.Category != "NAMESPACE" {
		t.Fatalf("scope record wrong: %+v", scope)
	}
}

func TestWriteProducesValidJSON(t *testing.T) {
	r, c := newRun()
	c.Set(5_000_000)

	var buf bytes.Buffer
	if err := Write(r, &buf, 42); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if doc.DisplayTimeUnit != "ns" || len(doc.TraceEvents) != 2 {
		t.Fatalf("decoded document wrong: %+v", doc)
	}
}

func TestWriteFileRemovesArtifactOnFailure(t *testing.T) {
	r, c := newRun()
	c.Set(5_000_000)

	path := filepath.Join(t.TempDir(), "trace.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.Close() // force the serialization write to fail

	if err := WriteFile(r, f, 42); err == nil {
		t.Fatalf("expected an error writing to a closed file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial artifact must be removed, stat err = %v", err)
	}
}
