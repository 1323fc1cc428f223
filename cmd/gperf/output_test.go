package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveDestinationRejectsBothFlags(t *testing.T) {
	if _, err := resolveDestination("out.json", t.TempDir(), 1); err == nil {
		t.Fatalf("expected error when both --trace and --trace-dir are set")
	}
}

func TestResolveDestinationRejectsFileForBatch(t *testing.T) {
	if _, err := resolveDestination("out.json", "", 3); err == nil {
		t.Fatalf("expected error for --trace with multiple captures")
	}
}

func TestResolveDestinationRejectsMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := resolveDestination("", missing, 1); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestOpenExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	dest, err := resolveDestination(path, "", 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	f, err := dest.open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if f.Name() != path {
		t.Fatalf("expected %q, got %q", path, f.Name())
	}
}

func TestOpenGeneratesUniqueNamesInDir(t *testing.T) {
	dir := t.TempDir()
	dest, err := resolveDestination("", dir, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	a, err := dest.open()
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := dest.open()
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	if a.Name() == b.Name() {
		t.Fatalf("generated names must be unique, both were %q", a.Name())
	}
	for _, f := range []*os.File{a, b} {
		base := filepath.Base(f.Name())
		if !strings.HasPrefix(base, "trace_") || !strings.HasSuffix(base, ".json") {
			t.Fatalf("unexpected artifact name %q", base)
		}
		if filepath.Dir(f.Name()) != dir {
			t.Fatalf("artifact created outside --trace-dir: %q", f.Name())
		}
	}
}
