package renderer_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/renderer/record"
)

type failingBackend struct{ *record.Backend }

func (failingBackend) Save(w io.Writer) error {
	w.Write([]byte("partial"))
	return errors.New("disk full")
}

func TestSaveAtomicWritesFile(t *testing.T) {
	be := record.New()
	if err := be.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := renderer.SaveAtomic(be, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		t.Fatalf("output missing: %v", err)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if perm := info.Mode().Perm(); perm != 0o644 {
			t.Fatalf("output mode = %o, want 644", perm)
		}
	}
}

func TestSaveAtomicLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	err := renderer.SaveAtomic(failingBackend{record.New()}, path)
	if !errs.IsBackend(err) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("destination must not exist after failure")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("temp file not cleaned: %v", entries)
	}
}

func TestRecordRequiresPage(t *testing.T) {
	be := record.New()
	if err := be.DrawLine(0, 0, 1, 1, renderer.Stroke{}); !errs.IsBackend(err) {
		t.Fatalf("drawing before NewPage should fail: %v", err)
	}
	if err := be.NewPage(geom.Size{}); !errs.IsValidation(err) {
		t.Fatalf("zero page size should fail: %v", err)
	}
}
