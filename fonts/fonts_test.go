package fonts

import (
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/errs"
)

func TestBuiltinsRegistered(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"Go", "Go-Bold", "Go-Italic", "Go-BoldItalic", "Go-Mono"} {
		if !reg.Has(name) || !IsBuiltin(name) {
			t.Fatalf("builtin %s missing", name)
		}
	}
	if _, err := reg.Load("Inter"); !errs.IsResource(err) {
		t.Fatalf("unknown font should be a resource error: %v", err)
	}
}

func TestRegisterFileMissing(t *testing.T) {
	reg := NewRegistry()
	err := reg.RegisterFile("Serif", filepath.Join(t.TempDir(), "nope.ttf"))
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMetricsWidthIsMonotonic(t *testing.T) {
	m := NewMetrics(nil)
	short, err := m.TextWidth("hello", "Go", 12)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	long, err := m.TextWidth("hello world", "Go", 12)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if short <= 0 || long <= short {
		t.Fatalf("widths not monotonic: %g %g", short, long)
	}
	big, _ := m.TextWidth("hello", "Go", 24)
	if big <= short*1.9 || big >= short*2.1 {
		t.Fatalf("width should scale with size: %g vs %g", big, short)
	}
	again, _ := m.TextWidth("hello", "Go", 12)
	if again != short {
		t.Fatalf("measurement not deterministic: %g vs %g", again, short)
	}
	if w, err := m.TextWidth("", "Go", 12); err != nil || w != 0 {
		t.Fatalf("empty string width = %g, %v", w, err)
	}
}

func TestMetricsUnknownFont(t *testing.T) {
	m := NewMetrics(nil)
	if _, err := m.TextWidth("x", "Missing", 10); !errs.IsResource(err) {
		t.Fatalf("expected resource error: %v", err)
	}
}
