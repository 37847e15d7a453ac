package style

import (
	"math"
	"testing"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
)

func TestDefaultRegistryResolvesEveryID(t *testing.T) {
	reg := Default()
	for id := Base; id < numIDs; id++ {
		s, err := reg.Resolve(id)
		if err != nil {
			t.Fatalf("resolve %s: %v", id, err)
		}
		if s.Font == "" || s.Size <= 0 || s.Leading <= 0 {
			t.Fatalf("%s resolved incompletely: %+v", id, s)
		}
	}
}

func TestInheritanceMergesDeltas(t *testing.T) {
	reg := Default()
	h3 := reg.MustResolve(Heading3)
	if h3.Font != "Go-Bold" {
		t.Fatalf("heading3 should inherit bold font from heading1, got %s", h3.Font)
	}
	if h3.Size != 12 {
		t.Fatalf("heading3 size = %g", h3.Size)
	}
	// 行高倍数在子样式字号上重新计算
	if math.Abs(h3.Leading-15) > 1e-9 {
		t.Fatalf("heading3 leading = %g, want 15", h3.Leading)
	}
	if h3.Color != Ink {
		t.Fatalf("heading3 color should come from base")
	}
}

func TestCycleIsValidationError(t *testing.T) {
	reg := Default()
	if err := reg.Define(Heading1, Def{Parent: Heading2}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Resolve(Heading3); !errs.IsValidation(err) {
		t.Fatalf("expected cycle validation error, got %v", err)
	}
}

func TestIncompleteBase(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Resolve(Body); !errs.IsValidation(err) {
		t.Fatalf("empty registry must not resolve: %v", err)
	}
	size := 0.0
	if err := reg.Define(Base, Def{Size: &size}); !errs.IsValidation(err) {
		t.Fatalf("zero size must be rejected: %v", err)
	}
}

func TestMergeKeepsUntouchedFields(t *testing.T) {
	reg := Default()
	lh := geom.Absolute(geom.PT(20))
	if err := reg.Merge(Body, Def{Leading: &lh}, false); err != nil {
		t.Fatal(err)
	}
	b := reg.MustResolve(Body)
	if b.Leading != 20 || b.Size != 10.5 {
		t.Fatalf("merged body = %+v", b)
	}
}

func TestOverrideScalesLeading(t *testing.T) {
	base := Resolved{Font: "Go", Size: 10, Leading: 12}
	size := 20.0
	got := base.With(Override{Size: &size})
	if got.Leading != 24 {
		t.Fatalf("leading should scale with size, got %g", got.Leading)
	}
	a := AlignRight
	if got := base.With(Override{Align: &a}); got.Align != AlignRight || got.Size != 10 {
		t.Fatalf("align override = %+v", got)
	}
}

func TestParseIDAndColor(t *testing.T) {
	id, err := ParseID("Table_Header")
	if err != nil || id != TableHeader {
		t.Fatalf("ParseID = %v, %v", id, err)
	}
	if _, err := ParseID("footnote"); !errs.IsValidation(err) {
		t.Fatalf("unknown style must fail")
	}
	c, err := ParseColor("#0F6")
	if err != nil || c != (Color{R: 0, G: 0xff, B: 0x66}) {
		t.Fatalf("ParseColor = %+v, %v", c, err)
	}
	if c.Hex() != "#00ff66" {
		t.Fatalf("Hex = %s", c.Hex())
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("short color must fail")
	}
}

func TestAlignOffset(t *testing.T) {
	if got := AlignCenter.Offset(100, 40); got != 30 {
		t.Fatalf("center offset %g", got)
	}
	if got := AlignRight.Offset(100, 140); got != 0 {
		t.Fatalf("overflowing content keeps left edge, got %g", got)
	}
}
