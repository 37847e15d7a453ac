package geom

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度。
func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 1000}
	for _, pt := range samples {
		back := pt * PtToMm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%g back=%g", pt, back)
		}
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		mm   float64
		unit Unit
	}{
		{"20mm", 20, UnitMM},
		{"2.54cm", 25.4, UnitCM},
		{"1in", 25.4, UnitIN},
		{"12pt", 12 * PtToMm, UnitPT},
		{" 7 ", 7, UnitNone},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("%q: %v", c.in, err)
		}
		if l.Unit != c.unit || math.Abs(l.ToMM()-c.mm) > 1e-9 {
			t.Fatalf("%q 解析为 %+v (%gmm)，期望 %gmm", c.in, l, l.ToMM(), c.mm)
		}
	}
	if _, err := ParseLength("portrait"); err == nil {
		t.Fatalf("非数值应报错")
	}
}

func TestParseDimensionPercent(t *testing.T) {
	got, err := ParseDimension("50%", 170)
	if err != nil || got != 85 {
		t.Fatalf("50%% of 170 = %g, %v", got, err)
	}
}

// TestLineHeightResolve 覆盖倍数与绝对值两种语义。
func TestLineHeightResolve(t *testing.T) {
	lh, err := ParseLineHeight("1.2x")
	if err != nil {
		t.Fatal(err)
	}
	if got := lh.ResolvePT(12); math.Abs(got-14.4) > 1e-9 {
		t.Fatalf("1.2x@12pt = %g", got)
	}
	lh, err = ParseLineHeight("18pt")
	if err != nil {
		t.Fatal(err)
	}
	if got := lh.ResolvePT(12); got != 18 {
		t.Fatalf("18pt 行高解析错误: %g", got)
	}
	lh, err = ParseLineHeight("6mm")
	if err != nil {
		t.Fatal(err)
	}
	if got := lh.ResolvePT(12) * PtToMm; math.Abs(got-6) > 1e-9 {
		t.Fatalf("6mm 行高解析错误: %g", got)
	}
	if _, err := ParseLineHeight("-1x"); err == nil {
		t.Fatalf("负行高应报错")
	}
}
