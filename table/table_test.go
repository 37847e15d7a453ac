package table

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer/record"
	"github.com/ByLCY/quire/style"
)

type fixedMeasurer struct{}

func (fixedMeasurer) TextWidth(s, font string, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(s)), nil
}

var styles = Styles{
	Header: style.Resolved{Font: "Go-Bold", Size: 10, Leading: 12},
	Body:   style.Resolved{Font: "Go", Size: 10, Leading: 12},
}

func TestResolveWidthsScalesProportionally(t *testing.T) {
	got, err := ResolveWidths([]float64{50, 160, 100}, 3, 210)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{33.87, 108.39, 67.74}
	sum := 0.0
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.005 {
			t.Fatalf("col %d = %.4f, want %.2f", i, got[i], want[i])
		}
		sum += got[i]
	}
	if math.Abs(sum-210) > 1e-9 {
		t.Fatalf("widths sum to %g", sum)
	}
}

func TestResolveWidthsEqualAndErrors(t *testing.T) {
	got, err := ResolveWidths(nil, 4, 100)
	if err != nil || got[3] != 25 {
		t.Fatalf("equal split = %v, %v", got, err)
	}
	cases := [][]float64{{1, 2}, {0, 0, 0}, {1, -1, 3}}
	for _, c := range cases {
		if _, err := ResolveWidths(c, 3, 100); !errs.IsValidation(err) {
			t.Fatalf("%v should be rejected, got %v", c, err)
		}
	}
}

func TestLayoutRowHeights(t *testing.T) {
	spec := Spec{
		Rows: [][]string{
			{"Name", "Value"},
			{"short", "a much longer value that wraps"},
			{"x"},
		},
		HeaderRows: 1,
	}
	theme := DefaultTheme()
	res, err := Layout(fixedMeasurer{}, spec, 24, styles, theme)
	if err != nil {
		t.Fatal(err)
	}
	lead := styles.Body.LeadingMM()
	if got := res.Rows[0].Height; math.Abs(got-(lead+2*theme.PadY)) > 1e-9 {
		t.Fatalf("header height = %g", got)
	}
	lines := len(res.Rows[1].Cells[1].Lines)
	if lines < 2 {
		t.Fatalf("long cell should wrap, got %d lines", lines)
	}
	if got := res.Rows[1].Height; math.Abs(got-(float64(lines)*lead+2*theme.PadY)) > 1e-9 {
		t.Fatalf("row height = %g", got)
	}
	if len(res.Rows[2].Cells) != 2 {
		t.Fatalf("ragged rows are padded with empty cells")
	}
	if math.Abs(res.Height()-(res.Rows[0].Height+res.Rows[1].Height+res.Rows[2].Height)) > 1e-9 {
		t.Fatalf("total height mismatch")
	}
}

func TestValidate(t *testing.T) {
	bad := []Spec{
		{},
		{Rows: [][]string{{"a"}}, HeaderRows: 2},
		{Rows: [][]string{{"a", "b"}}, ColumnWidths: []float64{1}},
	}
	for i, s := range bad {
		if err := s.Validate(); !errs.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestSplitRepeatsHeader(t *testing.T) {
	spec := Spec{HeaderRows: 1, Rows: [][]string{{"h"}}}
	for i := 0; i < 10; i++ {
		spec.Rows = append(spec.Rows, []string{"row"})
	}
	res, err := Layout(fixedMeasurer{}, spec, 50, styles, DefaultTheme())
	if err != nil {
		t.Fatal(err)
	}
	rowH := res.Rows[1].Height
	head, tail, ok := res.Split(res.Rows[0].Height + 3.5*rowH)
	if !ok {
		t.Fatalf("split should succeed")
	}
	if len(head.Rows) != 4 || !head.Rows[0].Header {
		t.Fatalf("head rows = %d", len(head.Rows))
	}
	if len(tail.Rows) != 8 || !tail.Rows[0].Header || tail.Rows[1].Index != 3 {
		t.Fatalf("tail should repeat header and keep body index, got %d rows", len(tail.Rows))
	}
	if _, _, ok := res.Split(res.Rows[0].Height); ok {
		t.Fatalf("no body row fits, split must report false")
	}
	if _, tail, _ := res.Split(res.Height()); tail != nil {
		t.Fatalf("whole table fits, tail must be nil")
	}
}

func TestDrawFillsTextAndGrid(t *testing.T) {
	be := record.New()
	if err := be.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	spec := Spec{
		Rows:       [][]string{{"A", "B"}, {"1", "2"}, {"3", "4"}, {"5", "6"}},
		HeaderRows: 1,
		Zebra:      true,
	}
	res, err := Layout(fixedMeasurer{}, spec, 40, styles, DefaultTheme())
	if err != nil {
		t.Fatal(err)
	}
	f, err := res.Draw(be, 20, 250)
	if err != nil {
		t.Fatal(err)
	}
	if f.W != 40 || math.Abs(f.H-res.Height()) > 1e-9 {
		t.Fatalf("frame = %v", f)
	}
	// 表头 + 第二行表体
	if n := len(be.Filter(record.KindRect)); n != 2 {
		t.Fatalf("fills = %d, want 2", n)
	}
	if n := len(be.Filter(record.KindText)); n != 8 {
		t.Fatalf("texts = %d, want 8", n)
	}
	// 5 条横线 + 3 条竖线
	if n := len(be.Filter(record.KindLine)); n != 8 {
		t.Fatalf("grid lines = %d, want 8", n)
	}
}
