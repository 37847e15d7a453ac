package toc

import (
	"strings"
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

func testStyles() Styles {
	s := style.Resolved{Font: "Go", Size: 10, Leading: 12}
	return Styles{s, s, s}
}

func TestCollectorRecord(t *testing.T) {
	c := NewCollector()
	if err := c.Record(0, "Overview", "sec-1", 1); err != nil {
		t.Fatal(err)
	}
	if err := c.Record(1, "Method", "sec-1-1", 2); err != nil {
		t.Fatal(err)
	}
	if err := c.Record(0, "Overview", "sec-1", 3); !errs.IsValidation(err) {
		t.Fatalf("duplicate anchor must fail: %v", err)
	}
	if err := c.Record(3, "Deep", "deep", 1); !errs.IsValidation(err) {
		t.Fatalf("level 3 must fail: %v", err)
	}
	if err := c.Record(0, "Nowhere", "x", 0); !errs.IsValidation(err) {
		t.Fatalf("page 0 must fail: %v", err)
	}
	got := c.Entries()
	want := []Entry{{0, "Overview", "sec-1", 1}, {1, "Method", "sec-1-1", 2}}
	if !Same(got, want) {
		t.Fatalf("entries = %+v", got)
	}
	got[0].Page = 99
	if c.Entries()[0].Page != 1 {
		t.Fatalf("Entries must return a copy")
	}
}

func TestLayoutIndentsAndReservesNumberColumn(t *testing.T) {
	opts := Options{Indent: 5, NumberWidth: 10, Gap: 2}
	entries := []Entry{
		{Level: 0, Text: "Results"},
		{Level: 2, Text: "a rather long subsection title"},
	}
	rows, err := Layout(fixedMeasurer{}, entries, 40, testStyles(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if rows[1].Indent != 10 {
		t.Fatalf("indent = %g", rows[1].Indent)
	}
	for _, l := range rows[1].Text.Lines {
		if l.Width > 40-10-10-2 {
			t.Fatalf("line %q exceeds text column", l.Text)
		}
	}
	withPages := []Entry{{Level: 0, Text: "Results", Page: 123}, {Level: 2, Text: "a rather long subsection title", Page: 7}}
	again, _ := Layout(fixedMeasurer{}, withPages, 40, testStyles(), opts)
	if Height(again) != Height(rows) {
		t.Fatalf("page numbers must not change geometry")
	}
	if _, err := Layout(fixedMeasurer{}, entries, 10, testStyles(), opts); !errs.IsValidation(err) {
		t.Fatalf("too narrow must fail: %v", err)
	}
}

func TestDrawRowNumbersLeadersAndLinks(t *testing.T) {
	be := record.New()
	if err := be.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	opts := Options{DotLeaders: true, NumberWidth: 10, Gap: 2}
	rows, _ := Layout(fixedMeasurer{}, []Entry{{Level: 0, Text: "Overview", Anchor: "ov", Page: 1}}, 60, testStyles(), opts)
	if _, err := DrawRow(be, fixedMeasurer{}, rows[0], 20, 250, 60, opts); err != nil {
		t.Fatal(err)
	}
	texts := be.Filter(record.KindText)
	if len(texts) != 3 {
		t.Fatalf("expected title, number and leader, got %d", len(texts))
	}
	if texts[0].Text != "Overview" || texts[1].Text != "1" || texts[1].X != 79 {
		t.Fatalf("unexpected texts %+v", texts[:2])
	}
	if !strings.HasPrefix(texts[2].Text, ".") {
		t.Fatalf("leader = %q", texts[2].Text)
	}
	links := be.Filter(record.KindLink)
	if len(links) != 1 || links[0].Anchor != "ov" {
		t.Fatalf("row must link to anchor: %+v", links)
	}
}

func TestPackFlowsAcrossColumns(t *testing.T) {
	var entries []Entry
	for i := 0; i < 7; i++ {
		entries = append(entries, Entry{Level: 0, Text: "Item"})
	}
	rows, _ := Layout(fixedMeasurer{}, entries, 50, testStyles(), Options{NumberWidth: 5})
	h := rows[0].Height
	cols := []geom.Frame{{X: 10, Y: 100, W: 50, H: 3 * h}, {X: 70, Y: 100, W: 50, H: 2.5 * h}}
	placed, rest := Pack(rows, cols)
	if len(placed) != 5 || len(rest) != 2 {
		t.Fatalf("placed %d rest %d", len(placed), len(rest))
	}
	if placed[3].Column != 1 || placed[3].Frame.Y != 100 || placed[3].Frame.X != 70 {
		t.Fatalf("fourth row should start column 2: %+v", placed[3])
	}
	for _, p := range placed {
		if !cols[p.Column].Contains(p.Frame) {
			t.Fatalf("row %v outside its column", p.Frame)
		}
	}
	// 单行高于整列时仍然放入
	tall := []geom.Frame{{X: 0, Y: 10, W: 50, H: h / 2}}
	placed, rest = Pack(rows[:1], tall)
	if len(placed) != 1 || len(rest) != 0 {
		t.Fatalf("oversize row must still be placed")
	}
}
