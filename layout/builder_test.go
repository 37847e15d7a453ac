package layout

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/renderer/record"
	"github.com/ByLCY/quire/report"
)

// recorder 保存最后一次创建的记录后端。
type recorder struct{ last *record.Backend }

func (r *recorder) factory() (renderer.Backend, error) {
	r.last = record.New()
	return r.last, nil
}

func sampleData() any {
	return map[string]interface{}{
		"run": map[string]interface{}{"name": "cal-07"},
		"samples": []interface{}{
			map[string]interface{}{"id": "S1", "value": 1.5},
			map[string]interface{}{"id": "S2", "value": 2.25},
		},
	}
}

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 400, 200))); err != nil {
		t.Fatal(err)
	}
}

func build(t *testing.T, script string, mutate func(*BuildOptions)) (*report.Result, *record.Backend, error) {
	t.Helper()
	doc, err := dsl.ParseString(script)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec := &recorder{}
	opts := BuildOptions{Data: sampleData(), Backend: rec.factory, Logger: log.New(io.Discard)}
	if mutate != nil {
		mutate(&opts)
	}
	res, err := Build(doc, "", opts)
	return res, rec.last, err
}

const storyScript = `
report Calibration v1 {
  meta {
    title: "Run ${run.name}"
    author: "Lab"
    keywords: ["calibration", "gain"]
  }

  resources {
    color Accent = #0F62FE
    style heading1 { size: 20pt color: Accent }
  }

  story A4 portrait margin 20mm {
    footer height 12mm { center: "{page}" }
    toc
    section "Overview"
    paragraph { "Run ${run.name} finished." }
    paragraph caption align right { "note" }
    table from samples caption "Samples" {
      columns: ["ID", "Value"]
      fields: [id, value]
      widths: [30%, 70%]
    }
    keep {
      subsection "Plot"
      figure "plot.png" width 80mm caption "Gain curve"
    }
    page
    section "Appendix" anchor appendix
    "Raw text statement."
  }
}
`

func TestBuildStory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "plot.png")
	res, be, err := build(t, storyScript, func(o *BuildOptions) { o.BaseDir = dir })
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", res.Pages)
	}
	var got []string
	for _, e := range res.TOC {
		got = append(got, e.Text)
	}
	if !slices.Equal(got, []string{"Overview", "Plot", "Appendix"}) {
		t.Fatalf("unexpected toc %v", got)
	}
	if res.TOC[0].Page != 1 || res.TOC[2].Page != 2 || res.TOC[2].Anchor != "appendix" {
		t.Fatalf("unexpected toc pages %+v", res.TOC)
	}
	if be.Meta().Title != "Run cal-07" || len(be.Meta().Keywords) != 2 {
		t.Fatalf("meta not applied: %+v", be.Meta())
	}
	page1 := be.Texts(1)
	for _, want := range []string{"Run cal-07 finished.", "Table 1: Samples", "S2", "2.25", "Figure 1: Gain curve", "1"} {
		if !slices.Contains(page1, want) {
			t.Fatalf("page 1 missing %q: %v", want, page1)
		}
	}
	if !slices.Contains(be.Texts(2), "Raw text statement.") {
		t.Fatalf("page 2 missing raw text: %v", be.Texts(2))
	}
	for _, op := range be.Filter(record.KindText) {
		if op.Text == "Overview" && op.Style.Size == 20 && op.Style.Color.Hex() == "#0f62fe" {
			return
		}
	}
	t.Fatal("heading style override not applied")
}

const deckScript = `
report Review v1 {
  deck widescreen {
    slide "Agenda" {
      toc columns 2
    }
    slide "Results" "Run ${run.name}" {
      section "Results"
      text "Gain is stable." width 120mm
      table x 0mm {
        row "k" "v"
        row "gain" "1.2"
      }
      subsection "Details"
    }
  }
}
`

func TestBuildDeck(t *testing.T) {
	res, be, err := build(t, deckScript, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Pages != 2 || len(res.TOC) != 2 || res.TOC[0].Page != 2 {
		t.Fatalf("unexpected result pages=%d toc=%+v", res.Pages, res.TOC)
	}
	page2 := be.Texts(2)
	for _, want := range []string{"Results", "Run cal-07", "Gain is stable.", "gain"} {
		if !slices.Contains(page2, want) {
			t.Fatalf("slide 2 missing %q: %v", want, page2)
		}
	}
	if !slices.Contains(be.Texts(1), "Details") {
		t.Fatalf("toc slide should list subsection: %v", be.Texts(1))
	}
	var text, tbl report.Placement
	for _, p := range res.Placements {
		switch p.Kind {
		case "text":
			text = p
		case "table":
			tbl = p
		}
	}
	if tbl.Frame.Y > text.Frame.Bottom() {
		t.Fatalf("table should be stacked below text: %s vs %s", tbl.Frame, text.Frame)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]struct {
		script string
		check  func(error) bool
	}{
		"unknown command":   {`report r v1 { story A4 { banner "x" } }`, errs.IsValidation},
		"story and deck":    {`report r v1 { story A4 { "a" } deck widescreen { slide "x" } }`, errs.IsValidation},
		"no body":           {`report r v1 { meta { title: "x" } }`, errs.IsValidation},
		"missing figure":    {`report r v1 { story A4 { figure "nope.png" } }`, errs.IsResource},
		"unknown font":      {`report r v1 { resources { style body { font: Missing } } story A4 { "a" } }`, errs.IsResource},
		"bad page param":    {`report r v1 { story A4 sideways { "a" } }`, errs.IsValidation},
		"missing data":      {`report r v1 { story A4 { table from nothing { } } }`, errs.IsResource},
		"text before slide": {`report r v1 { deck widescreen { text "x" } }`, errs.IsValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := build(t, tc.script, func(o *BuildOptions) { o.BaseDir = t.TempDir() })
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestThemeApplied(t *testing.T) {
	th := config.Default()
	th.Header = config.Band{Height: 15, Left: "{title}"}
	th.Flow.Numbered = true
	res, be, err := build(t, `report r v1 {
  meta { title: "Themed" }
  story A5 { section "Intro" }
}`, func(o *BuildOptions) { o.Theme = th })
	if err != nil {
		t.Fatal(err)
	}
	if len(res.TOC) != 0 {
		t.Fatalf("no toc requested, got %+v", res.TOC)
	}
	texts := be.Texts(1)
	if !slices.Contains(texts, "Themed") || !slices.Contains(texts, "1 Intro") {
		t.Fatalf("theme header or numbering missing: %v", texts)
	}
	if size := be.Pages()[0]; size.W != 148 {
		t.Fatalf("script page size should win, got %+v", size)
	}
}

func TestBuildFileWritesOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "report.qr")
	if err := os.WriteFile(script, []byte(`report r v1 { story A4 { "hello" } }`), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out", "report.json")
	_, err := BuildFile(script, out, BuildOptions{Backend: record.Factory, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "hello") {
		t.Fatalf("output missing text: %s", raw)
	}
}
