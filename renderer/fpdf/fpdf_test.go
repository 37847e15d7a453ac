package fpdfrenderer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
)

func TestOutlineAndLinks(t *testing.T) {
	b := New(nil, nil)
	st := style.Default().MustResolve(style.Body)
	if err := b.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	// 目录行先于标题绘制，链接目标在后面登记
	if err := b.LinkAnchor(geom.Frame{X: 20, Y: 270, W: 170, H: 5}, "sec-1"); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawText("Contents", 20, 272, st); err != nil {
		t.Fatal(err)
	}
	if err := b.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	if err := b.Bookmark("sec-1", 277); err != nil {
		t.Fatal(err)
	}
	if err := b.OutlineEntry("1 Overview", "sec-1", 0); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawText("1 Overview", 20, 272, st); err != nil {
		t.Fatal(err)
	}
	b.SetInfo(renderer.Meta{Title: "Report", Author: "QA"})
	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/Outlines")) {
		t.Fatalf("outline missing from output")
	}
}

func TestShapesAndSVG(t *testing.T) {
	dir := t.TempDir()
	svgPath := filepath.Join(dir, "chart.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50" viewBox="0 0 100 50"><path d="M 0 0 L 100 50 L 0 50 Z"/></svg>`
	if err := os.WriteFile(svgPath, []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}
	b := New(nil, nil)
	if err := b.NewPage(geom.Widescreen); err != nil {
		t.Fatal(err)
	}
	fill := style.Brand
	if err := b.DrawRect(geom.Frame{X: 0, Y: 142.875, W: 254, H: 18}, &fill, nil); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawLine(10, 10, 100, 10, renderer.Stroke{Color: style.Ink, Width: 0.2}); err != nil {
		t.Fatal(err)
	}
	src := figure.Source{Path: svgPath, Kind: figure.KindSVG, Width: 100, Height: 50}
	if err := b.DrawVectorForm(src, renderer.Transform{X: 20, Y: 30, ScaleX: 0.5, ScaleY: 0.8}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	var buf bytes.Buffer
	if err := b.Save(&buf); err != nil {
		t.Fatal(err)
	}
}

func TestUnknownFontIsResourceError(t *testing.T) {
	b := New(nil, nil)
	if err := b.NewPage(geom.A4); err != nil {
		t.Fatal(err)
	}
	st := style.Resolved{Font: "Nope", Size: 10, Leading: 12}
	if err := b.DrawText("x", 10, 10, st); !errs.IsResource(err) {
		t.Fatalf("expected resource error, got %v", err)
	}
}
