package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/style"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default theme invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "theme.yaml", `
backend: fpdf
page:
  size: letter
  landscape: true
  margin: [15, 10]
fonts:
  Inter: fonts/Inter.ttf
styles:
  heading1:
    size: 20
    color: "#112233"
  body:
    leading: 1.5x
    align: right
header:
  height: 15
  right: "{page}"
  rule: true
flow:
  oversize: reject
`)
	th, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.Backend != "fpdf" || th.Flow.Oversize != "reject" {
		t.Fatalf("unexpected theme %+v", th)
	}
	size, err := th.PageSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != geom.Letter.Landscape() {
		t.Fatalf("unexpected page size %+v", size)
	}
	if th.Flow.Spacing != 3 || th.TOC.Title != "Contents" {
		t.Fatal("defaults should survive a partial theme")
	}
	if got := th.Fonts["Inter"]; got != filepath.Join(filepath.Dir(path), "fonts", "Inter.ttf") {
		t.Fatalf("font path should be relative to theme file, got %s", got)
	}

	reg, err := th.Registry()
	if err != nil {
		t.Fatal(err)
	}
	h1 := reg.MustResolve(style.Heading1)
	if h1.Size != 20 || h1.Color.Hex() != "#112233" || h1.Font != "Go-Bold" {
		t.Fatalf("heading override not applied: %+v", h1)
	}
	body := reg.MustResolve(style.Body)
	if body.Align != style.AlignRight || body.Leading != body.Size*1.5 {
		t.Fatalf("body override not applied: %+v", body)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "theme.toml", `
backend = "canvas"

[page]
size = "A5"
margin = [12, 10, 14, 10]

[styles.caption]
parent = "body"
size = 8.5

[slide]
band_fill = "#222222"
band_height = 18

[toc]
title = "目录"
dot_leaders = false
`)
	th, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if th.TOC.Title != "目录" || th.TOC.DotLeaders {
		t.Fatalf("toc not loaded: %+v", th.TOC)
	}
	m, err := geom.MarginFrom(th.Page.Margin)
	if err != nil || m.Bottom != 14 {
		t.Fatalf("unexpected margin %+v (%v)", m, err)
	}
	reg, err := th.Registry()
	if err != nil {
		t.Fatal(err)
	}
	if c := reg.MustResolve(style.Caption); c.Size != 8.5 || c.Font != "Go-Italic" {
		t.Fatalf("caption override should keep its own font: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		name, content string
		check         func(error) bool
	}{
		"unknown yaml field": {"a.yaml", "colour: red\n", errs.IsValidation},
		"unknown toml field": {"a.toml", "colour = \"red\"\n", errs.IsValidation},
		"bad color":          {"a.yaml", "table:\n  header_fill: \"#zz\"\n", errs.IsValidation},
		"unknown style":      {"a.yaml", "styles:\n  sidebar:\n    size: 9\n", errs.IsValidation},
		"bad oversize":       {"a.yaml", "flow:\n  oversize: shrink\n", errs.IsValidation},
		"bad page":           {"a.yaml", "page:\n  size: B7\n", errs.IsValidation},
		"bad extension":      {"a.json", "{}", errs.IsValidation},
		"parent cycle":       {"a.yaml", "styles:\n  heading1:\n    parent: heading2\n  heading2:\n    parent: heading1\n", errs.IsValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, tc.name, tc.content))
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errs.IsResource(err) {
		t.Fatalf("missing theme should be a resource error, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	th, err := LoadOrDefault("")
	if err != nil || th.Page.Size != "A4" {
		t.Fatalf("expected default theme, got %+v (%v)", th, err)
	}
}
