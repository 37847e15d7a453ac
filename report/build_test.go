package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/renderer/record"
	"github.com/ByLCY/quire/toc"
)

// onePage 模拟一遍构建：把目录条目都放在第 2 页。
func onePage(calls *[][]toc.Entry) Pass {
	return func(be renderer.Backend, entries []toc.Entry) (*Result, error) {
		*calls = append(*calls, entries)
		if err := be.NewPage(geom.A4); err != nil {
			return nil, err
		}
		if err := be.NewPage(geom.A4); err != nil {
			return nil, err
		}
		res := &Result{Pages: be.PageNumber()}
		for _, e := range entries {
			e.Page = 2
			res.TOC = append(res.TOC, e)
		}
		return res, nil
	}
}

func TestTwoPassFeedsPagesIntoSecondPass(t *testing.T) {
	var calls [][]toc.Entry
	prospective := []toc.Entry{{Level: 0, Text: "Overview", Anchor: "a"}}
	res, err := Build("", Options{Backend: record.Factory, TwoPass: true, Prospective: prospective}, onePage(&calls))
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected two passes, got %d", len(calls))
	}
	if calls[0][0].Page != 0 || calls[1][0].Page != 2 {
		t.Fatalf("second pass should see resolved pages: %+v", calls)
	}
	if res.TOC[0].Page != 2 {
		t.Fatalf("result toc = %+v", res.TOC)
	}
}

func TestSinglePassWithoutTOC(t *testing.T) {
	var calls [][]toc.Entry
	path := filepath.Join(t.TempDir(), "out.json")
	if _, err := Build(path, Options{Backend: record.Factory}, onePage(&calls)); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one pass, got %d", len(calls))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestDeterminismViolation(t *testing.T) {
	n := 0
	flaky := func(be renderer.Backend, entries []toc.Entry) (*Result, error) {
		n++
		for i := 0; i < n; i++ {
			if err := be.NewPage(geom.A4); err != nil {
				return nil, err
			}
		}
		return &Result{Pages: be.PageNumber()}, nil
	}
	_, err := Build("", Options{Backend: record.Factory, TwoPass: true}, flaky)
	if !errs.IsDeterminism(err) {
		t.Fatalf("expected determinism violation, got %v", err)
	}
}

func TestVerifyComparesPages(t *testing.T) {
	a := &Result{Pages: 3, TOC: []toc.Entry{{Text: "x", Page: 2}}}
	b := &Result{Pages: 3, TOC: []toc.Entry{{Text: "x", Page: 3}}}
	if err := Verify(a, b); !errs.IsDeterminism(err) {
		t.Fatalf("page drift must be reported: %v", err)
	}
	if err := Verify(a, a); err != nil {
		t.Fatalf("identical results: %v", err)
	}
}

func TestMissingBackend(t *testing.T) {
	if _, err := Build("", Options{}, nil); !errs.IsValidation(err) {
		t.Fatalf("expected validation error: %v", err)
	}
}

func TestCanceledContextStopsBetweenPasses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls [][]toc.Entry
	first := onePage(&calls)
	pass := func(be renderer.Backend, entries []toc.Entry) (*Result, error) {
		res, err := first(be, entries)
		cancel()
		return res, err
	}
	path := filepath.Join(t.TempDir(), "report.json")
	_, err := Build(path, Options{Backend: record.Factory, TwoPass: true, Context: ctx}, pass)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("second pass must not run after cancel, ran %d passes", len(calls))
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("nothing should be saved after cancel")
	}
}
