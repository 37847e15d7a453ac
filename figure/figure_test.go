package figure

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/quire/errs"
)

func TestResolveSizeAspect(t *testing.T) {
	w, h, err := ResolveSize(1600, 800, 200, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w != 200 || h != 100 {
		t.Fatalf("got %gx%g, want 200x100", w, h)
	}
	w, h, _ = ResolveSize(1600, 800, 0, 50)
	if w != 100 || h != 50 {
		t.Fatalf("height-only: got %gx%g", w, h)
	}
	w, h, _ = ResolveSize(1600, 800, 30, 30)
	if w != 30 || h != 30 {
		t.Fatalf("both given must be used as is: %gx%g", w, h)
	}
	w, h, _ = ResolveSize(40, 30, 0, 0)
	if w != 40 || h != 30 {
		t.Fatalf("natural size expected: %gx%g", w, h)
	}
}

func TestResolveSizeValidation(t *testing.T) {
	if _, _, err := ResolveSize(0, 10, 5, 0); !errs.IsValidation(err) {
		t.Fatalf("zero source must fail: %v", err)
	}
	if _, _, err := ResolveSize(10, 10, -5, 0); !errs.IsValidation(err) {
		t.Fatalf("negative request must fail: %v", err)
	}
}

func TestFit(t *testing.T) {
	w, h, scaled := Fit(300, 150, 170, 250)
	if !scaled || math.Abs(w-170) > 1e-9 || math.Abs(h-85) > 1e-9 {
		t.Fatalf("fit = %gx%g scaled=%v", w, h, scaled)
	}
	w, h, scaled = Fit(100, 400, 170, 200)
	if !scaled || h != 200 || w != 50 {
		t.Fatalf("tall fit = %gx%g", w, h)
	}
	if _, _, scaled := Fit(10, 10, 170, 250); scaled {
		t.Fatalf("small figure should not scale")
	}
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plot.png")
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeRaster(t *testing.T) {
	path := writePNG(t, 192, 96)
	src, err := Probe(path, 96)
	if err != nil {
		t.Fatal(err)
	}
	if src.Kind != KindRaster || src.Pixels != [2]int{192, 96} {
		t.Fatalf("unexpected source %+v", src)
	}
	if math.Abs(src.Width-50.8) > 1e-9 || math.Abs(src.Height-25.4) > 1e-9 {
		t.Fatalf("natural size %gx%g, want 50.8x25.4", src.Width, src.Height)
	}
}

func TestProbeSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="80mm" height="40mm" viewBox="0 0 80 40"><rect x="0" y="0" width="80" height="40" fill="#0f62fe"/></svg>`
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := Probe(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if src.Kind != KindSVG || !src.Kind.Vector() {
		t.Fatalf("kind = %v", src.Kind)
	}
	if math.Abs(src.Aspect()-2) > 1e-6 {
		t.Fatalf("aspect = %g", src.Aspect())
	}
}

func TestProbeMissing(t *testing.T) {
	_, err := Probe(filepath.Join(t.TempDir(), "absent.png"), 0)
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestProbeCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Probe(path, 0); !errs.Is(err, errs.ErrCodeResource) {
		t.Fatalf("expected RESOURCE, got %v", err)
	}
}
