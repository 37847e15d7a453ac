package binding

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ByLCY/quire/errs"
)

func sample() any {
	return map[string]interface{}{
		"run": map[string]interface{}{"name": "cal-07", "gain": 1.25},
		"samples": []interface{}{
			map[string]interface{}{"id": "A", "value": 3.0, "meta": map[string]interface{}{"ok": true}},
			map[string]interface{}{"id": "B", "value": 4.5},
		},
		"matrix": []interface{}{
			[]interface{}{1.0, "x"},
			[]interface{}{2.0, "y"},
		},
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate("run ${run.name} gain ${ run.gain } first ${samples[0].id} ${missing}", sample())
	want := "run cal-07 gain 1.25 first A ${missing}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if Interpolate("${a}", nil) != "${a}" {
		t.Fatal("nil data should leave text untouched")
	}
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(sample(), "samples[1].value")
	if !ok || v != 4.5 {
		t.Fatalf("unexpected lookup %v %v", v, ok)
	}
	if _, ok := Lookup(sample(), "samples[5]"); ok {
		t.Fatal("out of range index should fail")
	}
	if _, ok := Lookup(sample(), " "); ok {
		t.Fatal("empty path should fail")
	}
}

func TestRows(t *testing.T) {
	rows, err := Rows(sample(), "samples", []string{"id", "value", "meta.ok"})
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"A", "3", "true"}, {"B", "4.5", ""}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("got %v want %v", rows, want)
	}

	rows, err = Rows(sample(), "matrix", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"1", "x"}, {"2", "y"}}) {
		t.Fatalf("unexpected matrix rows %v", rows)
	}

	if _, err := Rows(sample(), "nope", nil); !errs.IsResource(err) {
		t.Fatalf("missing path should be a resource error, got %v", err)
	}
	if _, err := Rows(sample(), "run", nil); !errs.IsValidation(err) {
		t.Fatalf("non-array should be a validation error, got %v", err)
	}
	if _, err := Rows(sample(), "samples", nil); !errs.IsValidation(err) {
		t.Fatalf("objects without fields should fail, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "result.json")
	yamlPath := filepath.Join(dir, "result.yaml")
	if err := os.WriteFile(jsonPath, []byte(`{"run":{"name":"j"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("run:\n  name: y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for path, want := range map[string]string{jsonPath: "j", yamlPath: "y"} {
		data, err := LoadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := Interpolate("${run.name}", data); got != want {
			t.Fatalf("%s: got %q want %q", path, got, want)
		}
	}
	if _, err := LoadFile(filepath.Join(dir, "none.json")); !errs.IsResource(err) {
		t.Fatalf("expected resource error, got %v", err)
	}
}
