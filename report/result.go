package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/toc"
)

// Placement 记录一个已放置元素。
type Placement struct {
	Kind  string     `json:"kind"`
	Page  int        `json:"page"`
	Frame geom.Frame `json:"frame"`
	Label string     `json:"label,omitempty"`
}

// Result 为一遍构建的布局结果。
type Result struct {
	Pages      int         `json:"pages"`
	Placements []Placement `json:"placements"`
	TOC        []toc.Entry `json:"toc"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Add 追加一条放置记录。
func (r *Result) Add(kind string, page int, f geom.Frame, label string) {
	r.Placements = append(r.Placements, Placement{Kind: kind, Page: page, Frame: f, Label: label})
}

// OnPage 返回第 page 页的全部放置记录。
func (r *Result) OnPage(page int) []Placement {
	var out []Placement
	for _, p := range r.Placements {
		if p.Page == page {
			out = append(out, p)
		}
	}
	return out
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
