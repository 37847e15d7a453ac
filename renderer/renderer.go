// Package renderer 定义绘图后端接口与原子保存。
//
// 坐标统一为页面坐标（mm，原点左下角，y 向上）。DrawText 的 y 为基线位置。
package renderer

import (
	"io"

	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/style"
)

// Stroke 描述线条颜色与宽度（mm）。
type Stroke struct {
	Color style.Color
	Width float64
}

// Transform 把矢量表单的自然坐标（mm，原点左下角）映射到页面：先缩放再平移。
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
}

// Meta 为文档元数据。
type Meta struct {
	Title    string   `json:"title" yaml:"title" toml:"title"`
	Author   string   `json:"author" yaml:"author" toml:"author"`
	Subject  string   `json:"subject" yaml:"subject" toml:"subject"`
	Keywords []string `json:"keywords" yaml:"keywords" toml:"keywords"`
	Creator  string   `json:"creator" yaml:"creator" toml:"creator"`
}

// Backend 是排版引擎唯一依赖的绘图能力。
// 除 Save 外的绘制调用都作用于当前页，调用 NewPage 之前绘制返回错误。
type Backend interface {
	NewPage(size geom.Size) error
	PageNumber() int

	DrawText(s string, x, y float64, st style.Resolved) error
	DrawLine(x1, y1, x2, y2 float64, s Stroke) error
	DrawRect(f geom.Frame, fill *style.Color, stroke *Stroke) error
	DrawImage(src figure.Source, f geom.Frame) error
	DrawVectorForm(src figure.Source, t Transform) error

	// Bookmark 在当前页的 y 处登记锚点；OutlineEntry 为锚点添加一条大纲。
	Bookmark(anchor string, y float64) error
	OutlineEntry(text, anchor string, level int) error
	// LinkAnchor 使区域可点击跳转到锚点，锚点可以稍后才登记。
	LinkAnchor(area geom.Frame, anchor string) error

	SetInfo(meta Meta)
	Save(w io.Writer) error
}

// Factory 为每一遍构建创建全新的后端。
type Factory func() (Backend, error)
