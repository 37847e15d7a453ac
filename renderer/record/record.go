// Package record 提供只在内存中记录绘制调用的后端。
//
// 两遍构建的第一遍使用它丢弃输出；测试也用它断言绘制结果。
package record

import (
	"encoding/json"
	"io"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
)

// Kind 为绘制调用类型。
type Kind string

const (
	KindPage    Kind = "page"
	KindText    Kind = "text"
	KindLine    Kind = "line"
	KindRect    Kind = "rect"
	KindImage   Kind = "image"
	KindForm    Kind = "form"
	KindAnchor  Kind = "anchor"
	KindOutline Kind = "outline"
	KindLink    Kind = "link"
)

// Op 为一次绘制调用。
type Op struct {
	Kind   Kind                `json:"kind"`
	Page   int                 `json:"page"`
	Text   string              `json:"text,omitempty"`
	X      float64             `json:"x,omitempty"`
	Y      float64             `json:"y,omitempty"`
	X2     float64             `json:"x2,omitempty"`
	Y2     float64             `json:"y2,omitempty"`
	Frame  geom.Frame          `json:"frame,omitempty"`
	Style  *style.Resolved     `json:"style,omitempty"`
	Fill   *style.Color        `json:"fill,omitempty"`
	Anchor string              `json:"anchor,omitempty"`
	Level  int                 `json:"level,omitempty"`
	Source *figure.Source      `json:"source,omitempty"`
	Xform  *renderer.Transform `json:"transform,omitempty"`
}

// Backend 记录全部调用。
type Backend struct {
	pages   []geom.Size
	ops     []Op
	anchors map[string]int
	meta    renderer.Meta
}

var _ renderer.Backend = (*Backend)(nil)

// New 创建记录后端。
func New() *Backend {
	return &Backend{anchors: map[string]int{}}
}

// Factory 适配 renderer.Factory。
func Factory() (renderer.Backend, error) { return New(), nil }

func (b *Backend) NewPage(size geom.Size) error {
	if size.W <= 0 || size.H <= 0 {
		return errs.Validation("页面尺寸必须为正：%gx%g", size.W, size.H)
	}
	b.pages = append(b.pages, size)
	b.ops = append(b.ops, Op{Kind: KindPage, Page: len(b.pages), Frame: size.Frame()})
	return nil
}

func (b *Backend) PageNumber() int { return len(b.pages) }

func (b *Backend) push(op Op, name string) error {
	if len(b.pages) == 0 {
		return renderer.ErrNoPage(name)
	}
	op.Page = len(b.pages)
	b.ops = append(b.ops, op)
	return nil
}

func (b *Backend) DrawText(s string, x, y float64, st style.Resolved) error {
	return b.push(Op{Kind: KindText, Text: s, X: x, Y: y, Style: &st}, "DrawText")
}

func (b *Backend) DrawLine(x1, y1, x2, y2 float64, s renderer.Stroke) error {
	return b.push(Op{Kind: KindLine, X: x1, Y: y1, X2: x2, Y2: y2}, "DrawLine")
}

func (b *Backend) DrawRect(f geom.Frame, fill *style.Color, stroke *renderer.Stroke) error {
	return b.push(Op{Kind: KindRect, Frame: f, Fill: fill}, "DrawRect")
}

func (b *Backend) DrawImage(src figure.Source, f geom.Frame) error {
	return b.push(Op{Kind: KindImage, Frame: f, Source: &src}, "DrawImage")
}

func (b *Backend) DrawVectorForm(src figure.Source, t renderer.Transform) error {
	f := geom.Frame{X: t.X, Y: t.Y + src.Height*t.ScaleY, W: src.Width * t.ScaleX, H: src.Height * t.ScaleY}
	return b.push(Op{Kind: KindForm, Frame: f, Source: &src, Xform: &t}, "DrawVectorForm")
}

func (b *Backend) Bookmark(anchor string, y float64) error {
	if err := b.push(Op{Kind: KindAnchor, Anchor: anchor, Y: y}, "Bookmark"); err != nil {
		return err
	}
	b.anchors[anchor] = len(b.pages)
	return nil
}

func (b *Backend) OutlineEntry(text, anchor string, level int) error {
	if err := renderer.CheckLevel(level); err != nil {
		return err
	}
	return b.push(Op{Kind: KindOutline, Text: text, Anchor: anchor, Level: level}, "OutlineEntry")
}

func (b *Backend) LinkAnchor(area geom.Frame, anchor string) error {
	return b.push(Op{Kind: KindLink, Frame: area, Anchor: anchor}, "LinkAnchor")
}

func (b *Backend) SetInfo(meta renderer.Meta) { b.meta = meta }

// Save 以 JSON 形式写出记录，便于调试。
func (b *Backend) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Meta  renderer.Meta `json:"meta"`
		Pages []geom.Size   `json:"pages"`
		Ops   []Op          `json:"ops"`
	}{b.meta, b.pages, b.ops})
}

// Ops 返回全部调用记录。
func (b *Backend) Ops() []Op { return b.ops }

// Pages 返回各页尺寸。
func (b *Backend) Pages() []geom.Size { return b.pages }

// Meta 返回最近一次 SetInfo 的内容。
func (b *Backend) Meta() renderer.Meta { return b.meta }

// AnchorPage 返回锚点所在页，未登记返回 0。
func (b *Backend) AnchorPage(anchor string) int { return b.anchors[anchor] }

// Filter 返回指定类型的调用。
func (b *Backend) Filter(kind Kind) []Op {
	var out []Op
	for _, op := range b.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts 返回第 page 页（从 1 开始）绘制的全部文字。
func (b *Backend) Texts(page int) []string {
	var out []string
	for _, op := range b.ops {
		if op.Kind == KindText && op.Page == page {
			out = append(out, op.Text)
		}
	}
	return out
}
