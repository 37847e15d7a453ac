// Package canvasrenderer 基于 github.com/tdewolff/canvas 输出 PDF。
package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
)

const placeholderStroke = 0.3

type page struct {
	size geom.Size
	c    *canvas.Canvas
	ctx  *canvas.Context
}

// Anchor 记录锚点所在页与高度。
type Anchor struct {
	Page int
	Y    float64
}

// OutlineItem 为一条大纲记录。canvas 的 PDF 写出器不支持书签，保留供调用方查询。
type OutlineItem struct {
	Text   string
	Anchor string
	Level  int
}

// Backend 把绘制调用落到每页一个 canvas 上，Save 时统一写出 PDF。
type Backend struct {
	metrics *fonts.Metrics
	log     *log.Logger

	pages   []*page
	anchors map[string]Anchor
	outline []OutlineItem
	meta    renderer.Meta

	mu     sync.Mutex
	images map[string]image.Image
	forms  map[string]*canvas.Canvas
}

var _ renderer.Backend = (*Backend)(nil)

// New 创建后端；metrics 为 nil 时使用内置字体。
func New(metrics *fonts.Metrics, logger *log.Logger) *Backend {
	if metrics == nil {
		metrics = fonts.NewMetrics(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Backend{
		metrics: metrics,
		log:     logger,
		anchors: map[string]Anchor{},
		images:  map[string]image.Image{},
		forms:   map[string]*canvas.Canvas{},
	}
}

// Factory 返回共享字体与图片缓存之外、每次全新的后端。
func Factory(metrics *fonts.Metrics, logger *log.Logger) renderer.Factory {
	return func() (renderer.Backend, error) { return New(metrics, logger), nil }
}

func (b *Backend) NewPage(size geom.Size) error {
	if size.W <= 0 || size.H <= 0 {
		return errs.Validation("页面尺寸必须为正：%gx%g", size.W, size.H)
	}
	c := canvas.New(size.W, size.H)
	b.pages = append(b.pages, &page{size: size, c: c, ctx: canvas.NewContext(c)})
	return nil
}

func (b *Backend) PageNumber() int { return len(b.pages) }

func (b *Backend) current(op string) (*page, error) {
	if len(b.pages) == 0 {
		return nil, renderer.ErrNoPage(op)
	}
	return b.pages[len(b.pages)-1], nil
}

func (b *Backend) DrawText(s string, x, y float64, st style.Resolved) error {
	p, err := b.current("DrawText")
	if err != nil {
		return err
	}
	face, err := b.metrics.Face(st.Font, st.Size, colorOf(st.Color))
	if err != nil {
		return err
	}
	p.ctx.DrawText(x, y, canvas.NewTextLine(face, s, canvas.Left))
	return nil
}

func (b *Backend) DrawLine(x1, y1, x2, y2 float64, s renderer.Stroke) error {
	p, err := b.current("DrawLine")
	if err != nil {
		return err
	}
	path := &canvas.Path{}
	path.MoveTo(0, 0)
	path.LineTo(x2-x1, y2-y1)
	p.ctx.SetFillColor(canvas.Transparent)
	p.ctx.SetStrokeColor(colorOf(s.Color))
	p.ctx.SetStrokeWidth(s.Width)
	p.ctx.DrawPath(x1, y1, path)
	return nil
}

func (b *Backend) DrawRect(f geom.Frame, fill *style.Color, stroke *renderer.Stroke) error {
	p, err := b.current("DrawRect")
	if err != nil {
		return err
	}
	if fill != nil {
		p.ctx.SetFillColor(colorOf(*fill))
	} else {
		p.ctx.SetFillColor(canvas.Transparent)
	}
	if stroke != nil && stroke.Width > 0 {
		p.ctx.SetStrokeColor(colorOf(stroke.Color))
		p.ctx.SetStrokeWidth(stroke.Width)
	} else {
		p.ctx.SetStrokeColor(canvas.Transparent)
	}
	p.ctx.DrawPath(f.X, f.Bottom(), canvas.Rectangle(f.W, f.H))
	return nil
}

func (b *Backend) DrawImage(src figure.Source, f geom.Frame) error {
	p, err := b.current("DrawImage")
	if err != nil {
		return err
	}
	img, err := b.raster(src.Path)
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return errs.New(errs.ErrCodeResource, "图片 %s 为空", src.Path)
	}
	// DPMM(1) 时图片宽为像素数（mm），再缩放到目标区域
	sx := f.W / float64(bounds.Dx())
	sy := f.H / float64(bounds.Dy())
	p.ctx.Push()
	p.ctx.ComposeView(canvas.Identity.Translate(f.X, f.Bottom()).Scale(sx, sy))
	p.ctx.DrawImage(0, 0, img, canvas.DPMM(1))
	p.ctx.Pop()
	return nil
}

func (b *Backend) DrawVectorForm(src figure.Source, t renderer.Transform) error {
	p, err := b.current("DrawVectorForm")
	if err != nil {
		return err
	}
	switch src.Kind {
	case figure.KindSVG:
		form, err := b.svg(src.Path)
		if err != nil {
			return err
		}
		sx, sy := t.ScaleX, t.ScaleY
		if form.W > 0 && form.H > 0 {
			sx *= src.Width / form.W
			sy *= src.Height / form.H
		}
		form.RenderViewTo(p.c, canvas.Identity.Translate(t.X, t.Y).Scale(sx, sy))
		return nil
	default:
		// PDF 表单无法嵌入 canvas 输出，绘制占位框
		b.log.Warn("PDF 插图以占位框绘制", "path", src.Path, "page", len(b.pages))
		f := geom.Frame{X: t.X, Y: t.Y + src.Height*t.ScaleY, W: src.Width * t.ScaleX, H: src.Height * t.ScaleY}
		return b.DrawRect(f, nil, &renderer.Stroke{Color: style.Muted, Width: placeholderStroke})
	}
}

func (b *Backend) Bookmark(anchor string, y float64) error {
	if _, err := b.current("Bookmark"); err != nil {
		return err
	}
	b.anchors[anchor] = Anchor{Page: len(b.pages), Y: y}
	return nil
}

func (b *Backend) OutlineEntry(text, anchor string, level int) error {
	if err := renderer.CheckLevel(level); err != nil {
		return err
	}
	b.outline = append(b.outline, OutlineItem{Text: text, Anchor: anchor, Level: level})
	return nil
}

// LinkAnchor 仅校验页面存在；canvas 的 PDF 写出器不支持内部链接。
func (b *Backend) LinkAnchor(area geom.Frame, anchor string) error {
	_, err := b.current("LinkAnchor")
	return err
}

func (b *Backend) SetInfo(meta renderer.Meta) { b.meta = meta }

// Outline 返回已登记的大纲。
func (b *Backend) Outline() []OutlineItem { return b.outline }

// Anchors 返回已登记的锚点。
func (b *Backend) Anchors() map[string]Anchor { return b.anchors }

func (b *Backend) Save(w io.Writer) error {
	if len(b.pages) == 0 {
		return errs.New(errs.ErrCodeBackend, "缺少可渲染的页面")
	}
	first := b.pages[0].size
	writer := pdf.New(w, first.W, first.H, nil)
	keywords := strings.Join(b.meta.Keywords, ", ")
	writer.SetInfo(b.meta.Title, b.meta.Subject, keywords, b.meta.Author, b.meta.Creator)
	for i, p := range b.pages {
		if i > 0 {
			writer.NewPage(p.size.W, p.size.H)
		}
		p.c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "写入 PDF 失败")
	}
	return nil
}

func (b *Backend) raster(path string) (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if img, ok := b.images[path]; ok {
		return img, nil
	}
	img, err := figure.LoadRaster(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeResource, err, "解码图片 %s 失败", path)
	}
	b.images[path] = img
	return img, nil
}

func (b *Backend) svg(path string) (*canvas.Canvas, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.forms[path]; ok {
		return c, nil
	}
	c, err := figure.LoadSVG(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeResource, err, "解析 SVG %s 失败", path)
	}
	b.forms[path] = c
	return c, nil
}

func colorOf(c style.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

func (b *Backend) String() string { return fmt.Sprintf("canvas(%d pages)", len(b.pages)) }
