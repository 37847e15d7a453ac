// Package fpdfrenderer 基于 codeberg.org/go-pdf/fpdf 输出 PDF，支持书签大纲与内部链接。
package fpdfrenderer

import (
	"bytes"
	"image/png"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
)

type anchor struct {
	page int
	y    float64
}

// Backend 将绘制调用直接写入 fpdf 文档。fpdf 坐标原点在左上角，绘制时翻转 y。
type Backend struct {
	fonts *fonts.Registry
	log   *log.Logger

	pdf     *fpdf.Fpdf
	pages   []geom.Size
	loaded  map[string]bool
	images  map[string]bool
	svgs    map[string]fpdf.SVGBasicType
	links   map[string]int
	anchors map[string]anchor
	meta    renderer.Meta
}

var _ renderer.Backend = (*Backend)(nil)

// New 创建后端；reg 为 nil 时使用内置字体。
func New(reg *fonts.Registry, logger *log.Logger) *Backend {
	if reg == nil {
		reg = fonts.NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Backend{
		fonts:   reg,
		log:     logger,
		loaded:  map[string]bool{},
		images:  map[string]bool{},
		svgs:    map[string]fpdf.SVGBasicType{},
		links:   map[string]int{},
		anchors: map[string]anchor{},
	}
}

// Factory 适配 renderer.Factory。
func Factory(reg *fonts.Registry, logger *log.Logger) renderer.Factory {
	return func() (renderer.Backend, error) { return New(reg, logger), nil }
}

func (b *Backend) check(op string) error {
	if b.pdf != nil && b.pdf.Err() {
		return errs.Wrap(errs.ErrCodeBackend, b.pdf.Error(), "%s 失败", op)
	}
	return nil
}

func (b *Backend) NewPage(size geom.Size) error {
	if size.W <= 0 || size.H <= 0 {
		return errs.Validation("页面尺寸必须为正：%gx%g", size.W, size.H)
	}
	if b.pdf == nil {
		b.pdf = fpdf.NewCustom(&fpdf.InitType{
			OrientationStr: "P",
			UnitStr:        "mm",
			Size:           fpdf.SizeType{Wd: size.W, Ht: size.H},
		})
		b.pdf.SetMargins(0, 0, 0)
		b.pdf.SetAutoPageBreak(false, 0)
		b.applyInfo()
	}
	b.pdf.AddPageFormat("P", fpdf.SizeType{Wd: size.W, Ht: size.H})
	b.pages = append(b.pages, size)
	return b.check("新建页面")
}

func (b *Backend) PageNumber() int { return len(b.pages) }

// flip 把页面坐标 y（向上）换算为 fpdf 坐标（向下）。
func (b *Backend) flip(y float64) float64 {
	return b.pages[len(b.pages)-1].H - y
}

func (b *Backend) ready(op string) error {
	if len(b.pages) == 0 {
		return renderer.ErrNoPage(op)
	}
	return nil
}

func (b *Backend) useFont(name string, size float64) error {
	if !b.loaded[name] {
		data, err := b.fonts.Load(name)
		if err != nil {
			return err
		}
		b.pdf.AddUTF8FontFromBytes(name, "", data)
		if err := b.check("加载字体 " + name); err != nil {
			return err
		}
		b.loaded[name] = true
	}
	b.pdf.SetFont(name, "", size)
	return nil
}

func (b *Backend) DrawText(s string, x, y float64, st style.Resolved) error {
	if err := b.ready("DrawText"); err != nil {
		return err
	}
	if err := b.useFont(st.Font, st.Size); err != nil {
		return err
	}
	b.pdf.SetTextColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	b.pdf.Text(x, b.flip(y), s)
	return b.check("绘制文字")
}

func (b *Backend) DrawLine(x1, y1, x2, y2 float64, s renderer.Stroke) error {
	if err := b.ready("DrawLine"); err != nil {
		return err
	}
	b.pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	b.pdf.SetLineWidth(s.Width)
	b.pdf.Line(x1, b.flip(y1), x2, b.flip(y2))
	return b.check("绘制直线")
}

func (b *Backend) DrawRect(f geom.Frame, fill *style.Color, stroke *renderer.Stroke) error {
	if err := b.ready("DrawRect"); err != nil {
		return err
	}
	mode := ""
	if fill != nil {
		b.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		mode += "F"
	}
	if stroke != nil && stroke.Width > 0 {
		b.pdf.SetDrawColor(int(stroke.Color.R), int(stroke.Color.G), int(stroke.Color.B))
		b.pdf.SetLineWidth(stroke.Width)
		mode += "D"
	}
	if mode == "" {
		return nil
	}
	b.pdf.Rect(f.X, b.flip(f.Y), f.W, f.H, mode)
	return b.check("绘制矩形")
}

// DrawImage 统一转码为 PNG 后注册，以支持 fpdf 原生不支持的 BMP/TIFF/WebP。
func (b *Backend) DrawImage(src figure.Source, f geom.Frame) error {
	if err := b.ready("DrawImage"); err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	if !b.images[src.Path] {
		img, err := figure.LoadRaster(src.Path)
		if err != nil {
			return errs.Wrap(errs.ErrCodeResource, err, "解码图片 %s 失败", src.Path)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return errs.Wrap(errs.ErrCodeBackend, err, "转码图片 %s 失败", src.Path)
		}
		b.pdf.RegisterImageOptionsReader(src.Path, opts, &buf)
		if err := b.check("注册图片"); err != nil {
			return err
		}
		b.images[src.Path] = true
	}
	b.pdf.ImageOptions(src.Path, f.X, b.flip(f.Y), f.W, f.H, false, opts, 0, "")
	return b.check("绘制图片")
}

func (b *Backend) DrawVectorForm(src figure.Source, t renderer.Transform) error {
	if err := b.ready("DrawVectorForm"); err != nil {
		return err
	}
	w, h := src.Width*t.ScaleX, src.Height*t.ScaleY
	top := b.flip(t.Y + h)
	if src.Kind != figure.KindSVG {
		b.log.Warn("PDF 插图以占位框绘制", "path", src.Path, "page", len(b.pages))
		return b.DrawRect(geom.Frame{X: t.X, Y: t.Y + h, W: w, H: h}, nil, &renderer.Stroke{Color: style.Muted, Width: 0.3})
	}
	sb, err := b.svg(src.Path)
	if err != nil {
		return err
	}
	if sb.Wd <= 0 || sb.Ht <= 0 {
		return errs.New(errs.ErrCodeResource, "SVG %s 缺少宽高", src.Path)
	}
	sx, sy := w/sb.Wd, h/sb.Ht
	b.pdf.SetDrawColor(0, 0, 0)
	b.pdf.SetLineWidth(0.2)
	if math.Abs(sx-sy) > 1e-9 {
		b.pdf.TransformBegin()
		b.pdf.TransformScale(100, sy/sx*100, t.X, top)
	}
	b.pdf.SetXY(t.X, top)
	b.pdf.SVGBasicWrite(&sb, sx)
	if math.Abs(sx-sy) > 1e-9 {
		b.pdf.TransformEnd()
	}
	return b.check("绘制 SVG")
}

func (b *Backend) svg(path string) (fpdf.SVGBasicType, error) {
	if sb, ok := b.svgs[path]; ok {
		return sb, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fpdf.SVGBasicType{}, errs.Wrap(errs.ErrCodeResource, err, "读取 SVG %s 失败", path)
	}
	sb, err := fpdf.SVGBasicParse(data)
	if err != nil {
		return fpdf.SVGBasicType{}, errs.Wrap(errs.ErrCodeResource, err, "解析 SVG %s 失败", path)
	}
	b.svgs[path] = sb
	return sb, nil
}

func (b *Backend) linkID(name string) int {
	if id, ok := b.links[name]; ok {
		return id
	}
	id := b.pdf.AddLink()
	b.links[name] = id
	return id
}

func (b *Backend) Bookmark(name string, y float64) error {
	if err := b.ready("Bookmark"); err != nil {
		return err
	}
	b.pdf.SetLink(b.linkID(name), b.flip(y), -1)
	b.anchors[name] = anchor{page: len(b.pages), y: y}
	return b.check("登记锚点")
}

// OutlineEntry 必须在锚点所在页调用。
func (b *Backend) OutlineEntry(text, name string, level int) error {
	if err := renderer.CheckLevel(level); err != nil {
		return err
	}
	if err := b.ready("OutlineEntry"); err != nil {
		return err
	}
	y := -1.0
	if a, ok := b.anchors[name]; ok && a.page == len(b.pages) {
		y = b.flip(a.y)
	}
	b.pdf.Bookmark(text, level, y)
	return b.check("写入大纲")
}

func (b *Backend) LinkAnchor(area geom.Frame, name string) error {
	if err := b.ready("LinkAnchor"); err != nil {
		return err
	}
	b.pdf.Link(area.X, b.flip(area.Y), area.W, area.H, b.linkID(name))
	return b.check("添加链接")
}

func (b *Backend) SetInfo(meta renderer.Meta) {
	b.meta = meta
	if b.pdf != nil {
		b.applyInfo()
	}
}

func (b *Backend) applyInfo() {
	b.pdf.SetTitle(b.meta.Title, true)
	b.pdf.SetAuthor(b.meta.Author, true)
	b.pdf.SetSubject(b.meta.Subject, true)
	b.pdf.SetKeywords(strings.Join(b.meta.Keywords, " "), true)
	creator := b.meta.Creator
	if creator == "" {
		creator = "quire"
	}
	b.pdf.SetCreator(creator, true)
}

// Save 写出 PDF。未登记的链接目标指向第一页顶部。
func (b *Backend) Save(w io.Writer) error {
	if len(b.pages) == 0 {
		return errs.New(errs.ErrCodeBackend, "缺少可渲染的页面")
	}
	names := make([]string, 0, len(b.links))
	for name := range b.links {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := b.anchors[name]; !ok {
			b.log.Warn("链接目标未登记", "anchor", name)
			b.pdf.SetLink(b.links[name], 0, 1)
		}
	}
	if err := b.pdf.Output(w); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "写入 PDF 失败")
	}
	return nil
}
