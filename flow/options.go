package flow

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/text"
	"github.com/ByLCY/quire/toc"
)

// OversizePolicy 决定高于整页的 KeepTogether 块如何处理。
type OversizePolicy int

const (
	// OversizeSplit 拆开逐个放置子元素并记录警告。
	OversizeSplit OversizePolicy = iota
	// OversizeReject 直接返回 ValidationError。
	OversizeReject
)

// ParseOversize 解析 split / reject。
func ParseOversize(s string) (OversizePolicy, error) {
	switch s {
	case "", "split":
		return OversizeSplit, nil
	case "reject":
		return OversizeReject, nil
	default:
		return OversizeSplit, errs.Validation("未知的超高策略：%s", s)
	}
}

// Band 为页眉或页脚。文本支持 {page} 与 {title} 占位符。
type Band struct {
	Height float64 `yaml:"height" toml:"height"`
	Left   string  `yaml:"left" toml:"left"`
	Center string  `yaml:"center" toml:"center"`
	Right  string  `yaml:"right" toml:"right"`
	Rule   bool    `yaml:"rule" toml:"rule"`
}

func (b Band) empty() bool {
	return b.Left == "" && b.Center == "" && b.Right == "" && !b.Rule
}

// Options 配置流式文档。长度单位 mm。
type Options struct {
	Page     geom.Size
	Margin   geom.Margin
	Styles   *style.Registry
	Measurer text.Measurer
	Backend  renderer.Factory
	Header   Band
	Footer   Band
	// Spacing 为相邻元素之间的垂直间距。
	Spacing   float64
	Oversize  OversizePolicy
	Table     table.Theme
	TOC       toc.Options
	Numbered  bool
	FigureDPI float64
	Meta      renderer.Meta
	Logger    *log.Logger
	// Context 可取消构建，为空时不可取消。
	Context context.Context
}

// DefaultOptions 返回 A4、20mm 边距、内置字体与 canvas 后端的默认配置。
func DefaultOptions() Options {
	metrics := fonts.NewMetrics(nil)
	return Options{
		Page:     geom.A4,
		Margin:   geom.Uniform(20),
		Styles:   style.Default(),
		Measurer: metrics,
		Backend:  canvasrenderer.Factory(metrics, nil),
		Spacing:  3,
		Table:    table.DefaultTheme(),
		TOC:      toc.DefaultOptions(),
		Numbered: false,
	}
}

func (o *Options) validate() error {
	if o.Page.W <= 0 || o.Page.H <= 0 {
		return errs.Validation("页面尺寸必须为正：%gx%g", o.Page.W, o.Page.H)
	}
	if o.Styles == nil || o.Measurer == nil {
		return errs.Validation("样式表与文字度量不能为空")
	}
	if o.Spacing < 0 {
		return errs.Validation("元素间距不能为负：%g", o.Spacing)
	}
	if o.Header.Height < 0 || o.Footer.Height < 0 {
		return errs.Validation("页眉页脚高度不能为负")
	}
	body := o.body()
	if body.W <= 0 || body.H <= 0 {
		return errs.Validation("边距过大，正文区域为空")
	}
	for id := style.Base; id <= style.SlideSubtitle; id++ {
		if _, err := o.Styles.Resolve(id); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.FigureDPI <= 0 {
		o.FigureDPI = 96
	}
	return nil
}

// body 返回扣除边距与页眉页脚后的正文区域。
func (o *Options) body() geom.Frame {
	top := o.Margin.Top
	if o.Header.Height > top {
		top = o.Header.Height
	}
	bottom := o.Margin.Bottom
	if o.Footer.Height > bottom {
		bottom = o.Footer.Height
	}
	return geom.Frame{
		X: o.Margin.Left,
		Y: o.Page.H - top,
		W: o.Page.W - o.Margin.Left - o.Margin.Right,
		H: o.Page.H - top - bottom,
	}
}
