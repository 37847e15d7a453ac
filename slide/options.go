package slide

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

// Band 为每张幻灯片顶部的标题栏。Logo 为空时不绘制标志。
type Band struct {
	Height    float64
	Fill      style.Color
	Logo      string
	LogoWidth float64
	Padding   float64
}

// Options 配置幻灯片文档，长度单位 mm。
type Options struct {
	Size      geom.Size
	Margin    geom.Margin
	Styles    *style.Registry
	Measurer  text.Measurer
	Backend   renderer.Factory
	Band      Band
	Table     table.Theme
	TOC       toc.Options
	FigureDPI float64
	Meta      renderer.Meta
	Logger    *log.Logger
	// Context 可取消构建，为空时不可取消。
	Context context.Context
}

// DefaultOptions 返回 16:9 宽屏、品牌色标题栏与 canvas 后端的默认配置。
func DefaultOptions() Options {
	metrics := fonts.NewMetrics(nil)
	return Options{
		Size:     geom.Widescreen,
		Margin:   geom.Uniform(10),
		Styles:   style.Default(),
		Measurer: metrics,
		Backend:  canvasrenderer.Factory(metrics, nil),
		Band:     Band{Height: 22, Fill: style.Brand, LogoWidth: 24, Padding: 4},
		Table:    table.DefaultTheme(),
		TOC:      toc.DefaultOptions(),
	}
}

func (o *Options) validate() error {
	if o.Size.W <= 0 || o.Size.H <= 0 {
		return errs.Validation("幻灯片尺寸必须为正：%gx%g", o.Size.W, o.Size.H)
	}
	if o.Styles == nil || o.Measurer == nil {
		return errs.Validation("样式表与文字度量不能为空")
	}
	if o.Band.Height < 0 || o.Band.Height >= o.Size.H {
		return errs.Validation("标题栏高度无效：%g", o.Band.Height)
	}
	if b := o.body(); b.W <= 0 || b.H <= 0 {
		return errs.Validation("边距过大，内容区域为空")
	}
	for _, id := range []style.ID{style.SlideTitle, style.SlideSubtitle, style.Body, style.TableHeader, style.TableBody, style.TocLevel0, style.TocLevel1, style.TocLevel2} {
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

// body 为标题栏下方扣除边距后的内容区域。
func (o *Options) body() geom.Frame {
	top := o.Size.H - o.Band.Height - o.Margin.Top
	return geom.Frame{
		X: o.Margin.Left,
		Y: top,
		W: o.Size.W - o.Margin.Left - o.Margin.Right,
		H: top - o.Margin.Bottom,
	}
}
