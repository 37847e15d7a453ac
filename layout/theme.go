package layout

import (
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/flow"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	canvasrenderer "github.com/ByLCY/quire/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/quire/renderer/fpdf"
	"github.com/ByLCY/quire/slide"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/toc"
)

// backendFor 按主题选择绘图后端。
func (e *env) backendFor() renderer.Factory {
	if e.opts.Backend != nil {
		return e.opts.Backend
	}
	if e.theme.Backend == "fpdf" {
		return fpdfrenderer.Factory(e.fonts, e.logger)
	}
	return canvasrenderer.Factory(e.metrics, e.logger)
}

func tableTheme(t config.Table) table.Theme {
	th := table.DefaultTheme()
	if t.HeaderFill != "" {
		th.HeaderFill = style.MustColor(t.HeaderFill)
	}
	if t.ZebraFill != "" {
		th.ZebraFill = style.MustColor(t.ZebraFill)
	}
	if t.GridColor != "" {
		th.Grid.Color = style.MustColor(t.GridColor)
	}
	th.Grid.Width = t.GridWidth
	th.PadX, th.PadY = t.PadX, t.PadY
	return th
}

func tocOptions(t config.TOC) toc.Options {
	return toc.Options{
		Title:       t.Title,
		DotLeaders:  t.DotLeaders,
		Indent:      t.Indent,
		NumberWidth: t.NumberWidth,
		Gap:         t.Gap,
		RowGap:      t.RowGap,
	}
}

func band(b config.Band) flow.Band {
	return flow.Band{Height: b.Height, Left: b.Left, Center: b.Center, Right: b.Right, Rule: b.Rule}
}

// flowOptions 把主题转换为流式文档配置；主题已经过 Validate。
func (e *env) flowOptions() (flow.Options, error) {
	t := e.theme
	size, err := t.PageSize()
	if err != nil {
		return flow.Options{}, err
	}
	margin, err := geom.MarginFrom(t.Page.Margin)
	if err != nil {
		return flow.Options{}, err
	}
	oversize, err := flow.ParseOversize(t.Flow.Oversize)
	if err != nil {
		return flow.Options{}, err
	}
	return flow.Options{
		Page:      size,
		Margin:    margin,
		Styles:    e.styles,
		Measurer:  e.metrics,
		Backend:   e.backendFor(),
		Header:    band(t.Header),
		Footer:    band(t.Footer),
		Spacing:   t.Flow.Spacing,
		Oversize:  oversize,
		Table:     tableTheme(t.Table),
		TOC:       tocOptions(t.TOC),
		Numbered:  t.Flow.Numbered,
		FigureDPI: t.Flow.FigureDPI,
		Meta:      e.meta,
		Logger:    e.logger,
		Context:   e.opts.Context,
	}, nil
}

// slideOptions 把主题转换为幻灯片配置。
func (e *env) slideOptions() (slide.Options, error) {
	t := e.theme
	size, err := t.SlideSize()
	if err != nil {
		return slide.Options{}, err
	}
	margin, err := geom.MarginFrom(t.Slide.Margin)
	if err != nil {
		return slide.Options{}, err
	}
	fill := style.Brand
	if t.Slide.BandFill != "" {
		fill = style.MustColor(t.Slide.BandFill)
	}
	return slide.Options{
		Size:     size,
		Margin:   margin,
		Styles:   e.styles,
		Measurer: e.metrics,
		Backend:  e.backendFor(),
		Band: slide.Band{
			Height:    t.Slide.BandHeight,
			Fill:      fill,
			Logo:      t.Slide.Logo,
			LogoWidth: t.Slide.LogoWidth,
			Padding:   t.Slide.Padding,
		},
		Table:     tableTheme(t.Table),
		TOC:       tocOptions(t.TOC),
		FigureDPI: t.Flow.FigureDPI,
		Meta:      e.meta,
		Logger:    e.logger,
		Context:   e.opts.Context,
	}, nil
}
