package slide

import (
	"fmt"

	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/text"
	"github.com/ByLCY/quire/toc"
)

// pass 为一遍构建的可变状态。
type pass struct {
	opts      *Options
	be        renderer.Backend
	logo      *figure.Source
	entries   []toc.Entry
	collector *toc.Collector
	res       *report.Result
	title     string
	subtitle  string
}

func (p *pass) run(ops []op) (*report.Result, error) {
	for _, o := range ops {
		if err := p.apply(o); err != nil {
			return nil, err
		}
	}
	p.res.Pages = p.be.PageNumber()
	p.res.TOC = p.collector.Entries()
	return p.res, nil
}

func (p *pass) apply(o op) error {
	switch o.kind {
	case opSlide:
		p.title, p.subtitle = o.text, o.subtitle
		return p.newSlide()
	case opText:
		w, err := text.Wrap(p.opts.Measurer, o.text, o.style, o.frame.W)
		if err != nil {
			return err
		}
		f, err := text.Draw(p.be, w, o.frame.X, o.frame.Y, o.frame.W)
		if err != nil {
			return err
		}
		p.add("text", f, "")
	case opTable:
		st := table.Styles{
			Header: p.opts.Styles.MustResolve(style.TableHeader),
			Body:   p.opts.Styles.MustResolve(style.TableBody),
		}
		res, err := table.Layout(p.opts.Measurer, o.table, o.frame.W, st, p.opts.Table)
		if err != nil {
			return err
		}
		f, err := res.Draw(p.be, o.frame.X, o.frame.Y)
		if err != nil {
			return err
		}
		p.add("table", f, "")
	case opFigure:
		if err := drawFigure(p.be, o.figure, o.frame); err != nil {
			return err
		}
		p.add("figure", o.frame, o.figure.Path)
	case opHeading:
		if err := p.be.Bookmark(o.anchor, p.opts.Size.H); err != nil {
			return err
		}
		if err := p.be.OutlineEntry(o.text, o.anchor, o.level); err != nil {
			return err
		}
		if o.inTOC {
			return p.collector.Record(o.level, o.text, o.anchor, p.be.PageNumber())
		}
	case opTOC:
		return p.drawTOC(o.columns)
	default:
		return fmt.Errorf("未知操作类型 %d", o.kind)
	}
	return nil
}

func (p *pass) add(kind string, f geom.Frame, label string) {
	p.res.Add(kind, p.be.PageNumber(), f, label)
}

func drawFigure(be renderer.Backend, src figure.Source, f geom.Frame) error {
	if src.Kind.Vector() {
		return be.DrawVectorForm(src, renderer.Transform{
			X: f.X, Y: f.Bottom(),
			ScaleX: f.W / src.Width, ScaleY: f.H / src.Height,
		})
	}
	return be.DrawImage(src, f)
}

// newSlide 开始新页并绘制标题栏：底色、标题与副标题垂直居中，标志靠右。
func (p *pass) newSlide() error {
	if err := p.be.NewPage(p.opts.Size); err != nil {
		return err
	}
	b := p.opts.Band
	if b.Height <= 0 {
		return nil
	}
	size := p.opts.Size
	band := geom.Frame{X: 0, Y: size.H, W: size.W, H: b.Height}
	fill := b.Fill
	if err := p.be.DrawRect(band, &fill, nil); err != nil {
		return err
	}

	right := size.W - p.opts.Margin.Right
	if p.logo != nil {
		w, h, _ := figure.Fit(b.LogoWidth, b.LogoWidth/p.logo.Aspect(), b.LogoWidth, b.Height-2*b.Padding)
		lf := geom.Frame{X: right - w, Y: band.Y - (b.Height-h)/2, W: w, H: h}
		if err := drawFigure(p.be, *p.logo, lf); err != nil {
			return err
		}
		right = lf.X - b.Padding
	}

	x := p.opts.Margin.Left
	width := right - x
	if width <= 0 {
		return nil
	}
	var blocks []text.Wrapped
	for _, t := range []struct {
		s  string
		id style.ID
	}{{p.title, style.SlideTitle}, {p.subtitle, style.SlideSubtitle}} {
		if t.s == "" {
			continue
		}
		w, err := text.Wrap(p.opts.Measurer, t.s, p.opts.Styles.MustResolve(t.id), width)
		if err != nil {
			return err
		}
		blocks = append(blocks, w)
	}
	total := 0.0
	for _, w := range blocks {
		total += w.Height()
	}
	top := band.Y - (b.Height-total)/2
	for _, w := range blocks {
		if _, err := text.Draw(p.be, w, x, top, width); err != nil {
			return err
		}
		top -= w.Height()
	}
	return nil
}

// drawTOC 把目录行依次装入各列，列用尽时另起续页。
func (p *pass) drawTOC(columns []geom.Frame) error {
	width := columns[0].W
	for _, c := range columns[1:] {
		width = min(width, c.W)
	}
	var st toc.Styles
	for i := range st {
		st[i] = p.opts.Styles.MustResolve(style.TocFor(i))
	}
	rows, err := toc.Layout(p.opts.Measurer, p.entries, width, st, p.opts.TOC)
	if err != nil {
		return err
	}
	for first := true; first || len(rows) > 0; first = false {
		if !first {
			if err := p.newSlide(); err != nil {
				return err
			}
		}
		placed, rest := toc.Pack(rows, columns)
		for _, pl := range placed {
			f, err := toc.DrawRow(p.be, p.opts.Measurer, pl.Row, pl.Frame.X, pl.Frame.Y, pl.Frame.W, p.opts.TOC)
			if err != nil {
				return err
			}
			p.add("toc", f, pl.Row.Entry.Text)
		}
		rows = rest
	}
	return nil
}
