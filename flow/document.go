package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/text"
	"github.com/ByLCY/quire/toc"
)

const eps = 1e-9

// document 为一遍构建的全部可变状态，每遍新建。
type document struct {
	opts *Options
	be   renderer.Backend
	log  *log.Logger

	styles    map[style.ID]style.Resolved
	body      geom.Frame
	cursor    float64
	hasInk    bool
	collector *toc.Collector
	entries   []toc.Entry
	res       *report.Result
}

func newDocument(opts *Options, be renderer.Backend, entries []toc.Entry) *document {
	return &document{
		opts:      opts,
		be:        be,
		log:       opts.Logger,
		styles:    map[style.ID]style.Resolved{},
		body:      opts.body(),
		collector: toc.NewCollector(),
		entries:   entries,
		res:       &report.Result{},
	}
}

// style 返回已解析样式；Options.validate 已保证全部样式可解析。
func (d *document) style(id style.ID) style.Resolved {
	if s, ok := d.styles[id]; ok {
		return s
	}
	s := d.opts.Styles.MustResolve(id)
	d.styles[id] = s
	return s
}

func (d *document) run(ops []op) (*report.Result, error) {
	for _, o := range ops {
		if o.kind == opPageBreak {
			if d.hasInk {
				if err := d.newPage(); err != nil {
					return nil, err
				}
			}
			continue
		}
		f, err := d.flowable(o)
		if err != nil {
			return nil, err
		}
		if err := d.place(f); err != nil {
			return nil, err
		}
	}
	if d.be.PageNumber() == 0 {
		if err := d.newPage(); err != nil {
			return nil, err
		}
	}
	d.res.Pages = d.be.PageNumber()
	d.res.TOC = d.collector.Entries()
	return d.res, nil
}

func (d *document) flowable(o op) (flowable, error) {
	switch o.kind {
	case opHeading:
		st := d.style(style.HeadingFor(o.level))
		return &heading{paragraph: paragraph{text: o.text, style: st}, level: o.level, anchor: o.anchor, inTOC: o.inTOC}, nil
	case opParagraph:
		st := d.style(o.style).With(o.override)
		return &paragraph{text: o.text, style: st}, nil
	case opTable:
		t := &tableBlock{spec: o.table}
		if o.caption != "" {
			t.caption = &paragraph{text: o.caption, style: d.style(style.Caption)}
		}
		return t, nil
	case opFigure:
		return d.figure(o)
	case opSpacer:
		return &spacer{h: o.height}, nil
	case opKeep:
		k := &keepBlock{}
		for _, c := range o.children {
			f, err := d.flowable(c)
			if err != nil {
				return nil, err
			}
			k.children = append(k.children, f)
		}
		return k, nil
	case opTOC:
		return d.tocBlock(o)
	default:
		return nil, fmt.Errorf("未知操作类型 %d", o.kind)
	}
}

// figure 把插图限制在正文区域内（保持宽高比）。
func (d *document) figure(o op) (flowable, error) {
	f := &figureBlock{src: o.figure, w: o.width, h: o.height}
	capH := 0.0
	if o.caption != "" {
		f.caption = &paragraph{text: o.caption, style: d.style(style.Caption)}
		h, err := f.captionHeight(d, d.body.W)
		if err != nil {
			return nil, err
		}
		capH = h
	}
	w, h, scaled := figure.Fit(f.w, f.h, d.body.W, d.body.H-capH)
	if scaled {
		d.warn("插图超出正文区域，已等比缩小", "path", o.figure.Path, "from", fmt.Sprintf("%.1fx%.1f", f.w, f.h), "to", fmt.Sprintf("%.1fx%.1f", w, h))
		f.w, f.h = w, h
	}
	return f, nil
}

func (d *document) tocBlock(o op) (flowable, error) {
	var st toc.Styles
	for i := range st {
		st[i] = d.style(style.TocFor(i))
	}
	rows, err := toc.Layout(d.opts.Measurer, d.entries, d.body.W, st, d.opts.TOC)
	if err != nil {
		return nil, err
	}
	t := &tocBlock{rows: rows}
	if o.text != "" {
		t.title = &paragraph{text: o.text, style: d.style(style.TocTitle)}
	}
	return t, nil
}

func (d *document) warn(msg string, kv ...any) {
	d.log.Warn(msg, kv...)
	d.res.Warnings = append(d.res.Warnings, msg)
}

// place 把元素放到当前页；放不下但不超过整页时整体移到下一页，超过整页时按元素类型拆分。
func (d *document) place(f flowable) error {
	if d.be.PageNumber() == 0 {
		if err := d.newPage(); err != nil {
			return err
		}
	}
	h, err := f.measure(d, d.body.W)
	if err != nil {
		return err
	}
	if h <= eps {
		// 零高度元素不触发换页；页面已满时贴在正文底边。
		if d.remaining() < 0 {
			d.cursor = d.body.Bottom()
		}
		return d.drawAt(f, h)
	}
	if h <= d.remaining()+eps {
		return d.drawAt(f, h)
	}
	if h <= d.body.H+eps {
		if err := d.newPage(); err != nil {
			return err
		}
		return d.drawAt(f, h)
	}

	switch v := f.(type) {
	case *keepBlock:
		if d.opts.Oversize == OversizeReject {
			return errs.Validation("KeepTogether 块高 %.1fmm 超过整页 %.1fmm", h, d.body.H)
		}
		d.warn("KeepTogether 块超过整页，拆开放置", "height", h, "page", d.be.PageNumber())
		for _, c := range v.children {
			if err := d.place(c); err != nil {
				return err
			}
		}
		return nil
	case splitter:
		return d.placeSplit(f, v)
	default:
		if d.hasInk {
			if err := d.newPage(); err != nil {
				return err
			}
		}
		d.warn("元素超过整页且无法拆分", "kind", f.kind(), "height", h)
		return d.drawAt(f, h)
	}
}

func (d *document) placeSplit(f flowable, s splitter) error {
	for {
		head, tail, ok, err := s.split(d, d.body.W, d.remaining())
		if err != nil {
			return err
		}
		if !ok {
			if d.hasInk {
				if err := d.newPage(); err != nil {
					return err
				}
				continue
			}
			h, err := f.measure(d, d.body.W)
			if err != nil {
				return err
			}
			d.warn("元素无法拆分到单页内", "kind", f.kind(), "height", h)
			return d.drawAt(f, h)
		}
		hh, err := head.measure(d, d.body.W)
		if err != nil {
			return err
		}
		if err := d.drawAt(head, hh); err != nil {
			return err
		}
		if tail == nil {
			return nil
		}
		if err := d.newPage(); err != nil {
			return err
		}
		th, err := tail.measure(d, d.body.W)
		if err != nil {
			return err
		}
		if th <= d.remaining()+eps {
			return d.drawAt(tail, th)
		}
		next, ok := tail.(splitter)
		if !ok {
			return d.drawAt(tail, th)
		}
		f, s = tail, next
	}
}

func (d *document) remaining() float64 { return d.cursor - d.body.Bottom() }

func (d *document) drawAt(f flowable, h float64) error {
	frame, err := f.draw(d, d.body.X, d.cursor, d.body.W)
	if err != nil {
		return err
	}
	frame.H = h
	if _, ok := f.(*keepBlock); !ok {
		d.res.Add(f.kind(), d.be.PageNumber(), frame, f.label())
	}
	d.cursor -= h + d.opts.Spacing
	d.hasInk = true
	return nil
}

func (d *document) newPage() error {
	if err := d.be.NewPage(d.opts.Page); err != nil {
		return err
	}
	d.cursor = d.body.Y
	d.hasInk = false
	if err := d.drawBand(d.opts.Header, style.PageHeader, d.opts.Page.H, true); err != nil {
		return err
	}
	return d.drawBand(d.opts.Footer, style.PageFooter, d.opts.Footer.Height, false)
}

// drawBand 在 [top-Height, top] 内垂直居中绘制页眉或页脚，rule 画在靠近正文的一侧。
func (d *document) drawBand(b Band, id style.ID, top float64, header bool) error {
	if b.Height <= 0 || b.empty() {
		return nil
	}
	st := d.style(id)
	lineTop := top - (b.Height-st.LeadingMM())/2
	baseline := text.Baseline(lineTop, st)
	page := d.opts.Page
	left, right := d.opts.Margin.Left, page.W-d.opts.Margin.Right
	slots := []struct {
		s     string
		align style.Align
	}{{b.Left, style.AlignLeft}, {b.Center, style.AlignCenter}, {b.Right, style.AlignRight}}
	for _, slot := range slots {
		if slot.s == "" {
			continue
		}
		s := d.expand(slot.s)
		w, err := d.opts.Measurer.TextWidth(s, st.Font, st.Size)
		if err != nil {
			return err
		}
		x := left + slot.align.Offset(right-left, w)
		if err := d.be.DrawText(s, x, baseline, st); err != nil {
			return err
		}
	}
	if b.Rule {
		y := top - b.Height
		if !header {
			y = top
		}
		return d.be.DrawLine(left, y, right, y, d.opts.Table.Grid)
	}
	return nil
}

func (d *document) expand(s string) string {
	r := strings.NewReplacer("{page}", strconv.Itoa(d.be.PageNumber()), "{title}", d.opts.Meta.Title)
	return r.Replace(s)
}
