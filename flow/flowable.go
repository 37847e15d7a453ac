package flow

import (
	"math"

	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/text"
	"github.com/ByLCY/quire/toc"
)

// flowable 是可以被放置到页面上的元素，measure 与 draw 使用同一份排版结果。
type flowable interface {
	kind() string
	label() string
	measure(d *document, width float64) (float64, error)
	draw(d *document, x, top, width float64) (geom.Frame, error)
}

// splitter 由可以跨页拆分的元素实现，仅在元素高于整页时使用。
// head 的高度不超过 avail；ok 为 false 表示 avail 连最小片段都放不下。
type splitter interface {
	split(d *document, width, avail float64) (head, tail flowable, ok bool, err error)
}

// captionGap 为插图或表格与题注之间的间距（mm）。
const captionGap = 1.5

// --- 段落 ---

type paragraph struct {
	text  string
	style style.Resolved
	lines *text.Wrapped
}

func (p *paragraph) kind() string  { return "paragraph" }
func (p *paragraph) label() string { return "" }

func (p *paragraph) wrap(d *document, width float64) (text.Wrapped, error) {
	if p.lines == nil {
		w, err := text.Wrap(d.opts.Measurer, p.text, p.style, width)
		if err != nil {
			return text.Wrapped{}, err
		}
		p.lines = &w
	}
	return *p.lines, nil
}

func (p *paragraph) measure(d *document, width float64) (float64, error) {
	w, err := p.wrap(d, width)
	if err != nil {
		return 0, err
	}
	return w.Height(), nil
}

func (p *paragraph) draw(d *document, x, top, width float64) (geom.Frame, error) {
	w, err := p.wrap(d, width)
	if err != nil {
		return geom.Frame{}, err
	}
	return text.Draw(d.be, w, x, top, width)
}

func (p *paragraph) split(d *document, width, avail float64) (flowable, flowable, bool, error) {
	w, err := p.wrap(d, width)
	if err != nil {
		return nil, nil, false, err
	}
	if w.Leading <= 0 {
		return nil, nil, false, nil
	}
	n := int(math.Floor(avail/w.Leading + 1e-9))
	if n < 1 {
		return nil, nil, false, nil
	}
	if n >= len(w.Lines) {
		return p, nil, true, nil
	}
	head, tail := w.Slice(0, n), w.Slice(n, len(w.Lines))
	return &paragraph{style: p.style, lines: &head}, &paragraph{style: p.style, lines: &tail}, true, nil
}

// --- 标题 ---

type heading struct {
	paragraph
	level  int
	anchor string
	inTOC  bool
}

func (h *heading) kind() string  { return "heading" }
func (h *heading) label() string { return h.text }

func (h *heading) draw(d *document, x, top, width float64) (geom.Frame, error) {
	if err := d.be.Bookmark(h.anchor, top); err != nil {
		return geom.Frame{}, err
	}
	if err := d.be.OutlineEntry(h.text, h.anchor, h.level); err != nil {
		return geom.Frame{}, err
	}
	if h.inTOC {
		if err := d.collector.Record(h.level, h.text, h.anchor, d.be.PageNumber()); err != nil {
			return geom.Frame{}, err
		}
	}
	return h.paragraph.draw(d, x, top, width)
}

// --- 表格 ---

type tableBlock struct {
	spec    table.Spec
	caption *paragraph
	laid    *table.Result
}

func (t *tableBlock) kind() string { return "table" }
func (t *tableBlock) label() string {
	if t.caption != nil {
		return t.caption.text
	}
	return ""
}

func (t *tableBlock) layout(d *document, width float64) (*table.Result, error) {
	if t.laid == nil {
		st := table.Styles{Header: d.style(style.TableHeader), Body: d.style(style.TableBody)}
		res, err := table.Layout(d.opts.Measurer, t.spec, width, st, d.opts.Table)
		if err != nil {
			return nil, err
		}
		t.laid = res
	}
	return t.laid, nil
}

func (t *tableBlock) captionHeight(d *document, width float64) (float64, error) {
	if t.caption == nil {
		return 0, nil
	}
	h, err := t.caption.measure(d, width)
	return h + captionGap, err
}

func (t *tableBlock) measure(d *document, width float64) (float64, error) {
	res, err := t.layout(d, width)
	if err != nil {
		return 0, err
	}
	ch, err := t.captionHeight(d, width)
	return ch + res.Height(), err
}

func (t *tableBlock) draw(d *document, x, top, width float64) (geom.Frame, error) {
	res, err := t.layout(d, width)
	if err != nil {
		return geom.Frame{}, err
	}
	ch, err := t.captionHeight(d, width)
	if err != nil {
		return geom.Frame{}, err
	}
	if t.caption != nil {
		if _, err := t.caption.draw(d, x, top, width); err != nil {
			return geom.Frame{}, err
		}
	}
	f, err := res.Draw(d.be, x, top-ch)
	if err != nil {
		return geom.Frame{}, err
	}
	return geom.Frame{X: x, Y: top, W: width, H: ch + f.H}, nil
}

func (t *tableBlock) split(d *document, width, avail float64) (flowable, flowable, bool, error) {
	res, err := t.layout(d, width)
	if err != nil {
		return nil, nil, false, err
	}
	ch, err := t.captionHeight(d, width)
	if err != nil {
		return nil, nil, false, err
	}
	head, tail, ok := res.Split(avail - ch)
	if !ok {
		return nil, nil, false, nil
	}
	h := &tableBlock{spec: t.spec, caption: t.caption, laid: head}
	if tail == nil {
		return h, nil, true, nil
	}
	return h, &tableBlock{spec: t.spec, laid: tail}, true, nil
}

// --- 插图 ---

type figureBlock struct {
	src     figure.Source
	w, h    float64
	caption *paragraph
}

func (f *figureBlock) kind() string  { return "figure" }
func (f *figureBlock) label() string { return f.src.Path }

func (f *figureBlock) captionHeight(d *document, width float64) (float64, error) {
	if f.caption == nil {
		return 0, nil
	}
	h, err := f.caption.measure(d, width)
	return h + captionGap, err
}

func (f *figureBlock) measure(d *document, width float64) (float64, error) {
	ch, err := f.captionHeight(d, width)
	return f.h + ch, err
}

func (f *figureBlock) draw(d *document, x, top, width float64) (geom.Frame, error) {
	ix := x + style.AlignCenter.Offset(width, f.w)
	area := geom.Frame{X: ix, Y: top, W: f.w, H: f.h}
	var err error
	if f.src.Kind.Vector() {
		err = d.be.DrawVectorForm(f.src, renderer.Transform{
			X: ix, Y: area.Bottom(),
			ScaleX: f.w / f.src.Width, ScaleY: f.h / f.src.Height,
		})
	} else {
		err = d.be.DrawImage(f.src, area)
	}
	if err != nil {
		return geom.Frame{}, err
	}
	total := f.h
	if f.caption != nil {
		cf, err := f.caption.draw(d, x, area.Below(captionGap), width)
		if err != nil {
			return geom.Frame{}, err
		}
		total += captionGap + cf.H
	}
	return geom.Frame{X: x, Y: top, W: width, H: total}, nil
}

// --- 空白 ---

type spacer struct{ h float64 }

func (s *spacer) kind() string                                { return "spacer" }
func (s *spacer) label() string                               { return "" }
func (s *spacer) measure(*document, float64) (float64, error) { return s.h, nil }
func (s *spacer) draw(_ *document, x, top, width float64) (geom.Frame, error) {
	return geom.Frame{X: x, Y: top, W: width, H: s.h}, nil
}

// --- 整体放置 ---

type keepBlock struct {
	children []flowable
}

func (k *keepBlock) kind() string  { return "keep" }
func (k *keepBlock) label() string { return "" }

// measure 为子元素高度之和加上它们之间的间距。
func (k *keepBlock) measure(d *document, width float64) (float64, error) {
	total := 0.0
	for i, c := range k.children {
		h, err := c.measure(d, width)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			total += d.opts.Spacing
		}
		total += h
	}
	return total, nil
}

func (k *keepBlock) draw(d *document, x, top, width float64) (geom.Frame, error) {
	y := top
	for i, c := range k.children {
		if i > 0 {
			y -= d.opts.Spacing
		}
		h, err := c.measure(d, width)
		if err != nil {
			return geom.Frame{}, err
		}
		f, err := c.draw(d, x, y, width)
		if err != nil {
			return geom.Frame{}, err
		}
		d.res.Add(c.kind(), d.be.PageNumber(), f, c.label())
		y -= h
	}
	return geom.Frame{X: x, Y: top, W: width, H: top - y}, nil
}

// --- 目录 ---

type tocBlock struct {
	title *paragraph
	rows  []toc.Row
}

func (t *tocBlock) kind() string  { return "toc" }
func (t *tocBlock) label() string { return "" }

func (t *tocBlock) titleHeight(d *document, width float64) (float64, error) {
	if t.title == nil {
		return 0, nil
	}
	h, err := t.title.measure(d, width)
	return h + d.opts.Spacing, err
}

func (t *tocBlock) measure(d *document, width float64) (float64, error) {
	th, err := t.titleHeight(d, width)
	return th + toc.Height(t.rows), err
}

func (t *tocBlock) draw(d *document, x, top, width float64) (geom.Frame, error) {
	th, err := t.titleHeight(d, width)
	if err != nil {
		return geom.Frame{}, err
	}
	if t.title != nil {
		if _, err := t.title.draw(d, x, top, width); err != nil {
			return geom.Frame{}, err
		}
	}
	y := top - th
	for _, r := range t.rows {
		if _, err := toc.DrawRow(d.be, d.opts.Measurer, r, x, y, width, d.opts.TOC); err != nil {
			return geom.Frame{}, err
		}
		y -= r.Height
	}
	return geom.Frame{X: x, Y: top, W: width, H: top - y}, nil
}

func (t *tocBlock) split(d *document, width, avail float64) (flowable, flowable, bool, error) {
	th, err := t.titleHeight(d, width)
	if err != nil {
		return nil, nil, false, err
	}
	used, n := th, 0
	for n < len(t.rows) && used+t.rows[n].Height <= avail+1e-9 {
		used += t.rows[n].Height
		n++
	}
	if n == 0 && len(t.rows) > 0 {
		return nil, nil, false, nil
	}
	head := &tocBlock{title: t.title, rows: t.rows[:n]}
	if n == len(t.rows) {
		return head, nil, true, nil
	}
	return head, &tocBlock{rows: t.rows[n:]}, true, nil
}

// 标题不跨页拆分。
func (h *heading) split(*document, float64, float64) (flowable, flowable, bool, error) {
	return nil, nil, false, nil
}
