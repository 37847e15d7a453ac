// Package slide 实现绝对定位的幻灯片文档：每个元素放在调用方给定的位置，
// 文字高度由度量推导并返回给调用方，便于排列下一个元素。
//
// 与 flow 一样，追加操作只记录为数据，Build 在全新状态上回放；
// 目录存在时进行两遍构建以解析页码。
package slide

import (
	"fmt"
	"strings"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/text"
	"github.com/ByLCY/quire/toc"
)

type opKind int

const (
	opSlide opKind = iota
	opText
	opTable
	opFigure
	opHeading
	opTOC
)

type op struct {
	kind     opKind
	text     string
	subtitle string
	level    int
	anchor   string
	inTOC    bool
	style    style.Resolved
	frame    geom.Frame
	table    table.Spec
	figure   figure.Source
	columns  []geom.Frame
}

// Deck 记录一份幻灯片文档的全部操作。
type Deck struct {
	opts     Options
	ops      []op
	slides   int
	anchors  map[string]bool
	logo     *figure.Source
	hasTOC   bool
	warnings []string
	err      error
}

// New 创建幻灯片文档；标题栏标志缺失时返回 ResourceError。
func New(opts Options) (*Deck, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	d := &Deck{opts: opts, anchors: map[string]bool{}}
	if opts.Band.Logo != "" {
		src, err := figure.Probe(opts.Band.Logo, opts.FigureDPI)
		if err != nil {
			return nil, err
		}
		d.logo = &src
	}
	return d, nil
}

// Body 返回标题栏下方的内容区域，便于调用方计算坐标。
func (d *Deck) Body() geom.Frame { return d.opts.body() }

// Slides 返回已追加的幻灯片数（不含目录续页）。
func (d *Deck) Slides() int { return d.slides }

// AddSlide 开始新幻灯片，标题栏显示 title 与 subtitle。
func (d *Deck) AddSlide(title, subtitle string) error {
	d.slides++
	d.ops = append(d.ops, op{kind: opSlide, text: title, subtitle: subtitle})
	return nil
}

func (d *Deck) requireSlide(what string) error {
	if d.slides == 0 {
		return errs.Validation("%s 之前必须先调用 AddSlide", what)
	}
	return nil
}

// overflow 在元素超出幻灯片边界时记录警告，元素照常绘制。
func (d *Deck) overflow(kind string, f geom.Frame) {
	if d.opts.Size.Frame().Contains(f) {
		return
	}
	d.opts.Logger.Warn("元素超出幻灯片边界", "kind", kind, "frame", f.String(), "slide", d.slides)
	d.warnings = append(d.warnings, kind+" 超出幻灯片边界")
}

// TextOption 调整文字样式。
type TextOption func(*style.ID, *style.Override)

// WithStyle 使用指定样式（默认 Body）。
func WithStyle(id style.ID) TextOption {
	return func(s *style.ID, _ *style.Override) { *s = id }
}

// WithOverride 覆盖样式中的个别属性。
func WithOverride(ov style.Override) TextOption {
	return func(_ *style.ID, o *style.Override) { *o = ov }
}

// AddText 以 (x, y) 为左上角、在 width 内折行放置文字，返回实际占用区域。
func (d *Deck) AddText(s string, x, y, width float64, opts ...TextOption) (geom.Frame, error) {
	if err := d.requireSlide("AddText"); err != nil {
		return geom.Frame{}, err
	}
	if width <= 0 {
		return geom.Frame{}, errs.Validation("文字宽度必须为正：%g", width)
	}
	id, ov := style.Body, style.Override{}
	for _, fn := range opts {
		fn(&id, &ov)
	}
	st, err := d.opts.Styles.Resolve(id)
	if err != nil {
		return geom.Frame{}, err
	}
	st = st.With(ov)
	w, err := text.Wrap(d.opts.Measurer, s, st, width)
	if err != nil {
		return geom.Frame{}, err
	}
	f := geom.Frame{X: x, Y: y, W: width, H: w.Height()}
	d.overflow("text", f)
	d.ops = append(d.ops, op{kind: opText, text: s, style: st, frame: f})
	return f, nil
}

// AddTable 以 (x, y) 为左上角放置宽度为 width 的表格。
func (d *Deck) AddTable(spec table.Spec, x, y, width float64) (geom.Frame, error) {
	if err := d.requireSlide("AddTable"); err != nil {
		return geom.Frame{}, err
	}
	res, err := table.Layout(d.opts.Measurer, spec, width, d.tableStyles(), d.opts.Table)
	if err != nil {
		return geom.Frame{}, err
	}
	f := geom.Frame{X: x, Y: y, W: res.Width(), H: res.Height()}
	d.overflow("table", f)
	d.ops = append(d.ops, op{kind: opTable, table: spec, frame: f})
	return f, nil
}

func (d *Deck) tableStyles() table.Styles {
	return table.Styles{
		Header: d.opts.Styles.MustResolve(style.TableHeader),
		Body:   d.opts.Styles.MustResolve(style.TableBody),
	}
}

// AddFigure 以 (x, y) 为左上角放置插图。width/height 为 0 时按宽高比推算。
// 插图文件缺失时返回 ResourceError，并使后续 Build 失败。
func (d *Deck) AddFigure(path string, x, y, width, height float64) (geom.Frame, error) {
	if err := d.requireSlide("AddFigure"); err != nil {
		return geom.Frame{}, err
	}
	src, err := figure.Probe(path, d.opts.FigureDPI)
	if err != nil {
		if d.err == nil {
			d.err = err
		}
		return geom.Frame{}, err
	}
	w, h, err := figure.ResolveSize(src.Width, src.Height, width, height)
	if err != nil {
		return geom.Frame{}, err
	}
	f := geom.Frame{X: x, Y: y, W: w, H: h}
	d.overflow("figure", f)
	d.ops = append(d.ops, op{kind: opFigure, figure: src, frame: f})
	return f, nil
}

// HeadingOption 调整标题行为。
type HeadingOption func(*op)

// Anchor 指定书签锚点名。
func Anchor(name string) HeadingOption { return func(o *op) { o.anchor = name } }

// NoTOC 使标题只生成书签，不进入目录。
func NoTOC() HeadingOption { return func(o *op) { o.inTOC = false } }

// AddSection 在当前幻灯片登记一级书签与目录项，不绘制文字。
func (d *Deck) AddSection(text string, opts ...HeadingOption) error {
	return d.addHeading(0, text, opts)
}

// AddSubsection 登记二级书签与目录项。
func (d *Deck) AddSubsection(text string, opts ...HeadingOption) error {
	return d.addHeading(1, text, opts)
}

// AddSubsubsection 登记三级书签与目录项。
func (d *Deck) AddSubsubsection(text string, opts ...HeadingOption) error {
	return d.addHeading(2, text, opts)
}

func (d *Deck) addHeading(level int, s string, opts []HeadingOption) error {
	if err := d.requireSlide("AddSection"); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		return errs.Validation("标题不能为空")
	}
	o := op{kind: opHeading, level: level, text: s, inTOC: true}
	for _, fn := range opts {
		fn(&o)
	}
	if o.anchor == "" {
		o.anchor = fmt.Sprintf("slide-%d-%d", d.slides, len(d.anchors))
	}
	if d.anchors[o.anchor] {
		return errs.Validation("锚点 %s 重复", o.anchor)
	}
	d.anchors[o.anchor] = true
	d.ops = append(d.ops, o)
	return nil
}

// AddTableOfContents 在当前幻灯片放置目录。条目依次装入 columns；
// 所有列都装满时另起一张同标题的续页并重置列。columns 为空时使用整个内容区域。
func (d *Deck) AddTableOfContents(columns ...geom.Frame) error {
	if err := d.requireSlide("AddTableOfContents"); err != nil {
		return err
	}
	if d.hasTOC {
		return errs.Validation("目录只能添加一次")
	}
	if len(columns) == 0 {
		columns = []geom.Frame{d.opts.body()}
	}
	min := d.opts.TOC.NumberWidth + d.opts.TOC.Gap + float64(toc.MaxLevel)*d.opts.TOC.Indent
	for _, c := range columns {
		if c.H <= 0 || c.W <= min {
			return errs.Validation("目录列 %s 过小", c)
		}
	}
	d.hasTOC = true
	d.ops = append(d.ops, op{kind: opTOC, columns: append([]geom.Frame(nil), columns...)})
	return nil
}

func (d *Deck) prospective() []toc.Entry {
	var out []toc.Entry
	for _, o := range d.ops {
		if o.kind == opHeading && o.inTOC {
			out = append(out, toc.Entry{Level: o.level, Text: o.text, Anchor: o.anchor})
		}
	}
	return out
}

// Build 回放操作日志并保存到 path（为空时只排版不保存）。
func (d *Deck) Build(path string) (*report.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.slides == 0 {
		return nil, errs.Validation("幻灯片文档为空")
	}
	ops := append([]op(nil), d.ops...)
	opts := report.Options{
		Backend: d.opts.Backend,
		Meta:    d.opts.Meta,
		Logger:  d.opts.Logger,
		Context: d.opts.Context,
		TwoPass: d.hasTOC,
	}
	if d.hasTOC {
		opts.Prospective = d.prospective()
	}
	return report.Build(path, opts, func(be renderer.Backend, entries []toc.Entry) (*report.Result, error) {
		p := &pass{opts: &d.opts, be: be, logo: d.logo, entries: entries, collector: toc.NewCollector(), res: &report.Result{}}
		res, err := p.run(ops)
		if err != nil {
			return nil, err
		}
		res.Warnings = append(res.Warnings, d.warnings...)
		return res, nil
	})
}
