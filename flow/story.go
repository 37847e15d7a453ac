// Package flow 实现流式文档：调用方依次追加标题、段落、表格与插图，
// Build 时自上而下排版并自动分页。
//
// 追加操作只记录为数据（操作日志），Build 在全新的文档状态上回放，
// 因此构建可以重复执行，目录页码通过两遍构建解析。
package flow

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/figure"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
	"github.com/ByLCY/quire/toc"
)

type opKind int

const (
	opHeading opKind = iota
	opParagraph
	opTable
	opFigure
	opSpacer
	opPageBreak
	opKeep
	opTOC
)

// op 是一条追加操作的数据形式。
type op struct {
	kind     opKind
	text     string
	level    int
	anchor   string
	inTOC    bool
	style    style.ID
	override style.Override
	table    table.Spec
	figure   figure.Source
	width    float64
	height   float64
	caption  string
	children []op
}

var anchorSpace = uuid.MustParse("6f1c2a3e-9b7d-4c51-8e2a-3d4f5a6b7c8d")

// Story 记录一份流式文档的全部操作。
type Story struct {
	opts Options

	ops     []op
	sink    *[]op
	numbers [toc.MaxLevel + 1]int
	anchors map[string]bool
	figures int
	tables  int
	hasTOC  bool
	err     error
}

// New 创建文档。
func New(opts Options) (*Story, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s := &Story{opts: opts, anchors: map[string]bool{}}
	s.sink = &s.ops
	return s, nil
}

// Err 返回追加过程中出现的第一个资源错误。
func (s *Story) Err() error { return s.err }

func (s *Story) push(o op) { *s.sink = append(*s.sink, o) }

// HeadingOption 调整标题行为。
type HeadingOption func(*op)

// Anchor 指定书签锚点名。
func Anchor(name string) HeadingOption { return func(o *op) { o.anchor = name } }

// NoTOC 使标题不进入目录（仍然生成书签）。
func NoTOC() HeadingOption { return func(o *op) { o.inTOC = false } }

// AddSection 追加一级标题。
func (s *Story) AddSection(text string, opts ...HeadingOption) error {
	return s.addHeading(0, text, opts)
}

// AddSubsection 追加二级标题。
func (s *Story) AddSubsection(text string, opts ...HeadingOption) error {
	return s.addHeading(1, text, opts)
}

// AddSubsubsection 追加三级标题。
func (s *Story) AddSubsubsection(text string, opts ...HeadingOption) error {
	return s.addHeading(2, text, opts)
}

func (s *Story) addHeading(level int, text string, opts []HeadingOption) error {
	if strings.TrimSpace(text) == "" {
		return errs.Validation("标题不能为空")
	}
	o := op{kind: opHeading, level: level, text: text, inTOC: true}
	for _, fn := range opts {
		fn(&o)
	}
	if o.anchor != "" && s.anchors[o.anchor] {
		return errs.Validation("锚点 %s 重复", o.anchor)
	}
	s.numbers[level]++
	for i := level + 1; i < len(s.numbers); i++ {
		s.numbers[i] = 0
	}
	if s.opts.Numbered {
		o.text = s.number(level) + " " + text
	}
	if o.anchor == "" {
		seed := fmt.Sprintf("%d|%s|%s", len(s.anchors), s.number(level), text)
		o.anchor = "h-" + uuid.NewSHA1(anchorSpace, []byte(seed)).String()
	}
	s.anchors[o.anchor] = true
	s.push(o)
	return nil
}

func (s *Story) number(level int) string {
	parts := make([]string, 0, level+1)
	for i := 0; i <= level; i++ {
		parts = append(parts, strconv.Itoa(s.numbers[i]))
	}
	return strings.Join(parts, ".")
}

// ParagraphOption 调整段落样式。
type ParagraphOption func(*op)

// WithStyle 指定命名样式，默认 Body。
func WithStyle(id style.ID) ParagraphOption { return func(o *op) { o.style = id } }

// WithOverride 指定局部样式覆盖。
func WithOverride(ov style.Override) ParagraphOption { return func(o *op) { o.override = ov } }

// AddParagraph 追加段落。
func (s *Story) AddParagraph(text string, opts ...ParagraphOption) error {
	o := op{kind: opParagraph, text: text, style: style.Body}
	for _, fn := range opts {
		fn(&o)
	}
	if _, err := s.opts.Styles.Resolve(o.style); err != nil {
		return err
	}
	s.push(o)
	return nil
}

// AddTable 追加表格；caption 非空时在表格上方加 "Table N: caption"。
func (s *Story) AddTable(spec table.Spec, caption string) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if _, err := table.ResolveWidths(spec.ColumnWidths, spec.Columns(), s.opts.body().W); err != nil {
		return err
	}
	if caption != "" {
		s.tables++
		caption = fmt.Sprintf("Table %d: %s", s.tables, caption)
	}
	s.push(op{kind: opTable, table: spec, caption: caption})
	return nil
}

// AddFigure 追加插图。width/height 为 0 表示按宽高比推算或使用自然尺寸。
// 插图文件缺失时返回 ResourceError，并使后续 Build 失败。
func (s *Story) AddFigure(path string, width, height float64, caption string) error {
	src, err := figure.Probe(path, s.opts.FigureDPI)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return err
	}
	w, h, err := figure.ResolveSize(src.Width, src.Height, width, height)
	if err != nil {
		return err
	}
	if caption != "" {
		s.figures++
		caption = fmt.Sprintf("Figure %d: %s", s.figures, caption)
	}
	s.push(op{kind: opFigure, figure: src, width: w, height: h, caption: caption})
	return nil
}

// AddSpacer 追加垂直空白。
func (s *Story) AddSpacer(height float64) error {
	if height < 0 {
		return errs.Validation("空白高度不能为负：%g", height)
	}
	s.push(op{kind: opSpacer, height: height})
	return nil
}

// AddPage 强制换页；当前页尚无内容时不产生空白页。
func (s *Story) AddPage() error {
	if s.sink != &s.ops {
		return errs.Validation("KeepTogether 内不能换页")
	}
	s.push(op{kind: opPageBreak})
	return nil
}

// KeepTogether 把 fn 中追加的元素作为整体放置，fn 在调用时立即执行。
func (s *Story) KeepTogether(fn func(*Story) error) error {
	if s.sink != &s.ops {
		return errs.Validation("KeepTogether 不能嵌套")
	}
	saved := s.snapshot()
	var children []op
	s.sink = &children
	err := fn(s)
	s.sink = &s.ops
	if err != nil {
		s.restore(saved)
		return err
	}
	if len(children) == 0 {
		return nil
	}
	s.push(op{kind: opKeep, children: children})
	return nil
}

// counters 为追加元素时会改变的编号与锚点状态。
type counters struct {
	numbers [toc.MaxLevel + 1]int
	anchors map[string]bool
	figures int
	tables  int
}

func (s *Story) snapshot() counters {
	return counters{numbers: s.numbers, anchors: maps.Clone(s.anchors), figures: s.figures, tables: s.tables}
}

// restore 撤销失败的 KeepTogether 对编号与锚点的修改。
func (s *Story) restore(c counters) {
	s.numbers, s.anchors, s.figures, s.tables = c.numbers, c.anchors, c.figures, c.tables
}

// AddTableOfContents 在当前位置放置目录，每份文档只能有一个。
func (s *Story) AddTableOfContents() error {
	if s.hasTOC {
		return errs.Validation("目录只能添加一次")
	}
	if s.sink != &s.ops {
		return errs.Validation("KeepTogether 内不能放置目录")
	}
	s.hasTOC = true
	s.push(op{kind: opTOC, text: s.opts.TOC.Title})
	return nil
}

// prospective 预扫描进入目录的标题，页码为 0。
func (s *Story) prospective() []toc.Entry {
	var out []toc.Entry
	var walk func(ops []op)
	walk = func(ops []op) {
		for _, o := range ops {
			switch {
			case o.kind == opKeep:
				walk(o.children)
			case o.kind == opHeading && o.inTOC:
				out = append(out, toc.Entry{Level: o.level, Text: o.text, Anchor: o.anchor})
			}
		}
	}
	walk(s.ops)
	return out
}

// Build 回放操作日志并保存到 path（为空时只排版不保存）。
func (s *Story) Build(path string) (*report.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	ops := append([]op(nil), s.ops...)
	opts := report.Options{
		Backend: s.opts.Backend,
		Meta:    s.opts.Meta,
		Logger:  s.opts.Logger,
		Context: s.opts.Context,
		TwoPass: s.hasTOC,
	}
	if s.hasTOC {
		opts.Prospective = s.prospective()
	}
	return report.Build(path, opts, func(be renderer.Backend, entries []toc.Entry) (*report.Result, error) {
		d := newDocument(&s.opts, be, entries)
		return d.run(ops)
	})
}
