// Package layout 把报告脚本（dsl）、主题（config）与结果数据（binding）编译为
// flow.Story 或 slide.Deck 的操作序列并构建出最终文件。
package layout

import (
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/fonts"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/report"
	"github.com/ByLCY/quire/style"
)

// env 为一次编译共享的资源。
type env struct {
	opts    BuildOptions
	theme   *config.Theme
	data    any
	fonts   *fonts.Registry
	metrics *fonts.Metrics
	styles  *style.Registry
	colors  map[string]style.Color
	meta    renderer.Meta
	logger  *log.Logger
}

// Build 编译脚本并把产物写入 out（为空时只排版）。脚本必须恰好包含一个 story 或 deck。
func Build(doc *dsl.Document, out string, opts BuildOptions) (*report.Result, error) {
	if doc == nil {
		return nil, errs.Validation("脚本为空")
	}
	opts.defaults()
	if err := opts.Theme.Validate(); err != nil {
		return nil, err
	}
	e := &env{
		opts:   opts,
		theme:  opts.Theme,
		data:   opts.Data,
		fonts:  fonts.NewRegistry(),
		colors: map[string]style.Color{},
		logger: opts.Logger,
	}
	if err := e.collectResources(doc); err != nil {
		return nil, err
	}
	e.metrics = fonts.NewMetrics(e.fonts)
	e.meta = e.collectMeta(doc)

	var story *dsl.PageBlock
	var deck *dsl.PageBlock
	for _, s := range doc.Sections {
		switch {
		case s.Story != nil && story == nil && deck == nil:
			story = s.Story
		case s.Deck != nil && story == nil && deck == nil:
			deck = s.Deck
		case s.Story != nil || s.Deck != nil:
			return nil, errs.Validation("脚本只能包含一个 story 或 deck")
		}
	}
	switch {
	case story != nil:
		st, err := e.compileStory(story)
		if err != nil {
			return nil, err
		}
		return st.Build(out)
	case deck != nil:
		d, err := e.compileDeck(deck)
		if err != nil {
			return nil, err
		}
		return d.Build(out)
	default:
		return nil, errs.Validation("脚本中缺少 story 或 deck 段落")
	}
}

// BuildFile 解析并构建 path 指向的脚本，相对路径以脚本所在目录为基准。
func BuildFile(path, out string, opts BuildOptions) (*report.Result, error) {
	doc, err := dsl.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return Build(doc, out, opts)
}

func (e *env) path(p string) string {
	if p == "" || filepath.IsAbs(p) || e.opts.BaseDir == "" {
		return p
	}
	return filepath.Join(e.opts.BaseDir, p)
}

func (e *env) text(s string) string { return binding.Interpolate(s, e.data) }

// collectResources 依次注册主题字体、脚本字体与颜色，最后叠加样式覆盖。
func (e *env) collectResources(doc *dsl.Document) error {
	for name, p := range e.theme.Fonts {
		if err := e.fonts.RegisterFile(name, p); err != nil {
			return err
		}
	}
	reg, err := e.theme.Registry()
	if err != nil {
		return err
	}
	e.styles = reg

	var styleCmds []*dsl.Command
	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, cmd := range section.Resources.Commands() {
			switch cmd.Name {
			case "font":
				if err := e.registerFont(cmd); err != nil {
					return err
				}
			case "color":
				if err := e.registerColor(cmd); err != nil {
					return err
				}
			case "style":
				styleCmds = append(styleCmds, cmd)
			default:
				return e.unknown("resources", cmd)
			}
		}
	}
	for _, cmd := range styleCmds {
		if err := e.applyStyle(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (e *env) unknown(where string, cmd *dsl.Command) error {
	return errs.Validation("%s 中未知命令 %s（%s）", where, cmd.Name, cmd.Pos)
}

// font Name { src: "path" }
func (e *env) registerFont(cmd *dsl.Command) error {
	if len(cmd.Args) == 0 {
		return errs.Validation("font 缺少名称（%s）", cmd.Pos)
	}
	name := cmd.Args[0].Text()
	src, ok := cmd.Block.Get("src")
	if !ok || src.Text() == "" {
		return errs.Validation("字体 %s 缺少 src（%s）", name, cmd.Pos)
	}
	return e.fonts.RegisterFile(name, e.path(src.Text()))
}

// color Name = #RRGGBB
func (e *env) registerColor(cmd *dsl.Command) error {
	if len(cmd.Args) < 2 {
		return errs.Validation("color 需要名称与取值（%s）", cmd.Pos)
	}
	value := cmd.Args[len(cmd.Args)-1].Text()
	c, err := style.ParseColor(value)
	if err != nil {
		return err
	}
	e.colors[cmd.Args[0].Text()] = c
	return nil
}

func (e *env) color(v string) (style.Color, error) {
	if c, ok := e.colors[v]; ok {
		return c, nil
	}
	return style.ParseColor(v)
}

// style heading1 [extends body] { font: Inter size: 20pt leading: 1.3x color: Accent align: center }
func (e *env) applyStyle(cmd *dsl.Command) error {
	if len(cmd.Args) == 0 {
		return errs.Validation("style 缺少名称（%s）", cmd.Pos)
	}
	id, err := style.ParseID(cmd.Args[0].Text())
	if err != nil {
		return err
	}
	cs := config.Style{}
	if args := dsl.ParseArgs(cmd.Args[1:]); args.Named["extends"] != "" {
		cs.Parent = args.Named["extends"]
	}
	get := func(key string) string {
		v, _ := cmd.Block.Get(key)
		return v.Text()
	}
	if p := get("parent"); p != "" {
		cs.Parent = p
	}
	cs.Font = get("font")
	cs.Leading = get("leading")
	cs.Align = get("align")
	if v := get("size"); v != "" {
		pt, err := points(v)
		if err != nil {
			return err
		}
		cs.Size = &pt
	}
	if v := get("color"); v != "" {
		c, err := e.color(v)
		if err != nil {
			return err
		}
		cs.Color = c.Hex()
	}
	def, parentSet, err := cs.Def()
	if err != nil {
		return err
	}
	if def.Font != nil && !e.fonts.Has(*def.Font) {
		return errs.New(errs.ErrCodeNotFound, "样式 %s 引用了未注册的字体 %s", id, *def.Font)
	}
	if err := e.styles.Merge(id, def, parentSet); err != nil {
		return err
	}
	_, err = e.styles.Resolve(id)
	return err
}

func (e *env) collectMeta(doc *dsl.Document) renderer.Meta {
	meta := renderer.Meta{Creator: "quire"}
	for _, section := range doc.Sections {
		if section.Meta == nil {
			continue
		}
		b := section.Meta
		for key, dst := range map[string]*string{"title": &meta.Title, "author": &meta.Author, "subject": &meta.Subject, "creator": &meta.Creator} {
			if v, ok := b.Get(key); ok {
				*dst = e.text(v.Text())
			}
		}
		if v, ok := b.Get("keywords"); ok {
			meta.Keywords = v.Strings()
		}
	}
	return meta
}

// points 解析字号，未带单位时按 pt 处理。
func points(v string) (float64, error) {
	l, err := geom.ParseLength(v)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeValidation, err, "字号无效")
	}
	return l.ToPT(), nil
}

// length 解析长度或相对 reference 的百分比（mm），空串返回 0。
func length(v string, reference float64) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := geom.ParseDimension(v, reference)
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeValidation, err, "长度无效")
	}
	return f, nil
}

// override 从命令参数中读取 size/color/align/font 单次覆盖。
func (e *env) override(args dsl.Args) (style.Override, error) {
	var ov style.Override
	if v := args.Named["font"]; v != "" {
		if !e.fonts.Has(v) {
			return ov, errs.New(errs.ErrCodeNotFound, "未注册的字体 %s", v)
		}
		ov.Font = &v
	}
	if v := args.Named["size"]; v != "" {
		pt, err := points(v)
		if err != nil {
			return ov, err
		}
		ov.Size = &pt
	}
	if v := args.Named["color"]; v != "" {
		c, err := e.color(v)
		if err != nil {
			return ov, err
		}
		ov.Color = &c
	}
	if v := args.Named["align"]; v != "" {
		a, err := style.ParseAlign(v)
		if err != nil {
			return ov, err
		}
		ov.Align = &a
	}
	return ov, nil
}

// content 返回命令的文字：优先第一个位置参数，其次块内字符串。
func (e *env) content(cmd *dsl.Command, args dsl.Args) string {
	if s := cmd.Block.Text(); s != "" {
		return e.text(s)
	}
	return e.text(args.Arg(0))
}

func atoi(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.Validation("需要整数：%s", v)
	}
	return n, nil
}
