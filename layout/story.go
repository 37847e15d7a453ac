package layout

import (
	"github.com/ByLCY/quire/binding"
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/flow"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/table"
)

// compileStory 把 story 段落转换为流式文档。
// 段落头部参数覆盖主题：story A4 landscape margin 15mm 20mm { ... }。
func (e *env) compileStory(sec *dsl.PageBlock) (*flow.Story, error) {
	opts, err := e.flowOptions()
	if err != nil {
		return nil, err
	}
	if err := applyPageSpec(sec, &opts.Page, &opts.Margin); err != nil {
		return nil, err
	}
	for _, cmd := range sec.Block.Commands() {
		switch cmd.Name {
		case "header":
			opts.Header = bandFrom(cmd, opts.Header)
		case "footer":
			opts.Footer = bandFrom(cmd, opts.Footer)
		}
	}
	st, err := flow.New(opts)
	if err != nil {
		return nil, err
	}
	width := opts.Page.W - opts.Margin.Left - opts.Margin.Right
	c := &storyCompiler{env: e, story: st, width: width}
	if err := c.block(sec.Block, false); err != nil {
		return nil, err
	}
	return st, nil
}

// applyPageSpec 解析 size、portrait/landscape 与 margin（1~4 个值）。
func applyPageSpec(spec *dsl.PageBlock, size *geom.Size, margin *geom.Margin) error {
	landscape := false
	var vals []float64
	for i := 0; i < len(spec.Params); i++ {
		switch spec.Params[i].Text() {
		case "landscape":
			landscape = true
		case "portrait":
		case "margin":
			for j := i + 1; j < len(spec.Params) && len(vals) < 4; j++ {
				if !spec.Params[j].IsNumber() {
					break
				}
				v, err := length(spec.Params[j].Text(), 0)
				if err != nil {
					return err
				}
				vals = append(vals, v)
				i = j
			}
		default:
			return errs.Validation("未知页面参数 %s（%s）", spec.Params[i].Text(), spec.Params[i].Pos)
		}
	}
	s, err := geom.ParseSize(spec.Size, landscape)
	if err != nil {
		return err
	}
	*size = s
	if len(vals) > 0 {
		m, err := geom.MarginFrom(vals)
		if err != nil {
			return err
		}
		*margin = m
	}
	return nil
}

// header height 15mm { left: "{title}" right: "{page}" rule: true }
func bandFrom(cmd *dsl.Command, b flow.Band) flow.Band {
	args := dsl.ParseArgs(cmd.Args)
	if h, err := length(args.Named["height"], 0); err == nil && h > 0 {
		b.Height = h
	}
	for key, dst := range map[string]*string{"left": &b.Left, "center": &b.Center, "right": &b.Right} {
		if v, ok := cmd.Block.Get(key); ok {
			*dst = v.Text()
		}
	}
	if v, ok := cmd.Block.Get("rule"); ok {
		b.Rule = truthy(v.Text())
	}
	return b
}

func truthy(s string) bool { return s == "true" || s == "yes" || s == "on" }

type storyCompiler struct {
	*env
	story *flow.Story
	width float64
}

func (c *storyCompiler) block(b *dsl.Block, inKeep bool) error {
	for _, st := range b.Statements {
		if st.Text != nil {
			if err := c.story.AddParagraph(c.text(string(*st.Text))); err != nil {
				return err
			}
			continue
		}
		if st.Command == nil {
			continue
		}
		if err := c.command(st.Command, inKeep); err != nil {
			return err
		}
	}
	return nil
}

func (c *storyCompiler) command(cmd *dsl.Command, inKeep bool) error {
	switch cmd.Name {
	case "header", "footer":
		if inKeep {
			return c.unknown("keep", cmd)
		}
		return nil
	case "toc":
		return c.story.AddTableOfContents()
	case "section", "subsection", "subsubsection":
		return c.heading(cmd)
	case "paragraph", "text":
		return c.paragraph(cmd)
	case "table":
		spec, caption, err := c.table(cmd, c.width)
		if err != nil {
			return err
		}
		return c.story.AddTable(spec, caption)
	case "figure", "image":
		args := dsl.ParseArgs(cmd.Args)
		w, err := length(args.Named["width"], c.width)
		if err != nil {
			return err
		}
		h, err := length(args.Named["height"], 0)
		if err != nil {
			return err
		}
		return c.story.AddFigure(c.path(c.text(args.Arg(0))), w, h, c.text(args.Named["caption"]))
	case "spacer":
		h, err := length(dsl.ParseArgs(cmd.Args).Arg(0), 0)
		if err != nil {
			return err
		}
		return c.story.AddSpacer(h)
	case "page":
		return c.story.AddPage()
	case "keep":
		return c.story.KeepTogether(func(*flow.Story) error { return c.block(cmd.Block, true) })
	default:
		return c.unknown("story", cmd)
	}
}

// section "Overview" [anchor overview] [notoc]
func (c *storyCompiler) heading(cmd *dsl.Command) error {
	args := dsl.ParseArgs(cmd.Args, "notoc")
	var opts []flow.HeadingOption
	if a := args.Named["anchor"]; a != "" {
		opts = append(opts, flow.Anchor(a))
	}
	if args.Flags["notoc"] {
		opts = append(opts, flow.NoTOC())
	}
	text := c.content(cmd, args)
	switch cmd.Name {
	case "section":
		return c.story.AddSection(text, opts...)
	case "subsection":
		return c.story.AddSubsection(text, opts...)
	default:
		return c.story.AddSubsubsection(text, opts...)
	}
}

// paragraph [styleName] [size 11pt] [color Accent] [align center] { "..." }
func (c *storyCompiler) paragraph(cmd *dsl.Command) error {
	id, rest, err := styleArg(cmd, style.Body)
	if err != nil {
		return err
	}
	args := dsl.ParseArgs(rest)
	ov, err := c.override(args)
	if err != nil {
		return err
	}
	return c.story.AddParagraph(c.content(cmd, args), flow.WithStyle(id), flow.WithOverride(ov))
}

// styleArg 在第一个参数为样式名时取出它。
func styleArg(cmd *dsl.Command, def style.ID) (style.ID, []*dsl.Arg, error) {
	if len(cmd.Args) == 0 || !cmd.Args[0].IsWord() {
		return def, cmd.Args, nil
	}
	switch cmd.Args[0].Text() {
	case "font", "size", "color", "align":
		return def, cmd.Args, nil
	}
	id, err := style.ParseID(cmd.Args[0].Text())
	if err != nil {
		return def, nil, err
	}
	return id, cmd.Args[1:], nil
}

//	table [from data.rows] [header 1] [zebra] [caption "..."] {
//	  columns: ["ID", "Value"]  fields: [id, value]  widths: [50, 160]  align: [left, right]
//	  row "a" "1"
//	}
func (e *env) table(cmd *dsl.Command, width float64) (table.Spec, string, error) {
	args := dsl.ParseArgs(cmd.Args, "zebra")
	var spec table.Spec
	spec.Zebra = args.Flags["zebra"]

	var header []string
	if v, ok := cmd.Block.Get("columns"); ok {
		header = v.Strings()
	}
	if len(header) > 0 {
		spec.Rows = append(spec.Rows, header)
	}
	if from := args.Named["from"]; from != "" {
		var fields []string
		if v, ok := cmd.Block.Get("fields"); ok {
			fields = v.Strings()
		}
		rows, err := binding.Rows(e.data, from, fields)
		if err != nil {
			return spec, "", err
		}
		spec.Rows = append(spec.Rows, rows...)
	}
	for _, rc := range cmd.Block.Commands() {
		if rc.Name != "row" {
			return spec, "", e.unknown("table", rc)
		}
		ra := dsl.ParseArgs(rc.Args)
		row := make([]string, len(ra.Positional))
		for i, v := range ra.Positional {
			row[i] = e.text(v)
		}
		spec.Rows = append(spec.Rows, row)
	}

	def := 0
	if len(header) > 0 {
		def = 1
	}
	n, err := atoi(args.Named["header"], def)
	if err != nil {
		return spec, "", err
	}
	spec.HeaderRows = n

	if v, ok := cmd.Block.Get("widths"); ok {
		for _, w := range v.Strings() {
			f, err := length(w, width)
			if err != nil {
				return spec, "", err
			}
			spec.ColumnWidths = append(spec.ColumnWidths, f)
		}
	}
	if v, ok := cmd.Block.Get("align"); ok {
		for _, a := range v.Strings() {
			al, err := style.ParseAlign(a)
			if err != nil {
				return spec, "", err
			}
			spec.Align = append(spec.Align, al)
		}
	}
	return spec, e.text(args.Named["caption"]), nil
}
