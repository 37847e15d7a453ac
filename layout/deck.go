package layout

import (
	"github.com/ByLCY/quire/dsl"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/slide"
	"github.com/ByLCY/quire/style"
)

// slideGap 为省略 y 时与上一个元素的间距（mm）。
const slideGap = 4

// compileDeck 把 deck 段落转换为幻灯片文档。
// 脚本中的 x、y 从内容区域左上角起算，y 向下为正；省略 y 时紧接上一个元素。
func (e *env) compileDeck(sec *dsl.PageBlock) (*slide.Deck, error) {
	opts, err := e.slideOptions()
	if err != nil {
		return nil, err
	}
	if err := applyPageSpec(sec, &opts.Size, &opts.Margin); err != nil {
		return nil, err
	}
	d, err := slide.New(opts)
	if err != nil {
		return nil, err
	}
	c := &deckCompiler{env: e, deck: d, body: d.Body()}
	for _, cmd := range sec.Block.Commands() {
		if cmd.Name != "slide" {
			return nil, e.unknown("deck", cmd)
		}
		if err := c.slide(cmd); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type deckCompiler struct {
	*env
	deck *slide.Deck
	body geom.Frame
	// next 为下一个省略 y 的元素的顶边。
	next float64
}

// slide "Title" "Subtitle" { ... }
func (c *deckCompiler) slide(cmd *dsl.Command) error {
	args := dsl.ParseArgs(cmd.Args)
	if err := c.deck.AddSlide(c.text(args.Arg(0)), c.text(args.Arg(1))); err != nil {
		return err
	}
	c.next = c.body.Y
	for _, st := range cmd.Block.Statements {
		if st.Text != nil {
			f, err := c.deck.AddText(c.text(string(*st.Text)), c.body.X, c.next, c.body.W)
			if err != nil {
				return err
			}
			c.advance(f)
			continue
		}
		if st.Command == nil {
			continue
		}
		if err := c.element(st.Command); err != nil {
			return err
		}
	}
	return nil
}

func (c *deckCompiler) advance(f geom.Frame) { c.next = f.Below(slideGap) }

// origin 解析 x/y/width，返回页面坐标下的左上角与宽度。
func (c *deckCompiler) origin(args dsl.Args) (x, y, w float64, err error) {
	x, err = length(args.Named["x"], c.body.W)
	if err != nil {
		return
	}
	x += c.body.X
	y = c.next
	if v := args.Named["y"]; v != "" {
		var dy float64
		if dy, err = length(v, c.body.H); err != nil {
			return
		}
		y = c.body.Y - dy
	}
	w = c.body.X + c.body.W - x
	if v := args.Named["width"]; v != "" {
		w, err = length(v, c.body.W)
	}
	return
}

func (c *deckCompiler) element(cmd *dsl.Command) error {
	switch cmd.Name {
	case "text", "paragraph":
		id, rest, err := styleArg(cmd, style.Body)
		if err != nil {
			return err
		}
		args := dsl.ParseArgs(rest)
		ov, err := c.override(args)
		if err != nil {
			return err
		}
		x, y, w, err := c.origin(args)
		if err != nil {
			return err
		}
		f, err := c.deck.AddText(c.content(cmd, args), x, y, w, slide.WithStyle(id), slide.WithOverride(ov))
		if err != nil {
			return err
		}
		c.advance(f)
	case "table":
		args := dsl.ParseArgs(cmd.Args, "zebra")
		x, y, w, err := c.origin(args)
		if err != nil {
			return err
		}
		spec, _, err := c.table(cmd, w)
		if err != nil {
			return err
		}
		f, err := c.deck.AddTable(spec, x, y, w)
		if err != nil {
			return err
		}
		c.advance(f)
	case "figure", "image":
		args := dsl.ParseArgs(cmd.Args)
		x, y, _, err := c.origin(args)
		if err != nil {
			return err
		}
		w, err := length(args.Named["width"], c.body.W)
		if err != nil {
			return err
		}
		h, err := length(args.Named["height"], c.body.H)
		if err != nil {
			return err
		}
		f, err := c.deck.AddFigure(c.path(c.text(args.Arg(0))), x, y, w, h)
		if err != nil {
			return err
		}
		c.advance(f)
	case "section", "subsection", "subsubsection":
		args := dsl.ParseArgs(cmd.Args, "notoc")
		var opts []slide.HeadingOption
		if a := args.Named["anchor"]; a != "" {
			opts = append(opts, slide.Anchor(a))
		}
		if args.Flags["notoc"] {
			opts = append(opts, slide.NoTOC())
		}
		text := c.content(cmd, args)
		switch cmd.Name {
		case "section":
			return c.deck.AddSection(text, opts...)
		case "subsection":
			return c.deck.AddSubsection(text, opts...)
		default:
			return c.deck.AddSubsubsection(text, opts...)
		}
	case "toc":
		return c.toc(dsl.ParseArgs(cmd.Args))
	default:
		return c.unknown("slide", cmd)
	}
	return nil
}

// toc [columns 2] [gap 8mm]：把当前位置以下的内容区域等分为若干列。
func (c *deckCompiler) toc(args dsl.Args) error {
	n, err := atoi(args.Named["columns"], 1)
	if err != nil {
		return err
	}
	if n < 1 {
		n = 1
	}
	gap, err := length(args.Named["gap"], c.body.W)
	if err != nil {
		return err
	}
	if args.Named["gap"] == "" {
		gap = 8
	}
	top := c.next
	h := top - c.body.Bottom()
	w := (c.body.W - gap*float64(n-1)) / float64(n)
	cols := make([]geom.Frame, n)
	for i := range cols {
		cols[i] = geom.Frame{X: c.body.X + float64(i)*(w+gap), Y: top, W: w, H: h}
	}
	return c.deck.AddTableOfContents(cols...)
}
