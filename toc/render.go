package toc

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/text"
)

// Options 控制目录外观，长度单位 mm。页码列宽固定，页码变化不会影响折行。
type Options struct {
	Title       string
	DotLeaders  bool
	Indent      float64
	NumberWidth float64
	Gap         float64
	RowGap      float64
}

// DefaultOptions 返回默认目录外观。
func DefaultOptions() Options {
	return Options{Title: "Contents", DotLeaders: true, Indent: 6, NumberWidth: 12, Gap: 2, RowGap: 1}
}

// Styles 为各层级目录样式。
type Styles [MaxLevel + 1]style.Resolved

// Row 为一条排版后的目录项。
type Row struct {
	Entry  Entry        `json:"entry"`
	Text   text.Wrapped `json:"text"`
	Indent float64      `json:"indent"`
	Height float64      `json:"height"`
}

// Layout 按可用宽度折行每条目录项。
func Layout(m text.Measurer, entries []Entry, width float64, st Styles, opts Options) ([]Row, error) {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		if e.Level < 0 || e.Level > MaxLevel {
			return nil, errs.Validation("目录层级必须在 0..%d 之间：%d", MaxLevel, e.Level)
		}
		indent := float64(e.Level) * opts.Indent
		avail := width - indent - opts.NumberWidth - opts.Gap
		if avail <= 0 {
			return nil, errs.Validation("目录宽度 %g 不足以容纳条目", width)
		}
		s := st[e.Level]
		s.Align = style.AlignLeft
		w, err := text.Wrap(m, e.Text, s, avail)
		if err != nil {
			return nil, err
		}
		lines := math.Max(float64(len(w.Lines)), 1)
		rows = append(rows, Row{Entry: e, Text: w, Indent: indent, Height: lines*w.Leading + opts.RowGap})
	}
	return rows, nil
}

// Height 为全部行高之和。
func Height(rows []Row) float64 {
	h := 0.0
	for _, r := range rows {
		h += r.Height
	}
	return h
}

// DrawRow 绘制一条目录项：缩进文字、可选点线引导符、右对齐页码，并把整行链接到锚点。
// 页码为 0 时只绘制文字。
func DrawRow(be renderer.Backend, m text.Measurer, row Row, x, top, width float64, opts Options) (geom.Frame, error) {
	avail := width - row.Indent - opts.NumberWidth - opts.Gap
	if _, err := text.Draw(be, row.Text, x+row.Indent, top, avail); err != nil {
		return geom.Frame{}, err
	}
	frame := geom.Frame{X: x, Y: top, W: width, H: row.Height}
	st := row.Text.Style
	lastIdx := len(row.Text.Lines) - 1
	if lastIdx < 0 {
		lastIdx = 0
	}
	lastTop := top - float64(lastIdx)*row.Text.Leading
	baseline := text.Baseline(lastTop, st)

	if row.Entry.Page > 0 {
		num := strconv.Itoa(row.Entry.Page)
		nw, err := m.TextWidth(num, st.Font, st.Size)
		if err != nil {
			return geom.Frame{}, err
		}
		if err := be.DrawText(num, x+width-nw, baseline, st); err != nil {
			return geom.Frame{}, err
		}
		if opts.DotLeaders {
			lastWidth := 0.0
			if len(row.Text.Lines) > 0 {
				lastWidth = row.Text.Lines[lastIdx].Width
			}
			start := x + row.Indent + lastWidth + opts.Gap
			end := x + width - opts.NumberWidth
			if err := drawLeader(be, m, start, end, baseline, st); err != nil {
				return geom.Frame{}, err
			}
		}
	}
	if row.Entry.Anchor != "" {
		if err := be.LinkAnchor(frame, row.Entry.Anchor); err != nil {
			return geom.Frame{}, err
		}
	}
	return frame, nil
}

func drawLeader(be renderer.Backend, m text.Measurer, start, end, baseline float64, st style.Resolved) error {
	if end <= start {
		return nil
	}
	dot, err := m.TextWidth(". ", st.Font, st.Size)
	if err != nil || dot <= 0 {
		return err
	}
	n := int((end - start) / dot)
	if n <= 0 {
		return nil
	}
	leader := strings.TrimRight(strings.Repeat(". ", n), " ")
	return be.DrawText(leader, end-float64(n)*dot, baseline, st)
}

// Placement 记录一行被放入的列与位置。
type Placement struct {
	Row    Row        `json:"row"`
	Column int        `json:"column"`
	Frame  geom.Frame `json:"frame"`
}

// Pack 依次把行装入各列（从上到下），一列放不下时换到下一列。
// 所有列都满后返回剩余行。空列中放不下的单行仍会放入，避免死循环。
func Pack(rows []Row, columns []geom.Frame) ([]Placement, []Row) {
	var out []Placement
	i := 0
	for ci, col := range columns {
		y := col.Y
		placed := 0
		for i < len(rows) {
			r := rows[i]
			if placed > 0 && y-r.Height < col.Bottom()-1e-9 {
				break
			}
			out = append(out, Placement{Row: r, Column: ci, Frame: geom.Frame{X: col.X, Y: y, W: col.W, H: r.Height}})
			y -= r.Height
			placed++
			i++
		}
	}
	return out, rows[i:]
}
