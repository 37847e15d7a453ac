// Package table 计算表格的列宽、行高与绘制。
package table

import (
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
	"github.com/ByLCY/quire/text"
)

// Spec 描述一张表格。ColumnWidths 为相对宽度，会按总宽等比缩放；为空时等分。
type Spec struct {
	Rows         [][]string    `json:"rows"`
	HeaderRows   int           `json:"headerRows"`
	ColumnWidths []float64     `json:"columnWidths,omitempty"`
	Align        []style.Align `json:"align,omitempty"`
	Zebra        bool          `json:"zebra"`
}

// Columns 返回列数（最长一行的单元格数）。
func (s Spec) Columns() int {
	n := 0
	for _, row := range s.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Validate 校验表格结构。
func (s Spec) Validate() error {
	cols := s.Columns()
	if len(s.Rows) == 0 || cols == 0 {
		return errs.Validation("表格没有任何单元格")
	}
	if s.HeaderRows < 0 || s.HeaderRows > len(s.Rows) {
		return errs.Validation("表头行数 %d 超出范围（共 %d 行）", s.HeaderRows, len(s.Rows))
	}
	if s.ColumnWidths != nil && len(s.ColumnWidths) != cols {
		return errs.Validation("列宽数量 %d 与列数 %d 不一致", len(s.ColumnWidths), cols)
	}
	if len(s.Align) > cols {
		return errs.Validation("对齐设置数量 %d 超过列数 %d", len(s.Align), cols)
	}
	return nil
}

// ResolveWidths 把相对列宽缩放到 total；widths 为空时等分。
func ResolveWidths(widths []float64, cols int, total float64) ([]float64, error) {
	if cols <= 0 {
		return nil, errs.Validation("列数必须为正")
	}
	if total <= 0 {
		return nil, errs.Validation("表格总宽必须为正：%g", total)
	}
	out := make([]float64, cols)
	if widths == nil {
		for i := range out {
			out[i] = total / float64(cols)
		}
		return out, nil
	}
	if len(widths) != cols {
		return nil, errs.Validation("列宽数量 %d 与列数 %d 不一致", len(widths), cols)
	}
	sum := 0.0
	for _, w := range widths {
		if w < 0 {
			return nil, errs.Validation("列宽不能为负：%g", w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, errs.Validation("列宽之和必须为正")
	}
	for i, w := range widths {
		out[i] = w * total / sum
	}
	return out, nil
}

// Theme 控制填充色、网格线与单元格内边距（mm）。
type Theme struct {
	HeaderFill style.Color
	ZebraFill  style.Color
	Grid       renderer.Stroke
	PadX, PadY float64
}

// DefaultTheme 返回默认外观。
func DefaultTheme() Theme {
	return Theme{
		HeaderFill: style.MustColor("#e8eef9"),
		ZebraFill:  style.MustColor("#f6f8fa"),
		Grid:       renderer.Stroke{Color: style.MustColor("#c8ccd1"), Width: 0.2},
		PadX:       1.5,
		PadY:       1.2,
	}
}

// Styles 为表头与表体样式。
type Styles struct {
	Header style.Resolved
	Body   style.Resolved
}

// Row 为一行排版结果；Index 为表体行在原表中的序号（表头行为 -1），用于斑马纹。
type Row struct {
	Cells  []text.Wrapped `json:"cells"`
	Height float64        `json:"height"`
	Header bool           `json:"header"`
	Index  int            `json:"index"`
}

// Result 为与位置无关的表格排版结果。
type Result struct {
	Widths []float64 `json:"widths"`
	Rows   []Row     `json:"rows"`
	Zebra  bool      `json:"zebra"`
	Theme  Theme     `json:"-"`
}

// Layout 计算列宽与每行高度：行高 = 单元格最大文字高度 + 上下内边距。
func Layout(m text.Measurer, spec Spec, total float64, st Styles, theme Theme) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	cols := spec.Columns()
	widths, err := ResolveWidths(spec.ColumnWidths, cols, total)
	if err != nil {
		return nil, err
	}
	res := &Result{Widths: widths, Zebra: spec.Zebra, Theme: theme}
	for ri, cells := range spec.Rows {
		header := ri < spec.HeaderRows
		base := st.Body
		if header {
			base = st.Header
		}
		row := Row{Header: header, Index: ri - spec.HeaderRows}
		if header {
			row.Index = -1
		}
		maxH := 0.0
		for ci := 0; ci < cols; ci++ {
			content := ""
			if ci < len(cells) {
				content = cells[ci]
			}
			cs := base
			if ci < len(spec.Align) {
				a := spec.Align[ci]
				cs = cs.With(style.Override{Align: &a})
			}
			inner := widths[ci] - 2*theme.PadX
			if inner < 0 {
				inner = 0
			}
			w, err := text.Wrap(m, content, cs, inner)
			if err != nil {
				return nil, err
			}
			if h := w.Height(); h > maxH {
				maxH = h
			}
			row.Cells = append(row.Cells, w)
		}
		row.Height = maxH + 2*theme.PadY
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// Width 为列宽之和。
func (r *Result) Width() float64 {
	sum := 0.0
	for _, w := range r.Widths {
		sum += w
	}
	return sum
}

// Height 为行高之和。
func (r *Result) Height() float64 {
	sum := 0.0
	for _, row := range r.Rows {
		sum += row.Height
	}
	return sum
}

func (r *Result) headerRows() []Row {
	var out []Row
	for _, row := range r.Rows {
		if row.Header {
			out = append(out, row)
		}
	}
	return out
}

// Split 把表格拆成不超过 avail 高度的头部与剩余部分，两部分都重复表头。
// 连表头加一行表体都放不下时 ok 为 false；全部放得下时 tail 为 nil。
func (r *Result) Split(avail float64) (head, tail *Result, ok bool) {
	header := r.headerRows()
	used := 0.0
	for _, row := range header {
		used += row.Height
	}
	body := r.Rows[len(header):]
	n := 0
	for n < len(body) && used+body[n].Height <= avail+1e-9 {
		used += body[n].Height
		n++
	}
	if n == 0 && len(body) > 0 {
		return nil, nil, false
	}
	mk := func(rows []Row) *Result {
		out := *r
		out.Rows = append(append([]Row(nil), header...), rows...)
		return &out
	}
	head = mk(body[:n])
	if n < len(body) {
		tail = mk(body[n:])
	}
	return head, tail, true
}

// Draw 以 (x, top) 为左上角绘制：先填充，再文字，最后网格线。
func (r *Result) Draw(be renderer.Backend, x, top float64) (geom.Frame, error) {
	width, height := r.Width(), r.Height()
	y := top
	for _, row := range r.Rows {
		var fill *style.Color
		switch {
		case row.Header:
			c := r.Theme.HeaderFill
			fill = &c
		case r.Zebra && row.Index%2 == 1:
			c := r.Theme.ZebraFill
			fill = &c
		}
		if fill != nil {
			if err := be.DrawRect(geom.Frame{X: x, Y: y, W: width, H: row.Height}, fill, nil); err != nil {
				return geom.Frame{}, err
			}
		}
		y -= row.Height
	}

	y = top
	for _, row := range r.Rows {
		cx := x
		for ci, cell := range row.Cells {
			inner := r.Widths[ci] - 2*r.Theme.PadX
			if _, err := text.Draw(be, cell, cx+r.Theme.PadX, y-r.Theme.PadY, inner); err != nil {
				return geom.Frame{}, err
			}
			cx += r.Widths[ci]
		}
		y -= row.Height
	}

	if r.Theme.Grid.Width > 0 {
		y = top
		for i := 0; i <= len(r.Rows); i++ {
			if err := be.DrawLine(x, y, x+width, y, r.Theme.Grid); err != nil {
				return geom.Frame{}, err
			}
			if i < len(r.Rows) {
				y -= r.Rows[i].Height
			}
		}
		cx := x
		for i := 0; i <= len(r.Widths); i++ {
			if err := be.DrawLine(cx, top, cx, top-height, r.Theme.Grid); err != nil {
				return geom.Frame{}, err
			}
			if i < len(r.Widths) {
				cx += r.Widths[i]
			}
		}
	}
	return geom.Frame{X: x, Y: top, W: width, H: height}, nil
}
