// Package text 负责段落的折行、度量与绘制。
//
// 折行是纯函数：结果只取决于文本、样式与宽度，以及 Measurer 返回的字宽。
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/style"
)

// Measurer 由后端或字体系统提供，size 为 pt，返回宽度为 mm。
type Measurer interface {
	TextWidth(s, font string, size float64) (float64, error)
}

// Line 为折行后的一行。
type Line struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

// Wrapped 为折行结果，Leading 单位 mm。
type Wrapped struct {
	Lines   []Line         `json:"lines"`
	Leading float64        `json:"leading"`
	Style   style.Resolved `json:"style"`
}

// Height 为 行数 × 行距。
func (w Wrapped) Height() float64 { return float64(len(w.Lines)) * w.Leading }

// MaxWidth 返回最宽一行的宽度。
func (w Wrapped) MaxWidth() float64 {
	m := 0.0
	for _, l := range w.Lines {
		if l.Width > m {
			m = l.Width
		}
	}
	return m
}

// Slice 返回第 [from,to) 行组成的片段。
func (w Wrapped) Slice(from, to int) Wrapped {
	out := w
	out.Lines = append([]Line(nil), w.Lines[from:to]...)
	return out
}

// Wrap 以空白为断点做贪心折行。显式换行总是断行，空白行保留，末尾的单个换行忽略；
// 比 maxWidth 更宽的单词独占一行（允许溢出）。空文本得到零行。
func Wrap(m Measurer, s string, st style.Resolved, maxWidth float64) (Wrapped, error) {
	out := Wrapped{Leading: st.LeadingMM(), Style: st}
	s = norm.NFC.String(strings.ReplaceAll(s, "\r\n", "\n"))
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	s = strings.TrimSuffix(s, "\n")
	for _, para := range strings.Split(s, "\n") {
		lines, err := wrapParagraph(m, para, st, maxWidth)
		if err != nil {
			return Wrapped{}, err
		}
		out.Lines = append(out.Lines, lines...)
	}
	return out, nil
}

// HeightOf 返回文本折行后的高度（mm）。
func HeightOf(m Measurer, s string, st style.Resolved, maxWidth float64) (float64, error) {
	w, err := Wrap(m, s, st, maxWidth)
	if err != nil {
		return 0, err
	}
	return w.Height(), nil
}

func wrapParagraph(m Measurer, para string, st style.Resolved, maxWidth float64) ([]Line, error) {
	words := strings.FieldsFunc(para, unicode.IsSpace)
	if len(words) == 0 {
		return []Line{{}}, nil
	}
	var lines []Line
	current := ""
	currentWidth := 0.0
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		w, err := m.TextWidth(candidate, st.Font, st.Size)
		if err != nil {
			return nil, err
		}
		if current != "" && w > maxWidth {
			lines = append(lines, Line{Text: current, Width: currentWidth})
			current = word
			if currentWidth, err = m.TextWidth(word, st.Font, st.Size); err != nil {
				return nil, err
			}
			continue
		}
		current, currentWidth = candidate, w
	}
	lines = append(lines, Line{Text: current, Width: currentWidth})
	return lines, nil
}

// Baseline 返回行顶部为 top 时的基线 y。
func Baseline(top float64, st style.Resolved) float64 {
	size := st.SizeMM()
	lead := st.LeadingMM()
	return top - ((lead-size)/2 + 0.8*size)
}

// Draw 在 (x, top) 处按样式对齐绘制折行结果，返回占用区域。
func Draw(be renderer.Backend, w Wrapped, x, top, width float64) (geom.Frame, error) {
	for i, line := range w.Lines {
		if line.Text == "" {
			continue
		}
		lineTop := top - float64(i)*w.Leading
		lx := x + w.Style.Align.Offset(width, line.Width)
		if err := be.DrawText(line.Text, lx, Baseline(lineTop, w.Style), w.Style); err != nil {
			return geom.Frame{}, err
		}
	}
	return geom.Frame{X: x, Y: top, W: width, H: w.Height()}, nil
}
