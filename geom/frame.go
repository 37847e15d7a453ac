// Package geom 提供页面几何：矩形 Frame、页面尺寸、边距与长度单位。
//
// 坐标系原点位于页面左下角，y 向上增长；Frame 以左上角定位，
// Y 为上边缘，下边缘为 Y-H。所有长度单位为毫米。
package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/quire/errs"
)

// Frame 是已放置元素的矩形区域。
type Frame struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// NewFrame 校验宽高非负。
func NewFrame(x, y, w, h float64) (Frame, error) {
	if w < 0 || h < 0 || math.IsNaN(w) || math.IsNaN(h) {
		return Frame{}, errs.Validation("区域尺寸不能为负：%gx%g", w, h)
	}
	return Frame{X: x, Y: y, W: w, H: h}, nil
}

func (f Frame) Top() float64    { return f.Y }
func (f Frame) Bottom() float64 { return f.Y - f.H }
func (f Frame) Left() float64   { return f.X }
func (f Frame) Right() float64  { return f.X + f.W }

// Below 返回紧贴在 f 下方、间隔 gap 的起点 y。
func (f Frame) Below(gap float64) float64 { return f.Bottom() - gap }

// Inset 按边距收缩，结果宽高不小于 0。
func (f Frame) Inset(m Margin) Frame {
	return Frame{
		X: f.X + m.Left,
		Y: f.Y - m.Top,
		W: math.Max(f.W-m.Left-m.Right, 0),
		H: math.Max(f.H-m.Top-m.Bottom, 0),
	}
}

// Contains 判断 g 是否完全落在 f 内（允许 eps 误差）。
func (f Frame) Contains(g Frame) bool {
	const eps = 1e-6
	return g.X >= f.X-eps && g.Right() <= f.Right()+eps &&
		g.Y <= f.Y+eps && g.Bottom() >= f.Bottom()-eps
}

func (f Frame) String() string {
	return fmt.Sprintf("(%.2f,%.2f %.2fx%.2f)", f.X, f.Y, f.W, f.H)
}

// Size 为页面宽高（mm）。
type Size struct {
	W float64 `json:"w" yaml:"w" toml:"w"`
	H float64 `json:"h" yaml:"h" toml:"h"`
}

// Frame 返回覆盖整页的区域。
func (s Size) Frame() Frame { return Frame{X: 0, Y: s.H, W: s.W, H: s.H} }

// Landscape 返回横向尺寸（宽不小于高）。
func (s Size) Landscape() Size {
	if s.W < s.H {
		return Size{W: s.H, H: s.W}
	}
	return s
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top" yaml:"top" toml:"top"`
	Right  float64 `json:"right" yaml:"right" toml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom" toml:"bottom"`
	Left   float64 `json:"left" yaml:"left" toml:"left"`
}

// Uniform 四边相同的边距。
func Uniform(v float64) Margin { return Margin{Top: v, Right: v, Bottom: v, Left: v} }

// MarginFrom 采用 CSS 风格的 1~4 个值。
func MarginFrom(vals []float64) (Margin, error) {
	for _, v := range vals {
		if v < 0 {
			return Margin{}, errs.Validation("边距不能为负：%g", v)
		}
	}
	switch len(vals) {
	case 1:
		return Uniform(vals[0]), nil
	case 2:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Margin{}, errs.Validation("边距需要 1 到 4 个值，实际 %d 个", len(vals))
	}
}

// 常用纸张尺寸。Widescreen 为 16:9 幻灯片（10in x 5.625in）。
var (
	A4         = Size{W: 210, H: 297}
	A5         = Size{W: 148, H: 210}
	Letter     = Size{W: 215.9, H: 279.4}
	Widescreen = Size{W: 254, H: 142.875}
)

var pagePresets = map[string]Size{
	"A4":         A4,
	"A5":         A5,
	"LETTER":     Letter,
	"WIDESCREEN": Widescreen,
}

// ParseSize 解析预设名称（A4/A5/Letter/Widescreen）或 "宽x高" 形式（mm）。
func ParseSize(value string, landscape bool) (Size, error) {
	v := strings.TrimSpace(value)
	size, ok := pagePresets[strings.ToUpper(v)]
	if !ok {
		parts := strings.Split(strings.ToLower(v), "x")
		if len(parts) != 2 {
			return Size{}, errs.Validation("暂不支持的纸张尺寸：%s", value)
		}
		w, err := ParseDimension(parts[0], 0)
		if err != nil {
			return Size{}, errs.Validation("纸张宽度无效：%s", value)
		}
		h, err := ParseDimension(parts[1], 0)
		if err != nil {
			return Size{}, errs.Validation("纸张高度无效：%s", value)
		}
		size = Size{W: w, H: h}
	}
	if size.W <= 0 || size.H <= 0 {
		return Size{}, errs.Validation("纸张尺寸必须为正：%s", value)
	}
	if landscape {
		size = size.Landscape()
	}
	return size, nil
}
