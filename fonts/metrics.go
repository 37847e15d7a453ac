package fonts

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"
	"golang.org/x/text/unicode/norm"
)

// Metrics 基于 tdewolff/canvas 的字体面测量文字宽度。
// 字号入参为 pt，返回宽度为 mm。实现 text.Measurer。
type Metrics struct {
	reg *Registry

	mu       sync.Mutex
	families map[string]*canvas.FontFamily
}

// NewMetrics 创建测量器；reg 为 nil 时使用仅含内置字体的注册表。
func NewMetrics(reg *Registry) *Metrics {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Metrics{reg: reg, families: map[string]*canvas.FontFamily{}}
}

// Registry 返回底层字体注册表。
func (m *Metrics) Registry() *Registry { return m.reg }

// TextWidth 返回 s 以 font/size 排版后的宽度（mm）。
func (m *Metrics) TextWidth(s, font string, size float64) (float64, error) {
	if s == "" {
		return 0, nil
	}
	face, err := m.Face(font, size, color.Black)
	if err != nil {
		return 0, err
	}
	return face.TextWidth(norm.NFC.String(s)), nil
}

// Face 返回可直接用于绘制的字体面。
func (m *Metrics) Face(font string, size float64, col color.Color) (*canvas.FontFace, error) {
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正：%g", size)
	}
	family, err := m.family(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, col, canvas.FontRegular, canvas.FontNormal), nil
}

func (m *Metrics) family(name string) (*canvas.FontFamily, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.families[name]; ok {
		return f, nil
	}
	data, err := m.reg.Load(name)
	if err != nil {
		return nil, err
	}
	f := canvas.NewFontFamily(name)
	if err := f.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	m.families[name] = f
	return f, nil
}
