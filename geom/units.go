package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit 记录长度值在脚本或主题文件中书写时的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位数值，例如行高倍数
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

// pt 与 mm 的换算常量。
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length 保留数值及其单位。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// MM 构造毫米长度。
func MM(v float64) Length { return Length{Value: v, Unit: UnitMM} }

// PT 构造点长度。
func PT(v float64) Length { return Length{Value: v, Unit: UnitPT} }

func (l Length) IsZero() bool { return l.Value == 0 }

// ToMM 换算为毫米；无单位数值按毫米处理。
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT 换算为点；无单位数值按点处理。
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitPT, UnitNone:
		return l.Value
	default:
		return l.ToMM() * MmToPt
	}
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}}

// ParseLength 解析形如 "12pt"、"20mm"、"1.5in" 的长度字符串。
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseDimension 解析长度或百分比，百分比相对 reference（mm）计算，结果为 mm。
func ParseDimension(value string, reference float64) (float64, error) {
	v := strings.TrimSpace(value)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0, fmt.Errorf("无法解析百分比 %q", value)
		}
		return reference * f / 100, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}

// LineHeightKind 区分倍数行高与绝对行高。
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeight 保留作者意图：倍数（1.2x）或绝对值（14pt）。
type LineHeight struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Factor 构造倍数行高。
func Factor(f float64) LineHeight { return LineHeight{Kind: LineHeightFactor, Factor: f} }

// Absolute 构造绝对行高。
func Absolute(l Length) LineHeight { return LineHeight{Kind: LineHeightAbsolute, Len: l} }

// ResolvePT 根据字号（pt）计算行距（pt）。
func (lh LineHeight) ResolvePT(sizePT float64) float64 {
	switch lh.Kind {
	case LineHeightAbsolute:
		return lh.Len.ToPT()
	default:
		if lh.Factor <= 0 {
			return sizePT * 1.2
		}
		return sizePT * lh.Factor
	}
}

// ParseLineHeight 解析 "1.3x"、"1.3" 或 "14pt" 形式的行高。
func ParseLineHeight(value string) (LineHeight, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeight{}, fmt.Errorf("无法解析行高倍数 %q", value)
		}
		return Factor(f), nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return LineHeight{}, err
	}
	if l.Value <= 0 {
		return LineHeight{}, fmt.Errorf("行高必须为正数：%q", value)
	}
	if l.Unit == UnitNone {
		return Factor(l.Value), nil
	}
	return Absolute(l), nil
}
