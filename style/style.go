// Package style 提供命名样式注册表。
//
// 样式以封闭枚举 ID 标识，每个样式只记录相对父样式的增量，
// Resolve 沿继承链合并得到完整样式。Base 为根样式，必须完整定义。
package style

import (
	"sort"
	"strings"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
)

// ID 标识一个命名样式。
type ID int

const (
	Base ID = iota
	Body
	Heading1
	Heading2
	Heading3
	Title
	Subtitle
	TableHeader
	TableBody
	Caption
	TocTitle
	TocLevel0
	TocLevel1
	TocLevel2
	PageHeader
	PageFooter
	SlideTitle
	SlideSubtitle
	numIDs
)

var idNames = [...]string{
	Base:          "base",
	Body:          "body",
	Heading1:      "heading1",
	Heading2:      "heading2",
	Heading3:      "heading3",
	Title:         "title",
	Subtitle:      "subtitle",
	TableHeader:   "table-header",
	TableBody:     "table-body",
	Caption:       "caption",
	TocTitle:      "toc-title",
	TocLevel0:     "toc0",
	TocLevel1:     "toc1",
	TocLevel2:     "toc2",
	PageHeader:    "page-header",
	PageFooter:    "page-footer",
	SlideTitle:    "slide-title",
	SlideSubtitle: "slide-subtitle",
}

func (id ID) String() string {
	if id < 0 || id >= numIDs {
		return "unknown"
	}
	return idNames[id]
}

// ParseID 将主题或脚本中的样式名映射为 ID，不区分大小写，忽略 '-' 与 '_'。
func ParseID(name string) (ID, error) {
	key := normalizeName(name)
	for i, n := range idNames {
		if normalizeName(n) == key {
			return ID(i), nil
		}
	}
	return 0, errs.Validation("未知样式：%s", name)
}

// Names 返回全部样式名（排序后）。
func Names() []string {
	out := append([]string(nil), idNames[:]...)
	sort.Strings(out)
	return out
}

// HeadingFor 返回章节层级（0..2）对应的标题样式。
func HeadingFor(level int) ID { return Heading1 + ID(clampLevel(level)) }

// TocFor 返回目录层级（0..2）对应的样式。
func TocFor(level int) ID { return TocLevel0 + ID(clampLevel(level)) }

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 2 {
		return 2
	}
	return level
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}

// Align 水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign 解析 left/center/right（也接受 start/end）。
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center", "centre", "middle":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	default:
		return AlignLeft, errs.Validation("未知对齐方式：%s", s)
	}
}

// Offset 返回宽度为 w 的内容在宽度 box 内的水平偏移。
func (a Align) Offset(box, w float64) float64 {
	if box <= w {
		return 0
	}
	switch a {
	case AlignCenter:
		return (box - w) / 2
	case AlignRight:
		return box - w
	default:
		return 0
	}
}

// Resolved 为完全解析后的样式。Size 与 Leading 单位为 pt。
type Resolved struct {
	Font    string  `json:"font"`
	Size    float64 `json:"size"`
	Leading float64 `json:"leading"`
	Color   Color   `json:"color"`
	Align   Align   `json:"align"`
}

// LeadingMM 返回行距（mm）。
func (r Resolved) LeadingMM() float64 { return r.Leading * geom.PtToMm }

// SizeMM 返回字号（mm）。
func (r Resolved) SizeMM() float64 { return r.Size * geom.PtToMm }

// Override 为单次调用的局部覆盖，nil 字段表示沿用。
type Override struct {
	Font    *string
	Size    *float64
	Leading *float64
	Color   *Color
	Align   *Align
}

// With 返回应用覆盖后的样式。仅覆盖字号时行距按原比例缩放。
func (r Resolved) With(o Override) Resolved {
	out := r
	if o.Font != nil {
		out.Font = *o.Font
	}
	if o.Size != nil && *o.Size > 0 {
		if o.Leading == nil && r.Size > 0 {
			out.Leading = r.Leading * (*o.Size / r.Size)
		}
		out.Size = *o.Size
	}
	if o.Leading != nil && *o.Leading > 0 {
		out.Leading = *o.Leading
	}
	if o.Color != nil {
		out.Color = *o.Color
	}
	if o.Align != nil {
		out.Align = *o.Align
	}
	return out
}
