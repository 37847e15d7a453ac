package style

import (
	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
)

// Def 记录一个样式相对父样式的增量。Size 单位为 pt。
type Def struct {
	Parent  ID
	Font    *string
	Size    *float64
	Leading *geom.LineHeight
	Color   *Color
	Align   *Align
}

// Registry 保存全部样式定义，构建期间只读。
type Registry struct {
	defs map[ID]Def
}

// NewRegistry 创建空注册表；除 Base 外未定义的样式视为直接继承 Base。
func NewRegistry() *Registry {
	return &Registry{defs: map[ID]Def{}}
}

// Define 设置（或替换）样式定义。
func (r *Registry) Define(id ID, def Def) error {
	if id < 0 || id >= numIDs {
		return errs.Validation("未知样式 ID：%d", int(id))
	}
	if def.Size != nil && *def.Size <= 0 {
		return errs.Validation("样式 %s 字号必须为正", id)
	}
	r.defs[id] = def
	return nil
}

// Merge 将 delta 中非空字段覆盖到已有定义上；parentSet 为 true 时同时替换父样式。
func (r *Registry) Merge(id ID, delta Def, parentSet bool) error {
	cur, ok := r.defs[id]
	if !ok {
		cur = Def{Parent: Base}
	}
	if parentSet {
		cur.Parent = delta.Parent
	}
	if delta.Font != nil {
		cur.Font = delta.Font
	}
	if delta.Size != nil {
		cur.Size = delta.Size
	}
	if delta.Leading != nil {
		cur.Leading = delta.Leading
	}
	if delta.Color != nil {
		cur.Color = delta.Color
	}
	if delta.Align != nil {
		cur.Align = delta.Align
	}
	return r.Define(id, cur)
}

// Clone 返回独立副本。
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for id, d := range r.defs {
		out.defs[id] = d
	}
	return out
}

type partial struct {
	font    *string
	size    *float64
	leading *geom.LineHeight
	color   *Color
	align   *Align
}

// Resolve 沿继承链合并出完整样式。继承成环或根样式缺字段时返回 ValidationError。
func (r *Registry) Resolve(id ID) (Resolved, error) {
	if id < 0 || id >= numIDs {
		return Resolved{}, errs.Validation("未知样式 ID：%d", int(id))
	}
	var p partial
	visiting := map[ID]bool{}
	cur := id
	for {
		if visiting[cur] {
			return Resolved{}, errs.Validation("样式继承存在循环：%s", cur)
		}
		visiting[cur] = true
		def, ok := r.defs[cur]
		if !ok {
			def = Def{Parent: Base}
		}
		if p.font == nil {
			p.font = def.Font
		}
		if p.size == nil {
			p.size = def.Size
		}
		if p.leading == nil {
			p.leading = def.Leading
		}
		if p.color == nil {
			p.color = def.Color
		}
		if p.align == nil {
			p.align = def.Align
		}
		if cur == Base {
			break
		}
		cur = def.Parent
	}
	if p.font == nil || p.size == nil {
		return Resolved{}, errs.Validation("样式 %s 缺少字体或字号（根样式 base 未完整定义）", id)
	}
	out := Resolved{Font: *p.font, Size: *p.size, Leading: *p.size * 1.2}
	if p.leading != nil {
		out.Leading = p.leading.ResolvePT(*p.size)
	}
	if p.color != nil {
		out.Color = *p.color
	}
	if p.align != nil {
		out.Align = *p.align
	}
	return out, nil
}

// MustResolve 用于已知完整的默认注册表。
func (r *Registry) MustResolve(id ID) Resolved {
	s, err := r.Resolve(id)
	if err != nil {
		panic(err)
	}
	return s
}

func strp(s string) *string                   { return &s }
func f64p(f float64) *float64                 { return &f }
func colorp(c Color) *Color                   { return &c }
func alignp(a Align) *Align                   { return &a }
func lhp(lh geom.LineHeight) *geom.LineHeight { return &lh }

// 默认调色。
var (
	Ink   = MustColor("#1f2328")
	Muted = MustColor("#57606a")
	Brand = MustColor("#0f62fe")
)

// Default 返回内置样式表，字体使用内置 Go 字族。
func Default() *Registry {
	r := NewRegistry()
	defs := map[ID]Def{
		Base:          {Font: strp("Go"), Size: f64p(10.5), Leading: lhp(geom.Factor(1.35)), Color: colorp(Ink), Align: alignp(AlignLeft)},
		Body:          {Parent: Base},
		Heading1:      {Parent: Base, Font: strp("Go-Bold"), Size: f64p(18), Leading: lhp(geom.Factor(1.25))},
		Heading2:      {Parent: Heading1, Size: f64p(14)},
		Heading3:      {Parent: Heading2, Size: f64p(12)},
		Title:         {Parent: Heading1, Size: f64p(26), Align: alignp(AlignCenter)},
		Subtitle:      {Parent: Base, Size: f64p(14), Color: colorp(Muted), Align: alignp(AlignCenter)},
		TableHeader:   {Parent: Base, Font: strp("Go-Bold"), Size: f64p(9.5)},
		TableBody:     {Parent: Base, Size: f64p(9.5)},
		Caption:       {Parent: Base, Font: strp("Go-Italic"), Size: f64p(9), Color: colorp(Muted), Align: alignp(AlignCenter)},
		TocTitle:      {Parent: Heading1},
		TocLevel0:     {Parent: Base, Font: strp("Go-Bold")},
		TocLevel1:     {Parent: Base},
		TocLevel2:     {Parent: Base, Size: f64p(9.5)},
		PageHeader:    {Parent: Base, Size: f64p(8), Color: colorp(Muted)},
		PageFooter:    {Parent: PageHeader},
		SlideTitle:    {Parent: Heading1, Size: f64p(22), Color: colorp(White)},
		SlideSubtitle: {Parent: Base, Size: f64p(12), Color: colorp(White)},
	}
	for id, d := range defs {
		r.defs[id] = d
	}
	return r
}
