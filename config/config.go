// Package config 读取排版主题：页面几何、字体、样式覆盖、页眉页脚、幻灯片标题栏与目录外观。
// 主题文件按扩展名选择 YAML（.yaml/.yml）或 TOML（.toml）格式，未出现的字段保留默认值。
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/geom"
	"github.com/ByLCY/quire/style"
)

// Theme 为完整主题。长度单位 mm，字号单位 pt。
type Theme struct {
	// Backend 选择绘图后端：canvas 或 fpdf。
	Backend string            `yaml:"backend" toml:"backend"`
	Page    Page              `yaml:"page" toml:"page"`
	Fonts   map[string]string `yaml:"fonts" toml:"fonts"`
	Styles  map[string]Style  `yaml:"styles" toml:"styles"`
	Header  Band              `yaml:"header" toml:"header"`
	Footer  Band              `yaml:"footer" toml:"footer"`
	Slide   Slide             `yaml:"slide" toml:"slide"`
	TOC     TOC               `yaml:"toc" toml:"toc"`
	Table   Table             `yaml:"table" toml:"table"`
	Flow    Flow              `yaml:"flow" toml:"flow"`
}

// Page 为流式文档页面。
type Page struct {
	Size      string    `yaml:"size" toml:"size"`
	Landscape bool      `yaml:"landscape" toml:"landscape"`
	Margin    []float64 `yaml:"margin" toml:"margin"`
}

// Style 为单个样式的覆盖项，空字段继承父样式。
type Style struct {
	Parent  string   `yaml:"parent" toml:"parent"`
	Font    string   `yaml:"font" toml:"font"`
	Size    *float64 `yaml:"size" toml:"size"`
	Leading string   `yaml:"leading" toml:"leading"`
	Color   string   `yaml:"color" toml:"color"`
	Align   string   `yaml:"align" toml:"align"`
}

// Band 为页眉或页脚，文本支持 {page} 与 {title}。
type Band struct {
	Height float64 `yaml:"height" toml:"height"`
	Left   string  `yaml:"left" toml:"left"`
	Center string  `yaml:"center" toml:"center"`
	Right  string  `yaml:"right" toml:"right"`
	Rule   bool    `yaml:"rule" toml:"rule"`
}

// Slide 为幻灯片尺寸与标题栏。
type Slide struct {
	Size       string    `yaml:"size" toml:"size"`
	Margin     []float64 `yaml:"margin" toml:"margin"`
	BandHeight float64   `yaml:"band_height" toml:"band_height"`
	BandFill   string    `yaml:"band_fill" toml:"band_fill"`
	Logo       string    `yaml:"logo" toml:"logo"`
	LogoWidth  float64   `yaml:"logo_width" toml:"logo_width"`
	Padding    float64   `yaml:"padding" toml:"padding"`
}

// TOC 为目录外观。
type TOC struct {
	Title       string  `yaml:"title" toml:"title"`
	DotLeaders  bool    `yaml:"dot_leaders" toml:"dot_leaders"`
	Indent      float64 `yaml:"indent" toml:"indent"`
	NumberWidth float64 `yaml:"number_width" toml:"number_width"`
	Gap         float64 `yaml:"gap" toml:"gap"`
	RowGap      float64 `yaml:"row_gap" toml:"row_gap"`
}

// Table 为表格配色与内边距。
type Table struct {
	HeaderFill string  `yaml:"header_fill" toml:"header_fill"`
	ZebraFill  string  `yaml:"zebra_fill" toml:"zebra_fill"`
	GridColor  string  `yaml:"grid_color" toml:"grid_color"`
	GridWidth  float64 `yaml:"grid_width" toml:"grid_width"`
	PadX       float64 `yaml:"pad_x" toml:"pad_x"`
	PadY       float64 `yaml:"pad_y" toml:"pad_y"`
}

// Flow 为流式排版参数。
type Flow struct {
	Spacing   float64 `yaml:"spacing" toml:"spacing"`
	Oversize  string  `yaml:"oversize" toml:"oversize"`
	Numbered  bool    `yaml:"numbered" toml:"numbered"`
	FigureDPI float64 `yaml:"figure_dpi" toml:"figure_dpi"`
}

// Default 返回内置主题。
func Default() *Theme {
	return &Theme{
		Backend: "canvas",
		Page:    Page{Size: "A4", Margin: []float64{20}},
		Slide: Slide{
			Size:       "widescreen",
			Margin:     []float64{10},
			BandHeight: 22,
			BandFill:   style.Brand.Hex(),
			LogoWidth:  24,
			Padding:    4,
		},
		TOC: TOC{Title: "Contents", DotLeaders: true, Indent: 6, NumberWidth: 12, Gap: 2, RowGap: 1},
		Table: Table{
			HeaderFill: "#e8eef9",
			ZebraFill:  "#f6f8fa",
			GridColor:  "#c8ccd1",
			GridWidth:  0.2,
			PadX:       1.5,
			PadY:       1.2,
		},
		Flow: Flow{Spacing: 3, Oversize: "split", FigureDPI: 96},
	}
}

// Load 读取主题文件并与默认值合并，随后校验。
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "主题文件 %s 不存在", path)
		}
		return nil, errs.Wrap(errs.ErrCodeResource, err, "读取主题文件 %s 失败", path)
	}
	t := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(t); err != nil {
			return nil, errs.Wrap(errs.ErrCodeValidation, err, "解析 YAML 主题 %s 失败", path)
		}
	case ".toml":
		md, err := toml.Decode(string(data), t)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeValidation, err, "解析 TOML 主题 %s 失败", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errs.Validation("主题 %s 含未知字段：%s", path, strings.Join(keys, ", "))
		}
	default:
		return nil, errs.Validation("不支持的主题格式：%s", ext)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		t.resolvePaths(dir)
	}
	return t, nil
}

// LoadOrDefault 在 path 为空时返回默认主题。
func LoadOrDefault(path string) (*Theme, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// resolvePaths 把字体与标志的相对路径解析为相对主题文件所在目录。
func (t *Theme) resolvePaths(dir string) {
	for name, p := range t.Fonts {
		if p != "" && !filepath.IsAbs(p) {
			t.Fonts[name] = filepath.Join(dir, p)
		}
	}
	if t.Slide.Logo != "" && !filepath.IsAbs(t.Slide.Logo) {
		t.Slide.Logo = filepath.Join(dir, t.Slide.Logo)
	}
}

// Validate 检查所有字段，返回第一个 ValidationError。
func (t *Theme) Validate() error {
	switch t.Backend {
	case "", "canvas", "fpdf":
	default:
		return errs.Validation("未知绘图后端：%s", t.Backend)
	}
	if _, err := t.PageSize(); err != nil {
		return err
	}
	if _, err := geom.MarginFrom(t.Page.Margin); err != nil {
		return err
	}
	if _, err := t.SlideSize(); err != nil {
		return err
	}
	if _, err := geom.MarginFrom(t.Slide.Margin); err != nil {
		return err
	}
	for _, c := range []string{t.Slide.BandFill, t.Table.HeaderFill, t.Table.ZebraFill, t.Table.GridColor} {
		if c == "" {
			continue
		}
		if _, err := style.ParseColor(c); err != nil {
			return err
		}
	}
	for _, v := range []float64{t.Header.Height, t.Footer.Height, t.Slide.BandHeight, t.Slide.LogoWidth, t.Flow.Spacing, t.TOC.Indent, t.TOC.NumberWidth, t.Table.GridWidth} {
		if v < 0 {
			return errs.Validation("主题中的长度不能为负：%g", v)
		}
	}
	switch t.Flow.Oversize {
	case "", "split", "reject":
	default:
		return errs.Validation("未知的超高策略：%s", t.Flow.Oversize)
	}
	for name, p := range t.Fonts {
		if name == "" || p == "" {
			return errs.Validation("字体名与路径不能为空")
		}
	}
	if _, err := t.Registry(); err != nil {
		return err
	}
	return nil
}

// PageSize 返回流式文档页面尺寸。
func (t *Theme) PageSize() (geom.Size, error) {
	return geom.ParseSize(t.Page.Size, t.Page.Landscape)
}

// SlideSize 返回幻灯片尺寸。
func (t *Theme) SlideSize() (geom.Size, error) {
	return geom.ParseSize(t.Slide.Size, false)
}

// Registry 在默认样式表上叠加主题样式。样式按名称排序应用，结果与 map 遍历顺序无关。
func (t *Theme) Registry() (*style.Registry, error) {
	reg := style.Default()
	names := make([]string, 0, len(t.Styles))
	for name := range t.Styles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id, err := style.ParseID(name)
		if err != nil {
			return nil, err
		}
		def, parentSet, err := t.Styles[name].Def()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeValidation, err, "样式 %s 无效", name)
		}
		if err := reg.Merge(id, def, parentSet); err != nil {
			return nil, err
		}
	}
	for id := style.Base; id <= style.SlideSubtitle; id++ {
		if _, err := reg.Resolve(id); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Def 把主题样式转换为样式增量；parentSet 表示显式指定了父样式。
func (s Style) Def() (style.Def, bool, error) {
	var def style.Def
	parentSet := false
	if s.Parent != "" {
		id, err := style.ParseID(s.Parent)
		if err != nil {
			return def, false, err
		}
		def.Parent = id
		parentSet = true
	}
	if s.Font != "" {
		font := s.Font
		def.Font = &font
	}
	if s.Size != nil {
		if *s.Size <= 0 {
			return def, false, errs.Validation("字号必须为正：%g", *s.Size)
		}
		size := *s.Size
		def.Size = &size
	}
	if s.Leading != "" {
		lh, err := geom.ParseLineHeight(s.Leading)
		if err != nil {
			return def, false, errs.Wrap(errs.ErrCodeValidation, err, "行高无效")
		}
		def.Leading = &lh
	}
	if s.Color != "" {
		c, err := style.ParseColor(s.Color)
		if err != nil {
			return def, false, err
		}
		def.Color = &c
	}
	if s.Align != "" {
		a, err := style.ParseAlign(s.Align)
		if err != nil {
			return def, false, err
		}
		def.Align = &a
	}
	return def, parentSet, nil
}
