// Package figure 负责插图的探测与尺寸计算。
//
// 栅格图（PNG/JPEG/GIF/BMP/TIFF/WebP）按像素与 DPI 得到自然尺寸；
// SVG 与 PDF 作为矢量表单处理，自然尺寸取自文档声明的画布或页面框。
package figure

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tsawler/tabula/reader"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/quire/errs"
)

// Kind 区分插图来源类型。
type Kind int

const (
	KindRaster Kind = iota
	KindSVG
	KindPDF
)

func (k Kind) String() string {
	switch k {
	case KindSVG:
		return "svg"
	case KindPDF:
		return "pdf"
	default:
		return "raster"
	}
}

// Vector 判断是否为矢量表单。
func (k Kind) Vector() bool { return k == KindSVG || k == KindPDF }

// DefaultDPI 为栅格图未给出 DPI 时的换算基准。
const DefaultDPI = 96.0

// Source 描述一个已探测的插图，Width/Height 为自然尺寸（mm）。
type Source struct {
	Path   string  `json:"path"`
	Kind   Kind    `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Pixels [2]int  `json:"pixels,omitempty"`
}

// Aspect 返回宽高比。
func (s Source) Aspect() float64 {
	if s.Height == 0 {
		return 0
	}
	return s.Width / s.Height
}

// KindOf 按扩展名判断类型。
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return KindSVG
	case ".pdf":
		return KindPDF
	default:
		return KindRaster
	}
}

// Probe 读取插图头部信息得到自然尺寸。文件缺失返回 NOT_FOUND，无法解码返回 RESOURCE。
func Probe(path string, dpi float64) (Source, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Source{}, errs.Wrap(errs.ErrCodeNotFound, err, "插图 %s 不存在", path)
		}
		return Source{}, errs.Wrap(errs.ErrCodeResource, err, "无法访问插图 %s", path)
	}
	src := Source{Path: path, Kind: KindOf(path)}
	var err error
	switch src.Kind {
	case KindSVG:
		err = probeSVG(&src)
	case KindPDF:
		err = probePDF(&src)
	default:
		err = probeRaster(&src, dpi)
	}
	if err != nil {
		return Source{}, errs.Wrap(errs.ErrCodeResource, err, "无法读取插图 %s", path)
	}
	if src.Width <= 0 || src.Height <= 0 {
		return Source{}, errs.New(errs.ErrCodeResource, "插图 %s 尺寸无效：%gx%g", path, src.Width, src.Height)
	}
	return src, nil
}

func probeRaster(src *Source, dpi float64) error {
	f, err := os.Open(src.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	src.Pixels = [2]int{cfg.Width, cfg.Height}
	src.Width = float64(cfg.Width) / dpi * 25.4
	src.Height = float64(cfg.Height) / dpi * 25.4
	return nil
}

func probeSVG(src *Source) error {
	c, err := LoadSVG(src.Path)
	if err != nil {
		return err
	}
	src.Width, src.Height = c.W, c.H
	return nil
}

func probePDF(src *Source) error {
	r, err := reader.Open(src.Path)
	if err != nil {
		return err
	}
	defer r.Close()
	page, err := r.GetPage(0)
	if err != nil {
		return err
	}
	box, err := page.CropBox()
	if err != nil {
		return err
	}
	if len(box) != 4 {
		return fmt.Errorf("页面框长度异常：%d", len(box))
	}
	const ptToMm = 25.4 / 72
	src.Width = math.Abs(box[2]-box[0]) * ptToMm
	src.Height = math.Abs(box[3]-box[1]) * ptToMm
	return nil
}

// LoadSVG 解析 SVG 为 canvas 画布（单位 mm）。
func LoadSVG(path string) (*canvas.Canvas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return canvas.ParseSVG(f)
}

// LoadRaster 解码栅格图。
func LoadRaster(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// ResolveSize 计算目标尺寸：两者都给出时直接使用，只给出一个时按源宽高比推算另一个，
// 都未给出时使用源尺寸。requested 为 0 表示未指定。
func ResolveSize(srcW, srcH, reqW, reqH float64) (float64, float64, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, errs.Validation("源尺寸必须为正：%gx%g", srcW, srcH)
	}
	if reqW < 0 || reqH < 0 {
		return 0, 0, errs.Validation("插图尺寸不能为负：%gx%g", reqW, reqH)
	}
	switch {
	case reqW > 0 && reqH > 0:
		return reqW, reqH, nil
	case reqW > 0:
		return reqW, reqW * srcH / srcW, nil
	case reqH > 0:
		return reqH * srcW / srcH, reqH, nil
	default:
		return srcW, srcH, nil
	}
}

// Fit 在保持宽高比的前提下把 (w,h) 缩小到 maxW x maxH 内；scaled 表示是否发生缩放。
func Fit(w, h, maxW, maxH float64) (float64, float64, bool) {
	if w <= 0 || h <= 0 {
		return w, h, false
	}
	s := 1.0
	if maxW > 0 && w > maxW {
		s = maxW / w
	}
	if maxH > 0 && h*s > maxH {
		s = maxH / h
	}
	if s >= 1 {
		return w, h, false
	}
	return w * s, h * s, true
}
