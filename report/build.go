// Package report 驱动一次完整构建：回放操作日志、两遍解析目录页码、原子保存。
//
// 第一遍在记录后端上运行，只为得到每个标题的页码；第二遍在全新的真实后端上
// 使用这些页码重新排版。两遍的几何完全一致，页数或页码不同即为确定性错误。
package report

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/errs"
	"github.com/ByLCY/quire/renderer"
	"github.com/ByLCY/quire/renderer/record"
	"github.com/ByLCY/quire/toc"
)

// Pass 在 be 上从头执行一遍构建；entries 供目录占位使用。
type Pass func(be renderer.Backend, entries []toc.Entry) (*Result, error)

// Options 为构建参数。
type Options struct {
	Backend renderer.Factory
	Meta    renderer.Meta
	Logger  *log.Logger
	// Context 为空时不可取消；每一遍开始前与保存前检查。
	Context context.Context
	// TwoPass 在存在目录时开启；Prospective 为预扫描得到的条目（页码为 0）。
	TwoPass     bool
	Prospective []toc.Entry
}

// Build 执行构建并在 path 非空时原子保存。
func Build(path string, opts Options, run Pass) (*Result, error) {
	if opts.Backend == nil {
		return nil, errs.Validation("未指定绘图后端")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	entries := opts.Prospective
	var first *Result
	if opts.TwoPass {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := record.New()
		rec.SetInfo(opts.Meta)
		res, err := run(rec, opts.Prospective)
		if err != nil {
			return nil, err
		}
		first = res
		entries = res.TOC
		logger.Debug("第一遍完成", "pages", res.Pages, "toc", len(res.TOC))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	be, err := opts.Backend()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeBackend, err, "创建绘图后端失败")
	}
	be.SetInfo(opts.Meta)
	final, err := run(be, entries)
	if err != nil {
		return nil, err
	}
	logger.Debug("排版完成", "pages", final.Pages, "elements", len(final.Placements))
	if first != nil {
		if err := Verify(first, final); err != nil {
			return nil, err
		}
	}
	if path != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := renderer.SaveAtomic(be, path); err != nil {
			return nil, err
		}
		logger.Info("已保存", "path", path, "pages", final.Pages)
	}
	return final, nil
}

// Verify 比较两遍的页数与目录页码。
func Verify(first, second *Result) error {
	if first.Pages != second.Pages {
		return errs.New(errs.ErrCodeDeterminism, "两遍构建页数不一致：%d != %d", first.Pages, second.Pages)
	}
	if !toc.Same(first.TOC, second.TOC) {
		for i := range first.TOC {
			if i < len(second.TOC) && first.TOC[i] != second.TOC[i] {
				return errs.New(errs.ErrCodeDeterminism, "目录条目 %q 页码不一致：%d != %d",
					first.TOC[i].Text, first.TOC[i].Page, second.TOC[i].Page)
			}
		}
		return errs.New(errs.ErrCodeDeterminism, "两遍构建目录条目数不一致：%d != %d", len(first.TOC), len(second.TOC))
	}
	return nil
}
