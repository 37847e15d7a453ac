package renderer

import (
	"os"
	"path/filepath"

	"github.com/ByLCY/quire/errs"
)

// SaveAtomic 先写入同目录的临时文件再重命名，失败时不会留下半成品。
func SaveAtomic(be Backend, path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "创建输出目录 %s 失败", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "创建临时文件失败")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err := be.Save(tmp); err != nil {
		if errs.IsBackend(err) {
			return err
		}
		return errs.Wrap(errs.ErrCodeBackend, err, "写出 %s 失败", path)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "设置文件权限失败")
	}
	if err := tmp.Sync(); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "同步临时文件失败")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "关闭临时文件失败")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errs.Wrap(errs.ErrCodeBackend, err, "重命名到 %s 失败", path)
	}
	return nil
}

// ErrNoPage 在 NewPage 之前绘制时返回。
func ErrNoPage(op string) error {
	return errs.New(errs.ErrCodeBackend, "%s: 尚未创建页面", op)
}

// CheckLevel 校验大纲层级。
func CheckLevel(level int) error {
	if level < 0 || level > 2 {
		return errs.Validation("大纲层级必须在 0..2 之间：%d", level)
	}
	return nil
}
