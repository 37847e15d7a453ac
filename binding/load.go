package binding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/quire/errs"
)

// LoadFile 读取 JSON 或 YAML 格式的结果树，按扩展名选择解码器。
func LoadFile(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "数据文件 %s 不存在", path)
		}
		return nil, errs.Wrap(errs.ErrCodeResource, err, "读取数据文件 %s 失败", path)
	}
	var data any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	default:
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeValidation, err, "解析数据文件 %s 失败", path)
	}
	return data, nil
}
