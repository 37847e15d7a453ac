package layout

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/renderer"
)

// BuildOptions 配置脚本编译与构建。
type BuildOptions struct {
	// Theme 为空时使用 config.Default()。
	Theme *config.Theme
	// Data 为 ${path} 占位符与 table from 使用的结果树。
	Data any
	// BaseDir 为脚本中相对路径（字体、插图）的基准目录。
	BaseDir string
	// Backend 非空时覆盖主题中的后端选择，测试中常用 record.Factory。
	Backend renderer.Factory
	Logger  *log.Logger
	// Context 取消时构建在下一遍开始前或保存前停止。
	Context context.Context
}

func (o *BuildOptions) defaults() {
	if o.Theme == nil {
		o.Theme = config.Default()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}
