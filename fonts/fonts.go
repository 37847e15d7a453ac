// Package fonts 管理排版使用的字体数据与文字度量。
//
// 内置字体来自 golang.org/x/image/font/gofont，可通过 Register/RegisterFile
// 追加 TrueType/OpenType 字体。字体按名称引用，样式中的 Font 字段即为此名称。
package fonts

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ByLCY/quire/errs"
)

// Registry 按名称保存字体二进制。
type Registry struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var builtins = map[string][]byte{
	"Go":            goregular.TTF,
	"Go-Bold":       gobold.TTF,
	"Go-Italic":     goitalic.TTF,
	"Go-BoldItalic": gobolditalic.TTF,
	"Go-Mono":       gomono.TTF,
}

// NewRegistry 创建包含内置 Go 字族的注册表。
func NewRegistry() *Registry {
	r := &Registry{blobs: map[string][]byte{}}
	for name, data := range builtins {
		r.blobs[name] = data
	}
	return r
}

// Register 以名称注册字体数据，同名覆盖。
func (r *Registry) Register(name string, data []byte) error {
	if name == "" {
		return errs.Validation("字体名称不能为空")
	}
	if len(data) == 0 {
		return errs.New(errs.ErrCodeResource, "字体 %s 数据为空", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[name] = data
	return nil
}

// RegisterFile 从文件加载字体。
func (r *Registry) RegisterFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errs.Wrap(errs.ErrCodeNotFound, err, "字体文件 %s 不存在", path)
		}
		return errs.Wrap(errs.ErrCodeResource, err, "读取字体文件 %s 失败", path)
	}
	return r.Register(name, data)
}

// Load 返回字体数据。
func (r *Registry) Load(name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.blobs[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeNotFound, "找不到字体 %s", name)
	}
	return data, nil
}

// Has 判断字体是否已注册。
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.blobs[name]
	return ok
}

// Names 返回全部字体名称（排序后）。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.blobs))
	for name := range r.blobs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsBuiltin 判断名称是否为内置字体。
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (r *Registry) String() string {
	return fmt.Sprintf("fonts.Registry(%d)", len(r.Names()))
}
